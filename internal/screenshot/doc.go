// Package screenshot exports the rendered timetable to a PNG.
//
// A headless Chromium (via go-rod) loads the HTML document, either a local
// file or a remote URL, at a 1080x1920 viewport. The capture is normalized
// to exactly that size with imaging before it is written.
package screenshot
