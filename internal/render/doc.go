// Package render turns a parsed schedule into the printable timetable.
//
// Render produces the HTML document later screenshotted to PNG; RenderText
// prints the same grid to a terminal.
package render
