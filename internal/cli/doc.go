// Package cli implements the command-line interface for thu-timetable.
//
// The Cobra command tree mirrors the pipeline stages. fetch downloads the
// schedule page, parse extracts the courses into courses.json (reporting
// courses added or removed since the previous parse), render writes the HTML
// timetable and export screenshots it to a PNG. run chains all four. show
// prints the parsed timetable to the terminal and calendar exports it as an
// iCalendar file; both accept course filters.
package cli
