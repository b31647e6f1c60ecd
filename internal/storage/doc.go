// Package storage keeps the artifacts of a pipeline run in one data
// directory.
//
// Each stage reads the previous stage's output from disk:
//
//	response.html  the schedule page, decoded to UTF-8
//	courses.json   the parsed schedule document
//	schedule.html  the rendered timetable
//	schedule.png   the exported image
//	schedule.ics   the calendar export
//
// The default location is ~/.local/share/thu-timetable/.
package storage
