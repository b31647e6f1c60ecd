// Package calendar exports a parsed timetable as an iCalendar file, one
// recurring event per course and run of teaching weeks.
package calendar
