// Package schedule places course records into the weekly timetable grid.
//
// The grid is a fixed 7 (weekdays) by 6 (periods) array. Periods 2 and 6 are
// long teaching blocks, so a course there spans two or three of the 14
// expanded rows used by the rendered table; Layout turns the grid into that
// expanded-row table with covered rows marked. The package also owns the
// intermediate JSON document written between parsing and rendering, and a
// course diff between two parses.
package schedule
