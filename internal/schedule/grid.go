package schedule

import (
	"fmt"

	"github.com/pfrederiksen/thu-timetable/internal/course"
)

// Info is the header metadata of a schedule page
type Info struct {
	Term      string `json:"term"`
	StudentID string `json:"student_id"`
	Name      string `json:"name"`
}

// Cell is one weekday/period slot of the grid
type Cell struct {
	Period     string         `json:"period"` // "<weekday>_<period>"
	Course     *course.Record `json:"course,omitempty"`
	SpanLength int            `json:"span_length"`
}

// Empty reports whether no course occupies the cell
func (c Cell) Empty() bool {
	return c.Course == nil
}

// Grid is the fixed weekday x period timetable. Index as grid[weekday-1][period-1].
type Grid [Weekdays][Periods]Cell

// NewGrid returns a grid of labelled empty cells
func NewGrid() *Grid {
	var g Grid
	for d := 0; d < Weekdays; d++ {
		for p := 0; p < Periods; p++ {
			g[d][p] = Cell{
				Period:     fmt.Sprintf("%d_%d", d+1, p+1),
				SpanLength: 1,
			}
		}
	}
	return &g
}

// Cell returns the cell for a 1-based weekday and period
func (g *Grid) Cell(weekday, period int) Cell {
	return g[weekday-1][period-1]
}

// SpanLength is the number of period rows a course starting in period
// occupies. Only the long periods span more than one row: three when the
// course carries more than two credits, two otherwise.
func SpanLength(period, credit int) int {
	if !LongPeriods[period] {
		return 1
	}
	if credit > LongSpanCreditThreshold {
		return 3
	}
	return 2
}

// Place puts a validated record into its slot. A slot holds at most one
// course; a second one is rejected with a CellConflictError.
func (g *Grid) Place(rec *course.Record) error {
	if err := rec.Validate(); err != nil {
		return fmt.Errorf("placing course: %w", err)
	}
	cell := &g[rec.Weekday-1][rec.Period-1]
	if cell.Course != nil {
		return &course.CellConflictError{
			Weekday:  rec.Weekday,
			Period:   rec.Period,
			Existing: cell.Course.ID,
			Incoming: rec.ID,
		}
	}
	cell.Course = rec
	cell.SpanLength = SpanLength(rec.Period, rec.Credit)
	return nil
}

// Build places every record into a fresh grid. Records that cannot be placed
// are left out and their errors returned alongside the grid.
func Build(records []*course.Record) (*Grid, []error) {
	g := NewGrid()
	var errs []error
	for _, rec := range records {
		if err := g.Place(rec); err != nil {
			errs = append(errs, err)
		}
	}
	return g, errs
}

// Courses returns the placed courses in weekday, period order
func (g *Grid) Courses() []*course.Record {
	out := make([]*course.Record, 0)
	for d := 0; d < Weekdays; d++ {
		for p := 0; p < Periods; p++ {
			if c := g[d][p].Course; c != nil {
				out = append(out, c)
			}
		}
	}
	return out
}
