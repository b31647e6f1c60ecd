package schedule

const (
	Weekdays = 7
	Periods  = 6
	// ExpandedRows is the number of fine-grained rows the rendered table uses
	ExpandedRows = 14
	// LongSpanCreditThreshold: courses above this many credits span three rows
	// in a long period
	LongSpanCreditThreshold = 2
)

// LongPeriods are the double/triple-length teaching blocks
var LongPeriods = map[int]bool{2: true, 6: true}

// ExpandedRowStart maps period 1..6 to its first expanded row (1-based).
// Entry 7 is the sentinel one past the last row.
var ExpandedRowStart = [Periods + 2]int{0, 1, 3, 6, 8, 10, 12, 15}

// PeriodTime is the daily start and end of a period
type PeriodTime struct {
	Start string
	End   string
}

// PeriodTimes indexed by period-1
var PeriodTimes = [Periods]PeriodTime{
	{"08:00", "09:35"},
	{"09:50", "12:15"},
	{"13:30", "15:05"},
	{"15:20", "16:55"},
	{"17:10", "18:45"},
	{"19:20", "21:45"},
}

// RowsInPeriod is how many expanded rows a period owns
func RowsInPeriod(period int) int {
	return ExpandedRowStart[period+1] - ExpandedRowStart[period]
}

// LayoutTable holds, per expanded row and weekday column, the row span of
// the cell that starts there: 0 for rows covered by a span above, otherwise
// the span length (1 for plain rows). Index as t[row-1][weekday-1].
type LayoutTable [ExpandedRows][Weekdays]int

// Layout derives the expanded-row table from the grid. Spans are clamped to
// the rows owned by their period so no two spans overlap in a column.
func Layout(g *Grid) *LayoutTable {
	var t LayoutTable
	for r := range t {
		for d := range t[r] {
			t[r][d] = 1
		}
	}
	if g == nil {
		return &t
	}

	for d := 0; d < Weekdays; d++ {
		for p := 1; p <= Periods; p++ {
			cell := g[d][p-1]
			if cell.Empty() {
				continue
			}
			span := cell.SpanLength
			if span < 1 {
				span = 1
			}
			if limit := RowsInPeriod(p); span > limit {
				span = limit
			}
			start := ExpandedRowStart[p]
			t[start-1][d] = span
			for i := 1; i < span; i++ {
				t[start-1+i][d] = 0
			}
		}
	}
	return &t
}

// At returns the table value for a 1-based expanded row and weekday
func (t *LayoutTable) At(row, weekday int) int {
	return t[row-1][weekday-1]
}

// Covered reports whether the row/weekday position lies under a span that
// started in an earlier row
func (t *LayoutTable) Covered(row, weekday int) bool {
	return t.At(row, weekday) == 0
}
