package render

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/pfrederiksen/thu-timetable/internal/course"
	"github.com/pfrederiksen/thu-timetable/internal/logger"
	"github.com/pfrederiksen/thu-timetable/internal/schedule"
)

// TimestampLayout formats the generation time in the header
const TimestampLayout = "2006/01/02 15:04:05"

// Cell classes, one per course category
const (
	ClassExperiment = "type_expe"
	ClassElective   = "type_elec"
	ClassRequired   = "type_comp"
)

// Semester of an academic term
type Semester string

const (
	SemesterAutumn Semester = "autumn"
	SemesterSpring Semester = "spring"
)

// Label is the Chinese season used in the header
func (s Semester) Label() string {
	switch s {
	case SemesterAutumn:
		return "秋季"
	case SemesterSpring:
		return "春季"
	default:
		return ""
	}
}

// SemesterOf reads the semester from the parity of the term's last digit:
// odd terms are autumn, even terms spring. Anything else is unknown ("").
func SemesterOf(term string) Semester {
	if term == "" {
		return ""
	}
	last := term[len(term)-1]
	if last < '0' || last > '9' {
		return ""
	}
	if (last-'0')%2 == 1 {
		return SemesterAutumn
	}
	return SemesterSpring
}

// AcademicYear is the starting year of the term ("2024" for 2024-2025-2)
func AcademicYear(term string) string {
	if len(term) < 4 {
		return ""
	}
	return term[:4]
}

// Heading is the document title for a term
func Heading(term string) string {
	return fmt.Sprintf("%s 学年%s学期课程表", AcademicYear(term), SemesterOf(term).Label())
}

// Weekday column headers
var weekdayHeaders = [schedule.Weekdays]WeekdayHeader{
	{"周一", "Mon."}, {"周二", "Tue."}, {"周三", "Wed."}, {"周四", "Thu."},
	{"周五", "Fri."}, {"周六", "Sat."}, {"周日", "Sun."},
}

// WeekdayHeader labels a weekday column
type WeekdayHeader struct {
	Zh string
	En string
}

// PeriodHeader is the first-column cell opening each period
type PeriodHeader struct {
	Number  int
	RowSpan int
	Start   string
	End     string
}

// CellView is one emitted table cell
type CellView struct {
	RowSpan int
	Class   string
	Course  *course.Record
}

// Row is one emitted table row. Period is set only on the first expanded row
// of a period.
type Row struct {
	Period *PeriodHeader
	Cells  []CellView
}

// View is the data the timetable template renders
type View struct {
	Title     string
	StudentID string
	Name      string
	UpdatedAt string
	Weekdays  []WeekdayHeader
	Rows      []Row
}

// ClassFor picks the cell class for a course category
func ClassFor(t course.Type) string {
	switch t {
	case course.TypeExperiment:
		return ClassExperiment
	case course.TypeElective:
		return ClassElective
	case course.TypeRequired:
		return ClassRequired
	default:
		return ""
	}
}

// NewView lays the document out as table rows. A nil document, missing info
// or missing grid produce blank fields and empty cells.
func NewView(doc *schedule.Document, generatedAt time.Time) *View {
	var (
		info schedule.Info
		grid *schedule.Grid
	)
	if doc != nil {
		info = doc.Info
		grid = doc.Schedule
	}
	if grid == nil {
		grid = schedule.NewGrid()
	}

	v := &View{
		Title:     Heading(info.Term),
		StudentID: info.StudentID,
		Name:      info.Name,
		Weekdays:  weekdayHeaders[:],
	}
	if !generatedAt.IsZero() {
		v.UpdatedAt = generatedAt.Format(TimestampLayout)
	}

	layout := schedule.Layout(grid)
	for p := 1; p <= schedule.Periods; p++ {
		start := schedule.ExpandedRowStart[p]
		times := schedule.PeriodTimes[p-1]

		row := Row{
			Period: &PeriodHeader{
				Number:  p,
				RowSpan: schedule.RowsInPeriod(p),
				Start:   times.Start,
				End:     times.End,
			},
			Cells: make([]CellView, 0, schedule.Weekdays),
		}
		for d := 1; d <= schedule.Weekdays; d++ {
			cv := CellView{RowSpan: layout.At(start, d)}
			if c := grid.Cell(d, p); !c.Empty() {
				cv.Course = c.Course
				cv.Class = ClassFor(c.Course.Type)
			}
			row.Cells = append(row.Cells, cv)
		}
		v.Rows = append(v.Rows, row)

		for r := start + 1; r < schedule.ExpandedRowStart[p+1]; r++ {
			trailing := Row{Cells: make([]CellView, 0, schedule.Weekdays)}
			for d := 1; d <= schedule.Weekdays; d++ {
				if layout.Covered(r, d) {
					continue
				}
				trailing.Cells = append(trailing.Cells, CellView{RowSpan: 1})
			}
			v.Rows = append(v.Rows, trailing)
		}
	}
	return v
}

var timetableTemplate = template.Must(template.New("timetable").Parse(timetableHTML))

// Render writes the timetable document for a schedule
func Render(w io.Writer, doc *schedule.Document, generatedAt time.Time) error {
	start := time.Now()
	defer func() { logger.RecordTiming("render.html", time.Since(start)) }()

	if err := timetableTemplate.Execute(w, NewView(doc, generatedAt)); err != nil {
		return fmt.Errorf("rendering timetable: %w", err)
	}
	return nil
}
