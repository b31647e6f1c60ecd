package render

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/pfrederiksen/thu-timetable/internal/schedule"
)

var (
	headerStyle     = lipgloss.NewStyle().Bold(true).Align(lipgloss.Center).Padding(0, 1)
	periodStyle     = lipgloss.NewStyle().Bold(true).Align(lipgloss.Center).Padding(0, 1)
	cellStyle       = lipgloss.NewStyle().Padding(0, 1)
	titleStyle      = lipgloss.NewStyle().Bold(true).MarginBottom(1)
	categoryColours = map[string]lipgloss.Color{
		ClassExperiment: lipgloss.Color("210"),
		ClassElective:   lipgloss.Color("114"),
		ClassRequired:   lipgloss.Color("111"),
	}
)

// RenderText writes a compact terminal timetable: one row per period, one
// column per weekday. A course spanning several rows is marked in its cell.
func RenderText(w io.Writer, doc *schedule.Document) error {
	v := NewView(doc, time.Time{})

	headers := []string{"节次"}
	for _, wd := range v.Weekdays {
		headers = append(headers, wd.Zh)
	}

	var (
		rows    [][]string
		classes [][]string
	)
	for _, row := range v.Rows {
		if row.Period == nil {
			continue
		}
		cells := []string{fmt.Sprintf("%d\n%s\n%s", row.Period.Number, row.Period.Start, row.Period.End)}
		rowClasses := []string{""}
		for _, cv := range row.Cells {
			rowClasses = append(rowClasses, cv.Class)
			if cv.Course == nil {
				cells = append(cells, "")
				continue
			}
			lines := []string{cv.Course.Name, cv.Course.Lecturer(), cv.Course.Position, cv.Course.Weeks}
			if cv.RowSpan > 1 {
				lines = append(lines, fmt.Sprintf("(%d节)", cv.RowSpan))
			}
			cells = append(cells, strings.Join(lines, "\n"))
		}
		rows = append(rows, cells)
		classes = append(classes, rowClasses)
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == 0 {
				return periodStyle
			}
			if row >= 0 && row < len(classes) {
				if colour, ok := categoryColours[classes[row][col]]; ok {
					return cellStyle.Foreground(colour)
				}
			}
			return cellStyle
		})

	title := v.Title
	if v.StudentID != "" || v.Name != "" {
		title = fmt.Sprintf("%s  %s %s", title, v.StudentID, v.Name)
	}

	if _, err := fmt.Fprintln(w, titleStyle.Render(title)); err != nil {
		return fmt.Errorf("writing timetable: %w", err)
	}
	if _, err := fmt.Fprintln(w, t.Render()); err != nil {
		return fmt.Errorf("writing timetable: %w", err)
	}
	return nil
}
