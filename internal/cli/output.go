package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pfrederiksen/thu-timetable/internal/course"
	"github.com/pfrederiksen/thu-timetable/internal/schedule"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

func parseFormat(s string) (OutputFormat, error) {
	format := OutputFormat(strings.ToLower(strings.TrimSpace(s)))
	if format != FormatText && format != FormatJSON {
		return "", fmt.Errorf("invalid format: %s (must be 'text' or 'json')", s)
	}
	return format, nil
}

// ParseResult summarizes a parse run
type ParseResult struct {
	ParsedAt    time.Time        `json:"parsed_at"`
	Info        schedule.Info    `json:"info"`
	Courses     []*course.Record `json:"courses"`
	CourseCount int              `json:"course_count"`
	Skipped     int              `json:"skipped"`
	Conflicts   int              `json:"conflicts"`
	Added       []*course.Record `json:"added,omitempty"`
	Removed     []*course.Record `json:"removed,omitempty"`
	Path        string           `json:"path"`
}

// WriteOutput writes the result in the specified format
func WriteOutput(w io.Writer, result *ParseResult, format OutputFormat, verbose bool) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatText:
		return writeText(w, result, verbose)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs results as JSON
func writeJSON(w io.Writer, result *ParseResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(result)
}

// writeText outputs results as human-readable text
func writeText(w io.Writer, result *ParseResult, verbose bool) error {
	if result.Info.Term != "" {
		fmt.Fprintf(w, "Term %s", result.Info.Term)
		if result.Info.StudentID != "" || result.Info.Name != "" {
			fmt.Fprintf(w, " (%s %s)", result.Info.StudentID, result.Info.Name)
		}
		fmt.Fprintln(w)
	}

	if result.CourseCount == 0 {
		fmt.Fprintln(w, "No courses found.")
	} else {
		for _, c := range result.Courses {
			fmt.Fprintf(w, "  %s  %s  %s\n", slotLabel(c), c.ID, c.Name)
			if verbose {
				fmt.Fprintf(w, "       %s | %s | %s | %d credits\n", c.Lecturer(), c.Position, c.Weeks, c.Credit)
			}
		}
	}

	for _, c := range result.Removed {
		fmt.Fprintf(w, "REMOVED: %s %s (%s)\n", c.ID, c.Name, slotLabel(c))
	}
	for _, c := range result.Added {
		fmt.Fprintf(w, "ADDED: %s %s (%s)\n", c.ID, c.Name, slotLabel(c))
	}

	fmt.Fprintf(w, "\nTotal: %d courses", result.CourseCount)
	if result.Skipped > 0 || result.Conflicts > 0 {
		fmt.Fprintf(w, " (%d skipped, %d conflicts)", result.Skipped, result.Conflicts)
	}
	fmt.Fprintf(w, "\nSaved to %s\n", result.Path)
	return nil
}

var weekdayNames = [schedule.Weekdays]string{"周一", "周二", "周三", "周四", "周五", "周六", "周日"}

// slotLabel names a course's slot, e.g. "周二 第1节"
func slotLabel(c *course.Record) string {
	if c.Weekday < 1 || c.Weekday > schedule.Weekdays {
		return fmt.Sprintf("%d_%d", c.Weekday, c.Period)
	}
	return fmt.Sprintf("%s 第%d节", weekdayNames[c.Weekday-1], c.Period)
}
