// Package filter narrows a course list down to the courses a user asks for.
//
// Criteria combine with AND; the values within one criterion combine with OR:
//   - Names (substring matching, case-insensitive)
//   - Teachers (substring matching on the teacher or lab comment)
//   - Types (course categories)
//   - Weekdays (1 = Monday ... 7 = Sunday)
//   - Week (courses taught in that teaching week)
//
// Example usage:
//
//	// Lab courses held on Wednesday
//	f := filter.NewFilter()
//	f.Types = []course.Type{course.TypeExperiment}
//	f.Weekdays = []int{3}
//
//	filtered := f.Apply(records)
package filter

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/pfrederiksen/thu-timetable/internal/course"
)

// Filter represents course filtering criteria
type Filter struct {
	// Course name filtering (case-insensitive substring match)
	Names []string `json:"names,omitempty"`

	// Teacher filtering, matched against the comment for lab courses
	Teachers []string `json:"teachers,omitempty"`

	Types []course.Type `json:"types,omitempty"`

	Weekdays []int `json:"weekdays,omitempty"`

	// Teaching week; 0 disables
	Week int `json:"week,omitempty"`
}

// NewFilter creates a new empty filter with no active criteria.
// The filter will match all courses until criteria are added.
func NewFilter() *Filter {
	return &Filter{
		Names:    []string{},
		Teachers: []string{},
		Types:    []course.Type{},
		Weekdays: []int{},
	}
}

// IsEmpty checks if the filter has any active criteria.
func (f *Filter) IsEmpty() bool {
	return len(f.Names) == 0 &&
		len(f.Teachers) == 0 &&
		len(f.Types) == 0 &&
		len(f.Weekdays) == 0 &&
		f.Week == 0
}

// Matches checks if a course matches all active filter criteria.
// An empty filter matches all courses. A course whose weeks text cannot be
// parsed never matches a week criterion.
func (f *Filter) Matches(rec *course.Record) bool {
	if f.IsEmpty() {
		return true
	}

	if len(f.Names) > 0 && !containsAny(rec.Name, f.Names) {
		return false
	}

	if len(f.Teachers) > 0 && !containsAny(rec.Lecturer(), f.Teachers) {
		return false
	}

	if len(f.Types) > 0 && !slices.Contains(f.Types, rec.Type) {
		return false
	}

	if len(f.Weekdays) > 0 && !slices.Contains(f.Weekdays, rec.Weekday) {
		return false
	}

	if f.Week > 0 {
		weeks, err := course.ParseWeeks(rec.Weeks)
		if err != nil || !slices.Contains(weeks, f.Week) {
			return false
		}
	}

	return true
}

func containsAny(s string, needles []string) bool {
	s = strings.ToLower(s)
	for _, n := range needles {
		if strings.Contains(s, strings.ToLower(n)) {
			return true
		}
	}
	return false
}

// Apply applies the filter to a list of courses and returns only matching courses.
// If the filter is empty, returns the original list unchanged.
func (f *Filter) Apply(records []*course.Record) []*course.Record {
	if f.IsEmpty() {
		return records
	}

	filtered := make([]*course.Record, 0, len(records))
	for _, rec := range records {
		if f.Matches(rec) {
			filtered = append(filtered, rec)
		}
	}

	return filtered
}

// String returns a human-readable description of the active filter criteria.
// Format: "Names: 操作系统 | Types: experiment | Weekdays: 周三 | Week: 5"
func (f *Filter) String() string {
	if f.IsEmpty() {
		return "No active filters"
	}

	var parts []string

	if len(f.Names) > 0 {
		parts = append(parts, fmt.Sprintf("Names: %s", strings.Join(f.Names, ", ")))
	}

	if len(f.Teachers) > 0 {
		parts = append(parts, fmt.Sprintf("Teachers: %s", strings.Join(f.Teachers, ", ")))
	}

	if len(f.Types) > 0 {
		types := make([]string, len(f.Types))
		for i, t := range f.Types {
			types[i] = string(t)
		}
		parts = append(parts, fmt.Sprintf("Types: %s", strings.Join(types, ", ")))
	}

	if len(f.Weekdays) > 0 {
		days := make([]string, len(f.Weekdays))
		for i, d := range f.Weekdays {
			days[i] = WeekdayName(d)
		}
		parts = append(parts, fmt.Sprintf("Weekdays: %s", strings.Join(days, ", ")))
	}

	if f.Week > 0 {
		parts = append(parts, "Week: "+strconv.Itoa(f.Week))
	}

	return strings.Join(parts, " | ")
}

// Clone creates a deep copy of the filter.
func (f *Filter) Clone() *Filter {
	return &Filter{
		Names:    append([]string{}, f.Names...),
		Teachers: append([]string{}, f.Teachers...),
		Types:    append([]course.Type{}, f.Types...),
		Weekdays: append([]int{}, f.Weekdays...),
		Week:     f.Week,
	}
}
