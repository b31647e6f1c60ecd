package cli

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/pfrederiksen/thu-timetable/internal/course"
)

// SortOrder represents the available sorting options
type SortOrder string

const (
	SortBySlot SortOrder = "slot"
	SortByName SortOrder = "name"
	SortByID   SortOrder = "id"
)

func parseSortOrder(s string) (SortOrder, error) {
	order := SortOrder(strings.ToLower(strings.TrimSpace(s)))
	switch order {
	case SortBySlot, SortByName, SortByID:
		return order, nil
	default:
		return "", fmt.Errorf("invalid sort order: %s (must be 'slot', 'name' or 'id')", s)
	}
}

// sortCourses orders the course report in place. Ties fall back to slot
// order so the output is deterministic.
func sortCourses(courses []*course.Record, order SortOrder) {
	var primary func(a, b *course.Record) int
	switch order {
	case SortByName:
		primary = func(a, b *course.Record) int { return strings.Compare(a.Name, b.Name) }
	case SortByID:
		primary = func(a, b *course.Record) int { return strings.Compare(a.ID, b.ID) }
	default:
		primary = func(*course.Record, *course.Record) int { return 0 }
	}

	slices.SortStableFunc(courses, func(a, b *course.Record) int {
		if c := primary(a, b); c != 0 {
			return c
		}
		return compareBySlot(a, b)
	})
}

// compareBySlot orders courses through the week: weekday first, then period
func compareBySlot(a, b *course.Record) int {
	if c := cmp.Compare(a.Weekday, b.Weekday); c != 0 {
		return c
	}
	return cmp.Compare(a.Period, b.Period)
}
