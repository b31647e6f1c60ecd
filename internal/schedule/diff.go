package schedule

import (
	"sort"

	"github.com/pfrederiksen/thu-timetable/internal/course"
)

// Change is a course added to or dropped from the schedule between two parses
type Change struct {
	Kind   string         `json:"kind"` // "added" or "removed"
	Course *course.Record `json:"course"`
}

// DiffResult contains the results of comparing two course lists
type DiffResult struct {
	Added   []*course.Record
	Removed []*course.Record
}

// Changed reports whether anything was added or removed
func (r *DiffResult) Changed() bool {
	return len(r.Added) > 0 || len(r.Removed) > 0
}

// Changes flattens the result, removals first
func (r *DiffResult) Changes() []Change {
	changes := make([]Change, 0, len(r.Added)+len(r.Removed))
	for _, c := range r.Removed {
		changes = append(changes, Change{Kind: "removed", Course: c})
	}
	for _, c := range r.Added {
		changes = append(changes, Change{Kind: "added", Course: c})
	}
	return changes
}

// Diff compares the courses of a previous document against the current
// records. Courses are matched by id and slot, so a course moved to another
// slot shows up as removed and added. A nil previous document means every
// current course is new.
func Diff(previous *Document, current []*course.Record) *DiffResult {
	result := &DiffResult{
		Added:   make([]*course.Record, 0),
		Removed: make([]*course.Record, 0),
	}

	seen := make(map[string]bool)
	if previous != nil {
		for _, c := range previous.Courses {
			seen[c.Key()] = true
		}
	}

	now := make(map[string]bool)
	for _, c := range current {
		now[c.Key()] = true
		if !seen[c.Key()] {
			result.Added = append(result.Added, c)
		}
	}

	if previous != nil {
		for _, c := range previous.Courses {
			if !now[c.Key()] {
				result.Removed = append(result.Removed, c)
			}
		}
	}

	sortBySlot(result.Added)
	sortBySlot(result.Removed)
	return result
}

func sortBySlot(records []*course.Record) {
	sort.Slice(records, func(i, j int) bool {
		if records[i].Weekday != records[j].Weekday {
			return records[i].Weekday < records[j].Weekday
		}
		if records[i].Period != records[j].Period {
			return records[i].Period < records[j].Period
		}
		return records[i].ID < records[j].ID
	})
}
