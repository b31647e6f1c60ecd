package schedule

import (
	"testing"

	"github.com/pfrederiksen/thu-timetable/internal/course"
)

func TestDiff(t *testing.T) {
	os := newRecord("30240233", 1, 2)
	pe := newRecord("10720011", 4, 5)
	film := newRecord("00691042", 2, 3)

	previous := &Document{Courses: []*course.Record{os, pe}}

	t.Run("finds added and removed courses", func(t *testing.T) {
		result := Diff(previous, []*course.Record{os, film})

		if len(result.Added) != 1 || result.Added[0].ID != film.ID {
			t.Errorf("expected film to be added, got %v", result.Added)
		}
		if len(result.Removed) != 1 || result.Removed[0].ID != pe.ID {
			t.Errorf("expected PE to be removed, got %v", result.Removed)
		}
		if !result.Changed() {
			t.Error("expected Changed() to be true")
		}

		changes := result.Changes()
		if len(changes) != 2 {
			t.Fatalf("expected 2 changes, got %d", len(changes))
		}
		if changes[0].Kind != "removed" || changes[1].Kind != "added" {
			t.Errorf("unexpected change order: %s, %s", changes[0].Kind, changes[1].Kind)
		}
	})

	t.Run("moved course is removed and added", func(t *testing.T) {
		moved := newRecord("10720011", 5, 5)
		result := Diff(previous, []*course.Record{os, moved})

		if len(result.Added) != 1 || len(result.Removed) != 1 {
			t.Errorf("expected one added and one removed, got %d/%d", len(result.Added), len(result.Removed))
		}
	})

	t.Run("no previous document", func(t *testing.T) {
		result := Diff(nil, []*course.Record{pe, os})

		if len(result.Added) != 2 {
			t.Fatalf("expected 2 added, got %d", len(result.Added))
		}
		if result.Added[0].ID != os.ID {
			t.Errorf("expected added courses sorted by slot, got %s first", result.Added[0].ID)
		}
		if len(result.Removed) != 0 {
			t.Errorf("expected nothing removed, got %d", len(result.Removed))
		}
	})

	t.Run("unchanged", func(t *testing.T) {
		result := Diff(previous, []*course.Record{pe, os})
		if result.Changed() {
			t.Errorf("expected no changes, got %+v", result.Changes())
		}
	})
}
