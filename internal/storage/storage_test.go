package storage

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pfrederiksen/thu-timetable/internal/course"
	"github.com/pfrederiksen/thu-timetable/internal/schedule"
)

func newStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "data"))
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	return s
}

func TestNew_CreatesDirectory(t *testing.T) {
	s := newStorage(t)

	info, err := os.Stat(s.Dir())
	if err != nil {
		t.Fatalf("data dir not created: %v", err)
	}
	if !info.IsDir() {
		t.Errorf("%s is not a directory", s.Dir())
	}
}

func TestNew_ExpandsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	s, err := New("~/timetable")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if want := filepath.Join(home, "timetable"); s.Dir() != want {
		t.Errorf("Dir() = %q, want %q", s.Dir(), want)
	}
}

func TestPaths(t *testing.T) {
	s := newStorage(t)

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"response", s.ResponsePath(), "response.html"},
		{"document", s.DocumentPath(), "courses.json"},
		{"html", s.HTMLPath(), "schedule.html"},
		{"image", s.ImagePath(), "schedule.png"},
		{"calendar", s.CalendarPath(), "schedule.ics"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != filepath.Join(s.Dir(), tt.want) {
				t.Errorf("path = %q, want %q in %q", tt.got, tt.want, s.Dir())
			}
		})
	}
}

func TestResponse_RoundTrip(t *testing.T) {
	s := newStorage(t)
	page := []byte("<html><script>function setInitValue() {}</script></html>")

	if err := s.SaveResponse(page); err != nil {
		t.Fatalf("SaveResponse() error = %v", err)
	}

	f, err := s.OpenResponse()
	if err != nil {
		t.Fatalf("OpenResponse() error = %v", err)
	}
	defer f.Close()

	got, err := io.ReadAll(f)
	if err != nil {
		t.Fatalf("reading response: %v", err)
	}
	if string(got) != string(page) {
		t.Errorf("response = %q, want %q", got, page)
	}
}

func TestDocument_RoundTrip(t *testing.T) {
	s := newStorage(t)

	rec := &course.Record{
		ID: "30240233", Credit: 3, Name: "操作系统", Teacher: "陈渝",
		Type: course.TypeRequired, Weeks: "全周", Position: "六教6A017",
		Weekday: 2, Period: 1,
	}
	doc, errs := schedule.NewDocument(schedule.Info{Term: "2024-2025-2", StudentID: "2021010001", Name: "张三"}, []*course.Record{rec})
	if len(errs) > 0 {
		t.Fatalf("NewDocument() errors = %v", errs)
	}

	before := time.Now().Add(-time.Second)
	if err := s.SaveDocument(doc); err != nil {
		t.Fatalf("SaveDocument() error = %v", err)
	}

	loaded, err := s.LoadDocument()
	if err != nil {
		t.Fatalf("LoadDocument() error = %v", err)
	}
	if loaded == nil {
		t.Fatal("LoadDocument() returned nil after save")
	}
	if loaded.Info != doc.Info {
		t.Errorf("Info = %+v, want %+v", loaded.Info, doc.Info)
	}
	if len(loaded.Courses) != 1 || loaded.Courses[0].Name != "操作系统" {
		t.Errorf("Courses = %+v", loaded.Courses)
	}
	if c := loaded.Schedule.Cell(2, 1); c.Empty() || c.Course.ID != "30240233" {
		t.Errorf("cell 2_1 = %+v, want the saved course", c)
	}

	mtime, err := s.DocumentTime()
	if err != nil {
		t.Fatalf("DocumentTime() error = %v", err)
	}
	if mtime.Before(before) {
		t.Errorf("DocumentTime() = %v, want after %v", mtime, before)
	}

	data, err := os.ReadFile(s.DocumentPath())
	if err != nil {
		t.Fatalf("reading document: %v", err)
	}
	if !strings.Contains(string(data), "操作系统") {
		t.Error("document should keep non-ASCII text unescaped")
	}
}

func TestLoadDocument_Missing(t *testing.T) {
	s := newStorage(t)

	doc, err := s.LoadDocument()
	if err != nil {
		t.Fatalf("LoadDocument() error = %v", err)
	}
	if doc != nil {
		t.Errorf("LoadDocument() = %+v, want nil", doc)
	}

	if _, err := s.DocumentTime(); err == nil {
		t.Error("DocumentTime() should fail without a document")
	}
}

func TestLoadDocument_Corrupt(t *testing.T) {
	s := newStorage(t)
	if err := os.WriteFile(s.DocumentPath(), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := s.LoadDocument(); err == nil {
		t.Error("LoadDocument() should fail on a corrupt document")
	}
}

func TestCreateHTML_Truncates(t *testing.T) {
	s := newStorage(t)
	if err := os.WriteFile(s.HTMLPath(), []byte("a much longer previous render"), 0644); err != nil {
		t.Fatal(err)
	}

	f, err := s.CreateHTML()
	if err != nil {
		t.Fatalf("CreateHTML() error = %v", err)
	}
	if _, err := f.WriteString("<html>"); err != nil {
		t.Fatal(err)
	}
	f.Close()

	data, _ := os.ReadFile(s.HTMLPath())
	if string(data) != "<html>" {
		t.Errorf("html = %q, want %q", data, "<html>")
	}
}
