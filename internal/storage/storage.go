package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pfrederiksen/thu-timetable/internal/schedule"
)

// File names inside the data directory
const (
	ResponseFile = "response.html"
	DocumentFile = "courses.json"
	HTMLFile     = "schedule.html"
	ImageFile    = "schedule.png"
	CalendarFile = "schedule.ics"
)

// DefaultDataDir is used when no --data-dir is given
const DefaultDataDir = "~/.local/share/thu-timetable"

// Storage handles the artifacts of a pipeline run
type Storage struct {
	dataDir string
}

// New creates a new Storage instance
func New(dataDir string) (*Storage, error) {
	// Expand ~ to home directory
	if dataDir == "~" || strings.HasPrefix(dataDir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, strings.TrimPrefix(dataDir[1:], "/"))
	}

	// Create data directory if it doesn't exist
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	return &Storage{
		dataDir: dataDir,
	}, nil
}

// Dir is the resolved data directory
func (s *Storage) Dir() string {
	return s.dataDir
}

// ResponsePath is where the decoded schedule page is kept
func (s *Storage) ResponsePath() string {
	return filepath.Join(s.dataDir, ResponseFile)
}

// DocumentPath is where the parsed schedule document is kept
func (s *Storage) DocumentPath() string {
	return filepath.Join(s.dataDir, DocumentFile)
}

// HTMLPath is where the rendered timetable is written
func (s *Storage) HTMLPath() string {
	return filepath.Join(s.dataDir, HTMLFile)
}

// ImagePath is where the exported PNG is written
func (s *Storage) ImagePath() string {
	return filepath.Join(s.dataDir, ImageFile)
}

// CalendarPath is where the iCalendar export is written
func (s *Storage) CalendarPath() string {
	return filepath.Join(s.dataDir, CalendarFile)
}

// SaveCalendar writes the iCalendar export
func (s *Storage) SaveCalendar(ics string) error {
	if err := os.WriteFile(s.CalendarPath(), []byte(ics), 0644); err != nil {
		return fmt.Errorf("writing calendar: %w", err)
	}
	return nil
}

// SaveResponse stores the decoded (UTF-8) schedule page
func (s *Storage) SaveResponse(page []byte) error {
	if err := os.WriteFile(s.ResponsePath(), page, 0644); err != nil {
		return fmt.Errorf("writing response: %w", err)
	}
	return nil
}

// OpenResponse opens the stored schedule page for parsing
func (s *Storage) OpenResponse() (*os.File, error) {
	f, err := os.Open(s.ResponsePath())
	if err != nil {
		return nil, fmt.Errorf("opening response: %w", err)
	}
	return f, nil
}

// SaveDocument writes the schedule document
func (s *Storage) SaveDocument(doc *schedule.Document) error {
	f, err := os.Create(s.DocumentPath())
	if err != nil {
		return fmt.Errorf("creating schedule document: %w", err)
	}
	defer f.Close()

	if err := doc.Encode(f); err != nil {
		return err
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("writing schedule document: %w", err)
	}
	return nil
}

// LoadDocument reads the schedule document. It returns nil without error
// when no document has been written yet.
func (s *Storage) LoadDocument() (*schedule.Document, error) {
	f, err := os.Open(s.DocumentPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening schedule document: %w", err)
	}
	defer f.Close()

	return schedule.Decode(f)
}

// DocumentTime is the modification time of the schedule document, used as
// the timetable's generation timestamp.
func (s *Storage) DocumentTime() (time.Time, error) {
	info, err := os.Stat(s.DocumentPath())
	if err != nil {
		return time.Time{}, fmt.Errorf("reading schedule document: %w", err)
	}
	return info.ModTime(), nil
}

// CreateHTML opens the timetable file for writing, truncating any previous
// render. The caller closes it.
func (s *Storage) CreateHTML() (*os.File, error) {
	f, err := os.Create(s.HTMLPath())
	if err != nil {
		return nil, fmt.Errorf("creating timetable: %w", err)
	}
	return f, nil
}
