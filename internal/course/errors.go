package course

import (
	"errors"
	"fmt"
)

// Sentinels matched with errors.Is against the typed errors below
var (
	ErrNetwork        = errors.New("network error")
	ErrExtraction     = errors.New("extraction error")
	ErrMalformedEntry = errors.New("malformed course entry")
	ErrCellConflict   = errors.New("grid cell already occupied")
)

// NetworkError reports a failed fetch of the schedule page
type NetworkError struct {
	URL        string
	StatusCode int // 0 when the request never completed
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetching %s: unexpected status code: %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

func (e *NetworkError) Is(target error) bool { return target == ErrNetwork }

// ExtractionError means the page no longer has the expected layout
type ExtractionError struct {
	Marker string
	Reason string
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extracting course data: %s (marker %q)", e.Reason, e.Marker)
}

func (e *ExtractionError) Is(target error) bool { return target == ErrExtraction }

// MalformedEntryError reports a single course fragment that could not be parsed
type MalformedEntryError struct {
	Index  int    // fragment index within the script body
	Field  string // field being read when parsing failed
	Reason string
	Err    error
}

func (e *MalformedEntryError) Error() string {
	msg := fmt.Sprintf("course entry %d: %s: %s", e.Index, e.Field, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MalformedEntryError) Unwrap() error { return e.Err }

func (e *MalformedEntryError) Is(target error) bool { return target == ErrMalformedEntry }

// CellConflictError reports two courses placed in the same weekday/period slot
type CellConflictError struct {
	Weekday  int
	Period   int
	Existing string
	Incoming string
}

func (e *CellConflictError) Error() string {
	return fmt.Sprintf("slot %d_%d: %s conflicts with %s", e.Weekday, e.Period, e.Incoming, e.Existing)
}

func (e *CellConflictError) Is(target error) bool { return target == ErrCellConflict }
