package schedule

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/pfrederiksen/thu-timetable/internal/course"
)

// Document is the intermediate artifact written between parsing and rendering
type Document struct {
	Info     Info             `json:"info"`
	Courses  []*course.Record `json:"courses"`
	Schedule *Grid            `json:"schedule"`
}

// NewDocument builds the artifact for a parse run. Courses that could not be
// placed in the grid are returned as errors and left out of the document.
func NewDocument(info Info, records []*course.Record) (*Document, []error) {
	grid, errs := Build(records)
	return &Document{
		Info:     info,
		Courses:  grid.Courses(),
		Schedule: grid,
	}, errs
}

// Encode writes the document as indented JSON
func (d *Document) Encode(w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "    ")
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(d); err != nil {
		return fmt.Errorf("encoding schedule document: %w", err)
	}
	return nil
}

// Decode reads a document written by Encode. A missing schedule becomes an
// empty grid and unlabelled cells are filled in, so the result can always be
// rendered.
func Decode(r io.Reader) (*Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding schedule document: %w", err)
	}
	if doc.Courses == nil {
		doc.Courses = make([]*course.Record, 0)
	}
	if doc.Schedule == nil {
		doc.Schedule = NewGrid()
		return &doc, nil
	}

	blank := NewGrid()
	for d := 0; d < Weekdays; d++ {
		for p := 0; p < Periods; p++ {
			cell := &doc.Schedule[d][p]
			if cell.Period == "" {
				cell.Period = blank[d][p].Period
			}
			if cell.SpanLength < 1 {
				cell.SpanLength = 1
			}
		}
	}
	return &doc, nil
}
