package scraper

import (
	"strings"

	"github.com/pfrederiksen/thu-timetable/internal/course"
)

// shape is one of the two markup patterns a course entry can take
type shape int

const (
	// shapeLecture entries emit their fields as strHTML lines after an
	// anchor opened on its own line.
	shapeLecture shape = iota
	// shapeLab entries (experiments) are a single line with the anchor closed
	// inline and the fields in a blue font run.
	shapeLab
)

func (s shape) String() string {
	if s == shapeLab {
		return "lab"
	}
	return "lecture"
}

// lectureLayout says how fields 4 onwards of a lecture entry are read.
// It is chosen once the fourth field has been inspected.
type lectureLayout int

const (
	// layoutLabelled: type label, weeks, position
	layoutLabelled lectureLayout = iota
	// layoutWeekMarked: weeks, position (the type label is omitted and the
	// course is required)
	layoutWeekMarked
)

// Field positions (1-based, counting strHTML lines) of a lecture entry
const (
	lectureNameField    = 1
	lectureTeacherField = 3
	lectureFourthField  = 4
)

func chooseLayout(fourth string) lectureLayout {
	if strings.Contains(fourth, weekMarker) {
		return layoutWeekMarked
	}
	return layoutLabelled
}

// fieldCount is the number of strHTML lines a layout needs
func (l lectureLayout) fieldCount() int {
	if l == layoutWeekMarked {
		return 5
	}
	return 6
}

type fragment struct {
	index int
	text  string
}

func (f fragment) shape() shape {
	firstLine, _, _ := strings.Cut(f.text, "\n")
	if strings.Contains(firstLine, anchorClose) {
		return shapeLab
	}
	return shapeLecture
}

func (f fragment) malformed(field, reason string) *course.MalformedEntryError {
	return &course.MalformedEntryError{Index: f.index, Field: field, Reason: reason}
}

// parse turns the fragment into a validated record
func (f fragment) parse() (*course.Record, error) {
	var (
		rec *course.Record
		err error
	)
	switch f.shape() {
	case shapeLab:
		rec, err = f.parseLab()
	default:
		rec, err = f.parseLecture()
	}
	if err != nil {
		return nil, err
	}

	if err := rec.Validate(); err != nil {
		return nil, &course.MalformedEntryError{
			Index:  f.index,
			Field:  "record",
			Reason: "incomplete course record",
			Err:    err,
		}
	}
	return rec, nil
}

// courseID reads the 8 character id from the anchor's parameter list. Lecture
// anchors carry an extra leading ;-separated field before the id.
func (f fragment) courseID(sh shape) (string, *course.MalformedEntryError) {
	head, _, ok := strings.Cut(f.text, targetMarker)
	if !ok {
		return "", f.malformed("course_id", "no target attribute")
	}
	_, params, ok := strings.Cut(head, paramMarker)
	if !ok {
		return "", f.malformed("course_id", "no p_id parameter")
	}
	if sh == shapeLecture {
		pieces := strings.Split(params, ";")
		if len(pieces) < 2 {
			return "", f.malformed("course_id", "p_id has no id after the term")
		}
		params = pieces[1]
	}
	if len(params) < course.IDLength {
		return "", f.malformed("course_id", "p_id shorter than a course id")
	}
	return params[:course.IDLength], nil
}

// slot reads period and weekday from the DOM id lookup: the characters at
// offsets 0 and 2 of the text following the marker, as in a2_5.
func (f fragment) slot(s string) (weekday, period int, err *course.MalformedEntryError) {
	_, arg, ok := strings.Cut(s, slotMarker)
	if !ok {
		return 0, 0, f.malformed("slot", "no cell id lookup")
	}
	if len(arg) < 3 {
		return 0, 0, f.malformed("slot", "cell id too short")
	}
	period, ok = digitInRange(arg[0], 1, 6)
	if !ok {
		return 0, 0, f.malformed("period", "offset 0 of cell id is not a period 1-6")
	}
	weekday, ok = digitInRange(arg[2], 1, 7)
	if !ok {
		return 0, 0, f.malformed("weekday", "offset 2 of cell id is not a weekday 1-7")
	}
	return weekday, period, nil
}

func digitInRange(b byte, lo, hi int) (int, bool) {
	if b < '0' || b > '9' {
		return 0, false
	}
	n := int(b - '0')
	return n, n >= lo && n <= hi
}

func (f fragment) parseLecture() (*course.Record, error) {
	id, merr := f.courseID(shapeLecture)
	if merr != nil {
		return nil, merr
	}
	credit, err := course.CreditFromID(id)
	if err != nil {
		return nil, &course.MalformedEntryError{Index: f.index, Field: "credit", Reason: "bad course id", Err: err}
	}

	var lines []string
	for _, line := range strings.Split(f.text, "\n") {
		if strings.Contains(line, fieldLineMarker) {
			lines = append(lines, line)
		}
	}
	if len(lines) < lectureFourthField {
		return nil, f.malformed("fields", "fewer than four strHTML fields")
	}

	rec := &course.Record{ID: id, Credit: credit}

	name, ok := between(lines[lectureNameField-1], nameOpen, nameClose)
	if !ok {
		return nil, f.malformed("name", "no bold name")
	}
	rec.Name = strings.TrimSpace(name)

	value := func(n int, field string) (string, error) {
		if n > len(lines) {
			return "", f.malformed(field, "field missing")
		}
		v, ok := between(lines[n-1], valueOpen, valueClose)
		if !ok {
			return "", f.malformed(field, "no labelled value")
		}
		return strings.TrimSpace(v), nil
	}

	if rec.Teacher, err = value(lectureTeacherField, "teacher"); err != nil {
		return nil, err
	}
	fourth, err := value(lectureFourthField, "type")
	if err != nil {
		return nil, err
	}

	layout := chooseLayout(fourth)
	if len(lines) < layout.fieldCount() {
		return nil, f.malformed("fields", "not enough strHTML fields for layout")
	}
	switch layout {
	case layoutWeekMarked:
		rec.Type = course.TypeRequired
		rec.TypeLabel = course.LabelRequired
		rec.Weeks = fourth
		if rec.Position, err = value(5, "position"); err != nil {
			return nil, err
		}
	case layoutLabelled:
		rec.TypeLabel = fourth
		rec.Type = course.TypeFromLabel(fourth)
		if rec.Weeks, err = value(5, "weeks"); err != nil {
			return nil, err
		}
		if rec.Position, err = value(6, "position"); err != nil {
			return nil, err
		}
	}

	weekday, period, merr := f.slot(f.text)
	if merr != nil {
		return nil, merr
	}
	rec.Weekday, rec.Period = weekday, period
	return rec, nil
}

// Lab entry fields after the blue name run, separated by full-width semicolons
const (
	labPositionField = iota
	labWeeksField
	labSlotField
	labFieldCount
)

func (f fragment) parseLab() (*course.Record, error) {
	id, merr := f.courseID(shapeLab)
	if merr != nil {
		return nil, merr
	}
	credit, err := course.CreditFromID(id)
	if err != nil {
		return nil, &course.MalformedEntryError{Index: f.index, Field: "credit", Reason: "bad course id", Err: err}
	}

	_, named, ok := strings.Cut(f.text, labNameOpen)
	if !ok {
		return nil, f.malformed("name", "no blue name run")
	}
	name, rest, ok := strings.Cut(named, labNameClose)
	if !ok {
		return nil, f.malformed("name", "blue name run not closed")
	}

	items := strings.Split(rest, labSeparator)
	if len(items) < labFieldCount {
		return nil, f.malformed("fields", "fewer than three lab fields")
	}

	posParts := strings.Split(items[labPositionField], labPosOpen)
	if len(posParts) < 2 {
		return nil, f.malformed("position", "no opening parenthesis")
	}

	weekday, period, merr := f.slot(items[labSlotField])
	if merr != nil {
		return nil, merr
	}

	note, ok := between(items[labSlotField], labNoteOpen, labNoteClose)
	if !ok {
		return nil, f.malformed("comment", "no comment after full-width colon")
	}

	return &course.Record{
		ID:        id,
		Credit:    credit,
		Name:      strings.TrimSpace(name),
		Comment:   strings.TrimSpace(note),
		Type:      course.TypeExperiment,
		TypeLabel: course.LabelExperiment,
		Weeks:     strings.TrimSpace(items[labWeeksField]),
		Position:  strings.TrimSpace(posParts[1]),
		Weekday:   weekday,
		Period:    period,
	}, nil
}
