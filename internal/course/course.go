package course

import (
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// IDLength is the fixed length of a course identifier. The last character
// is the credit count.
const IDLength = 8

// Type is the semantic category of a course
type Type string

const (
	TypeRequired   Type = "required"
	TypeElective   Type = "elective"
	TypeExperiment Type = "experiment"
)

// Source page labels for the categories
const (
	LabelRequired   = "必修"
	LabelElective   = "任选"
	LabelExperiment = "实验"
)

// TypeFromLabel maps a source page label to its category.
// Unknown labels (e.g. 限选) map to the empty Type.
func TypeFromLabel(label string) Type {
	switch strings.TrimSpace(label) {
	case LabelRequired:
		return TypeRequired
	case LabelElective:
		return TypeElective
	case LabelExperiment:
		return TypeExperiment
	default:
		return ""
	}
}

// Record is a single scheduled course occurrence
type Record struct {
	ID        string `json:"course_id" validate:"len=8"`
	Credit    int    `json:"credit" validate:"gte=0,lte=9"`
	Name      string `json:"name" validate:"required"`
	Teacher   string `json:"teacher,omitempty" validate:"required_without=Comment,excluded_with=Comment"`
	Comment   string `json:"comment,omitempty" validate:"required_without=Teacher,excluded_with=Teacher"`
	Type      Type   `json:"type,omitempty" validate:"omitempty,oneof=required elective experiment"`
	TypeLabel string `json:"type_label,omitempty"`
	Weeks     string `json:"weeks" validate:"required"`
	Position  string `json:"position" validate:"required"`
	Weekday   int    `json:"weekday" validate:"min=1,max=7"`
	Period    int    `json:"period" validate:"min=1,max=6"`
}

// Key identifies a record by course and slot
func (r *Record) Key() string {
	return fmt.Sprintf("%s@%d_%d", r.ID, r.Weekday, r.Period)
}

// Lecturer returns the teacher, or the comment for lab courses
func (r *Record) Lecturer() string {
	if r.Teacher != "" {
		return r.Teacher
	}
	return r.Comment
}

// CreditFromID derives the credit count from the last character of a course id
func CreditFromID(id string) (int, error) {
	if len(id) != IDLength {
		return 0, fmt.Errorf("course id %q: want %d characters, got %d", id, IDLength, len(id))
	}
	last := id[IDLength-1]
	if last < '0' || last > '9' {
		return 0, fmt.Errorf("course id %q: credit character %q is not a digit", id, last)
	}
	return int(last - '0'), nil
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
	})
	return validate
}

// Validate checks that every mandatory field is populated and in range
func (r *Record) Validate() error {
	if r == nil {
		return fmt.Errorf("nil course record")
	}
	if err := getValidator().Struct(r); err != nil {
		return fmt.Errorf("invalid course %q: %w", r.ID, err)
	}
	credit, err := CreditFromID(r.ID)
	if err != nil {
		return err
	}
	if credit != r.Credit {
		return fmt.Errorf("invalid course %q: credit %d does not match id", r.ID, r.Credit)
	}
	return nil
}
