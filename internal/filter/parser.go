package filter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pfrederiksen/thu-timetable/internal/course"
)

var weekdayNames = []string{"周一", "周二", "周三", "周四", "周五", "周六", "周日"}

var weekdayAliases = map[string]int{
	"mon": 1, "monday": 1, "周一": 1,
	"tue": 2, "tuesday": 2, "周二": 2,
	"wed": 3, "wednesday": 3, "周三": 3,
	"thu": 4, "thursday": 4, "周四": 4,
	"fri": 5, "friday": 5, "周五": 5,
	"sat": 6, "saturday": 6, "周六": 6,
	"sun": 7, "sunday": 7, "周日": 7, "周天": 7,
}

// WeekdayName is the Chinese name of a weekday number (1 = 周一)
func WeekdayName(d int) string {
	if d < 1 || d > len(weekdayNames) {
		return strconv.Itoa(d)
	}
	return weekdayNames[d-1]
}

// ParseWeekday parses a weekday given as a number (1-7), an English name or
// abbreviation, or a Chinese name.
func ParseWeekday(input string) (int, error) {
	s := strings.ToLower(strings.TrimSpace(input))
	if s == "" {
		return 0, fmt.Errorf("weekday cannot be empty")
	}

	if d, err := strconv.Atoi(s); err == nil {
		if d < 1 || d > 7 {
			return 0, fmt.Errorf("weekday %d out of range 1-7", d)
		}
		return d, nil
	}

	if d, ok := weekdayAliases[s]; ok {
		return d, nil
	}

	return 0, fmt.Errorf("invalid weekday %q. Use 1-7, 'mon'..'sun' or '周一'..'周日'", input)
}

// ParseType parses a course category given by name ("required") or by the
// label the course system uses ("必修").
func ParseType(input string) (course.Type, error) {
	s := strings.ToLower(strings.TrimSpace(input))

	switch t := course.Type(s); t {
	case course.TypeRequired, course.TypeElective, course.TypeExperiment:
		return t, nil
	}

	if t := course.TypeFromLabel(s); t != "" {
		return t, nil
	}

	return "", fmt.Errorf("invalid course type %q. Use required, elective, experiment or 必修, 任选, 实验", input)
}

// Parse builds a filter from command-line values. Empty values are ignored.
func Parse(names, teachers, types, weekdays []string, week int) (*Filter, error) {
	f := NewFilter()

	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			f.Names = append(f.Names, n)
		}
	}

	for _, t := range teachers {
		if t = strings.TrimSpace(t); t != "" {
			f.Teachers = append(f.Teachers, t)
		}
	}

	for _, t := range types {
		if strings.TrimSpace(t) == "" {
			continue
		}
		parsed, err := ParseType(t)
		if err != nil {
			return nil, err
		}
		f.Types = append(f.Types, parsed)
	}

	for _, d := range weekdays {
		if strings.TrimSpace(d) == "" {
			continue
		}
		parsed, err := ParseWeekday(d)
		if err != nil {
			return nil, err
		}
		f.Weekdays = append(f.Weekdays, parsed)
	}

	if week < 0 || week > course.MaxWeek {
		return nil, fmt.Errorf("week %d out of range 1-%d", week, course.MaxWeek)
	}
	f.Week = week

	return f, nil
}
