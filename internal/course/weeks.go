package course

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// TermWeeks is the number of teaching weeks in a regular term. MaxWeek
// allows for the exam weeks that some courses list.
const (
	TermWeeks = 16
	MaxWeek   = 20
)

// Shorthands the course system uses instead of explicit week lists
var weekShorthands = map[string]func(week int) bool{
	"全":  func(int) bool { return true },
	"前八": func(w int) bool { return w <= 8 },
	"后八": func(w int) bool { return w > 8 },
	"单":  func(w int) bool { return w%2 == 1 },
	"双":  func(w int) bool { return w%2 == 0 },
}

// ParseWeeks expands a weeks text into the sorted teaching weeks it covers.
//
// Supported forms:
//   - "全周", "前八周", "后八周", "单周", "双周"
//   - "1-16周", "第1-8周", "第3周"
//   - lists of the above numeric forms: "1-7,9-16周", "1,3,5周"
func ParseWeeks(text string) ([]int, error) {
	s := strings.TrimSpace(text)
	s = strings.TrimPrefix(s, "第")
	s = strings.TrimSuffix(s, "周")
	if s == "" {
		return nil, fmt.Errorf("weeks %q: empty", text)
	}

	if match, ok := weekShorthands[s]; ok {
		weeks := make([]int, 0, TermWeeks)
		for w := 1; w <= TermWeeks; w++ {
			if match(w) {
				weeks = append(weeks, w)
			}
		}
		return weeks, nil
	}

	seen := make(map[int]bool)
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == '，' || r == '、'
	})
	for _, part := range parts {
		part = strings.TrimSuffix(strings.TrimPrefix(strings.TrimSpace(part), "第"), "周")
		lo, hi, found := strings.Cut(part, "-")
		from, err := parseWeek(lo)
		if err != nil {
			return nil, fmt.Errorf("weeks %q: %w", text, err)
		}
		to := from
		if found {
			if to, err = parseWeek(hi); err != nil {
				return nil, fmt.Errorf("weeks %q: %w", text, err)
			}
		}
		if from > to {
			return nil, fmt.Errorf("weeks %q: range %d-%d runs backwards", text, from, to)
		}
		for w := from; w <= to; w++ {
			seen[w] = true
		}
	}

	weeks := make([]int, 0, len(seen))
	for w := range seen {
		weeks = append(weeks, w)
	}
	sort.Ints(weeks)
	return weeks, nil
}

func parseWeek(s string) (int, error) {
	w, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%q is not a week number", s)
	}
	if w < 1 || w > MaxWeek {
		return 0, fmt.Errorf("week %d out of range 1-%d", w, MaxWeek)
	}
	return w, nil
}
