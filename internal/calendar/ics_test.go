package calendar

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/pfrederiksen/thu-timetable/internal/course"
	"github.com/pfrederiksen/thu-timetable/internal/schedule"
)

var (
	firstWeek = time.Date(2025, 2, 19, 0, 0, 0, 0, Campus) // a Wednesday
	stamp     = time.Date(2025, 2, 10, 12, 0, 0, 0, time.UTC)
)

func testDocument(t *testing.T, records ...*course.Record) *schedule.Document {
	t.Helper()
	doc, errs := schedule.NewDocument(schedule.Info{Term: "2024-2025-2"}, records)
	if len(errs) > 0 {
		t.Fatalf("NewDocument() errors = %v", errs)
	}
	return doc
}

func TestGenerateICS(t *testing.T) {
	doc := testDocument(t,
		&course.Record{
			ID: "30240233", Credit: 3, Name: "操作系统", Teacher: "陈渝",
			Type: course.TypeRequired, TypeLabel: "必修", Weeks: "全周", Position: "六教6A017",
			Weekday: 1, Period: 2,
		},
		&course.Record{
			ID: "10430342", Credit: 2, Name: "物理实验B(2)", Comment: "第3组",
			Type: course.TypeExperiment, Weeks: "第9-16周", Position: "九号楼B101",
			Weekday: 3, Period: 6,
		},
	)

	ics, errs := GenerateICS(doc, firstWeek, stamp)
	if len(errs) > 0 {
		t.Fatalf("GenerateICS() errors = %v", errs)
	}

	requiredFields := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:" + ProductID,
		"X-WR-CALNAME:2024-2025-2",
		"UID:30240233-1-2-w1@thu-timetable",
		"DTSTAMP:20250210T120000Z",
		// Monday 17 Feb, 09:50-12:15 campus time
		"DTSTART:20250217T015000Z",
		"DTEND:20250217T041500Z",
		"RRULE:FREQ=WEEKLY;INTERVAL=1;COUNT=16",
		"SUMMARY:操作系统",
		"DESCRIPTION:陈渝\\n全周\\n必修",
		"LOCATION:六教6A017",
		// week 9 Wednesday is 16 April, 19:20 campus time
		"UID:10430342-3-6-w9@thu-timetable",
		"DTSTART:20250416T112000Z",
		"RRULE:FREQ=WEEKLY;INTERVAL=1;COUNT=8",
		"DESCRIPTION:第3组\\n第9-16周",
		"END:VCALENDAR",
	}

	for _, field := range requiredFields {
		if !strings.Contains(ics, field+"\r\n") {
			t.Errorf("ICS missing line: %s", field)
		}
	}

	if n := strings.Count(ics, "BEGIN:VEVENT"); n != 2 {
		t.Errorf("got %d events, want 2", n)
	}
}

func TestGenerateICS_ParsesBack(t *testing.T) {
	doc := testDocument(t, &course.Record{
		ID: "00691042", Credit: 2, Name: "电影赏析", Teacher: "张艺",
		Weeks: "双周", Position: "三教2102", Weekday: 2, Period: 1,
	})

	out, _ := GenerateICS(doc, firstWeek, stamp)
	cal, err := ics.ParseCalendar(strings.NewReader(out))
	if err != nil {
		t.Fatalf("ParseCalendar() error = %v", err)
	}

	events := cal.Events()
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	evt := events[0]

	if got := evt.Id(); got != "00691042-2-1-w2@thu-timetable" {
		t.Errorf("UID = %q", got)
	}
	if prop := evt.GetProperty(ics.ComponentPropertyRrule); prop == nil || prop.Value != "FREQ=WEEKLY;INTERVAL=2;COUNT=8" {
		t.Errorf("RRULE = %+v", prop)
	}

	// Tuesday of week 2 is 25 February, 08:00 campus time
	start, err := evt.GetStartAt()
	if err != nil {
		t.Fatalf("GetStartAt() error = %v", err)
	}
	if want := time.Date(2025, 2, 25, 8, 0, 0, 0, Campus); !start.Equal(want) {
		t.Errorf("start = %v, want %v", start, want)
	}
}

func TestGenerateICS_WeekRuns(t *testing.T) {
	tests := []struct {
		weeks  string
		events int
		rrules []string
	}{
		{"单周", 1, []string{"RRULE:FREQ=WEEKLY;INTERVAL=2;COUNT=8"}},
		{"1-7,9-16周", 2, []string{"RRULE:FREQ=WEEKLY;INTERVAL=1;COUNT=7", "RRULE:FREQ=WEEKLY;INTERVAL=1;COUNT=8"}},
		{"第3周", 1, nil},
	}

	for _, tt := range tests {
		t.Run(tt.weeks, func(t *testing.T) {
			doc := testDocument(t, &course.Record{
				ID: "00691042", Credit: 2, Name: "电影赏析", Teacher: "张艺",
				Weeks: tt.weeks, Position: "三教2102", Weekday: 2, Period: 1,
			})

			ics, errs := GenerateICS(doc, firstWeek, stamp)
			if len(errs) > 0 {
				t.Fatalf("GenerateICS() errors = %v", errs)
			}
			if n := strings.Count(ics, "BEGIN:VEVENT"); n != tt.events {
				t.Errorf("got %d events, want %d", n, tt.events)
			}
			if n := strings.Count(ics, "RRULE:"); n != len(tt.rrules) {
				t.Errorf("got %d RRULE lines, want %d", n, len(tt.rrules))
			}
			for _, rrule := range tt.rrules {
				if !strings.Contains(ics, rrule) {
					t.Errorf("ICS missing %s", rrule)
				}
			}
		})
	}
}

func TestGenerateICS_UnreadableWeeks(t *testing.T) {
	doc := testDocument(t, &course.Record{
		ID: "40250122", Credit: 2, Name: "形势与政策", Teacher: "王五",
		Weeks: "隔周", Position: "四教4101", Weekday: 5, Period: 4,
	})

	ics, errs := GenerateICS(doc, firstWeek, stamp)

	if len(errs) != 1 {
		t.Fatalf("got %d errors, want 1", len(errs))
	}
	var weeksErr *WeeksError
	if !errors.As(errs[0], &weeksErr) || weeksErr.CourseID != "40250122" {
		t.Errorf("error = %v, want *WeeksError for 40250122", errs[0])
	}

	// Still exported over the whole term
	if !strings.Contains(ics, "RRULE:FREQ=WEEKLY;INTERVAL=1;COUNT=16") {
		t.Error("course with unreadable weeks should recur over every teaching week")
	}
}

func TestGenerateICS_SpecialCharacters(t *testing.T) {
	doc := testDocument(t, &course.Record{
		ID: "40250122", Credit: 2, Name: "Seminar; Part 1, Intro\\Basics", Teacher: "王五",
		Weeks: "全周", Position: "四教4101", Weekday: 5, Period: 4,
	})

	ics, _ := GenerateICS(doc, firstWeek, stamp)

	if !strings.Contains(ics, "SUMMARY:"+`Seminar\; Part 1\, Intro\\Basics`+"\r\n") {
		t.Errorf("special characters not escaped:\n%s", ics)
	}
}

func TestGenerateICS_Empty(t *testing.T) {
	for _, doc := range []*schedule.Document{nil, {}} {
		ics, errs := GenerateICS(doc, firstWeek, stamp)
		if len(errs) > 0 {
			t.Errorf("GenerateICS() errors = %v", errs)
		}
		if !strings.HasPrefix(ics, "BEGIN:VCALENDAR\r\n") || !strings.HasSuffix(ics, "END:VCALENDAR\r\n") {
			t.Errorf("invalid calendar: %q", ics)
		}
		if strings.Contains(ics, "BEGIN:VEVENT") {
			t.Error("empty timetable should have no events")
		}
	}
}

func TestRuns(t *testing.T) {
	tests := []struct {
		name  string
		weeks []int
		want  []run
	}{
		{"single", []int{4}, []run{{first: 4, interval: 1, count: 1}}},
		{"weekly", []int{1, 2, 3}, []run{{first: 1, interval: 1, count: 3}}},
		{"fortnightly", []int{2, 4, 6}, []run{{first: 2, interval: 2, count: 3}}},
		{"gap", []int{1, 2, 5, 6}, []run{{first: 1, interval: 1, count: 2}, {first: 5, interval: 1, count: 2}}},
		{"empty", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := runs(tt.weeks); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("runs(%v) = %+v, want %+v", tt.weeks, got, tt.want)
			}
		})
	}
}

func TestMonday(t *testing.T) {
	tests := []struct {
		in   time.Time
		want time.Time
	}{
		{time.Date(2025, 2, 17, 9, 0, 0, 0, Campus), time.Date(2025, 2, 17, 0, 0, 0, 0, Campus)},
		{time.Date(2025, 2, 23, 23, 0, 0, 0, Campus), time.Date(2025, 2, 17, 0, 0, 0, 0, Campus)},
		// 20:00 UTC on Sunday is already Monday on campus
		{time.Date(2025, 2, 16, 20, 0, 0, 0, time.UTC), time.Date(2025, 2, 17, 0, 0, 0, 0, Campus)},
	}

	for _, tt := range tests {
		if got := Monday(tt.in); !got.Equal(tt.want) {
			t.Errorf("Monday(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
