package calendar

import (
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/pfrederiksen/thu-timetable/internal/course"
	"github.com/pfrederiksen/thu-timetable/internal/schedule"
)

// ProductID identifies the generator in exported calendars
const ProductID = "-//thu-timetable//thu-timetable//ZH"

// Campus is the time zone class times are given in
var Campus = time.FixedZone("CST", 8*60*60)

// WeeksError reports a course whose weeks text could not be read. The
// course is still exported, recurring over every teaching week.
type WeeksError struct {
	CourseID string
	Weeks    string
	Err      error
}

func (e *WeeksError) Error() string {
	return fmt.Sprintf("course %s: %v", e.CourseID, e.Err)
}

func (e *WeeksError) Unwrap() error { return e.Err }

// run is a stretch of evenly spaced teaching weeks
type run struct {
	first    int
	interval int
	count    int
}

// runs splits sorted weeks into arithmetic runs: "1-16" is one weekly run,
// "单周" one fortnightly run, "1-7,9-16" two weekly runs.
func runs(weeks []int) []run {
	var out []run
	for i := 0; i < len(weeks); {
		r := run{first: weeks[i], interval: 1, count: 1}
		if i+1 < len(weeks) {
			r.interval = weeks[i+1] - weeks[i]
		}
		j := i + 1
		for j < len(weeks) && weeks[j]-weeks[j-1] == r.interval {
			r.count++
			j++
		}
		out = append(out, r)
		i = j
	}
	return out
}

// Monday returns the Monday of the week containing t, at midnight campus time
func Monday(t time.Time) time.Time {
	t = t.In(Campus)
	offset := (int(t.Weekday()) + 6) % 7
	return time.Date(t.Year(), t.Month(), t.Day()-offset, 0, 0, 0, 0, Campus)
}

// classTime is the start or end of a period on a given day. Times come from
// schedule.PeriodTimes ("08:00").
func classTime(day time.Time, clock string) time.Time {
	var hour, minute int
	fmt.Sscanf(clock, "%d:%d", &hour, &minute)
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, Campus)
}

// GenerateICS generates an iCalendar (.ics) file for a timetable. Week 1
// starts on the Monday of firstWeek; stamp is written as DTSTAMP.
func GenerateICS(doc *schedule.Document, firstWeek, stamp time.Time) (string, []error) {
	var errs []error

	cal := ics.NewCalendar()
	cal.SetProductId(ProductID)
	cal.SetCalscale("GREGORIAN")
	cal.SetMethod(ics.MethodPublish)

	if doc != nil {
		if doc.Info.Term != "" {
			cal.SetXWRCalName(doc.Info.Term)
		}

		monday := Monday(firstWeek)
		for _, rec := range doc.Courses {
			if err := rec.Validate(); err != nil {
				errs = append(errs, err)
				continue
			}
			weeks, err := course.ParseWeeks(rec.Weeks)
			if err != nil {
				errs = append(errs, &WeeksError{CourseID: rec.ID, Weeks: rec.Weeks, Err: err})
				weeks, _ = course.ParseWeeks("全周")
			}
			for _, r := range runs(weeks) {
				addEvent(cal, rec, monday, r, stamp)
			}
		}
	}

	return cal.Serialize(), errs
}

func addEvent(cal *ics.Calendar, rec *course.Record, monday time.Time, r run, stamp time.Time) {
	times := schedule.PeriodTimes[rec.Period-1]
	day := monday.AddDate(0, 0, (r.first-1)*7+rec.Weekday-1)

	// stable across exports of the same schedule
	event := cal.AddEvent(fmt.Sprintf("%s-%d-%d-w%d@thu-timetable", rec.ID, rec.Weekday, rec.Period, r.first))

	event.SetDtStampTime(stamp)
	event.SetStartAt(classTime(day, times.Start))
	event.SetEndAt(classTime(day, times.End))

	if r.count > 1 {
		event.AddProperty(ics.ComponentPropertyRrule, fmt.Sprintf("FREQ=WEEKLY;INTERVAL=%d;COUNT=%d", r.interval, r.count))
	}

	event.SetSummary(rec.Name)

	description := fmt.Sprintf("%s\n%s", rec.Lecturer(), rec.Weeks)
	if rec.TypeLabel != "" {
		description = fmt.Sprintf("%s\n%s", description, rec.TypeLabel)
	}
	event.SetDescription(description)
	event.SetLocation(rec.Position)

	event.SetStatus(ics.ObjectStatusConfirmed)
	event.SetTimeTransparency(ics.TransparencyOpaque)
}
