package scraper

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/pfrederiksen/thu-timetable/internal/course"
	"github.com/pfrederiksen/thu-timetable/internal/logger"
	"github.com/pfrederiksen/thu-timetable/internal/schedule"
)

// Labels of the header spans holding the student's details
const (
	studentIDLabel = "学号:"
	nameLabel      = "姓名:"
	termInputName  = "p_xnxq"
)

// Page is everything extracted from one schedule page
type Page struct {
	Info    schedule.Info
	Courses []*course.Record
	// Skipped holds the entries dropped in lenient mode
	Skipped []*course.MalformedEntryError
}

// ParsePage extracts the header info and course records from a UTF-8 page
func (s *Scraper) ParsePage(r io.Reader) (*Page, error) {
	start := time.Now()
	defer func() { logger.RecordTiming("parse.page", time.Since(start)) }()

	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	body, err := scriptBody(doc)
	if err != nil {
		return nil, err
	}

	page := &Page{
		Info:    parseInfo(doc),
		Courses: make([]*course.Record, 0),
	}

	for _, frag := range splitFragments(body) {
		rec, err := frag.parse()
		if err != nil {
			var merr *course.MalformedEntryError
			if !errors.As(err, &merr) {
				return nil, err
			}
			if s.strict {
				return nil, fmt.Errorf("strict mode: %w", merr)
			}
			logger.Warn("Skipping malformed course entry", logger.Fields{
				"index": merr.Index,
				"field": merr.Field,
				"shape": frag.shape().String(),
			})
			logger.IncrCounter("parse.skipped")
			page.Skipped = append(page.Skipped, merr)
			continue
		}

		logger.Debug("Identified course", logger.Fields{
			"course_id": rec.ID,
			"name":      rec.Name,
			"slot":      fmt.Sprintf("%d_%d", rec.Weekday, rec.Period),
		})
		logger.IncrCounter("parse.courses")
		page.Courses = append(page.Courses, rec)
	}

	return page, nil
}

// parseInfo reads the term input and the student id/name spans. Absent
// values stay empty.
func parseInfo(doc *goquery.Document) schedule.Info {
	var info schedule.Info

	doc.Find("input").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		name, _ := sel.Attr("name")
		if strings.Contains(name, termInputName) {
			info.Term, _ = sel.Attr("value")
			return false
		}
		return true
	})

	doc.Find("span").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		text := sel.Text()
		if _, v, ok := strings.Cut(text, studentIDLabel); ok && info.StudentID == "" {
			info.StudentID = strings.TrimSpace(v)
		} else if _, v, ok := strings.Cut(text, nameLabel); ok && info.Name == "" {
			info.Name = strings.TrimSpace(v)
		}
		return info.StudentID == "" || info.Name == ""
	})

	return info
}
