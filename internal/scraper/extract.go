package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pfrederiksen/thu-timetable/internal/course"
)

// Markers delimiting the course data inside the page's inline script
const (
	InitFuncMarker  = "function setInitValue()"
	LoadEventMarker = `Event.observe(window, "load", setInitValue, false);`
)

// Tokens of the course fragment grammar
const (
	anchorOpen  = "<a"
	anchorClose = "/a>"

	targetMarker = "target="
	paramMarker  = "&p_id="
	slotMarker   = "getElementById('a"

	fieldLineMarker = "strHTML"
	nameOpen        = `"<b>`
	nameClose       = `</b>"`
	valueOpen       = `"；`
	valueClose      = `"`
	weekMarker      = "周"

	labNameOpen  = "<b><font color='blue'>"
	labNameClose = "</font></b>"
	labSeparator = "；"
	labPosOpen   = "("
	labNoteOpen  = "："
	labNoteClose = ")</font>"
)

// scriptBody returns the text between the init function declaration and the
// load-event registration of the script that carries the course data.
func scriptBody(doc *goquery.Document) (string, error) {
	var script string
	found := false
	doc.Find("script").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		text := sel.Text()
		if strings.Contains(text, InitFuncMarker) {
			script = text
			found = true
			return false
		}
		return true
	})
	if !found {
		return "", &course.ExtractionError{
			Marker: InitFuncMarker,
			Reason: "no script declares the initialization function",
		}
	}

	_, after, _ := strings.Cut(script, InitFuncMarker)
	body, _, ok := strings.Cut(after, LoadEventMarker)
	if !ok {
		return "", &course.ExtractionError{
			Marker: LoadEventMarker,
			Reason: "load-event registration not found after the initialization function",
		}
	}
	return body, nil
}

// splitFragments cuts the script body at every anchor and keeps the pieces
// that close their anchor. The rest is menu and layout noise.
func splitFragments(body string) []fragment {
	parts := strings.Split(body, anchorOpen)
	fragments := make([]fragment, 0, len(parts))
	for i, part := range parts {
		if !strings.Contains(part, anchorClose) {
			continue
		}
		fragments = append(fragments, fragment{index: i, text: part})
	}
	return fragments
}

// between returns the text after the first start marker up to the next end
// marker.
func between(s, start, end string) (string, bool) {
	_, after, ok := strings.Cut(s, start)
	if !ok {
		return "", false
	}
	inner, _, ok := strings.Cut(after, end)
	return inner, ok
}
