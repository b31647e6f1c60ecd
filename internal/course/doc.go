// Package course defines the course record scraped from the schedule page.
//
// A Record is only ever handed to the grid builder once Validate succeeds, so
// downstream code can rely on every mandatory field being present. The error
// kinds shared by the scraper and the grid builder live here as well.
package course
