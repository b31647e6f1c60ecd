// Package scraper provides HTTP fetching and course extraction for the
// Tsinghua course schedule page.
//
// The schedule page does not list courses as markup. Instead an inline script
// (setInitValue) assembles each cell with string concatenation, so the
// extractor works on that script text: it isolates the function body, cuts
// it into anchor-delimited fragments and reads each fragment with one of two
// small grammars (lecture entries written as strHTML field lines, and
// single-line lab entries). Any layout drift in the page surfaces as an
// ExtractionError from scriptBody; problems confined to one entry surface as
// a MalformedEntryError for that entry.
package scraper
