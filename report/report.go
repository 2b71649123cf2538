// Package report structures the rendered HTML report returned by the
// PMP gateway's report stage.
package report

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Report wraps a fetched report body. The raw HTML is kept verbatim so it
// can be written out or displayed unchanged; the parsed form supports
// selector-based extraction.
type Report struct {
	doc *goquery.Document
	raw string
}

// Parse loads a report body.
func Parse(body string) (*Report, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("report: could not parse body: %w", err)
	}
	return &Report{doc: doc, raw: body}, nil
}

// HTML returns the report body exactly as fetched.
func (r *Report) HTML() string {
	return r.raw
}

// Title returns the report's document title, if any.
func (r *Report) Title() string {
	return strings.TrimSpace(r.doc.Find("title").First().Text())
}

// Text returns the visible text of the report body.
func (r *Report) Text() string {
	return strings.TrimSpace(r.doc.Find("body").Text())
}

// Select runs a CSS selector over the report for callers that need to pull
// out specific sections, such as the prescription table.
func (r *Report) Select(selector string) *goquery.Selection {
	return r.doc.Find(selector)
}
