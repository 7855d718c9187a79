package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Clean strips markup from a raw HTML fragment, collapses whitespace and
// trims. Empty input yields "".
func Clean(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return collapse(raw)
	}
	return collapse(doc.Text())
}

func cleanSelection(s *goquery.Selection) string {
	return collapse(s.Text())
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
