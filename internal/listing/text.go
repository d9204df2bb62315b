package listing

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ParseAmount reads salary strings like "68000", "$68,000.00" or "68000.5".
// Malformed input yields 0.
func ParseAmount(s string) float64 {
	s = strings.NewReplacer("$", "", ",", "", " ", "").Replace(strings.TrimSpace(s))
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

// HTMLToText strips markup and collapses whitespace. Plain text passes
// through with only whitespace normalized.
func HTMLToText(s string) string {
	if !strings.Contains(s, "<") {
		return strings.Join(strings.Fields(s), " ")
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.Join(strings.Fields(s), " ")
	}

	doc.Find("script, style").Remove()

	var b strings.Builder
	writeText(&b, doc.Selection)

	return strings.Join(strings.Fields(b.String()), " ")
}

var blockElements = map[string]bool{
	"br": true, "p": true, "div": true, "li": true, "ul": true, "ol": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "tr": true, "td": true,
}

// writeText writes text nodes in document order, separating block elements
// with spaces.
func writeText(b *strings.Builder, sel *goquery.Selection) {
	sel.Contents().Each(func(_ int, child *goquery.Selection) {
		name := goquery.NodeName(child)
		if name == "#text" {
			b.WriteString(child.Text())
			return
		}

		writeText(b, child)
		if blockElements[name] {
			b.WriteByte(' ')
		}
	})
}
