// Package extract turns fetched HTML into plain text suitable for
// chunking.
package extract

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var whitespace = regexp.MustCompile(`\s+`)

// Page is the readable content pulled out of an HTML document.
type Page struct {
	Title string
	Text  string
}

// Web strips boilerplate elements from an HTML document and returns
// its title and collapsed body text. When the document has no title,
// fallback (typically the source URL) is used instead.
func Web(r io.Reader, fallback string) (Page, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return Page{}, fmt.Errorf("parsing HTML: %w", err)
	}

	doc.Find("script, style, nav, header, footer").Remove()

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title = fallback
	}

	text := strings.TrimSpace(whitespace.ReplaceAllString(doc.Find("body").Text(), " "))

	return Page{Title: title, Text: text}, nil
}
