package analyzer

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// htmlFacts holds structural counts extracted from HTML-bearing content.
type htmlFacts struct {
	headings      int
	internalLinks int
	externalLinks int
	listTags      int
}

// inspectHTML parses content as an HTML fragment and counts headings,
// links, and list tags. Plain text yields zero counts.
func inspectHTML(content string) htmlFacts {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return htmlFacts{}
	}

	var facts htmlFacts
	facts.headings = doc.Find("h1, h2, h3, h4, h5, h6").Length()
	facts.listTags = doc.Find("ul, ol").Length()

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		switch {
		case strings.HasPrefix(href, "/"):
			facts.internalLinks++
		case strings.HasPrefix(href, "http://"), strings.HasPrefix(href, "https://"):
			facts.externalLinks++
		}
	})

	return facts
}
