// scraper/details_table.go
package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"

	"github.com/gewnthar/adcvd/utils"
)

// DetailValue finds the first header cell of tableHTML whose normalised text
// contains label and returns the text of the first td that follows it in the
// same row. ok is false when no such pair exists.
func DetailValue(tableHTML, label string) (value string, ok bool, err error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(tableHTML))
	if err != nil {
		return "", false, eris.Wrap(err, "failed to parse details table HTML")
	}

	doc.Find("th").EachWithBreak(func(_ int, th *goquery.Selection) bool {
		if !strings.Contains(utils.CollapseWhitespace(th.Text()), label) {
			return true
		}
		td := th.NextAllFiltered("td").First()
		if td.Length() == 0 {
			return true
		}
		value = cellText(td)
		ok = true
		return false
	})
	return value, ok, nil
}

// cellText renders a cell roughly the way a browser reports its visible text:
// <br> becomes a line break and surrounding whitespace is trimmed.
func cellText(td *goquery.Selection) string {
	td.Find("br").ReplaceWithHtml("\n")
	lines := strings.Split(td.Text(), "\n")
	out := lines[:0]
	for _, line := range lines {
		if line = utils.CollapseWhitespace(line); line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
