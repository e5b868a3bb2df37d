// analyzer/title.go
package analyzer

import (
	"regexp"
	"strings"

	"github.com/gewnthar/adcvd/utils"
)

var (
	leadingTheRe = regexp.MustCompile(`(?i)^the[\s\p{Z}]+`)
	// Greedy prefix: captures what follows the last whole-word for/of/on.
	productKeywordRe = regexp.MustCompile(`(?i)(.*)\b(for|of|on)\b[\s\p{Z}]+(.*)$`)
)

const fromSeparator = " from "

// ExtractCountry returns the country named in title, minus a leading "the".
// Places the tagger labels GPE are taken first, but only when the country
// gazetteer knows them; otherwise the words after the last " from " and then
// the whole title are scanned for a country name. ok is false when none is found.
func ExtractCountry(tagger EntityTagger, title string) (country string, ok bool) {
	text := utils.CollapseWhitespace(title)

	// a failing tagger still leaves the gazetteer scan
	ents, _ := tagger.Entities(title)
	for _, ent := range ents {
		if ent.Label != LabelGPE {
			continue
		}
		code, known := LookupCountry(ent.Text)
		if !known {
			continue
		}
		// prefer the long form the title spells out ("Republic of Korea" over "Korea")
		if span, found := findCountry(text); found && strings.Contains(span, stripThe(ent.Text)) {
			if spanCode, _ := LookupCountry(span); spanCode == code {
				return stripThe(span), true
			}
		}
		return stripThe(ent.Text), true
	}

	if idx := lastIndexFold(text, fromSeparator); idx >= 0 {
		if span, found := findCountry(text[idx+len(fromSeparator):]); found {
			return stripThe(span), true
		}
	}
	if span, found := findCountry(text); found {
		return stripThe(span), true
	}
	return "", false
}

func stripThe(s string) string {
	return leadingTheRe.ReplaceAllString(strings.TrimSpace(s), "")
}

// ExtractProduct pulls the product phrase out of titles phrased as
// "<action> <product> for/of/on <entity> from <country>": it takes the text
// before the last " from " and returns what follows the last for/of/on in it.
func ExtractProduct(title string) (product string, ok bool) {
	text := utils.CollapseWhitespace(title)

	idx := lastIndexFold(text, fromSeparator)
	if idx < 0 {
		return "", false
	}

	m := productKeywordRe.FindStringSubmatch(text[:idx])
	if m == nil {
		return "", false
	}
	return strings.Trim(m[3], " ,."), true
}

// lastIndexFold is strings.LastIndex with ASCII case folding.
func lastIndexFold(s, substr string) int {
	for i := len(s) - len(substr); i >= 0; i-- {
		if strings.EqualFold(s[i:i+len(substr)], substr) {
			return i
		}
	}
	return -1
}
