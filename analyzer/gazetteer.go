// analyzer/gazetteer.go
package analyzer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/biter777/countries"
)

// maxPlaceWords bounds the spans tried when scanning a title for a country,
// long enough for "People's Republic of China".
const maxPlaceWords = 5

// officialPrefixes are long-form lead-ins that come before a short country name
// the gazetteer knows ("Socialist Republic of Vietnam").
var officialPrefixes = [][]string{
	{"people's", "republic", "of"},
	{"socialist", "republic", "of"},
	{"islamic", "republic", "of"},
	{"federal", "republic", "of"},
	{"republic", "of"},
	{"kingdom", "of"},
	{"sultanate", "of"},
	{"state", "of"},
}

// LookupCountry reports whether name, minus a leading "the", names a country.
// Names of three letters or fewer are rejected so ISO codes such as "IN" or
// "AND" inside ordinary text are not taken for countries.
func LookupCountry(name string) (countries.CountryCode, bool) {
	name = strings.TrimSpace(leadingTheRe.ReplaceAllString(name, ""))
	if letterCount(name) <= 3 {
		return countries.Unknown, false
	}
	if code := countries.ByName(name); code != countries.Unknown {
		return code, true
	}

	words := strings.Fields(strings.ReplaceAll(name, "’", "'"))
	for _, prefix := range officialPrefixes {
		if len(words) <= len(prefix) || !hasWordPrefix(words, prefix) {
			continue
		}
		rest := strings.Join(words[len(prefix):], " ")
		if letterCount(rest) <= 3 {
			continue
		}
		if code := countries.ByName(rest); code != countries.Unknown {
			return code, true
		}
	}
	return countries.Unknown, false
}

// findCountry returns the leftmost country named in text, preferring the
// longest span at each capitalised word.
func findCountry(text string) (string, bool) {
	words := strings.Fields(text)
	for i, w := range words {
		if !startsUpper(w) {
			continue
		}
		for n := min(maxPlaceWords, len(words)-i); n >= 1; n-- {
			span := strings.Trim(strings.Join(words[i:i+n], " "), ",.;:\"")
			if strings.ContainsAny(span, "()") {
				continue
			}
			if _, ok := LookupCountry(span); ok {
				return span, true
			}
		}
	}
	return "", false
}

func hasWordPrefix(words, prefix []string) bool {
	for i, p := range prefix {
		if !strings.EqualFold(words[i], p) {
			return false
		}
	}
	return true
}

func letterCount(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			n++
		}
	}
	return n
}

func startsUpper(w string) bool {
	r, _ := utf8.DecodeRuneInString(w)
	return unicode.IsUpper(r)
}
