// utils/message_ids.go
package utils

import (
	"regexp"
	"strings"
)

var (
	whitespaceRe = regexp.MustCompile(`[\s\p{Z}]+`)
	// Spreadsheets hand back integer IDs typed as floats, e.g. "1234567.0".
	floatIntegerRe = regexp.MustCompile(`^(\d+)\.0+$`)
)

// NormalizeMessageID trims a raw message identifier and drops a trailing ".0"
// that spreadsheet tools add to numeric cells. Other values are returned as is.
func NormalizeMessageID(raw string) string {
	id := strings.TrimSpace(raw)
	if m := floatIntegerRe.FindStringSubmatch(id); m != nil {
		return m[1]
	}
	return id
}

// CollapseWhitespace trims s and replaces every whitespace run, Unicode
// spaces included, with one ASCII space.
func CollapseWhitespace(s string) string {
	return whitespaceRe.ReplaceAllString(strings.TrimSpace(s), " ")
}
