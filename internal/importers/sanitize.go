package importers

import (
	"regexp"
	"strings"
)

// Tags may span lines; bare newlines go too.
var tagsAndNewlines = regexp.MustCompile(`(?s)<.*?>|\n`)

// Sanitize drops C0 control characters other than tab, LF and CR, then
// strips tag-like substrings and newlines. Spreadsheet writers reject the
// control characters outright. Sanitize(Sanitize(s)) == Sanitize(s).
func Sanitize(s string) string {
	s = strings.Map(func(r rune) rune {
		if r < 0x20 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s)
	return tagsAndNewlines.ReplaceAllString(s, "")
}
