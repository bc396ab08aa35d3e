package textclean

import (
	"regexp"
	"strings"
)

var nonASCIIRe = regexp.MustCompile(`[^\x00-\x7F]+`)

// Normalize replaces every run of non-ASCII characters with a space and
// collapses whitespace. The summarizer only handles English input.
func Normalize(text string) string {
	text = nonASCIIRe.ReplaceAllString(text, " ")

	return strings.Join(strings.Fields(text), " ")
}
