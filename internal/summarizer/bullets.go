package summarizer

import (
	"regexp"
	"strings"
)

const bulletMarker = "- "

// A period followed by whitespace ends a sentence. This is a heuristic, not
// sentence segmentation: abbreviations split too.
var sentenceBoundaryRe = regexp.MustCompile(`\.\s+`)

// Bulletize puts every sentence of text on its own "- " line.
func Bulletize(text string) string {
	var lines []string
	for _, sentence := range sentenceBoundaryRe.Split(text, -1) {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}
		lines = append(lines, bulletMarker+sentence)
	}

	return strings.Join(lines, "\n")
}
