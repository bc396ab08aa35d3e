package summarizer

import (
	"context"
	"errors"
	"strings"
)

// LeadEngine is an extractive fallback used when no model is configured: it
// keeps the first maxLen words and marks the cut with an ellipsis.
type LeadEngine struct{}

func (LeadEngine) Run(_ context.Context, text string, _ int, maxLen int) (string, error) {
	if maxLen <= 0 {
		return "", errors.New("max length must be positive")
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return "", errors.New("input is empty")
	}

	if len(words) <= maxLen {
		return strings.Join(words, " "), nil
	}

	lead := strings.Join(words[:maxLen], " ")
	lead = strings.TrimRight(lead, ".,;:!? ")

	return lead + "...", nil
}
