package chunker

import (
	"errors"
	"fmt"
	"reviewdigest/internal/tokenizer"
	"strings"
)

var ErrNonPositiveBudget = errors.New("token budget must be positive")

// Budget is the number of tokens a single chunk may hold once the engine's
// special tokens and a rounding margin are taken out of its input window.
func Budget(maxInputLength int, reservedOffset int, safetyMargin int) (int, error) {
	budget := maxInputLength - reservedOffset - safetyMargin
	if budget <= 0 {
		return 0, fmt.Errorf(
			"%w (maxInputLength = %d, reservedOffset = %d, safetyMargin = %d)",
			ErrNonPositiveBudget,
			maxInputLength,
			reservedOffset,
			safetyMargin,
		)
	}

	return budget, nil
}

// Split encodes text once and, when it does not fit the tokenizer's input
// window, cuts the ids into consecutive runs of budget tokens. Text that fits
// is returned as is without a decode round trip. Runs that decode to blank
// text are dropped.
func Split(tok tokenizer.Tokenizer, text string, budget int) ([]string, error) {
	if budget <= 0 {
		return nil, fmt.Errorf("%w (budget = %d)", ErrNonPositiveBudget, budget)
	}

	ids := tok.Encode(text)
	if len(ids) <= tok.MaxInputLength() {
		return []string{text}, nil
	}

	chunks := make([]string, 0, (len(ids)+budget-1)/budget)
	for start := 0; start < len(ids); start += budget {
		end := min(start+budget, len(ids))

		decoded := tok.Decode(ids[start:end])
		if strings.TrimSpace(decoded) == "" {
			continue
		}

		chunks = append(chunks, decoded)
	}

	return chunks, nil
}
