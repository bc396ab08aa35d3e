package summarizer

import (
	"context"
)

// Engine produces a summary of text whose length lies between minLen and
// maxLen. Implementations must be deterministic: identical input yields
// identical output.
type Engine interface {
	Run(ctx context.Context, text string, minLen int, maxLen int) (string, error)
}
