package collector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reviewdigest/internal/domain"
	"strings"
	"time"
)

// StartCursor requests the first page.
const StartCursor = "*"

var (
	ErrEmptySourceID       = errors.New("source ID is empty")
	ErrNonPositiveMaxItems = errors.New("max items must be positive")
)

// PageFetcher fetches one page of reviews for a source at a cursor.
type PageFetcher interface {
	FetchPage(ctx context.Context, sourceID string, cursor string) (domain.Page, error)
}

type Collector struct {
	fetcher PageFetcher
	pause   time.Duration
	log     *slog.Logger
}

// New builds a collector that waits pause between consecutive page requests.
func New(fetcher PageFetcher, pause time.Duration, log *slog.Logger) *Collector {
	return &Collector{
		fetcher: fetcher,
		pause:   max(pause, 0),
		log:     log,
	}
}

// Collect pages through the source until it runs dry, stops advancing, or at
// least maxItems reviews are accumulated. The last page is appended whole and
// the result is truncated to maxItems afterwards.
func (c *Collector) Collect(
	ctx context.Context,
	sourceID string,
	maxItems int,
) ([]domain.Review, error) {
	sourceID = strings.TrimSpace(sourceID)
	if sourceID == "" {
		return nil, ErrEmptySourceID
	}

	if maxItems <= 0 {
		return nil, fmt.Errorf("%w (maxItems = %d)", ErrNonPositiveMaxItems, maxItems)
	}

	var reviews []domain.Review
	cursor := StartCursor
	pages := 0

	for {
		page, err := c.fetcher.FetchPage(ctx, sourceID, cursor)
		if err != nil {
			return nil, fmt.Errorf("fetch page (sourceID = %s, page = %d): %w", sourceID, pages+1, err)
		}
		pages++

		if len(page.Reviews) == 0 {
			c.log.DebugContext(ctx, "Source is exhausted",
				"sourceID", sourceID,
				"pages", pages,
				"collected", len(reviews))

			break
		}

		reviews = append(reviews, page.Reviews...)

		if len(reviews) >= maxItems {
			break
		}

		if !page.HasCursor || page.Cursor == cursor {
			c.log.DebugContext(ctx, "Cursor is not advancing",
				"sourceID", sourceID,
				"cursor", cursor,
				"hasCursor", page.HasCursor,
				"pages", pages,
				"collected", len(reviews))

			break
		}

		cursor = page.Cursor

		if err = c.wait(ctx); err != nil {
			return nil, fmt.Errorf("wait between pages (sourceID = %s): %w", sourceID, err)
		}
	}

	if len(reviews) > maxItems {
		reviews = reviews[:maxItems]
	}

	c.log.InfoContext(ctx, "Reviews are collected",
		"sourceID", sourceID,
		"pages", pages,
		"collected", len(reviews),
		"maxItems", maxItems)

	return reviews, nil
}

func (c *Collector) wait(ctx context.Context) error {
	if c.pause == 0 {
		return ctx.Err()
	}

	t := time.NewTimer(c.pause)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
