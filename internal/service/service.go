package service

import (
	"context"
	"fmt"
	"log/slog"
	"reviewdigest/internal/domain"
	"reviewdigest/internal/summarizer"
	"strings"
)

const (
	NotFoundMessage  = "Game not found."
	NoReviewsMessage = "No reviews found for this game."
)

type Resolver interface {
	Resolve(ctx context.Context, name string) (domain.App, bool, error)
}

type Collector interface {
	Collect(ctx context.Context, sourceID string, maxItems int) ([]domain.Review, error)
}

type Summarizer interface {
	Summarize(ctx context.Context, reviews []domain.Review, opts summarizer.Options) (string, error)
}

// Result is a summary together with what it was built from. Found is false
// when the name did not resolve; App is then empty.
type Result struct {
	App         domain.App
	Found       bool
	ReviewCount int
	Summary     string
}

type Service struct {
	resolver   Resolver
	collector  Collector
	summarizer Summarizer
	minLen     int
	maxLen     int
	log        *slog.Logger
}

func New(
	resolver Resolver,
	collector Collector,
	summarizer Summarizer,
	minLen int,
	maxLen int,
	log *slog.Logger,
) *Service {
	return &Service{
		resolver:   resolver,
		collector:  collector,
		summarizer: summarizer,
		minLen:     minLen,
		maxLen:     maxLen,
		log:        log,
	}
}

// GetSummary returns NotFoundMessage, NoReviewsMessage,
// summarizer.NoContentMessage or a summary. Errors are returned for failed
// remote calls only.
func (s *Service) GetSummary(
	ctx context.Context,
	name string,
	maxItems int,
	bulleted bool,
) (string, error) {
	result, err := s.Digest(ctx, name, maxItems, bulleted)
	if err != nil {
		return "", err
	}

	return result.Summary, nil
}

func (s *Service) Digest(
	ctx context.Context,
	name string,
	maxItems int,
	bulleted bool,
) (Result, error) {
	name = strings.TrimSpace(name)

	app, found, err := s.resolver.Resolve(ctx, name)
	if err != nil {
		return Result{}, fmt.Errorf("resolve app (name = %s): %w", name, err)
	}

	if !found || strings.TrimSpace(app.ID) == "" {
		return Result{Summary: NotFoundMessage}, nil
	}

	s.log.InfoContext(ctx, "App is resolved",
		"name", name,
		"appID", app.ID,
		"title", app.Title)

	return s.SummarizeApp(ctx, app, maxItems, bulleted)
}

// SummarizeApp collects and summarizes reviews of an already resolved app.
func (s *Service) SummarizeApp(
	ctx context.Context,
	app domain.App,
	maxItems int,
	bulleted bool,
) (Result, error) {
	result := Result{App: app, Found: true}

	reviews, err := s.collector.Collect(ctx, app.ID, maxItems)
	if err != nil {
		return Result{}, fmt.Errorf("collect reviews (appID = %s): %w", app.ID, err)
	}

	result.ReviewCount = len(reviews)
	if len(reviews) == 0 {
		result.Summary = NoReviewsMessage

		return result, nil
	}

	summary, err := s.summarizer.Summarize(ctx, reviews, summarizer.Options{
		MaxLen:   s.maxLen,
		MinLen:   s.minLen,
		Bulleted: bulleted,
	})
	if err != nil {
		return Result{}, fmt.Errorf("summarize reviews (appID = %s): %w", app.ID, err)
	}

	result.Summary = summary

	return result, nil
}

// IsSentinel reports whether text is one of the fixed non-summary replies.
func IsSentinel(text string) bool {
	switch text {
	case NotFoundMessage, NoReviewsMessage, summarizer.NoContentMessage:
		return true
	default:
		return false
	}
}
