package summarizer

import (
	"context"
	"fmt"
	"log/slog"
	"reviewdigest/internal/chunker"
	"reviewdigest/internal/domain"
	"reviewdigest/internal/tokenizer"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	NoContentMessage = "No review content available."

	DefaultReservedOffset = 2
	DefaultSafetyMargin   = 50
	DefaultParallelism    = 4
)

type Options struct {
	MaxLen   int
	MinLen   int
	Bulleted bool
}

// OrchestratorConfig tunes token budgeting and chunk fan-out.
type OrchestratorConfig struct {
	ReservedOffset int
	SafetyMargin   int
	Parallelism    int
}

func DefaultOrchestratorConfig() OrchestratorConfig {
	return OrchestratorConfig{
		ReservedOffset: DefaultReservedOffset,
		SafetyMargin:   DefaultSafetyMargin,
		Parallelism:    DefaultParallelism,
	}
}

// Orchestrator turns a batch of reviews into one summary by splitting the
// combined text into chunks that fit the engine and summarizing each.
type Orchestrator struct {
	tokenizer      tokenizer.Tokenizer
	engine         Engine
	normalize      func(string) string
	reservedOffset int
	safetyMargin   int
	parallelism    int
	log            *slog.Logger
}

func NewOrchestrator(
	tok tokenizer.Tokenizer,
	engine Engine,
	normalize func(string) string,
	cfg OrchestratorConfig,
	log *slog.Logger,
) *Orchestrator {
	if normalize == nil {
		normalize = strings.TrimSpace
	}

	if cfg.Parallelism <= 0 {
		cfg.Parallelism = DefaultParallelism
	}

	return &Orchestrator{
		tokenizer:      tok,
		engine:         engine,
		normalize:      normalize,
		reservedOffset: cfg.ReservedOffset,
		safetyMargin:   cfg.SafetyMargin,
		parallelism:    cfg.Parallelism,
		log:            log,
	}
}

// Summarize returns NoContentMessage when no review carries text. An engine
// failure on any chunk fails the whole call.
func (o *Orchestrator) Summarize(
	ctx context.Context,
	reviews []domain.Review,
	opts Options,
) (string, error) {
	combinedText := o.combine(reviews)
	if combinedText == "" {
		return NoContentMessage, nil
	}

	start := time.Now()

	maxInputLength := o.tokenizer.MaxInputLength()

	budget, err := chunker.Budget(maxInputLength, o.reservedOffset, o.safetyMargin)
	if err != nil {
		return "", fmt.Errorf("compute token budget: %w", err)
	}

	chunks, err := chunker.Split(o.tokenizer, combinedText, budget)
	if err != nil {
		return "", fmt.Errorf("split text: %w", err)
	}

	o.log.DebugContext(ctx, "Text is split",
		"reviewCount", len(reviews),
		"textLen", len(combinedText),
		"maxInputLength", maxInputLength,
		"tokenBudget", budget,
		"chunkCount", len(chunks))

	fragments, err := o.summarizeChunks(ctx, chunks, opts)
	if err != nil {
		return "", err
	}

	summary := joinFragments(fragments)
	if opts.Bulleted {
		summary = Bulletize(summary)
	}

	o.log.InfoContext(ctx, "Reviews are summarized",
		"reviewCount", len(reviews),
		"chunkCount", len(chunks),
		"bulleted", opts.Bulleted,
		"summaryLen", len(summary),
		"durationSeconds", time.Since(start).Seconds())

	return summary, nil
}

func (o *Orchestrator) combine(reviews []domain.Review) string {
	texts := make([]string, 0, len(reviews))
	for _, review := range reviews {
		if review.Text == "" {
			continue
		}

		text := o.normalize(review.Text)
		if text == "" {
			continue
		}

		texts = append(texts, text)
	}

	return strings.TrimSpace(strings.Join(texts, " "))
}

// summarizeChunks runs the engine over chunks with bounded parallelism. Each
// worker writes only its own slot, so fragments keep chunk order.
func (o *Orchestrator) summarizeChunks(
	ctx context.Context,
	chunks []string,
	opts Options,
) ([]string, error) {
	fragments := make([]string, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(o.parallelism, max(len(chunks), 1)))

	for i, chunk := range chunks {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return fmt.Errorf("summarize chunk (chunk = %d/%d): %w", i+1, len(chunks), err)
			}

			fragment, err := o.engine.Run(gctx, chunk, opts.MinLen, opts.MaxLen)
			if err != nil {
				return fmt.Errorf("run engine (chunk = %d/%d): %w", i+1, len(chunks), err)
			}

			fragments[i] = strings.TrimSpace(fragment)

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return fragments, nil
}

func joinFragments(fragments []string) string {
	var b strings.Builder
	for _, fragment := range fragments {
		if fragment == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(fragment)
	}

	return b.String()
}
