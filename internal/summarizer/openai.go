package summarizer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/responses"
)

const (
	DefaultOpenAIModel = "gpt-4.1-mini"

	minMaxOutputTokens   int64 = 64
	limitMaxOutputTokens int64 = 2048
	// Roughly four tokens cover three English words, rounded up.
	outputTokensPerWord = 2

	systemPrompt = `Summarize the user reviews of a video game.

Rules:
- Between %d and %d words.
- Cover what players praise and what they criticise, most common points first.
- Plain sentences ending with a period, no lists, no headings.
- Neutral tone, no quotes, no usernames, no links.
- Write in English.`
)

// OpenAIEngine calls OpenAI's Responses API with sampling disabled.
type OpenAIEngine struct {
	client openai.Client
	model  string
}

// NewOpenAIEngine builds a new engine instance.
func NewOpenAIEngine(apiKey string, model string, opts ...option.RequestOption) (*OpenAIEngine, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("API key is empty")
	}

	model = strings.TrimSpace(model)
	if model == "" {
		model = DefaultOpenAIModel
	}

	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)

	return &OpenAIEngine{
		client: openai.NewClient(opts...),
		model:  model,
	}, nil
}

// Run summarizes text in one request, growing the output cap when the model
// stops on it.
func (e *OpenAIEngine) Run(
	ctx context.Context,
	text string,
	minLen int,
	maxLen int,
) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", errors.New("input is empty")
	}

	maxOutputTokens := outputTokenCap(maxLen)
	for {
		resp, err := e.client.Responses.New(ctx, responses.ResponseNewParams{
			Model:           e.model,
			MaxOutputTokens: openai.Int(maxOutputTokens),
			Temperature:     openai.Float(0),
			TopP:            openai.Float(1),
			Instructions:    openai.String(fmt.Sprintf(systemPrompt, minLen, maxLen)),
			Input: responses.ResponseNewParamsInputUnion{
				OfString: openai.String(text),
			},
		})
		if err != nil {
			return "", fmt.Errorf("do request: %w", err)
		}

		if resp.Status == "incomplete" {
			if resp.IncompleteDetails.Reason == "max_output_tokens" && maxOutputTokens < limitMaxOutputTokens {
				maxOutputTokens = min(maxOutputTokens*2, limitMaxOutputTokens)
				continue
			}
			return "", fmt.Errorf(
				"response is incomplete (reason = %s, maxOutputTokens = %d)",
				resp.IncompleteDetails.Reason,
				maxOutputTokens,
			)
		}

		summary := strings.TrimSpace(resp.OutputText())
		if summary == "" {
			return "", fmt.Errorf("output text is missing (status = %s)", resp.Status)
		}
		return summary, nil
	}
}

func outputTokenCap(maxLen int) int64 {
	return min(max(int64(maxLen)*outputTokensPerWord, minMaxOutputTokens), limitMaxOutputTokens)
}
