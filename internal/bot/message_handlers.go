package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot/models"
)

func (b *Bot) handleMessage(ctx context.Context, message *models.Message) error {
	chatID := message.Chat.ID
	command, arg := parseCommand(message.Text)

	switch command {
	case "start", "help":
		return b.sendText(ctx, chatID, welcomeText)
	case "list":
		return b.handleListCommand(ctx, chatID)
	case "unfollow":
		return b.handleUnfollowCommand(ctx, chatID, arg)
	case "follow":
		return b.withSpinner(ctx, chatID, func() error {
			return b.handleFollowCommand(ctx, chatID, arg)
		})
	case "summary", "":
		return b.withSpinner(ctx, chatID, func() error {
			return b.handleSummaryRequest(ctx, chatID, arg)
		})
	default:
		return b.sendText(ctx, chatID, "✖️ Unknown command\\. Try /help\\.")
	}
}

// parseCommand splits "/cmd@botname args" into "cmd" and "args". Plain text
// yields an empty command with the whole text as the argument.
func parseCommand(text string) (string, string) {
	text = strings.TrimSpace(text)

	if !strings.HasPrefix(text, "/") {
		return "", text
	}

	command, arg, _ := strings.Cut(text[1:], " ")
	command, _, _ = strings.Cut(command, "@")

	return strings.ToLower(command), strings.TrimSpace(arg)
}

func (b *Bot) handleSummaryRequest(ctx context.Context, chatID int64, name string) error {
	if name == "" {
		return b.sendText(ctx, chatID, summaryUsageText)
	}

	result, err := b.digester.Digest(ctx, name, b.maxReviews, b.bulleted)
	if err != nil {
		return b.failWith(ctx, chatID, fmt.Errorf("digest: %w", err))
	}

	if err = b.sendResult(ctx, chatID, result); err != nil {
		return fmt.Errorf("send result: %w", err)
	}

	return nil
}
