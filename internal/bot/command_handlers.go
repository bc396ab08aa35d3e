package bot

import (
	"context"
	"errors"
	"fmt"
	"reviewdigest/internal/markdown"
	"reviewdigest/internal/service"
	"strings"
)

const welcomeText = `🎮 *Welcome to Review Digest\!*

Send me a Steam game name or store link and I will summarize what players say about it\.

– /summary <name\> summarizes recent reviews
– /follow <name\> adds a game to the daily digest
– /unfollow <app ID\> removes it
– /list shows followed games`

const (
	summaryUsageText  = "✖️ Usage: /summary <game name\\>"
	followUsageText   = "✖️ Usage: /follow <game name\\>"
	unfollowUsageText = "✖️ Usage: /unfollow <app ID\\>"
	failedText        = "❌ Failed\\."
)

func (b *Bot) handleFollowCommand(ctx context.Context, chatID int64, name string) error {
	if name == "" {
		return b.sendText(ctx, chatID, followUsageText)
	}

	app, found, err := b.resolver.Resolve(ctx, name)
	if err != nil {
		return b.failWith(ctx, chatID, fmt.Errorf("resolve app: %w", err))
	}

	if !found {
		return b.sendText(ctx, chatID, "✖️ "+markdown.EscapeV2(service.NotFoundMessage))
	}

	if err = b.store.AddSubscription(ctx, chatID, app.ID, app.Title); err != nil {
		return b.failWith(ctx, chatID, fmt.Errorf("add subscription: %w", err))
	}

	b.log.InfoContext(ctx, "Subscription is added",
		"chatID", chatID,
		"appID", app.ID,
		"title", app.Title)

	return b.sendText(ctx, chatID, fmt.Sprintf("✅ Following %s\\.", appLink(app.Title, app.URL)))
}

func (b *Bot) handleUnfollowCommand(ctx context.Context, chatID int64, appID string) error {
	if appID == "" {
		return b.sendText(ctx, chatID, unfollowUsageText)
	}

	removed, err := b.store.RemoveSubscription(ctx, chatID, appID)
	if err != nil {
		return b.failWith(ctx, chatID, fmt.Errorf("remove subscription: %w", err))
	}

	if !removed {
		return b.sendText(ctx, chatID, "✖️ This game is not followed\\.")
	}

	return b.sendText(ctx, chatID, "✅ Unfollowed\\.")
}

func (b *Bot) handleListCommand(ctx context.Context, chatID int64) error {
	subs, err := b.store.GetChatSubscriptions(ctx, chatID)
	if err != nil {
		return b.failWith(ctx, chatID, fmt.Errorf("get chat subscriptions: %w", err))
	}

	if len(subs) == 0 {
		return b.sendText(ctx, chatID, "✖️ Follow list is empty\\.")
	}

	var message strings.Builder
	message.WriteString(fmt.Sprintf("🔍 *Following %d games:*\n\n", len(subs)))

	for i, s := range subs {
		message.WriteString(fmt.Sprintf(
			"%d\\. %s `%s`\n",
			i+1,
			markdown.EscapeV2(s.Title),
			markdown.EscapeV2(s.AppID),
		))
	}

	return b.sendText(ctx, chatID, strings.TrimRight(message.String(), "\n"))
}

func (b *Bot) failWith(ctx context.Context, chatID int64, err error) error {
	errs := []error{err}

	if sendErr := b.sendText(ctx, chatID, failedText); sendErr != nil {
		errs = append(errs, fmt.Errorf("send message: %w", sendErr))
	}

	return errors.Join(errs...)
}

func appLink(title string, url string) string {
	if url == "" {
		return markdown.EscapeV2(title)
	}

	return fmt.Sprintf("[%s](%s)", markdown.EscapeV2(title), markdown.EscapeLinkURL(url))
}
