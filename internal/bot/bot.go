package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reviewdigest/internal/domain"
	"reviewdigest/internal/markdown"
	"reviewdigest/internal/ratelimiter"
	"reviewdigest/internal/service"
	"slices"
	"strings"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

const updateProcessingTimeout = 3 * time.Minute

// Digester produces a presentable summary for a game name.
type Digester interface {
	Digest(ctx context.Context, name string, maxItems int, bulleted bool) (service.Result, error)
}

// Store keeps which chats follow which apps.
type Store interface {
	AddSubscription(ctx context.Context, chatID int64, appID string, title string) error
	RemoveSubscription(ctx context.Context, chatID int64, appID string) (bool, error)
	GetChatSubscriptions(ctx context.Context, chatID int64) ([]domain.Subscription, error)
}

type messageSender interface {
	SendMessage(ctx context.Context, chatID int64, params *tgbot.SendMessageParams) (*models.Message, error)
}

type chatActionSender interface {
	SendChatAction(ctx context.Context, params *tgbot.SendChatActionParams) (bool, error)
}

type Options struct {
	AllowedUsers []int64
	MaxReviews   int
	Bulleted     bool
}

type Bot struct {
	api          *tgbot.Bot
	rateLimiter  *ratelimiter.RateLimiter
	sender       messageSender
	actions      chatActionSender
	digester     Digester
	resolver     service.Resolver
	store        Store
	allowedUsers []int64
	maxReviews   int
	bulleted     bool
	log          *slog.Logger
}

func New(
	token string,
	digester Digester,
	resolver service.Resolver,
	store Store,
	opts Options,
	log *slog.Logger,
) (*Bot, error) {
	b := &Bot{
		digester:     digester,
		resolver:     resolver,
		store:        store,
		allowedUsers: opts.AllowedUsers,
		maxReviews:   opts.MaxReviews,
		bulleted:     opts.Bulleted,
		log:          log,
	}

	api, err := tgbot.New(strings.TrimSpace(token), tgbot.WithDefaultHandler(b.handleUpdate))
	if err != nil {
		return nil, fmt.Errorf("create bot API: %w", err)
	}

	b.api = api
	b.rateLimiter = ratelimiter.New(api, log)
	b.sender = b.rateLimiter
	b.actions = api

	return b, nil
}

// Start polls updates until ctx is done.
func (b *Bot) Start(ctx context.Context) {
	b.api.Start(ctx)

	b.log.InfoContext(ctx, "Bot context is done",
		"error", ctx.Err())
}

func (b *Bot) Stop() {
	if b.rateLimiter != nil {
		b.rateLimiter.Stop()
	}
}

func (b *Bot) handleUpdate(ctx context.Context, _ *tgbot.Bot, update *models.Update) {
	if update == nil || update.Message == nil || update.Message.From == nil {
		return
	}

	updateCtx, cancel := context.WithTimeout(ctx, updateProcessingTimeout)
	defer cancel()

	message := update.Message
	userID := message.From.ID

	if !b.userAllowed(userID) {
		b.log.DebugContext(updateCtx, "User is not allowed",
			"userID", userID,
			"chatID", message.Chat.ID,
			"username", message.From.Username,
			"chatType", message.Chat.Type)

		return
	}

	if err := b.handleMessage(updateCtx, message); err != nil {
		b.log.ErrorContext(updateCtx, "Failed to handle message",
			"error", err,
			"chatID", message.Chat.ID,
			"userID", userID,
			"chatType", message.Chat.Type,
			"messageID", message.ID)
	}
}

func (b *Bot) userAllowed(userID int64) bool {
	return len(b.allowedUsers) == 0 || slices.Contains(b.allowedUsers, userID)
}

// SendDigest delivers a summary produced outside of a chat update.
func (b *Bot) SendDigest(ctx context.Context, chatID int64, result service.Result) error {
	return b.sendResult(ctx, chatID, result)
}

func (b *Bot) sendResult(ctx context.Context, chatID int64, result service.Result) error {
	if !result.Found || service.IsSentinel(result.Summary) {
		return b.sendText(ctx, chatID, "✖️ "+markdown.EscapeV2(result.Summary))
	}

	messages := markdown.FormatSummary(markdown.Summary{
		Title:       result.App.Title,
		URL:         result.App.URL,
		ReviewCount: result.ReviewCount,
		Text:        result.Summary,
	})

	var errs []error
	for _, message := range messages {
		if err := b.sendText(ctx, chatID, message); err != nil {
			errs = append(errs, fmt.Errorf("send summary part: %w", err))
		}
	}

	return errors.Join(errs...)
}

func (b *Bot) sendText(ctx context.Context, chatID int64, text string) error {
	_, err := b.sender.SendMessage(ctx, chatID, &tgbot.SendMessageParams{
		Text:      text,
		ParseMode: models.ParseModeMarkdown,
		LinkPreviewOptions: &models.LinkPreviewOptions{
			IsDisabled: tgbot.True(),
		},
	})

	return err
}
