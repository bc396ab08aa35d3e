package scheduler

import (
	"context"
	"log/slog"
	"reviewdigest/internal/domain"
	"reviewdigest/internal/service"
	"time"

	"github.com/robfig/cron/v3"
)

const (
	Timezone              = "UTC"
	TimezoneOffsetSeconds = 0
	digestTimeout         = 30 * time.Minute
)

type SubscriptionLister interface {
	GetAllSubscriptions(ctx context.Context) ([]domain.Subscription, error)
}

type AppSummarizer interface {
	SummarizeApp(ctx context.Context, app domain.App, maxItems int, bulleted bool) (service.Result, error)
}

type DigestSender interface {
	SendDigest(ctx context.Context, chatID int64, result service.Result) error
}

type Options struct {
	Spec       string
	MaxReviews int
	Bulleted   bool
}

type Scheduler struct {
	ctx        context.Context
	cron       *cron.Cron
	subs       SubscriptionLister
	summarizer AppSummarizer
	sender     DigestSender
	appURL     func(appID string) string
	opts       Options
	log        *slog.Logger
}

func New(
	ctx context.Context,
	subs SubscriptionLister,
	summarizer AppSummarizer,
	sender DigestSender,
	appURL func(appID string) string,
	opts Options,
	log *slog.Logger,
) *Scheduler {
	c := cron.New(cron.WithLocation(time.FixedZone(Timezone, TimezoneOffsetSeconds)))

	return &Scheduler{
		ctx:        ctx,
		cron:       c,
		subs:       subs,
		summarizer: summarizer,
		sender:     sender,
		appURL:     appURL,
		opts:       opts,
		log:        log,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.opts.Spec, s.sendDigests); err != nil {
		return err
	}

	s.cron.Start()

	return nil
}

// Stop waits for a running digest to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) sendDigests() {
	ctx, cancel := context.WithTimeout(s.ctx, digestTimeout)
	defer cancel()

	s.runDigest(ctx)
}

// runDigest summarizes every followed app once and fans the result out to
// the chats following it. One failing app or chat does not stop the others.
func (s *Scheduler) runDigest(ctx context.Context) {
	if ctx.Err() != nil {
		s.log.InfoContext(ctx, "Scheduler context is done",
			"error", ctx.Err())
		return
	}

	subs, err := s.subs.GetAllSubscriptions(ctx)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to get subscriptions",
			"error", err)
		return
	}

	apps, chats := groupByApp(subs)

	s.log.InfoContext(ctx, "Digest is started",
		"subscriptionCount", len(subs),
		"appCount", len(apps))

	for _, app := range apps {
		if ctx.Err() != nil {
			s.log.InfoContext(ctx, "Scheduler context is done",
				"error", ctx.Err())
			return
		}

		if s.appURL != nil {
			app.URL = s.appURL(app.ID)
		}

		result, err := s.summarizer.SummarizeApp(ctx, app, s.opts.MaxReviews, s.opts.Bulleted)
		if err != nil {
			s.log.ErrorContext(ctx, "Failed to summarize app",
				"error", err,
				"appID", app.ID,
				"chatCount", len(chats[app.ID]))
			continue
		}

		for _, chatID := range chats[app.ID] {
			if err = s.sender.SendDigest(ctx, chatID, result); err != nil {
				s.log.ErrorContext(ctx, "Failed to send digest",
					"error", err,
					"appID", app.ID,
					"chatID", chatID)
			}
		}
	}
}

// groupByApp keeps apps in first-seen order and the chats of each app in
// subscription order.
func groupByApp(subs []domain.Subscription) ([]domain.App, map[string][]int64) {
	var apps []domain.App
	chats := make(map[string][]int64)

	for _, sub := range subs {
		if _, ok := chats[sub.AppID]; !ok {
			apps = append(apps, domain.App{ID: sub.AppID, Title: sub.Title})
		}

		chats[sub.AppID] = append(chats[sub.AppID], sub.ChatID)
	}

	return apps, chats
}
