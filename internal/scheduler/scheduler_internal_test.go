package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"reviewdigest/internal/domain"
	"reviewdigest/internal/service"
	"slices"
	"testing"
)

type staticSubs []domain.Subscription

func (s staticSubs) GetAllSubscriptions(context.Context) ([]domain.Subscription, error) {
	return s, nil
}

type stubSummarizer struct {
	calls   []domain.App
	failing string
}

func (s *stubSummarizer) SummarizeApp(_ context.Context, app domain.App, _ int, _ bool) (service.Result, error) {
	s.calls = append(s.calls, app)
	if app.ID == s.failing {
		return service.Result{}, errors.New("fetch failed")
	}

	return service.Result{App: app, Found: true, ReviewCount: 1, Summary: "summary of " + app.ID}, nil
}

type delivery struct {
	chatID  int64
	summary string
}

type recordingSender struct {
	deliveries []delivery
	failChat   int64
}

func (r *recordingSender) SendDigest(_ context.Context, chatID int64, result service.Result) error {
	if chatID == r.failChat {
		return errors.New("blocked")
	}

	r.deliveries = append(r.deliveries, delivery{chatID: chatID, summary: result.Summary})

	return nil
}

func TestGroupByApp(t *testing.T) {
	apps, chats := groupByApp([]domain.Subscription{
		{ChatID: 1, AppID: "10", Title: "A"},
		{ChatID: 2, AppID: "20", Title: "B"},
		{ChatID: 3, AppID: "10", Title: "A"},
	})

	if len(apps) != 2 || apps[0].ID != "10" || apps[1].ID != "20" {
		t.Fatalf("unexpected apps: %+v", apps)
	}

	if !slices.Equal(chats["10"], []int64{1, 3}) || !slices.Equal(chats["20"], []int64{2}) {
		t.Fatalf("unexpected chats: %v", chats)
	}
}

func TestRunDigestSummarizesEachAppOnce(t *testing.T) {
	subs := staticSubs{
		{ChatID: 1, AppID: "10", Title: "A"},
		{ChatID: 2, AppID: "10", Title: "A"},
		{ChatID: 2, AppID: "20", Title: "B"},
	}
	summarizer := &stubSummarizer{}
	sender := &recordingSender{}

	s := New(context.Background(), subs, summarizer, sender, func(id string) string {
		return "https://store.example/app/" + id + "/"
	}, Options{Spec: "0 9 * * *", MaxReviews: 50}, slog.Default())

	s.runDigest(context.Background())

	if len(summarizer.calls) != 2 {
		t.Fatalf("expected 2 summarize calls, got %d", len(summarizer.calls))
	}

	if summarizer.calls[0].URL != "https://store.example/app/10/" {
		t.Fatalf("expected app URL to be filled, got %q", summarizer.calls[0].URL)
	}

	want := []delivery{
		{chatID: 1, summary: "summary of 10"},
		{chatID: 2, summary: "summary of 10"},
		{chatID: 2, summary: "summary of 20"},
	}
	if !slices.Equal(sender.deliveries, want) {
		t.Fatalf("unexpected deliveries: %+v", sender.deliveries)
	}
}

func TestRunDigestContinuesAfterFailures(t *testing.T) {
	subs := staticSubs{
		{ChatID: 1, AppID: "10"},
		{ChatID: 2, AppID: "20"},
		{ChatID: 3, AppID: "20"},
	}
	summarizer := &stubSummarizer{failing: "10"}
	sender := &recordingSender{failChat: 2}

	s := New(context.Background(), subs, summarizer, sender, nil, Options{}, slog.Default())
	s.runDigest(context.Background())

	want := []delivery{{chatID: 3, summary: "summary of 20"}}
	if !slices.Equal(sender.deliveries, want) {
		t.Fatalf("unexpected deliveries: %+v", sender.deliveries)
	}
}

func TestRunDigestStopsOnCancelledContext(t *testing.T) {
	summarizer := &stubSummarizer{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := New(ctx, staticSubs{{ChatID: 1, AppID: "10"}}, summarizer, &recordingSender{}, nil, Options{}, slog.Default())
	s.runDigest(ctx)

	if len(summarizer.calls) != 0 {
		t.Fatalf("expected no work after cancellation")
	}
}

func TestStartRejectsInvalidSpec(t *testing.T) {
	s := New(context.Background(), staticSubs{}, &stubSummarizer{}, &recordingSender{}, nil,
		Options{Spec: "not a spec"}, slog.Default())

	if err := s.Start(); err == nil {
		t.Fatalf("expected invalid spec error")
	}
}
