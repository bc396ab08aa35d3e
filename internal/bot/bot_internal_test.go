package bot

import (
	"context"
	"errors"
	"log/slog"
	"reviewdigest/internal/domain"
	"reviewdigest/internal/service"
	"strings"
	"sync"
	"testing"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

type recordingSender struct {
	mu    sync.Mutex
	texts []string
	err   error
}

func (s *recordingSender) SendMessage(
	_ context.Context,
	chatID int64,
	params *tgbot.SendMessageParams,
) (*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if params.ParseMode != models.ParseModeMarkdown {
		return nil, errors.New("unexpected parse mode")
	}

	s.texts = append(s.texts, params.Text)

	return &models.Message{Chat: models.Chat{ID: chatID}}, s.err
}

func (s *recordingSender) sent() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]string(nil), s.texts...)
}

type stubDigester struct {
	result service.Result
	err    error
	names  []string
}

func (d *stubDigester) Digest(_ context.Context, name string, _ int, _ bool) (service.Result, error) {
	d.names = append(d.names, name)

	return d.result, d.err
}

type stubResolver struct {
	app   domain.App
	found bool
}

func (r stubResolver) Resolve(context.Context, string) (domain.App, bool, error) {
	return r.app, r.found, nil
}

type memoryStore struct {
	subs []domain.Subscription
}

func (m *memoryStore) AddSubscription(_ context.Context, chatID int64, appID string, title string) error {
	m.subs = append(m.subs, domain.Subscription{ID: int64(len(m.subs) + 1), ChatID: chatID, AppID: appID, Title: title})

	return nil
}

func (m *memoryStore) RemoveSubscription(_ context.Context, chatID int64, appID string) (bool, error) {
	for i, s := range m.subs {
		if s.ChatID == chatID && s.AppID == appID {
			m.subs = append(m.subs[:i], m.subs[i+1:]...)

			return true, nil
		}
	}

	return false, nil
}

func (m *memoryStore) GetChatSubscriptions(_ context.Context, chatID int64) ([]domain.Subscription, error) {
	var subs []domain.Subscription
	for _, s := range m.subs {
		if s.ChatID == chatID {
			subs = append(subs, s)
		}
	}

	return subs, nil
}

func newTestBot(digester Digester, resolver service.Resolver, store Store) (*Bot, *recordingSender) {
	sender := &recordingSender{}

	return &Bot{
		sender:     sender,
		digester:   digester,
		resolver:   resolver,
		store:      store,
		maxReviews: 50,
		bulleted:   true,
		log:        slog.Default(),
	}, sender
}

func textMessage(chatID int64, text string) *models.Message {
	return &models.Message{
		ID:   1,
		Chat: models.Chat{ID: chatID, Type: models.ChatTypePrivate},
		From: &models.User{ID: chatID},
		Text: text,
	}
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		text        string
		wantCommand string
		wantArg     string
	}{
		{text: "/start", wantCommand: "start"},
		{text: "/summary  Portal 2 ", wantCommand: "summary", wantArg: "Portal 2"},
		{text: "/Follow@review_bot Hades", wantCommand: "follow", wantArg: "Hades"},
		{text: "  Stardew Valley ", wantArg: "Stardew Valley"},
		{text: ""},
	}

	for _, tt := range tests {
		command, arg := parseCommand(tt.text)
		if command != tt.wantCommand || arg != tt.wantArg {
			t.Fatalf("parseCommand(%q) = (%q, %q), want (%q, %q)",
				tt.text, command, arg, tt.wantCommand, tt.wantArg)
		}
	}
}

func TestUserAllowed(t *testing.T) {
	b := &Bot{}
	if !b.userAllowed(42) {
		t.Fatalf("expected everyone to be allowed with an empty list")
	}

	b.allowedUsers = []int64{1, 2}
	if !b.userAllowed(2) || b.userAllowed(3) {
		t.Fatalf("unexpected allow list result")
	}
}

func TestPlainTextSendsSummary(t *testing.T) {
	digester := &stubDigester{result: service.Result{
		App:         domain.App{ID: "620", Title: "Portal 2", URL: "https://store.steampowered.com/app/620/"},
		Found:       true,
		ReviewCount: 50,
		Summary:     "- Great puzzles.\n- Funny writing.",
	}}
	b, sender := newTestBot(digester, stubResolver{}, &memoryStore{})

	if err := b.handleMessage(context.Background(), textMessage(7, "Portal 2")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(digester.names) != 1 || digester.names[0] != "Portal 2" {
		t.Fatalf("unexpected digest calls: %v", digester.names)
	}

	texts := sender.sent()
	if len(texts) != 1 {
		t.Fatalf("expected 1 message, got %d", len(texts))
	}

	if !strings.Contains(texts[0], "Portal 2") || !strings.Contains(texts[0], "Based on 50 reviews\\.") {
		t.Fatalf("unexpected message: %q", texts[0])
	}
}

func TestSentinelIsSentEscaped(t *testing.T) {
	digester := &stubDigester{result: service.Result{Summary: service.NotFoundMessage}}
	b, sender := newTestBot(digester, stubResolver{}, &memoryStore{})

	if err := b.handleMessage(context.Background(), textMessage(7, "/summary nope")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	texts := sender.sent()
	if len(texts) != 1 || texts[0] != "✖️ Game not found\\." {
		t.Fatalf("unexpected messages: %q", texts)
	}
}

func TestSummaryFailureIsReported(t *testing.T) {
	digester := &stubDigester{err: errors.New("steam is down")}
	b, sender := newTestBot(digester, stubResolver{}, &memoryStore{})

	err := b.handleMessage(context.Background(), textMessage(7, "/summary Portal"))
	if err == nil || !strings.Contains(err.Error(), "steam is down") {
		t.Fatalf("expected digest error, got %v", err)
	}

	texts := sender.sent()
	if len(texts) != 1 || texts[0] != failedText {
		t.Fatalf("unexpected messages: %q", texts)
	}
}

func TestSummaryWithoutName(t *testing.T) {
	digester := &stubDigester{}
	b, sender := newTestBot(digester, stubResolver{}, &memoryStore{})

	if err := b.handleMessage(context.Background(), textMessage(7, "/summary")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(digester.names) != 0 {
		t.Fatalf("expected no digest calls, got %v", digester.names)
	}

	if texts := sender.sent(); len(texts) != 1 || texts[0] != summaryUsageText {
		t.Fatalf("unexpected messages: %q", texts)
	}
}

func TestFollowListUnfollow(t *testing.T) {
	store := &memoryStore{}
	resolver := stubResolver{
		app:   domain.App{ID: "1145360", Title: "Hades", URL: "https://store.steampowered.com/app/1145360/"},
		found: true,
	}
	b, sender := newTestBot(&stubDigester{}, resolver, store)
	ctx := context.Background()

	if err := b.handleMessage(ctx, textMessage(7, "/follow Hades")); err != nil {
		t.Fatalf("follow: %v", err)
	}
	if err := b.handleMessage(ctx, textMessage(7, "/list")); err != nil {
		t.Fatalf("list: %v", err)
	}
	if err := b.handleMessage(ctx, textMessage(7, "/unfollow 1145360")); err != nil {
		t.Fatalf("unfollow: %v", err)
	}
	if err := b.handleMessage(ctx, textMessage(7, "/unfollow 1145360")); err != nil {
		t.Fatalf("unfollow again: %v", err)
	}
	if err := b.handleMessage(ctx, textMessage(7, "/list")); err != nil {
		t.Fatalf("list: %v", err)
	}

	want := []string{
		"✅ Following [Hades](https://store.steampowered.com/app/1145360/)\\.",
		"🔍 *Following 1 games:*\n\n1\\. Hades `1145360`",
		"✅ Unfollowed\\.",
		"✖️ This game is not followed\\.",
		"✖️ Follow list is empty\\.",
	}

	texts := sender.sent()
	if len(texts) != len(want) {
		t.Fatalf("expected %d messages, got %q", len(want), texts)
	}

	for i := range want {
		if texts[i] != want[i] {
			t.Fatalf("message %d = %q, want %q", i, texts[i], want[i])
		}
	}
}

func TestFollowUnknownGame(t *testing.T) {
	store := &memoryStore{}
	b, sender := newTestBot(&stubDigester{}, stubResolver{}, store)

	if err := b.handleMessage(context.Background(), textMessage(7, "/follow nothing")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(store.subs) != 0 {
		t.Fatalf("expected no subscriptions, got %v", store.subs)
	}

	if texts := sender.sent(); len(texts) != 1 || texts[0] != "✖️ Game not found\\." {
		t.Fatalf("unexpected messages: %q", texts)
	}
}

func TestHandleUpdateSkipsDisallowedUsers(t *testing.T) {
	digester := &stubDigester{}
	b, sender := newTestBot(digester, stubResolver{}, &memoryStore{})
	b.allowedUsers = []int64{1}

	b.handleUpdate(context.Background(), nil, &models.Update{Message: textMessage(7, "Portal 2")})

	if len(digester.names) != 0 || len(sender.sent()) != 0 {
		t.Fatalf("expected update to be ignored")
	}
}

// firstUnescaped returns the offset of a MarkdownV2 reserved character that
// is not preceded by a backslash, or -1.
func firstUnescaped(text string) int {
	for i := 0; i < len(text); i++ {
		if text[i] == '\\' {
			i++
			continue
		}

		if strings.IndexByte(">#+-=|{}.!", text[i]) >= 0 {
			return i
		}
	}

	return -1
}

func TestFixedRepliesAreEscaped(t *testing.T) {
	commands := []string{"/start", "/help", "/summary", "/follow", "/unfollow", "/list", "/nope", "/follow unknown"}

	for _, command := range commands {
		b, sender := newTestBot(&stubDigester{}, stubResolver{}, &memoryStore{})

		if err := b.handleMessage(context.Background(), textMessage(7, command)); err != nil {
			t.Fatalf("%s: unexpected error: %v", command, err)
		}

		texts := sender.sent()
		if len(texts) == 0 {
			t.Fatalf("%s: expected a reply", command)
		}

		for _, text := range texts {
			if i := firstUnescaped(text); i >= 0 {
				t.Fatalf("%s: unescaped %q at byte %d in %q", command, text[i], i, text)
			}
		}
	}

	for _, text := range []string{welcomeText, summaryUsageText, followUsageText, unfollowUsageText, failedText} {
		if i := firstUnescaped(text); i >= 0 {
			t.Fatalf("unescaped %q at byte %d in %q", text[i], i, text)
		}
	}
}
