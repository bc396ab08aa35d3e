package database_test

import (
	"context"
	"log/slog"
	"path/filepath"
	"reviewdigest/internal/database"
	"testing"
)

func newTestDatabase(t *testing.T) *database.Database {
	t.Helper()

	db, err := database.New(context.Background(), filepath.Join(t.TempDir(), "test.sqlite"), slog.Default())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("close db: %v", err)
		}
	})

	return db
}

func TestSubscriptions(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()

	if err := db.AddSubscription(ctx, 1, "730", "Counter-Strike 2"); err != nil {
		t.Fatalf("add subscription: %v", err)
	}
	if err := db.AddSubscription(ctx, 1, "440", " "); err != nil {
		t.Fatalf("add subscription: %v", err)
	}
	if err := db.AddSubscription(ctx, 2, "730", "CS2"); err != nil {
		t.Fatalf("add subscription: %v", err)
	}
	if err := db.AddSubscription(ctx, 1, "730", "Counter-Strike 2 (renamed)"); err != nil {
		t.Fatalf("re-add subscription: %v", err)
	}

	subs, err := db.GetChatSubscriptions(ctx, 1)
	if err != nil {
		t.Fatalf("get chat subscriptions: %v", err)
	}

	if len(subs) != 2 {
		t.Fatalf("expected 2 subscriptions, got %d", len(subs))
	}

	if subs[0].AppID != "730" || subs[0].Title != "Counter-Strike 2 (renamed)" {
		t.Fatalf("unexpected first subscription: %+v", subs[0])
	}

	if subs[1].Title != "440" {
		t.Fatalf("expected app ID as fallback title, got %q", subs[1].Title)
	}

	all, err := db.GetAllSubscriptions(ctx)
	if err != nil {
		t.Fatalf("get all subscriptions: %v", err)
	}

	if len(all) != 3 {
		t.Fatalf("expected 3 subscriptions, got %d", len(all))
	}

	removed, err := db.RemoveSubscription(ctx, 1, "730")
	if err != nil || !removed {
		t.Fatalf("expected removal, got %v %v", removed, err)
	}

	removed, err = db.RemoveSubscription(ctx, 1, "730")
	if err != nil || removed {
		t.Fatalf("expected nothing to remove, got %v %v", removed, err)
	}
}

func TestAddSubscriptionRequiresAppID(t *testing.T) {
	db := newTestDatabase(t)

	if err := db.AddSubscription(context.Background(), 1, " ", "title"); err == nil {
		t.Fatalf("expected error for empty app ID")
	}
}

func TestNewIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.sqlite")

	for range 2 {
		db, err := database.New(context.Background(), path, slog.Default())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err = db.Close(); err != nil {
			t.Fatalf("close db: %v", err)
		}
	}
}
