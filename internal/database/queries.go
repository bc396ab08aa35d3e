package database

import (
	"context"
	"errors"
	"fmt"
	"reviewdigest/internal/domain"
	"strings"
)

func (d *Database) AddSubscription(
	ctx context.Context,
	chatID int64,
	appID string,
	title string,
) error {
	appID = strings.TrimSpace(appID)
	if appID == "" {
		return errors.New("app ID is empty")
	}

	title = strings.TrimSpace(title)
	if title == "" {
		title = appID
	}

	query := `insert into subscriptions (chat_id, app_id, title) values (?, ?, ?)
	on conflict (chat_id, app_id) do update
	set title = excluded.title`

	_, err := d.db.ExecContext(ctx, query, chatID, appID, title)

	return err
}

// RemoveSubscription reports whether a subscription was deleted.
func (d *Database) RemoveSubscription(ctx context.Context, chatID int64, appID string) (bool, error) {
	query := "delete from subscriptions where chat_id = ? and app_id = ?"

	res, err := d.db.ExecContext(ctx, query, chatID, strings.TrimSpace(appID))
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("get rows affected: %w", err)
	}

	return affected > 0, nil
}

func (d *Database) GetChatSubscriptions(ctx context.Context, chatID int64) ([]domain.Subscription, error) {
	query := "select id, chat_id, app_id, title from subscriptions where chat_id = ? order by id"

	return d.querySubscriptions(ctx, "GetChatSubscriptions", query, chatID)
}

func (d *Database) GetAllSubscriptions(ctx context.Context) ([]domain.Subscription, error) {
	query := "select id, chat_id, app_id, title from subscriptions order by app_id, id"

	return d.querySubscriptions(ctx, "GetAllSubscriptions", query)
}

func (d *Database) querySubscriptions(
	ctx context.Context,
	operation string,
	query string,
	args ...any,
) ([]domain.Subscription, error) {
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("execute query: %w", err)
	}
	defer func() {
		if err = rows.Close(); err != nil {
			d.log.ErrorContext(ctx, "Failed to close rows",
				"error", err,
				"operation", operation)
		}
	}()

	var subs []domain.Subscription
	for rows.Next() {
		var s domain.Subscription
		if err = rows.Scan(&s.ID, &s.ChatID, &s.AppID, &s.Title); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}

		s.AppID = strings.TrimSpace(s.AppID)
		s.Title = strings.TrimSpace(s.Title)

		subs = append(subs, s)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return subs, nil
}
