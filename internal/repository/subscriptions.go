package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pr-poehali-dev/telegram-bot-creation-7/internal/domain"
)

// Subscriptions is the pgx-backed subscription store.
type Subscriptions struct {
	db *pgxpool.Pool
}

func NewSubscriptions(db *pgxpool.Pool) *Subscriptions {
	return &Subscriptions{db: db}
}

// Upsert inserts the subscription; an identical one already on file is left
// alone.
func (r *Subscriptions) Upsert(ctx context.Context, sub *domain.Subscription) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO subscriptions (chat_id, user_type, mode, warehouse_filter)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (chat_id, user_type, mode, warehouse_filter) DO NOTHING`,
		sub.ChatID, sub.UserType, sub.Mode, sub.WarehouseFilter)
	if err != nil {
		return fmt.Errorf("upsert subscription: %w", err)
	}
	return nil
}

func (r *Subscriptions) ListByListingType(ctx context.Context, t domain.OrderType) ([]domain.Subscription, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, chat_id, user_type, mode, warehouse_filter, created_at
		FROM subscriptions WHERE user_type = $1`, t)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	defer rows.Close()

	var out []domain.Subscription
	for rows.Next() {
		var s domain.Subscription
		if err := rows.Scan(&s.ID, &s.ChatID, &s.UserType, &s.Mode, &s.WarehouseFilter, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan subscription: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// DeleteByChat drops every subscription of one chat, e.g. on /stop.
func (r *Subscriptions) DeleteByChat(ctx context.Context, chatID int64) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM subscriptions WHERE chat_id = $1`, chatID); err != nil {
		return fmt.Errorf("delete subscriptions: %w", err)
	}
	return nil
}
