package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pr-poehali-dev/telegram-bot-creation-7/internal/config"
	"github.com/pr-poehali-dev/telegram-bot-creation-7/internal/domain"
)

// SecurityEvents is the pgx-backed abuse log.
type SecurityEvents struct {
	db *pgxpool.Pool
}

func NewSecurityEvents(db *pgxpool.Pool) *SecurityEvents {
	return &SecurityEvents{db: db}
}

func (r *SecurityEvents) Append(ctx context.Context, ev *domain.SecurityEvent) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO security_events (chat_id, event_type, details, severity)
		VALUES ($1, $2, $3, $4) RETURNING id, created_at`,
		ev.ChatID, ev.EventType, ev.Details, ev.Severity,
	).Scan(&ev.ID, &ev.CreatedAt)
	if err != nil {
		return fmt.Errorf("append security event: %w", err)
	}
	return nil
}

func (r *SecurityEvents) CountSince(ctx context.Context, chatID int64, since time.Time) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM security_events WHERE chat_id = $1 AND created_at >= $2`,
		chatID, since).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count security events: %w", err)
	}
	return count, nil
}

func (r *SecurityEvents) Recent(ctx context.Context, limit int) ([]domain.SecurityEvent, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, chat_id, event_type, details, severity, created_at
		FROM security_events ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list security events: %w", err)
	}
	defer rows.Close()

	var out []domain.SecurityEvent
	for rows.Next() {
		var ev domain.SecurityEvent
		if err := rows.Scan(&ev.ID, &ev.ChatID, &ev.EventType, &ev.Details, &ev.Severity, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan security event: %w", err)
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

// Blocks is the pgx-backed block list.
type Blocks struct {
	db *pgxpool.Pool
}

func NewBlocks(db *pgxpool.Pool) *Blocks {
	return &Blocks{db: db}
}

func (r *Blocks) Block(ctx context.Context, chatID int64, reason string) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO blocked_users (chat_id, reason) VALUES ($1, $2)
		ON CONFLICT (chat_id) DO NOTHING`, chatID, reason)
	if err != nil {
		return fmt.Errorf("block user: %w", err)
	}
	return nil
}

func (r *Blocks) Unblock(ctx context.Context, chatID int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM blocked_users WHERE chat_id = $1`, chatID)
	if err != nil {
		return false, fmt.Errorf("unblock user: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *Blocks) IsBlocked(ctx context.Context, chatID int64) (bool, error) {
	var blocked bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM blocked_users WHERE chat_id = $1)`, chatID).Scan(&blocked)
	if err != nil {
		return false, fmt.Errorf("block lookup: %w", err)
	}
	return blocked, nil
}

func (r *Blocks) List(ctx context.Context) ([]domain.BlockedUser, error) {
	rows, err := r.db.Query(ctx,
		`SELECT chat_id, reason, blocked_at FROM blocked_users ORDER BY blocked_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list blocked users: %w", err)
	}
	defer rows.Close()

	var out []domain.BlockedUser
	for rows.Next() {
		var b domain.BlockedUser
		if err := rows.Scan(&b.ChatID, &b.Reason, &b.BlockedAt); err != nil {
			return nil, fmt.Errorf("scan blocked user: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// Limits resolves per-identity daily order ceilings, falling back to the
// global default when no override row exists.
type Limits struct {
	db *pgxpool.Pool
}

func NewLimits(db *pgxpool.Pool) *Limits {
	return &Limits{db: db}
}

func (r *Limits) DailyLimit(ctx context.Context, chatID int64) (int, error) {
	var limit int
	err := r.db.QueryRow(ctx, `
		SELECT COALESCE(
			(SELECT daily_order_limit FROM user_limits WHERE chat_id = $1), $2)`,
		chatID, config.MaxOrdersPerDay).Scan(&limit)
	if err != nil {
		return 0, fmt.Errorf("daily limit: %w", err)
	}
	return limit, nil
}

func (r *Limits) SetDailyLimit(ctx context.Context, chatID int64, limit int) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO user_limits (chat_id, daily_order_limit) VALUES ($1, $2)
		ON CONFLICT (chat_id) DO UPDATE SET daily_order_limit = EXCLUDED.daily_order_limit`,
		chatID, limit)
	if err != nil {
		return fmt.Errorf("set daily limit: %w", err)
	}
	return nil
}
