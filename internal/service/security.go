package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pr-poehali-dev/telegram-bot-creation-7/internal/config"
	"github.com/pr-poehali-dev/telegram-bot-creation-7/internal/domain"
)

// EventStore is the append-only security log.
type EventStore interface {
	Append(ctx context.Context, ev *domain.SecurityEvent) error
	CountSince(ctx context.Context, chatID int64, since time.Time) (int, error)
}

// BlockStore is the block list. Blocks are terminal until explicitly
// removed.
type BlockStore interface {
	Block(ctx context.Context, chatID int64, reason string) error
	Unblock(ctx context.Context, chatID int64) (bool, error)
	IsBlocked(ctx context.Context, chatID int64) (bool, error)
}

// OrderCounter counts today's orders for one identity.
type OrderCounter interface {
	CountToday(ctx context.Context, chatID int64) (int, error)
}

// OperatorNotifier surfaces high-severity actions on the operator channel.
type OperatorNotifier interface {
	NotifyAutoBlock(chatID int64, reason string)
}

// Security records abuse signals and escalates to auto-block when either
// threshold trips: too many logged events in the trailing hour, or today's
// order count beyond twice the identity's daily limit.
type Security struct {
	events   EventStore
	blocks   BlockStore
	orders   OrderCounter
	limits   LimitSource
	operator OperatorNotifier
	now      func() time.Time
}

func NewSecurity(events EventStore, blocks BlockStore, orders OrderCounter, limits LimitSource, operator OperatorNotifier) *Security {
	return &Security{
		events:   events,
		blocks:   blocks,
		orders:   orders,
		limits:   limits,
		operator: operator,
		now:      time.Now,
	}
}

// WithClock replaces the time source, for tests.
func (s *Security) WithClock(now func() time.Time) *Security {
	s.now = now
	return s
}

// Record appends to the event log. The log is best effort: a failing write
// is logged and swallowed so it can never take down the request path.
func (s *Security) Record(ctx context.Context, chatID int64, eventType, details string, severity domain.Severity) {
	ev := &domain.SecurityEvent{
		ChatID:    chatID,
		EventType: eventType,
		Details:   details,
		Severity:  severity,
	}
	if err := s.events.Append(ctx, ev); err != nil {
		slog.Error("append security event", "error", err, "chat_id", chatID, "event_type", eventType)
	}
}

// CheckSuspicious evaluates both abuse thresholds against recent history.
func (s *Security) CheckSuspicious(ctx context.Context, chatID int64) bool {
	events, err := s.events.CountSince(ctx, chatID, s.now().Add(-time.Hour))
	if err != nil {
		slog.Error("count security events", "error", err, "chat_id", chatID)
		return false
	}
	if events > config.SuspiciousEventsPerHour {
		return true
	}

	orders, err := s.orders.CountToday(ctx, chatID)
	if err != nil {
		slog.Error("count today's orders", "error", err, "chat_id", chatID)
		return false
	}
	limit, err := s.limits.DailyLimit(ctx, chatID)
	if err != nil {
		slog.Error("resolve daily limit", "error", err, "chat_id", chatID)
		return false
	}
	return orders > limit*2
}

// AutoBlock idempotently inserts into the block list, records a
// high-severity event and alerts the operator channel.
func (s *Security) AutoBlock(ctx context.Context, chatID int64, reason string) error {
	if err := s.blocks.Block(ctx, chatID, reason); err != nil {
		return fmt.Errorf("block user: %w", err)
	}
	s.Record(ctx, chatID, "auto_block", reason, domain.SeverityHigh)
	s.operator.NotifyAutoBlock(chatID, reason)
	return nil
}

// IsBlocked reports whether the identity is on the block list. Lookup
// failures fail open so a store outage does not lock everyone out.
func (s *Security) IsBlocked(ctx context.Context, chatID int64) bool {
	blocked, err := s.blocks.IsBlocked(ctx, chatID)
	if err != nil {
		slog.Error("block lookup", "error", err, "chat_id", chatID)
		return false
	}
	return blocked
}

// Unblock removes an identity from the block list.
func (s *Security) Unblock(ctx context.Context, adminChatID, chatID int64) (bool, error) {
	removed, err := s.blocks.Unblock(ctx, chatID)
	if err != nil {
		return false, fmt.Errorf("unblock user: %w", err)
	}
	if removed {
		s.Record(ctx, adminChatID, "admin_unblock",
			fmt.Sprintf("admin %d unblocked user %d", adminChatID, chatID), domain.SeverityMedium)
	}
	return removed, nil
}
