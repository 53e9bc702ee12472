package service

import (
	"context"
	"fmt"

	"github.com/pr-poehali-dev/telegram-bot-creation-7/internal/domain"
	"github.com/pr-poehali-dev/telegram-bot-creation-7/internal/warehouse"
)

// OrderStore is the slice of the order repository the submission path needs.
type OrderStore interface {
	Insert(ctx context.Context, o *domain.Order) (int64, error)
	Update(ctx context.Context, o *domain.Order) error
	CountToday(ctx context.Context, chatID int64) (int, error)
}

// LimitSource resolves the per-identity daily order ceiling.
type LimitSource interface {
	DailyLimit(ctx context.Context, chatID int64) (int, error)
}

// EventRecorder appends to the security log.
type EventRecorder interface {
	Record(ctx context.Context, chatID int64, eventType, details string, severity domain.Severity)
}

// Orders owns the order submission path: quota check, warehouse
// normalization at write time, insert or update.
type Orders struct {
	store    OrderStore
	limits   LimitSource
	recorder EventRecorder
}

func NewOrders(store OrderStore, limits LimitSource, recorder EventRecorder) *Orders {
	return &Orders{store: store, limits: limits, recorder: recorder}
}

// Submit persists the session's order. The daily quota is checked before
// any write; updates of an already persisted order bypass it.
func (s *Orders) Submit(ctx context.Context, sess *domain.Session) (int64, error) {
	o := sess.Order
	o.WarehouseNormalized = warehouse.Normalize(o.Warehouse)

	if sess.EditingOrderID != 0 {
		o.ID = sess.EditingOrderID
		if err := s.store.Update(ctx, o); err != nil {
			return 0, fmt.Errorf("update order: %w", err)
		}
		return o.ID, nil
	}

	count, err := s.store.CountToday(ctx, o.ChatID)
	if err != nil {
		return 0, fmt.Errorf("count today's orders: %w", err)
	}
	limit, err := s.limits.DailyLimit(ctx, o.ChatID)
	if err != nil {
		return 0, fmt.Errorf("daily limit: %w", err)
	}
	if count >= limit {
		s.recorder.Record(ctx, o.ChatID, "daily_limit_exceeded",
			fmt.Sprintf("orders today: %d, limit: %d", count, limit), domain.SeverityMedium)
		return 0, domain.ErrDailyLimit
	}

	id, err := s.store.Insert(ctx, o)
	if err != nil {
		return 0, fmt.Errorf("insert order: %w", err)
	}
	o.ID = id
	return id, nil
}
