package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pr-poehali-dev/telegram-bot-creation-7/internal/domain"
	"github.com/pr-poehali-dev/telegram-bot-creation-7/internal/warehouse"
)

// SubscriptionStore resolves and records standing notification requests.
type SubscriptionStore interface {
	// ListByListingType returns subscriptions interested in new listings of
	// the given type.
	ListByListingType(ctx context.Context, t domain.OrderType) ([]domain.Subscription, error)
	Upsert(ctx context.Context, sub *domain.Subscription) error
	DeleteByChat(ctx context.Context, chatID int64) error
}

// Dispatcher fans a newly confirmed order out to subscribers of its listing
// type: everyone in "all" mode plus warehouse-mode subscribers whose filter
// normalizes to the order's warehouse.
type Dispatcher struct {
	subs     SubscriptionStore
	notifier Notifier
}

func NewDispatcher(subs SubscriptionStore, notifier Notifier) *Dispatcher {
	return &Dispatcher{subs: subs, notifier: notifier}
}

// Broadcast sends one announcement per matching subscriber. A failing
// recipient never aborts the rest of the fan-out; the aggregate outcome is
// logged instead.
func (d *Dispatcher) Broadcast(ctx context.Context, o *domain.Order) (sent int, err error) {
	subscribers, err := d.subs.ListByListingType(ctx, o.Type)
	if err != nil {
		return 0, fmt.Errorf("list subscribers: %w", err)
	}

	normalized := warehouse.Normalize(o.Warehouse)
	failed := 0
	for _, sub := range subscribers {
		if sub.ChatID == o.ChatID {
			continue
		}
		if sub.Mode == domain.SubscriptionWarehouse && warehouse.Normalize(sub.WarehouseFilter) != normalized {
			continue
		}
		if err := d.notifier.Notify(ctx, sub.ChatID, matchCard(o, false)); err != nil {
			failed++
			continue
		}
		sent++
	}

	if sent > 0 || failed > 0 {
		slog.Info("subscription broadcast finished",
			"order_id", o.ID, "type", o.Type, "sent", sent, "failed", failed)
	}
	return sent, nil
}

// Subscribe records a standing request; duplicate inserts are tolerated.
func (d *Dispatcher) Subscribe(ctx context.Context, chatID int64, listingType domain.OrderType, mode domain.SubscriptionMode, warehouseFilter string) error {
	sub := &domain.Subscription{
		ChatID:          chatID,
		UserType:        listingType,
		Mode:            mode,
		WarehouseFilter: warehouseFilter,
	}
	if err := d.subs.Upsert(ctx, sub); err != nil {
		return fmt.Errorf("upsert subscription: %w", err)
	}
	return nil
}

// Unsubscribe drops every standing request of one chat.
func (d *Dispatcher) Unsubscribe(ctx context.Context, chatID int64) error {
	if err := d.subs.DeleteByChat(ctx, chatID); err != nil {
		return fmt.Errorf("delete subscriptions: %w", err)
	}
	return nil
}
