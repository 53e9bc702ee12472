package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pr-poehali-dev/telegram-bot-creation-7/internal/domain"
)

type fakeSubscriptionStore struct {
	subs     []domain.Subscription
	upserted []*domain.Subscription
	dropped  []int64
}

func (f *fakeSubscriptionStore) ListByListingType(_ context.Context, t domain.OrderType) ([]domain.Subscription, error) {
	var out []domain.Subscription
	for _, s := range f.subs {
		if s.UserType == t {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSubscriptionStore) Upsert(_ context.Context, sub *domain.Subscription) error {
	f.upserted = append(f.upserted, sub)
	return nil
}

func (f *fakeSubscriptionStore) DeleteByChat(_ context.Context, chatID int64) error {
	f.dropped = append(f.dropped, chatID)
	return nil
}

func TestBroadcastFiltersByModeAndWarehouse(t *testing.T) {
	store := &fakeSubscriptionStore{subs: []domain.Subscription{
		{ChatID: 200, UserType: domain.OrderTypeSender, Mode: domain.SubscriptionAll},
		{ChatID: 201, UserType: domain.OrderTypeSender, Mode: domain.SubscriptionWarehouse, WarehouseFilter: "подольск"},
		{ChatID: 202, UserType: domain.OrderTypeSender, Mode: domain.SubscriptionWarehouse, WarehouseFilter: "Коледино"},
		{ChatID: 203, UserType: domain.OrderTypeCarrier, Mode: domain.SubscriptionAll},
	}}
	notifier := newFakeNotifier()
	d := NewDispatcher(store, notifier)

	order := &domain.Order{
		ID: 10, ChatID: 100, Type: domain.OrderTypeSender,
		Warehouse: "Подольск", SenderName: "Иванов", Phone: "+79991234567",
	}

	sent, err := d.Broadcast(context.Background(), order)
	require.NoError(t, err)
	assert.Equal(t, 2, sent)

	assert.Len(t, notifier.sent[200], 1)
	assert.Len(t, notifier.sent[201], 1)
	assert.Empty(t, notifier.sent[202])
	assert.Empty(t, notifier.sent[203])

	// Broadcast cards carry no contact details.
	assert.NotContains(t, notifier.sent[200][0], "+79991234567")
}

func TestBroadcastSkipsOwner(t *testing.T) {
	store := &fakeSubscriptionStore{subs: []domain.Subscription{
		{ChatID: 100, UserType: domain.OrderTypeSender, Mode: domain.SubscriptionAll},
	}}
	notifier := newFakeNotifier()
	d := NewDispatcher(store, notifier)

	sent, err := d.Broadcast(context.Background(), &domain.Order{ID: 10, ChatID: 100, Type: domain.OrderTypeSender})
	require.NoError(t, err)
	assert.Zero(t, sent)
	assert.Empty(t, notifier.sent)
}

func TestBroadcastToleratesDeliveryFailure(t *testing.T) {
	store := &fakeSubscriptionStore{subs: []domain.Subscription{
		{ChatID: 200, UserType: domain.OrderTypeSender, Mode: domain.SubscriptionAll},
		{ChatID: 201, UserType: domain.OrderTypeSender, Mode: domain.SubscriptionAll},
	}}
	notifier := newFakeNotifier()
	notifier.failFor[200] = true
	d := NewDispatcher(store, notifier)

	sent, err := d.Broadcast(context.Background(), &domain.Order{ID: 10, ChatID: 100, Type: domain.OrderTypeSender})
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.Len(t, notifier.sent[201], 1)
}

func TestSubscribe(t *testing.T) {
	store := &fakeSubscriptionStore{}
	d := NewDispatcher(store, newFakeNotifier())

	err := d.Subscribe(context.Background(), 100, domain.OrderTypeCarrier, domain.SubscriptionWarehouse, "Коледино")
	require.NoError(t, err)

	require.Len(t, store.upserted, 1)
	sub := store.upserted[0]
	assert.Equal(t, int64(100), sub.ChatID)
	assert.Equal(t, domain.OrderTypeCarrier, sub.UserType)
	assert.Equal(t, domain.SubscriptionWarehouse, sub.Mode)
	assert.Equal(t, "Коледино", sub.WarehouseFilter)
}

func TestUnsubscribe(t *testing.T) {
	store := &fakeSubscriptionStore{}
	d := NewDispatcher(store, newFakeNotifier())

	require.NoError(t, d.Unsubscribe(context.Background(), 100))
	assert.Equal(t, []int64{100}, store.dropped)
}
