package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pr-poehali-dev/telegram-bot-creation-7/internal/domain"
)

type fakeOrderStore struct {
	inserted []*domain.Order
	updated  []*domain.Order
	today    int
	nextID   int64
}

func (f *fakeOrderStore) Insert(_ context.Context, o *domain.Order) (int64, error) {
	f.nextID++
	f.inserted = append(f.inserted, o)
	return f.nextID, nil
}

func (f *fakeOrderStore) Update(_ context.Context, o *domain.Order) error {
	f.updated = append(f.updated, o)
	return nil
}

func (f *fakeOrderStore) CountToday(_ context.Context, _ int64) (int, error) {
	return f.today, nil
}

type fakeLimitSource struct {
	limit int
}

func (f *fakeLimitSource) DailyLimit(_ context.Context, _ int64) (int, error) {
	return f.limit, nil
}

type fakeEventRecorder struct {
	events []string
}

func (f *fakeEventRecorder) Record(_ context.Context, _ int64, eventType, _ string, _ domain.Severity) {
	f.events = append(f.events, eventType)
}

func TestSubmitInsertsAndNormalizes(t *testing.T) {
	store := &fakeOrderStore{}
	recorder := &fakeEventRecorder{}
	svc := NewOrders(store, &fakeLimitSource{limit: 10}, recorder)

	sess := &domain.Session{
		ChatID: 100,
		Order:  &domain.Order{ChatID: 100, Type: domain.OrderTypeSender, Warehouse: "  Коледино "},
	}

	id, err := svc.Submit(context.Background(), sess)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	require.Len(t, store.inserted, 1)
	assert.Equal(t, "каледино", store.inserted[0].WarehouseNormalized)
	assert.Empty(t, recorder.events)
}

func TestSubmitEnforcesDailyQuota(t *testing.T) {
	store := &fakeOrderStore{today: 10}
	recorder := &fakeEventRecorder{}
	svc := NewOrders(store, &fakeLimitSource{limit: 10}, recorder)

	sess := &domain.Session{
		ChatID: 100,
		Order:  &domain.Order{ChatID: 100, Type: domain.OrderTypeSender, Warehouse: "Коледино"},
	}

	_, err := svc.Submit(context.Background(), sess)
	assert.ErrorIs(t, err, domain.ErrDailyLimit)
	assert.Empty(t, store.inserted)
	assert.Equal(t, []string{"daily_limit_exceeded"}, recorder.events)
}

func TestSubmitUpdateBypassesQuota(t *testing.T) {
	store := &fakeOrderStore{today: 10}
	svc := NewOrders(store, &fakeLimitSource{limit: 10}, &fakeEventRecorder{})

	sess := &domain.Session{
		ChatID:         100,
		EditingOrderID: 42,
		Order:          &domain.Order{ChatID: 100, Type: domain.OrderTypeSender, Warehouse: "Подольск"},
	}

	id, err := svc.Submit(context.Background(), sess)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	require.Len(t, store.updated, 1)
	assert.Equal(t, int64(42), store.updated[0].ID)
	assert.Equal(t, "падольск", store.updated[0].WarehouseNormalized)
	assert.Empty(t, store.inserted)
}
