package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pr-poehali-dev/telegram-bot-creation-7/internal/domain"
)

type fakeMatchSource struct {
	candidates []domain.Order
	gotType    domain.OrderType
	gotExclude int64
}

func (f *fakeMatchSource) FindCandidates(_ context.Context, t domain.OrderType, _ time.Time, _ string, excludeChat int64) ([]domain.Order, error) {
	f.gotType = t
	f.gotExclude = excludeChat
	return f.candidates, nil
}

type fakeNotifier struct {
	sent    map[int64][]string
	failFor map[int64]bool
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{sent: make(map[int64][]string), failFor: make(map[int64]bool)}
}

func (f *fakeNotifier) Notify(_ context.Context, chatID int64, text string) error {
	if f.failFor[chatID] {
		return errors.New("chat not found")
	}
	f.sent[chatID] = append(f.sent[chatID], text)
	return nil
}

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestFindMatchesNormalizesWarehouse(t *testing.T) {
	source := &fakeMatchSource{candidates: []domain.Order{
		{ID: 1, ChatID: 200, Type: domain.OrderTypeCarrier, Warehouse: " коледино "},
		{ID: 2, ChatID: 201, Type: domain.OrderTypeCarrier, Warehouse: "Подольск"},
	}}
	m := NewMatcher(source, newFakeNotifier())

	order := &domain.Order{
		ID: 10, ChatID: 100, Type: domain.OrderTypeSender,
		Marketplace: "Wildberries", Warehouse: "Коледино",
		LoadingDate: date(2024, 3, 20),
	}

	matches, err := m.FindMatches(context.Background(), order)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, int64(1), matches[0].ID)
	assert.Equal(t, domain.OrderTypeCarrier, source.gotType)
	assert.Equal(t, int64(100), source.gotExclude)
}

func TestFindMatchesPrefersStoredNormalizedForm(t *testing.T) {
	source := &fakeMatchSource{candidates: []domain.Order{
		{ID: 1, ChatID: 200, Type: domain.OrderTypeCarrier, Warehouse: "Каледино", WarehouseNormalized: "каледино"},
	}}
	m := NewMatcher(source, newFakeNotifier())

	order := &domain.Order{
		ID: 10, ChatID: 100, Type: domain.OrderTypeSender,
		Warehouse: "Коледино", LoadingDate: date(2024, 3, 20),
	}

	matches, err := m.FindMatches(context.Background(), order)
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestFindMatchesCapsResults(t *testing.T) {
	source := &fakeMatchSource{}
	for i := 0; i < 8; i++ {
		source.candidates = append(source.candidates, domain.Order{
			ID: int64(i + 1), ChatID: int64(200 + i),
			Type: domain.OrderTypeCarrier, Warehouse: "Коледино",
		})
	}
	m := NewMatcher(source, newFakeNotifier())

	order := &domain.Order{
		ID: 10, ChatID: 100, Type: domain.OrderTypeSender,
		Warehouse: "Коледино", LoadingDate: date(2024, 3, 20),
	}

	matches, err := m.FindMatches(context.Background(), order)
	require.NoError(t, err)
	assert.Len(t, matches, 5)
}

func TestFindMatchesWithoutLoadingDate(t *testing.T) {
	m := NewMatcher(&fakeMatchSource{}, newFakeNotifier())

	matches, err := m.FindMatches(context.Background(), &domain.Order{ID: 10, ChatID: 100, Type: domain.OrderTypeSender})
	require.NoError(t, err)
	assert.Nil(t, matches)
}

func TestNotifyMatchesReachesBothParties(t *testing.T) {
	notifier := newFakeNotifier()
	m := NewMatcher(&fakeMatchSource{}, notifier)

	order := &domain.Order{
		ID: 10, ChatID: 100, Type: domain.OrderTypeSender,
		Warehouse: "Коледино", SenderName: "Иванов", Phone: "+79991234567",
		LoadingDate: date(2024, 3, 20),
	}
	matches := []domain.Order{
		{ID: 1, ChatID: 200, Type: domain.OrderTypeCarrier, Warehouse: "Коледино", DriverName: "Петров", Phone: "+79990001122"},
	}

	delivered := m.NotifyMatches(context.Background(), order, matches)
	assert.Equal(t, 2, delivered)

	require.Len(t, notifier.sent[100], 1)
	require.Len(t, notifier.sent[200], 1)
	// Each side sees the other's contact details.
	assert.Contains(t, notifier.sent[100][0], "+79990001122")
	assert.Contains(t, notifier.sent[200][0], "+79991234567")
}

func TestNotifyMatchesToleratesDeliveryFailure(t *testing.T) {
	notifier := newFakeNotifier()
	notifier.failFor[200] = true
	m := NewMatcher(&fakeMatchSource{}, notifier)

	order := &domain.Order{ID: 10, ChatID: 100, Type: domain.OrderTypeSender, Warehouse: "Коледино"}
	matches := []domain.Order{
		{ID: 1, ChatID: 200, Type: domain.OrderTypeCarrier, Warehouse: "Коледино"},
		{ID: 2, ChatID: 201, Type: domain.OrderTypeCarrier, Warehouse: "Коледино"},
	}

	delivered := m.NotifyMatches(context.Background(), order, matches)
	assert.Equal(t, 3, delivered)
	assert.Len(t, notifier.sent[100], 2)
	assert.Empty(t, notifier.sent[200])
	assert.Len(t, notifier.sent[201], 1)
}
