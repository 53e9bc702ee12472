package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pr-poehali-dev/telegram-bot-creation-7/internal/config"
	"github.com/pr-poehali-dev/telegram-bot-creation-7/internal/domain"
	"github.com/pr-poehali-dev/telegram-bot-creation-7/internal/warehouse"
)

// MatchSource lists candidate orders of one type sharing a loading date and
// marketplace, newest first, excluding the given owner.
type MatchSource interface {
	FindCandidates(ctx context.Context, t domain.OrderType, loadingDate time.Time, marketplace string, excludeChat int64) ([]domain.Order, error)
}

// Notifier delivers one message to one chat.
type Notifier interface {
	Notify(ctx context.Context, chatID int64, text string) error
}

// Matcher pairs a newly confirmed order with complementary listings: the
// opposite type, same loading date, same marketplace, same warehouse after
// normalization.
type Matcher struct {
	orders   MatchSource
	notifier Notifier
	limit    int
}

func NewMatcher(orders MatchSource, notifier Notifier) *Matcher {
	return &Matcher{orders: orders, notifier: notifier, limit: config.MaxMatchResults}
}

// FindMatches is best effort: a missing loading date yields zero matches,
// not an error.
func (m *Matcher) FindMatches(ctx context.Context, o *domain.Order) ([]domain.Order, error) {
	if o.LoadingDate == nil {
		return nil, nil
	}

	candidates, err := m.orders.FindCandidates(ctx, o.Type.Opposite(), *o.LoadingDate, o.Marketplace, o.ChatID)
	if err != nil {
		return nil, fmt.Errorf("find candidates: %w", err)
	}

	normalized := warehouse.Normalize(o.Warehouse)
	var matches []domain.Order
	for _, c := range candidates {
		candidateNorm := c.WarehouseNormalized
		if candidateNorm == "" {
			candidateNorm = warehouse.Normalize(c.Warehouse)
		}
		// Normalized equality plus a raw-string fallback, in case a stored
		// normalized form predates a table change.
		if candidateNorm != normalized && c.Warehouse != o.Warehouse {
			continue
		}
		matches = append(matches, c)
		if len(matches) >= m.limit {
			break
		}
	}
	return matches, nil
}

// NotifyMatches introduces both parties to each other with full contact
// details. Individual delivery failures are counted and logged, never
// propagated.
func (m *Matcher) NotifyMatches(ctx context.Context, o *domain.Order, matches []domain.Order) (delivered int) {
	failed := 0
	for i := range matches {
		match := &matches[i]

		if err := m.notifier.Notify(ctx, o.ChatID, matchCard(match, true)); err != nil {
			failed++
		} else {
			delivered++
		}
		if err := m.notifier.Notify(ctx, match.ChatID, matchCard(o, true)); err != nil {
			failed++
		} else {
			delivered++
		}
	}
	if len(matches) > 0 {
		slog.Info("match notifications sent",
			"order_id", o.ID, "matches", len(matches), "delivered", delivered, "failed", failed)
	}
	return delivered
}

// matchCard renders one listing for the opposite party. withContact adds
// the phone and name; the subscription broadcast reuses the card without
// them.
func matchCard(o *domain.Order, withContact bool) string {
	var card string
	if o.Type == domain.OrderTypeSender {
		card = fmt.Sprintf(
			"🤝 <b>Найдена встречная заявка отправителя #%d</b>\n\n"+
				"📦 <b>Маркетплейс:</b> %s\n"+
				"📍 <b>Склад:</b> %s\n"+
				"📅 <b>Дата погрузки:</b> %s\n"+
				"📦 <b>Груз:</b> %d паллет, %d коробок\n"+
				"💵 <b>Ставка:</b> %s руб",
			o.ID, o.Marketplace, o.Warehouse, fmtDate(o.LoadingDate),
			o.PalletQuantity, o.BoxQuantity, o.Rate.StringFixed(0),
		)
	} else {
		card = fmt.Sprintf(
			"🤝 <b>Найдена встречная заявка перевозчика #%d</b>\n\n"+
				"📦 <b>Маркетплейс:</b> %s\n"+
				"📍 <b>Склад:</b> %s\n"+
				"📅 <b>Дата погрузки:</b> %s\n"+
				"🚗 <b>Авто:</b> %s %s\n"+
				"📦 <b>Вместимость:</b> %d паллет, %d коробок\n"+
				"🚚 <b>Гидроборт:</b> %s",
			o.ID, o.Marketplace, o.Warehouse, fmtDate(o.LoadingDate),
			o.CarBrand, o.CarModel, o.PalletCapacity, o.BoxCapacity,
			yesNo(o.Hydroboard),
		)
	}
	if withContact {
		card += fmt.Sprintf("\n\n👤 <b>Контакт:</b> %s\n📱 <b>Телефон:</b> %s", o.ContactName(), o.Phone)
	}
	return card
}
