package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pr-poehali-dev/telegram-bot-creation-7/internal/domain"
)

type fakeTemplateLister struct {
	templates []domain.Template
}

func (f *fakeTemplateLister) ListByOwner(_ context.Context, _ int64) ([]domain.Template, error) {
	return f.templates, nil
}

func newTestConversation() (*Conversation, *time.Time) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	c := NewConversation(&fakeTemplateLister{}).WithClock(func() time.Time { return now })
	return c, &now
}

func feed(t *testing.T, c *Conversation, chatID int64, inputs ...string) {
	t.Helper()
	for _, input := range inputs {
		_, err := c.Input(chatID, input)
		require.NoError(t, err)
	}
}

func TestSenderFlowReachesPreview(t *testing.T) {
	c, _ := newTestConversation()
	const chat = int64(100)

	c.StartSender(chat)
	feed(t, c, chat,
		"Wildberries",
		"Коледино",
		"г. Москва, ул. Ленина, д. 10",
		"20.03.2024",
		"14:30",
		"21.03.2024",
		"5",
		"10",
		"Иванов Иван Иванович",
		"89991234567",
		"5000",
		"120x75 мм",
	)

	sess, err := c.Current(chat)
	require.NoError(t, err)
	o := sess.Order

	assert.Equal(t, domain.OrderTypeSender, o.Type)
	assert.Equal(t, "Wildberries", o.Marketplace)
	assert.Equal(t, "Коледино", o.Warehouse)
	assert.Equal(t, "г. Москва, ул. Ленина, д. 10", o.LoadingAddress)
	require.NotNil(t, o.LoadingDate)
	assert.Equal(t, "20.03.2024", o.LoadingDate.Format(dateLayout))
	assert.Equal(t, "14:30", o.LoadingTime)
	require.NotNil(t, o.DeliveryDate)
	assert.Equal(t, "21.03.2024", o.DeliveryDate.Format(dateLayout))
	assert.Equal(t, 5, o.PalletQuantity)
	assert.Equal(t, 10, o.BoxQuantity)
	assert.Equal(t, "Иванов Иван Иванович", o.SenderName)
	assert.Equal(t, "+79991234567", o.Phone)
	assert.Equal(t, "5000", o.Rate.StringFixed(0))
	assert.Equal(t, "120x75", o.LabelSize)
}

func TestCarrierFlowReachesPreview(t *testing.T) {
	c, _ := newTestConversation()
	const chat = int64(200)

	c.StartCarrier(chat)
	feed(t, c, chat,
		"OZON",
		"Любой склад",
		"Mercedes",
		"Sprinter",
		"А000АА777",
		"10",
		"50",
		"Петров Петр Петрович",
		"+79995556677",
		"Есть",
		"20.03.2024",
		"20.03.2024",
	)

	sess, err := c.Current(chat)
	require.NoError(t, err)
	o := sess.Order

	assert.Equal(t, domain.OrderTypeCarrier, o.Type)
	assert.Equal(t, "OZON", o.Marketplace)
	assert.Equal(t, "Любой склад", o.Warehouse)
	assert.Equal(t, "Mercedes", o.CarBrand)
	assert.Equal(t, "Sprinter", o.CarModel)
	assert.Equal(t, "А000АА777", o.LicensePlate)
	assert.Equal(t, 10, o.PalletCapacity)
	assert.Equal(t, 50, o.BoxCapacity)
	assert.Equal(t, "Петров Петр Петрович", o.DriverName)
	assert.Equal(t, "+79995556677", o.Phone)
	assert.True(t, o.Hydroboard)
	require.NotNil(t, o.ArrivalDate)
	assert.Equal(t, "20.03.2024", o.ArrivalDate.Format(dateLayout))
}

func TestInvalidMarketplaceRepromptsWithoutAdvancing(t *testing.T) {
	c, _ := newTestConversation()
	const chat = int64(300)

	c.StartSender(chat)
	reply, err := c.Input(chat, "Amazon")
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "❌")

	// The step has not moved: a valid marketplace is still accepted.
	reply, err = c.Input(chat, "OZON")
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "склад")
}

func TestInvalidDateReprompts(t *testing.T) {
	c, _ := newTestConversation()
	const chat = int64(310)

	c.StartSender(chat)
	feed(t, c, chat, "Wildberries", "Коледино", "адрес")

	reply, err := c.Input(chat, "2024-03-20")
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "ДД.ММ.ГГГГ")

	reply, err = c.Input(chat, "20.03.2024")
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "время")
}

func TestQuantityCoercion(t *testing.T) {
	c, _ := newTestConversation()
	const chat = int64(320)

	c.StartSender(chat)
	feed(t, c, chat,
		"Wildberries", "Коледино", "адрес", "сегодня", "10:00", "завтра",
		"много", "и ещё", "Иванов", "89991234567", "дорого", "58x40 мм",
	)

	sess, err := c.Current(chat)
	require.NoError(t, err)
	assert.Equal(t, 0, sess.Order.PalletQuantity)
	assert.Equal(t, 0, sess.Order.BoxQuantity)
	assert.Equal(t, "0", sess.Order.Rate.StringFixed(0))
}

func TestOverlongInputRejected(t *testing.T) {
	c, _ := newTestConversation()
	const chat = int64(330)

	c.StartSender(chat)
	feed(t, c, chat, "Wildberries", "Коледино")

	reply, err := c.Input(chat, strings.Repeat("а", 501))
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "слишком длинное")

	// The oversized message was not written anywhere.
	feed(t, c, chat, "нормальный адрес")
	c.Clear(chat)
}

func TestEditFieldReturnsToPreview(t *testing.T) {
	c, _ := newTestConversation()
	const chat = int64(340)

	c.StartSender(chat)
	feed(t, c, chat,
		"Wildberries", "Коледино", "адрес", "20.03.2024", "14:30", "21.03.2024",
		"5", "10", "Иванов", "89991234567", "5000", "120x75 мм",
	)

	reply, err := c.BeginEdit(chat, "rate")
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "ставку")

	reply, err = c.Input(chat, "7000")
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "Проверьте данные")

	sess, err := c.Current(chat)
	require.NoError(t, err)
	assert.Equal(t, "7000", sess.Order.Rate.StringFixed(0))
	// The other fields survived the edit.
	assert.Equal(t, "Коледино", sess.Order.Warehouse)
	assert.Equal(t, 5, sess.Order.PalletQuantity)
}

func TestEditInvalidInputKeepsOverlayArmed(t *testing.T) {
	c, _ := newTestConversation()
	const chat = int64(350)

	c.StartSender(chat)
	feed(t, c, chat,
		"Wildberries", "Коледино", "адрес", "20.03.2024", "14:30", "21.03.2024",
		"5", "10", "Иванов", "89991234567", "5000", "120x75 мм",
	)

	_, err := c.BeginEdit(chat, "loading_date")
	require.NoError(t, err)

	reply, err := c.Input(chat, "не дата")
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "❌")

	reply, err = c.Input(chat, "25.03.2024")
	require.NoError(t, err)
	assert.Contains(t, reply.Text, "Проверьте данные")

	sess, err := c.Current(chat)
	require.NoError(t, err)
	assert.Equal(t, "25.03.2024", sess.Order.LoadingDate.Format(dateLayout))
}

func TestSessionExpiry(t *testing.T) {
	c, now := newTestConversation()
	const chat = int64(360)

	c.StartSender(chat)
	feed(t, c, chat, "Wildberries")

	*now = now.Add(6*time.Hour + time.Minute)

	_, err := c.Input(chat, "Коледино")
	assert.ErrorIs(t, err, domain.ErrSessionExpired)
}

func TestActivityExtendsSession(t *testing.T) {
	c, now := newTestConversation()
	const chat = int64(370)

	c.StartSender(chat)
	feed(t, c, chat, "Wildberries")

	*now = now.Add(5 * time.Hour)
	feed(t, c, chat, "Коледино")

	*now = now.Add(5 * time.Hour)
	_, err := c.Input(chat, "адрес")
	assert.NoError(t, err)
}

func TestLoadTemplateJumpsToPreview(t *testing.T) {
	c, _ := newTestConversation()
	const chat = int64(380)

	loading := time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)
	tmpl := &domain.Template{
		ID:        1,
		ChatID:    chat,
		Name:      "Мой маршрут",
		OrderType: domain.OrderTypeSender,
		Data: &domain.Order{
			ID:          99,
			Type:        domain.OrderTypeSender,
			Marketplace: "Wildberries",
			Warehouse:   "Коледино",
			LoadingDate: &loading,
			SenderName:  "Иванов",
			Phone:       "+79991234567",
		},
	}

	reply := c.LoadTemplate(chat, tmpl)
	assert.Contains(t, reply.Text, "Проверьте данные")

	sess, err := c.Current(chat)
	require.NoError(t, err)
	// A template replay creates a new order, never resurrects the old id.
	assert.Zero(t, sess.Order.ID)
	assert.Zero(t, sess.EditingOrderID)
	assert.Equal(t, "Коледино", sess.Order.Warehouse)
}

func TestLoadOrderArmsUpdate(t *testing.T) {
	c, _ := newTestConversation()
	const chat = int64(390)

	o := &domain.Order{ID: 42, ChatID: chat, Type: domain.OrderTypeCarrier, Warehouse: "Подольск"}
	c.LoadOrder(chat, o)

	sess, err := c.Current(chat)
	require.NoError(t, err)
	assert.Equal(t, int64(42), sess.EditingOrderID)
}

func TestTakeTemplateName(t *testing.T) {
	c, _ := newTestConversation()
	const chat = int64(400)

	_, _, ok := c.TakeTemplateName(chat)
	assert.False(t, ok)

	c.AwaitTemplateName(chat, 7, domain.OrderTypeSender)

	orderID, orderType, ok := c.TakeTemplateName(chat)
	require.True(t, ok)
	assert.Equal(t, int64(7), orderID)
	assert.Equal(t, domain.OrderTypeSender, orderType)

	// Consumed, a second take finds nothing.
	_, _, ok = c.TakeTemplateName(chat)
	assert.False(t, ok)
}

func TestMainMenuListsTemplateShortcuts(t *testing.T) {
	lister := &fakeTemplateLister{templates: []domain.Template{
		{Name: "Коледино WB", OrderType: domain.OrderTypeSender},
		{Name: "Подольск", OrderType: domain.OrderTypeCarrier},
	}}
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	c := NewConversation(lister).WithClock(func() time.Time { return now })

	reply := c.MainMenu(context.Background(), 500)

	var labels []string
	for _, r := range reply.Keyboard {
		for _, b := range r {
			labels = append(labels, b.Text)
		}
	}
	assert.Contains(t, labels, "📦 Коледино WB")
	assert.Contains(t, labels, "🚚 Подольск")
	assert.Contains(t, labels, MenuSender)
	assert.Contains(t, labels, MenuCarrier)
	assert.Contains(t, labels, MenuTemplates)
}
