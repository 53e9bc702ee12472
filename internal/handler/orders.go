package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/pr-poehali-dev/telegram-bot-creation-7/internal/config"
	"github.com/pr-poehali-dev/telegram-bot-creation-7/internal/domain"
	"github.com/pr-poehali-dev/telegram-bot-creation-7/internal/service"
)

func (h *Handler) handleConfirmOrder(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.answerCallback(ctx, update)
	chatID := callbackChatID(update)
	if chatID == 0 {
		return
	}

	sess, err := h.conversation.Current(chatID)
	if err != nil {
		h.sendText(ctx, chatID, "⌛ Сессия истекла. Начните заново: /start")
		return
	}
	if update.CallbackQuery != nil {
		sess.Order.Username = update.CallbackQuery.From.Username
	}

	wasUpdate := sess.EditingOrderID != 0
	orderID, err := h.orders.Submit(ctx, sess)
	if err != nil {
		if errors.Is(err, domain.ErrDailyLimit) {
			h.sendText(ctx, chatID, "❌ Достигнут дневной лимит заявок. Попробуйте завтра.")
			return
		}
		slog.Error("submit order", "error", err, "chat_id", chatID)
		h.sendText(ctx, chatID, "❌ Не удалось сохранить заявку. Попробуйте позже.")
		return
	}
	order := *sess.Order
	h.conversation.Clear(chatID)

	if wasUpdate {
		h.sendText(ctx, chatID, fmt.Sprintf("✅ Заявка #%d обновлена!", orderID))
		return
	}

	h.send(ctx, chatID, service.Reply{
		Text: fmt.Sprintf("✅ <b>Заявка #%d сохранена!</b>", orderID),
		Inline: [][]service.Button{
			{
				{Text: "💾 Сохранить как шаблон", Data: fmt.Sprintf("save_template_%d", orderID)},
				{Text: "➡️ Пропустить", Data: "skip_template"},
			},
		},
	})

	matches, err := h.matcher.FindMatches(ctx, &order)
	if err != nil {
		slog.Error("find matches", "error", err, "order_id", orderID)
	} else if len(matches) > 0 {
		h.matcher.NotifyMatches(ctx, &order, matches)
	}

	if _, err := h.dispatcher.Broadcast(ctx, &order); err != nil {
		slog.Error("broadcast order", "error", err, "order_id", orderID)
	}

	h.sendSubscriptionPrompt(ctx, chatID, &order)

	if order.Type == domain.OrderTypeSender && h.labels.Enabled() && order.LabelSize != "" {
		h.sendLabel(ctx, chatID, &order)
	}
}

// sendLabel renders the thermal label and delivers it as a document, right
// after confirmation and again on demand. The order stands either way; a
// failed render only costs the user a retry button.
func (h *Handler) sendLabel(ctx context.Context, chatID int64, o *domain.Order) {
	pdf, filename, err := h.labels.Render(ctx, o.ID, o.Type, o.LabelSize)
	if err != nil {
		slog.Error("render label", "error", err, "order_id", o.ID)
		h.send(ctx, chatID, service.Reply{
			Text: "❌ Не удалось сформировать этикетку. Попробуйте позже.",
			Inline: [][]service.Button{
				{{Text: "🖨️ Скачать PDF", Data: fmt.Sprintf("label_%d", o.ID)}},
			},
		})
		return
	}

	caption := fmt.Sprintf("🏷️ Этикетка %s мм для заявки #%d", o.LabelSize, o.ID)
	if err := h.sender.SendDocument(ctx, chatID, filename, pdf, caption); err != nil {
		slog.Error("send label", "error", err, "order_id", o.ID)
	}
}

func (h *Handler) handleCancelOrder(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.answerCallback(ctx, update)
	chatID := callbackChatID(update)
	if chatID == 0 {
		return
	}
	h.conversation.Clear(chatID)
	h.sendText(ctx, chatID, "❌ Заявка отменена")
	h.sendMainMenu(ctx, chatID)
}

func (h *Handler) handleEditField(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.answerCallback(ctx, update)
	chatID := callbackChatID(update)
	if chatID == 0 || update.CallbackQuery == nil {
		return
	}

	fieldKey := strings.TrimPrefix(update.CallbackQuery.Data, service.CallbackEditPrefix)
	reply, err := h.conversation.BeginEdit(chatID, fieldKey)
	if err != nil {
		if errors.Is(err, domain.ErrSessionExpired) {
			h.sendMainMenu(ctx, chatID)
		}
		return
	}
	h.send(ctx, chatID, reply)
}

func (h *Handler) handleMyOrders(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.answerCallback(ctx, update)
	chatID := callbackChatID(update)
	if chatID == 0 {
		return
	}
	h.sendMyOrders(ctx, chatID)
}

func (h *Handler) sendMyOrders(ctx context.Context, chatID int64) {
	orders, err := h.orderRepo.ListByOwner(ctx, chatID, config.OrdersListLimit)
	if err != nil {
		slog.Error("list orders", "error", err, "chat_id", chatID)
		h.sendText(ctx, chatID, "❌ Не удалось загрузить заявки")
		return
	}
	if len(orders) == 0 {
		h.sendText(ctx, chatID, "📭 У вас пока нет заявок")
		return
	}

	inline := make([][]service.Button, 0, len(orders)+1)
	for _, o := range orders {
		label := fmt.Sprintf("%s #%d • %s • %s", typeBadge(o.Type), o.ID, o.Warehouse, dateLabel(&o))
		inline = append(inline, []service.Button{
			{Text: label, Data: fmt.Sprintf("view_order_%d", o.ID)},
		})
	}
	inline = append(inline, []service.Button{{Text: "🏠 Главное меню", Data: "main_menu"}})

	h.send(ctx, chatID, service.Reply{
		Text:   fmt.Sprintf("📋 <b>Ваши заявки</b> (%d)", len(orders)),
		Inline: inline,
	})
}

func typeBadge(t domain.OrderType) string {
	if t == domain.OrderTypeSender {
		return "📦"
	}
	return "🚚"
}

func dateLabel(o *domain.Order) string {
	if o.LoadingDate == nil {
		return "без даты"
	}
	return o.LoadingDate.Format("02.01.2006")
}

func (h *Handler) handleViewOrder(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.answerCallback(ctx, update)
	chatID := callbackChatID(update)
	orderID := callbackID(update, "view_order_")
	if chatID == 0 || orderID == 0 {
		return
	}

	o, err := h.ownOrder(ctx, chatID, orderID)
	if err != nil {
		h.sendText(ctx, chatID, "❌ Заявка не найдена")
		return
	}

	h.send(ctx, chatID, service.Reply{
		Text: service.OrderCard(o),
		Inline: [][]service.Button{
			{
				{Text: "✏️ Изменить", Data: fmt.Sprintf("change_order_%d", o.ID)},
				{Text: "🗑 Удалить", Data: fmt.Sprintf("delete_order_%d", o.ID)},
			},
			{{Text: "💾 Сохранить как шаблон", Data: fmt.Sprintf("save_template_%d", o.ID)}},
			{{Text: "⬅️ К списку", Data: "my_orders"}},
		},
	})
}

func (h *Handler) handleEditOrder(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.answerCallback(ctx, update)
	chatID := callbackChatID(update)
	orderID := callbackID(update, "change_order_")
	if chatID == 0 || orderID == 0 {
		return
	}

	o, err := h.ownOrder(ctx, chatID, orderID)
	if err != nil {
		h.sendText(ctx, chatID, "❌ Заявка не найдена")
		return
	}
	h.send(ctx, chatID, h.conversation.LoadOrder(chatID, o))
}

func (h *Handler) handleDeleteOrder(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.answerCallback(ctx, update)
	chatID := callbackChatID(update)
	orderID := callbackID(update, "delete_order_")
	if chatID == 0 || orderID == 0 {
		return
	}

	deleted, err := h.orderRepo.Delete(ctx, orderID, chatID)
	if err != nil {
		slog.Error("delete order", "error", err, "order_id", orderID)
		h.sendText(ctx, chatID, "❌ Не удалось удалить заявку")
		return
	}
	if !deleted {
		h.sendText(ctx, chatID, "❌ Заявка не найдена")
		return
	}
	h.sendText(ctx, chatID, fmt.Sprintf("🗑 Заявка #%d удалена", orderID))
	h.sendMyOrders(ctx, chatID)
}

func (h *Handler) handleLabel(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.answerCallback(ctx, update)
	chatID := callbackChatID(update)
	orderID := callbackID(update, "label_")
	if chatID == 0 || orderID == 0 {
		return
	}

	o, err := h.ownOrder(ctx, chatID, orderID)
	if err != nil {
		h.sendText(ctx, chatID, "❌ Заявка не найдена")
		return
	}

	h.sendLabel(ctx, chatID, o)
}

// ownOrder loads an order and verifies the requesting chat owns it.
func (h *Handler) ownOrder(ctx context.Context, chatID, orderID int64) (*domain.Order, error) {
	o, err := h.orderRepo.ByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.ChatID != chatID {
		return nil, domain.ErrOrderNotFound
	}
	return o, nil
}

// callbackID parses the numeric tail of a callback payload.
func callbackID(update *models.Update, prefix string) int64 {
	if update.CallbackQuery == nil {
		return 0
	}
	return parseID(strings.TrimPrefix(update.CallbackQuery.Data, prefix))
}

func parseID(s string) int64 {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return id
}
