package handler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/pr-poehali-dev/telegram-bot-creation-7/internal/domain"
	"github.com/pr-poehali-dev/telegram-bot-creation-7/internal/service"
)

// sendSubscriptionPrompt offers a standing notification for listings of the
// opposite type, right after a successful submission.
func (h *Handler) sendSubscriptionPrompt(ctx context.Context, chatID int64, o *domain.Order) {
	opposite := o.Type.Opposite()

	var what string
	if opposite == domain.OrderTypeCarrier {
		what = "новых перевозчиках"
	} else {
		what = "новых отправителях"
	}

	inline := [][]service.Button{
		{{Text: "🔔 Обо всех", Data: fmt.Sprintf("subscribe_all_%s", opposite)}},
	}
	if o.Warehouse != "" {
		inline = append(inline, []service.Button{
			{Text: fmt.Sprintf("📍 Только склад «%s»", o.Warehouse), Data: fmt.Sprintf("subscribe_wh_%s_%d", opposite, o.ID)},
		})
	}
	inline = append(inline, []service.Button{{Text: "🔕 Не нужно", Data: "subscribe_skip"}})

	h.send(ctx, chatID, service.Reply{
		Text:   fmt.Sprintf("🔔 <b>Хотите получать уведомления о %s?</b>", what),
		Inline: inline,
	})
}

func (h *Handler) handleSubscribeAll(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.answerCallback(ctx, update)
	chatID := callbackChatID(update)
	if chatID == 0 || update.CallbackQuery == nil {
		return
	}

	listingType := domain.OrderType(strings.TrimPrefix(update.CallbackQuery.Data, "subscribe_all_"))
	if listingType != domain.OrderTypeSender && listingType != domain.OrderTypeCarrier {
		return
	}

	if err := h.dispatcher.Subscribe(ctx, chatID, listingType, domain.SubscriptionAll, ""); err != nil {
		slog.Error("subscribe", "error", err, "chat_id", chatID)
		h.sendText(ctx, chatID, "❌ Не удалось оформить подписку")
		return
	}
	h.sendText(ctx, chatID, "🔔 Подписка оформлена! Вы будете получать уведомления о новых заявках.")
}

func (h *Handler) handleSubscribeWarehouse(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.answerCallback(ctx, update)
	chatID := callbackChatID(update)
	if chatID == 0 || update.CallbackQuery == nil {
		return
	}

	// Payload: subscribe_wh_<type>_<orderID>. The order supplies the
	// warehouse filter so the callback stays within Telegram's size cap.
	rest := strings.TrimPrefix(update.CallbackQuery.Data, "subscribe_wh_")
	typeName, idPart, ok := strings.Cut(rest, "_")
	if !ok {
		return
	}
	listingType := domain.OrderType(typeName)
	if listingType != domain.OrderTypeSender && listingType != domain.OrderTypeCarrier {
		return
	}

	o, err := h.ownOrder(ctx, chatID, parseID(idPart))
	if err != nil {
		h.sendText(ctx, chatID, "❌ Заявка не найдена")
		return
	}

	if err := h.dispatcher.Subscribe(ctx, chatID, listingType, domain.SubscriptionWarehouse, o.Warehouse); err != nil {
		slog.Error("subscribe", "error", err, "chat_id", chatID)
		h.sendText(ctx, chatID, "❌ Не удалось оформить подписку")
		return
	}
	h.sendText(ctx, chatID, fmt.Sprintf("🔔 Подписка оформлена! Уведомления только по складу «%s».", o.Warehouse))
}

func (h *Handler) handleSubscribeSkip(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.answerCallback(ctx, update)
}

func (h *Handler) handleStop(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	if err := h.dispatcher.Unsubscribe(ctx, chatID); err != nil {
		slog.Error("unsubscribe", "error", err, "chat_id", chatID)
		h.sendText(ctx, chatID, "❌ Не удалось отключить уведомления")
		return
	}
	h.sendText(ctx, chatID, "🔕 Все подписки отключены. Оформить новую можно после подачи заявки.")
}
