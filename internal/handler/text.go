package handler

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/pr-poehali-dev/telegram-bot-creation-7/internal/domain"
	"github.com/pr-poehali-dev/telegram-bot-creation-7/internal/service"
)

// HandleText routes every non-command private message: menu buttons first,
// then a pending template name, then template shortcut buttons, and finally
// the conversation step machine.
func (h *Handler) HandleText(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.Chat.Type != "private" {
		return
	}

	chatID := update.Message.Chat.ID
	text := strings.TrimSpace(update.Message.Text)

	switch text {
	case service.MenuSender:
		h.send(ctx, chatID, h.conversation.StartSender(chatID))
		return
	case service.MenuCarrier:
		h.send(ctx, chatID, h.conversation.StartCarrier(chatID))
		return
	case service.MenuMyOrders:
		h.sendMyOrders(ctx, chatID)
		return
	case service.MenuTemplates:
		h.sendTemplateList(ctx, chatID)
		return
	}

	if orderID, orderType, ok := h.conversation.TakeTemplateName(chatID); ok {
		h.saveTemplateNamed(ctx, chatID, orderID, orderType, text)
		return
	}

	// Template shortcut buttons carry the type emoji in front of the name.
	if name, ok := strings.CutPrefix(text, "📦 "); ok {
		if h.loadTemplateByName(ctx, chatID, name) {
			return
		}
	}
	if name, ok := strings.CutPrefix(text, "🚚 "); ok {
		if h.loadTemplateByName(ctx, chatID, name) {
			return
		}
	}

	reply, err := h.conversation.Input(chatID, update.Message.Text)
	if err != nil {
		if errors.Is(err, domain.ErrSessionExpired) {
			h.sendMainMenu(ctx, chatID)
			return
		}
		slog.Error("conversation input", "error", err, "chat_id", chatID)
		return
	}
	h.send(ctx, chatID, reply)
}

func (h *Handler) loadTemplateByName(ctx context.Context, chatID int64, name string) bool {
	t, err := h.templateRepo.ByName(ctx, chatID, name)
	if err != nil {
		if !errors.Is(err, domain.ErrTemplateNotFound) {
			slog.Error("load template by name", "error", err, "chat_id", chatID)
		}
		return false
	}
	h.send(ctx, chatID, h.conversation.LoadTemplate(chatID, t))
	return true
}

func (h *Handler) send(ctx context.Context, chatID int64, reply service.Reply) {
	if err := h.sender.SendReply(ctx, chatID, reply); err != nil {
		slog.Error("send reply", "error", err, "chat_id", chatID)
	}
}

func (h *Handler) sendText(ctx context.Context, chatID int64, text string) {
	h.send(ctx, chatID, service.Reply{Text: text})
}
