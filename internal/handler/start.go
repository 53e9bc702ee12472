package handler

import (
	"context"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

func (h *Handler) handleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.Chat.Type != "private" {
		return
	}
	h.sendMainMenu(ctx, update.Message.Chat.ID)
}

func (h *Handler) handleMainMenu(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.answerCallback(ctx, update)
	chatID := callbackChatID(update)
	if chatID == 0 {
		return
	}
	h.sendMainMenu(ctx, chatID)
}

func (h *Handler) sendMainMenu(ctx context.Context, chatID int64) {
	reply := h.conversation.MainMenu(ctx, chatID)
	if err := h.sender.SendReply(ctx, chatID, reply); err != nil {
		slog.Error("send main menu", "error", err, "chat_id", chatID)
	}
}
