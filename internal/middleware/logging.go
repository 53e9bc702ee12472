package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/google/uuid"
)

// ChatID extracts the chat the update belongs to, 0 when there is none.
func ChatID(update *models.Update) int64 {
	switch {
	case update.Message != nil:
		return update.Message.Chat.ID
	case update.CallbackQuery != nil:
		if update.CallbackQuery.Message.Message != nil {
			return update.CallbackQuery.Message.Message.Chat.ID
		}
		return update.CallbackQuery.From.ID
	}
	return 0
}

// Logging returns middleware that tags each update with a trace id and logs
// its processing time.
func Logging() bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			start := time.Now()
			traceID := uuid.NewString()

			updateType := "unknown"
			if update.Message != nil {
				updateType = "message"
			} else if update.CallbackQuery != nil {
				updateType = "callback_query"
			}

			next(ctx, b, update)

			slog.Debug("update processed",
				"trace_id", traceID,
				"type", updateType,
				"chat_id", ChatID(update),
				"duration", time.Since(start),
			)
		}
	}
}
