package middleware

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/pr-poehali-dev/telegram-bot-creation-7/internal/domain"
	"github.com/pr-poehali-dev/telegram-bot-creation-7/internal/ratelimit"
	"github.com/pr-poehali-dev/telegram-bot-creation-7/internal/service"
)

// AbuseGate returns middleware that drops updates from blocked chats and
// throttles the rest. A denied request is logged as a security event; a
// chat that keeps tripping the limiter gets auto-blocked.
//
// The monitor is resolved through a getter because it is wired up after the
// bot (it needs the bot for operator alerts).
func AbuseGate(monitor func() *service.Security, limiter *ratelimit.Limiter) bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			security := monitor()
			chatID := ChatID(update)
			if security == nil || chatID == 0 {
				next(ctx, b, update)
				return
			}

			if security.IsBlocked(ctx, chatID) {
				security.Record(ctx, chatID, "blocked_attempt", "update from blocked chat", domain.SeverityLow)
				b.SendMessage(ctx, &bot.SendMessageParams{
					ChatID: chatID,
					Text:   "🚫 Вы заблокированы. Обратитесь к администратору.",
				})
				return
			}

			if !limiter.Admit(chatID) {
				security.Record(ctx, chatID, "rate_limit_exceeded",
					fmt.Sprintf("chat %d over per-minute limit", chatID), domain.SeverityMedium)

				if security.CheckSuspicious(ctx, chatID) {
					if err := security.AutoBlock(ctx, chatID, "suspicious activity: rate limit abuse"); err != nil {
						slog.Error("auto-block failed", "error", err, "chat_id", chatID)
					}
					return
				}

				b.SendMessage(ctx, &bot.SendMessageParams{
					ChatID: chatID,
					Text:   "⏳ Слишком много запросов. Подождите немного.",
				})
				return
			}

			next(ctx, b, update)
		}
	}
}
