package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// Operator mirrors high-severity events to the operator chat. With no chat
// configured every call is a no-op.
type Operator struct {
	bot    *bot.Bot
	chatID int64
}

func NewOperator(b *bot.Bot, chatID int64) *Operator {
	return &Operator{bot: b, chatID: chatID}
}

func (o *Operator) send(text string) {
	if o.chatID == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := o.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    o.chatID,
		Text:      text,
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		slog.Error("failed to notify operator", "error", err)
	}
}

func (o *Operator) NotifyAutoBlock(chatID int64, reason string) {
	o.send(fmt.Sprintf(
		"🚫 <b>Автоблокировка</b>\n\n<b>Пользователь:</b> <code>%d</code>\n<b>Причина:</b> %s\n<b>Время:</b> %s",
		chatID, reason, time.Now().Format("2006-01-02 15:04:05")))
}

func (o *Operator) NotifyError(err error, context string) {
	o.send(fmt.Sprintf(
		"❌ <b>Ошибка</b>\n\n<b>Контекст:</b> %s\n<b>Ошибка:</b> <code>%s</code>",
		context, err.Error()))
}
