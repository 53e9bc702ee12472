package telegram

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/pr-poehali-dev/telegram-bot-creation-7/internal/config"
	"github.com/pr-poehali-dev/telegram-bot-creation-7/internal/service"
)

// Sender delivers service replies over the Bot API. All outbound text is
// HTML-formatted; when Telegram rejects the markup the text is retried
// plain.
type Sender struct {
	bot *bot.Bot
}

func NewSender(b *bot.Bot) *Sender {
	return &Sender{bot: b}
}

// SendReply sends one reply with its keyboard.
func (s *Sender) SendReply(ctx context.Context, chatID int64, r service.Reply) error {
	params := &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        truncate(r.Text),
		ParseMode:   models.ParseModeHTML,
		ReplyMarkup: Markup(r),
	}

	_, err := s.bot.SendMessage(ctx, params)
	if err != nil {
		slog.Warn("html send failed, falling back to plain text", "error", err, "chat_id", chatID)
		params.ParseMode = ""
		if _, err = s.bot.SendMessage(ctx, params); err != nil {
			return fmt.Errorf("send message: %w", err)
		}
	}
	return nil
}

// Notify sends a bare text message. It is the delivery half of match and
// subscription notifications.
func (s *Sender) Notify(ctx context.Context, chatID int64, text string) error {
	return s.SendReply(ctx, chatID, service.Reply{Text: text})
}

// SendDocument uploads a file, e.g. a rendered label PDF.
func (s *Sender) SendDocument(ctx context.Context, chatID int64, filename string, data []byte, caption string) error {
	_, err := s.bot.SendDocument(ctx, &bot.SendDocumentParams{
		ChatID:   chatID,
		Document: &models.InputFileUpload{Filename: filename, Data: bytes.NewReader(data)},
		Caption:  caption,
	})
	if err != nil {
		return fmt.Errorf("send document: %w", err)
	}
	return nil
}

func truncate(text string) string {
	runes := []rune(text)
	if len(runes) <= config.MaxTelegramMessageLen {
		return text
	}
	return string(runes[:config.MaxTelegramMessageLen-3]) + "..."
}
