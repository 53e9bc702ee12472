package telegram

import (
	"github.com/go-telegram/bot/models"

	"github.com/pr-poehali-dev/telegram-bot-creation-7/internal/service"
)

// InlineButton creates a single inline keyboard button.
func InlineButton(text, callbackData string) models.InlineKeyboardButton {
	return models.InlineKeyboardButton{
		Text:         text,
		CallbackData: callbackData,
	}
}

// InlineKeyboard creates an inline keyboard from rows of buttons.
func InlineKeyboard(rows ...[]models.InlineKeyboardButton) *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: rows,
	}
}

// Markup renders a service reply into Telegram reply markup. A reply can
// carry at most one markup; inline buttons win, then the reply keyboard,
// then keyboard removal.
func Markup(r service.Reply) models.ReplyMarkup {
	if len(r.Inline) > 0 {
		rows := make([][]models.InlineKeyboardButton, 0, len(r.Inline))
		for _, row := range r.Inline {
			buttons := make([]models.InlineKeyboardButton, 0, len(row))
			for _, b := range row {
				buttons = append(buttons, InlineButton(b.Text, b.Data))
			}
			rows = append(rows, buttons)
		}
		return InlineKeyboard(rows...)
	}

	if len(r.Keyboard) > 0 {
		rows := make([][]models.KeyboardButton, 0, len(r.Keyboard))
		for _, row := range r.Keyboard {
			buttons := make([]models.KeyboardButton, 0, len(row))
			for _, b := range row {
				buttons = append(buttons, models.KeyboardButton{Text: b.Text})
			}
			rows = append(rows, buttons)
		}
		return &models.ReplyKeyboardMarkup{
			Keyboard:        rows,
			ResizeKeyboard:  true,
			OneTimeKeyboard: r.OneTime,
		}
	}

	if r.RemoveKeyboard {
		return &models.ReplyKeyboardRemove{RemoveKeyboard: true}
	}
	return nil
}
