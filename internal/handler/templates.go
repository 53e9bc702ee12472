package handler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/pr-poehali-dev/telegram-bot-creation-7/internal/config"
	"github.com/pr-poehali-dev/telegram-bot-creation-7/internal/domain"
	"github.com/pr-poehali-dev/telegram-bot-creation-7/internal/service"
)

func (h *Handler) handleSaveTemplate(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.answerCallback(ctx, update)
	chatID := callbackChatID(update)
	orderID := callbackID(update, "save_template_")
	if chatID == 0 || orderID == 0 {
		return
	}

	o, err := h.ownOrder(ctx, chatID, orderID)
	if err != nil {
		h.sendText(ctx, chatID, "❌ Заявка не найдена")
		return
	}

	h.conversation.AwaitTemplateName(chatID, o.ID, o.Type)
	h.sendText(ctx, chatID, "💾 <b>Введите название шаблона</b>\n\nНапример: Коледино WB")
}

func (h *Handler) handleSkipTemplate(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.answerCallback(ctx, update)
}

// saveTemplateNamed finishes the save started by handleSaveTemplate once the
// user replies with a name.
func (h *Handler) saveTemplateNamed(ctx context.Context, chatID, orderID int64, orderType domain.OrderType, name string) {
	name = strings.TrimSpace(name)
	if name == "" || len([]rune(name)) > 64 {
		h.conversation.AwaitTemplateName(chatID, orderID, orderType)
		h.sendText(ctx, chatID, "❌ Название должно быть от 1 до 64 символов. Попробуйте ещё раз.")
		return
	}

	o, err := h.ownOrder(ctx, chatID, orderID)
	if err != nil {
		h.sendText(ctx, chatID, "❌ Заявка не найдена")
		return
	}

	snapshot := *o
	snapshot.ID = 0
	if _, err := h.templateRepo.Save(ctx, &domain.Template{
		ChatID:    chatID,
		Name:      name,
		OrderType: orderType,
		Data:      &snapshot,
	}); err != nil {
		slog.Error("save template", "error", err, "chat_id", chatID)
		h.sendText(ctx, chatID, "❌ Не удалось сохранить шаблон")
		return
	}

	h.sendText(ctx, chatID, fmt.Sprintf("✅ Шаблон «%s» сохранён. Он появится в главном меню.", name))
}

func (h *Handler) handleLoadTemplate(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.answerCallback(ctx, update)
	chatID := callbackChatID(update)
	templateID := callbackID(update, "load_template_")
	if chatID == 0 || templateID == 0 {
		return
	}

	t, err := h.templateRepo.ByID(ctx, templateID, chatID)
	if err != nil {
		h.sendText(ctx, chatID, "❌ Шаблон не найден")
		return
	}
	h.send(ctx, chatID, h.conversation.LoadTemplate(chatID, t))
}

func (h *Handler) handleDeleteTemplate(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.answerCallback(ctx, update)
	chatID := callbackChatID(update)
	templateID := callbackID(update, "delete_template_")
	if chatID == 0 || templateID == 0 {
		return
	}

	deleted, err := h.templateRepo.Delete(ctx, templateID, chatID)
	if err != nil {
		slog.Error("delete template", "error", err, "template_id", templateID)
		h.sendText(ctx, chatID, "❌ Не удалось удалить шаблон")
		return
	}
	if !deleted {
		h.sendText(ctx, chatID, "❌ Шаблон не найден")
		return
	}
	h.sendText(ctx, chatID, "🗑 Шаблон удалён")
	h.sendTemplateList(ctx, chatID)
}

func (h *Handler) sendTemplateList(ctx context.Context, chatID int64) {
	templates, err := h.templateRepo.ListByOwner(ctx, chatID)
	if err != nil {
		slog.Error("list templates", "error", err, "chat_id", chatID)
		h.sendText(ctx, chatID, "❌ Не удалось загрузить шаблоны")
		return
	}
	if len(templates) == 0 {
		h.sendText(ctx, chatID, "📭 У вас пока нет шаблонов.\n\nСохраните заявку как шаблон после её создания.")
		return
	}

	var inline [][]service.Button
	for i, t := range templates {
		if i >= config.MenuTemplateLimit {
			break
		}
		inline = append(inline, []service.Button{
			{Text: fmt.Sprintf("%s %s", typeBadge(t.OrderType), t.Name), Data: fmt.Sprintf("load_template_%d", t.ID)},
			{Text: "🗑", Data: fmt.Sprintf("delete_template_%d", t.ID)},
		})
	}
	inline = append(inline, []service.Button{{Text: "🏠 Главное меню", Data: "main_menu"}})

	h.send(ctx, chatID, service.Reply{
		Text:   "💾 <b>Ваши шаблоны</b>\n\nНажмите на шаблон, чтобы создать заявку по нему.",
		Inline: inline,
	})
}
