package handler

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/pr-poehali-dev/telegram-bot-creation-7/internal/service"
)

// Register registers all command and callback handlers on the bot instance.
func (h *Handler) Register() {
	// Commands
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypePrefix, h.handleStart)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/stop", bot.MatchTypePrefix, h.handleStop)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/admin", bot.MatchTypePrefix, h.handleAdminPanel)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/setlimit", bot.MatchTypePrefix, h.handleSetLimit)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/addadmin", bot.MatchTypePrefix, h.handleAddAdmin)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/removeadmin", bot.MatchTypePrefix, h.handleRemoveAdmin)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/block", bot.MatchTypePrefix, h.handleBlock)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/unblock", bot.MatchTypePrefix, h.handleUnblock)

	// Order form callbacks
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, service.CallbackConfirmOrder, bot.MatchTypeExact, h.handleConfirmOrder)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, service.CallbackCancelOrder, bot.MatchTypeExact, h.handleCancelOrder)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, service.CallbackEditPrefix, bot.MatchTypePrefix, h.handleEditField)

	// Order list callbacks
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "my_orders", bot.MatchTypeExact, h.handleMyOrders)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "view_order_", bot.MatchTypePrefix, h.handleViewOrder)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "change_order_", bot.MatchTypePrefix, h.handleEditOrder)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "delete_order_", bot.MatchTypePrefix, h.handleDeleteOrder)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "main_menu", bot.MatchTypeExact, h.handleMainMenu)

	// Label callbacks
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "label_", bot.MatchTypePrefix, h.handleLabel)

	// Template callbacks
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "save_template_", bot.MatchTypePrefix, h.handleSaveTemplate)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "skip_template", bot.MatchTypeExact, h.handleSkipTemplate)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "load_template_", bot.MatchTypePrefix, h.handleLoadTemplate)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "delete_template_", bot.MatchTypePrefix, h.handleDeleteTemplate)

	// Subscription callbacks
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "subscribe_all_", bot.MatchTypePrefix, h.handleSubscribeAll)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "subscribe_wh_", bot.MatchTypePrefix, h.handleSubscribeWarehouse)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "subscribe_skip", bot.MatchTypeExact, h.handleSubscribeSkip)

	// Admin panel callbacks
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "admin_stats", bot.MatchTypeExact, h.handleAdminStats)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "admin_weekly", bot.MatchTypeExact, h.handleAdminWeekly)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "admin_orders", bot.MatchTypeExact, h.handleAdminOrders)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "admin_users", bot.MatchTypeExact, h.handleAdminUsers)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "admin_security", bot.MatchTypeExact, h.handleAdminSecurity)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "admin_blocked", bot.MatchTypeExact, h.handleAdminBlocked)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "admin_list", bot.MatchTypeExact, h.handleAdminList)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "admin_remove_order_", bot.MatchTypePrefix, h.handleAdminRemoveOrder)
}

// answerCallback acknowledges a callback query so the client stops showing
// the spinner.
func (h *Handler) answerCallback(ctx context.Context, update *models.Update) {
	if update.CallbackQuery == nil {
		return
	}
	h.bot.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: update.CallbackQuery.ID,
	})
}

// callbackChatID returns the chat a callback originated in.
func callbackChatID(update *models.Update) int64 {
	if update.CallbackQuery == nil {
		return 0
	}
	if update.CallbackQuery.Message.Message != nil {
		return update.CallbackQuery.Message.Message.Chat.ID
	}
	return update.CallbackQuery.From.ID
}
