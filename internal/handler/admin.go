package handler

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/pr-poehali-dev/telegram-bot-creation-7/internal/config"
	"github.com/pr-poehali-dev/telegram-bot-creation-7/internal/domain"
	"github.com/pr-poehali-dev/telegram-bot-creation-7/internal/service"
)

// permsFor resolves admin capabilities for the chat; nil means not an admin.
func (h *Handler) permsFor(ctx context.Context, chatID int64) *domain.AdminPermissions {
	perms, err := h.admins.PermissionsFor(ctx, chatID)
	if err != nil {
		slog.Error("resolve admin permissions", "error", err, "chat_id", chatID)
		return nil
	}
	return perms
}

func (h *Handler) handleAdminPanel(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	perms := h.permsFor(ctx, chatID)
	if perms == nil {
		return
	}

	var inline [][]service.Button
	if perms.CanViewStats {
		inline = append(inline, []service.Button{
			{Text: "📊 Статистика", Data: "admin_stats"},
			{Text: "📈 Недельный отчёт", Data: "admin_weekly"},
		})
	}
	if perms.CanViewOrders {
		inline = append(inline, []service.Button{{Text: "📋 Последние заявки", Data: "admin_orders"}})
	}
	if perms.CanManageUsers {
		inline = append(inline, []service.Button{{Text: "👥 Пользователи", Data: "admin_users"}})
	}
	if perms.CanViewSecurityLogs {
		inline = append(inline, []service.Button{
			{Text: "🛡 Журнал безопасности", Data: "admin_security"},
			{Text: "🚫 Заблокированные", Data: "admin_blocked"},
		})
	}
	if perms.CanManageAdmins {
		inline = append(inline, []service.Button{{Text: "👮 Администраторы", Data: "admin_list"}})
	}

	h.send(ctx, chatID, service.Reply{
		Text:   fmt.Sprintf("⚙️ <b>Панель администратора</b>\n\nВаша роль: <b>%s</b>", perms.Role),
		Inline: inline,
	})
}

// adminCallback resolves permissions for a panel callback and checks one
// capability. A nil return means the caller already got (or deserves) no
// response.
func (h *Handler) adminCallback(ctx context.Context, update *models.Update, allowed func(*domain.AdminPermissions) bool) (int64, *domain.AdminPermissions) {
	h.answerCallback(ctx, update)
	chatID := callbackChatID(update)
	if chatID == 0 {
		return 0, nil
	}
	perms := h.permsFor(ctx, chatID)
	if perms == nil {
		return 0, nil
	}
	if !allowed(perms) {
		h.sendText(ctx, chatID, "⛔ Недостаточно прав")
		return 0, nil
	}
	return chatID, perms
}

func (h *Handler) handleAdminStats(ctx context.Context, b *bot.Bot, update *models.Update) {
	chatID, _ := h.adminCallback(ctx, update, func(p *domain.AdminPermissions) bool { return p.CanViewStats })
	if chatID == 0 {
		return
	}

	senders, err := h.orderRepo.CountByType(ctx, domain.OrderTypeSender)
	if err != nil {
		h.adminQueryFailed(ctx, chatID, err)
		return
	}
	carriers, err := h.orderRepo.CountByType(ctx, domain.OrderTypeCarrier)
	if err != nil {
		h.adminQueryFailed(ctx, chatID, err)
		return
	}
	users, err := h.orderRepo.CountDistinctUsers(ctx)
	if err != nil {
		h.adminQueryFailed(ctx, chatID, err)
		return
	}

	h.sendText(ctx, chatID, fmt.Sprintf(
		"📊 <b>Статистика</b>\n\n"+
			"📦 Заявок отправителей: <b>%d</b>\n"+
			"🚚 Заявок перевозчиков: <b>%d</b>\n"+
			"👥 Уникальных пользователей: <b>%d</b>",
		senders, carriers, users))
}

func (h *Handler) handleAdminWeekly(ctx context.Context, b *bot.Bot, update *models.Update) {
	chatID, _ := h.adminCallback(ctx, update, func(p *domain.AdminPermissions) bool { return p.CanViewStats })
	if chatID == 0 {
		return
	}

	week, err := h.orderRepo.CountSince(ctx, time.Now().AddDate(0, 0, -7))
	if err != nil {
		h.adminQueryFailed(ctx, chatID, err)
		return
	}
	day, err := h.orderRepo.CountSince(ctx, time.Now().AddDate(0, 0, -1))
	if err != nil {
		h.adminQueryFailed(ctx, chatID, err)
		return
	}

	h.sendText(ctx, chatID, fmt.Sprintf(
		"📈 <b>Отчёт за неделю</b>\n\n"+
			"Заявок за 7 дней: <b>%d</b>\n"+
			"Заявок за 24 часа: <b>%d</b>",
		week, day))
}

func (h *Handler) handleAdminOrders(ctx context.Context, b *bot.Bot, update *models.Update) {
	chatID, perms := h.adminCallback(ctx, update, func(p *domain.AdminPermissions) bool { return p.CanViewOrders })
	if chatID == 0 {
		return
	}

	orders, err := h.orderRepo.ListAll(ctx, config.AdminOrdersLimit)
	if err != nil {
		h.adminQueryFailed(ctx, chatID, err)
		return
	}
	if len(orders) == 0 {
		h.sendText(ctx, chatID, "📭 Заявок пока нет")
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📋 <b>Последние заявки</b> (%d)\n\n", len(orders)))
	var inline [][]service.Button
	for _, o := range orders {
		sb.WriteString(fmt.Sprintf("%s #%d | %s | %s | <code>%d</code>\n",
			typeBadge(o.Type), o.ID, o.Warehouse, dateLabel(&o), o.ChatID))
		if perms.CanRemoveOrders {
			inline = append(inline, []service.Button{
				{Text: fmt.Sprintf("🗑 Удалить #%d", o.ID), Data: fmt.Sprintf("admin_remove_order_%d", o.ID)},
			})
		}
	}

	h.send(ctx, chatID, service.Reply{Text: sb.String(), Inline: inline})
}

func (h *Handler) handleAdminRemoveOrder(ctx context.Context, b *bot.Bot, update *models.Update) {
	chatID, _ := h.adminCallback(ctx, update, func(p *domain.AdminPermissions) bool { return p.CanRemoveOrders })
	if chatID == 0 {
		return
	}
	orderID := callbackID(update, "admin_remove_order_")
	if orderID == 0 {
		return
	}

	deleted, err := h.orderRepo.DeleteByID(ctx, orderID)
	if err != nil {
		h.adminQueryFailed(ctx, chatID, err)
		return
	}
	if !deleted {
		h.sendText(ctx, chatID, "❌ Заявка не найдена")
		return
	}
	h.security.Record(ctx, chatID, "admin_remove_order",
		fmt.Sprintf("admin %d removed order %d", chatID, orderID), domain.SeverityMedium)
	h.sendText(ctx, chatID, fmt.Sprintf("🗑 Заявка #%d удалена", orderID))
}

func (h *Handler) handleAdminUsers(ctx context.Context, b *bot.Bot, update *models.Update) {
	chatID, _ := h.adminCallback(ctx, update, func(p *domain.AdminPermissions) bool { return p.CanManageUsers })
	if chatID == 0 {
		return
	}

	users, err := h.orderRepo.UserActivity(ctx, config.AdminUsersLimit)
	if err != nil {
		h.adminQueryFailed(ctx, chatID, err)
		return
	}
	if len(users) == 0 {
		h.sendText(ctx, chatID, "📭 Пользователей пока нет")
		return
	}

	var sb strings.Builder
	sb.WriteString("👥 <b>Пользователи</b>\n\n")
	for _, u := range users {
		name := u.Username
		if name == "" {
			name = "—"
		}
		sb.WriteString(fmt.Sprintf("<code>%d</code> | @%s | заявок: %d | %s\n",
			u.ChatID, name, u.OrderCount, u.LastOrder.Format("02.01.2006")))
	}
	sb.WriteString("\nКоманды: /block, /unblock, /setlimit")

	h.sendText(ctx, chatID, sb.String())
}

func (h *Handler) handleAdminSecurity(ctx context.Context, b *bot.Bot, update *models.Update) {
	chatID, _ := h.adminCallback(ctx, update, func(p *domain.AdminPermissions) bool { return p.CanViewSecurityLogs })
	if chatID == 0 {
		return
	}

	events, err := h.eventRepo.Recent(ctx, config.SecurityLogsLimit)
	if err != nil {
		h.adminQueryFailed(ctx, chatID, err)
		return
	}
	if len(events) == 0 {
		h.sendText(ctx, chatID, "📭 Журнал безопасности пуст")
		return
	}

	var sb strings.Builder
	sb.WriteString("🛡 <b>Журнал безопасности</b>\n\n")
	for _, ev := range events {
		sb.WriteString(fmt.Sprintf("%s <code>%d</code> %s — %s\n",
			severityBadge(ev.Severity), ev.ChatID, ev.EventType,
			ev.CreatedAt.Format("02.01 15:04")))
	}

	h.sendText(ctx, chatID, sb.String())
}

func severityBadge(s domain.Severity) string {
	switch s {
	case domain.SeverityHigh:
		return "🔴"
	case domain.SeverityMedium:
		return "🟡"
	default:
		return "🟢"
	}
}

func (h *Handler) handleAdminBlocked(ctx context.Context, b *bot.Bot, update *models.Update) {
	chatID, _ := h.adminCallback(ctx, update, func(p *domain.AdminPermissions) bool { return p.CanViewSecurityLogs })
	if chatID == 0 {
		return
	}

	blocked, err := h.blockRepo.List(ctx)
	if err != nil {
		h.adminQueryFailed(ctx, chatID, err)
		return
	}
	if len(blocked) == 0 {
		h.sendText(ctx, chatID, "✅ Заблокированных пользователей нет")
		return
	}

	var sb strings.Builder
	sb.WriteString("🚫 <b>Заблокированные</b>\n\n")
	for _, u := range blocked {
		sb.WriteString(fmt.Sprintf("<code>%d</code> | %s | %s\n",
			u.ChatID, u.Reason, u.BlockedAt.Format("02.01.2006")))
	}
	sb.WriteString("\nРазблокировать: /unblock ID")

	h.sendText(ctx, chatID, sb.String())
}

func (h *Handler) handleAdminList(ctx context.Context, b *bot.Bot, update *models.Update) {
	chatID, _ := h.adminCallback(ctx, update, func(p *domain.AdminPermissions) bool { return p.CanManageAdmins })
	if chatID == 0 {
		return
	}

	admins, err := h.admins.List(ctx)
	if err != nil {
		h.adminQueryFailed(ctx, chatID, err)
		return
	}

	var sb strings.Builder
	sb.WriteString("👮 <b>Администраторы</b>\n\n")
	for _, a := range admins {
		sb.WriteString(fmt.Sprintf("<code>%d</code> — %s\n", a.ChatID, a.Role))
	}
	sb.WriteString("\nКоманды: /addadmin ID [роль], /removeadmin ID")

	h.sendText(ctx, chatID, sb.String())
}

func (h *Handler) handleSetLimit(ctx context.Context, b *bot.Bot, update *models.Update) {
	target, rest, ok := h.adminCommand(ctx, update, "/setlimit",
		func(p *domain.AdminPermissions) bool { return p.CanManageUsers },
		"Использование: /setlimit ID N")
	if !ok {
		return
	}
	chatID := update.Message.Chat.ID

	limit, err := strconv.Atoi(rest)
	if err != nil || limit < 1 {
		h.sendText(ctx, chatID, "❌ Некорректный лимит")
		return
	}

	if err := h.limitRepo.SetDailyLimit(ctx, target, limit); err != nil {
		h.adminQueryFailed(ctx, chatID, err)
		return
	}
	h.sendText(ctx, chatID, fmt.Sprintf("✅ Лимит для <code>%d</code>: %d заявок в день", target, limit))
}

func (h *Handler) handleAddAdmin(ctx context.Context, b *bot.Bot, update *models.Update) {
	target, rest, ok := h.adminCommand(ctx, update, "/addadmin",
		func(p *domain.AdminPermissions) bool { return p.CanManageAdmins },
		"Использование: /addadmin ID [admin|moderator|viewer]")
	if !ok {
		return
	}
	chatID := update.Message.Chat.ID

	role := domain.RoleViewer
	switch rest {
	case "admin":
		role = domain.RoleAdmin
	case "moderator":
		role = domain.RoleModerator
	case "viewer", "":
	default:
		h.sendText(ctx, chatID, "❌ Неизвестная роль. Доступны: admin, moderator, viewer")
		return
	}

	if err := h.admins.Grant(ctx, target, role); err != nil {
		h.adminQueryFailed(ctx, chatID, err)
		return
	}
	h.sendText(ctx, chatID, fmt.Sprintf("✅ <code>%d</code> назначен с ролью <b>%s</b>", target, role))
}

func (h *Handler) handleRemoveAdmin(ctx context.Context, b *bot.Bot, update *models.Update) {
	target, _, ok := h.adminCommand(ctx, update, "/removeadmin",
		func(p *domain.AdminPermissions) bool { return p.CanManageAdmins },
		"Использование: /removeadmin ID")
	if !ok {
		return
	}
	chatID := update.Message.Chat.ID

	removed, err := h.admins.Revoke(ctx, target)
	if err != nil {
		h.adminQueryFailed(ctx, chatID, err)
		return
	}
	if !removed {
		h.sendText(ctx, chatID, "❌ Такого администратора нет")
		return
	}
	h.sendText(ctx, chatID, fmt.Sprintf("✅ <code>%d</code> больше не администратор", target))
}

func (h *Handler) handleBlock(ctx context.Context, b *bot.Bot, update *models.Update) {
	target, rest, ok := h.adminCommand(ctx, update, "/block",
		func(p *domain.AdminPermissions) bool { return p.CanBlockUsers },
		"Использование: /block ID [причина]")
	if !ok {
		return
	}
	chatID := update.Message.Chat.ID

	reason := rest
	if reason == "" {
		reason = "blocked by admin"
	}

	if err := h.blockRepo.Block(ctx, target, reason); err != nil {
		h.adminQueryFailed(ctx, chatID, err)
		return
	}
	h.security.Record(ctx, chatID, "admin_block",
		fmt.Sprintf("admin %d blocked user %d: %s", chatID, target, reason), domain.SeverityMedium)
	h.sendText(ctx, chatID, fmt.Sprintf("🚫 Пользователь <code>%d</code> заблокирован", target))
}

func (h *Handler) handleUnblock(ctx context.Context, b *bot.Bot, update *models.Update) {
	target, _, ok := h.adminCommand(ctx, update, "/unblock",
		func(p *domain.AdminPermissions) bool { return p.CanBlockUsers },
		"Использование: /unblock ID")
	if !ok {
		return
	}
	chatID := update.Message.Chat.ID

	removed, err := h.security.Unblock(ctx, chatID, target)
	if err != nil {
		h.adminQueryFailed(ctx, chatID, err)
		return
	}
	if !removed {
		h.sendText(ctx, chatID, "❌ Пользователь не был заблокирован")
		return
	}
	h.sendText(ctx, chatID, fmt.Sprintf("✅ Пользователь <code>%d</code> разблокирован", target))
}

// adminCommand parses "/cmd <chat_id> [rest]" and gates it behind a
// capability. It reports ok=false after replying with usage or a denial.
func (h *Handler) adminCommand(ctx context.Context, update *models.Update, cmd string, allowed func(*domain.AdminPermissions) bool, usage string) (target int64, rest string, ok bool) {
	if update.Message == nil {
		return 0, "", false
	}
	chatID := update.Message.Chat.ID

	perms := h.permsFor(ctx, chatID)
	if perms == nil {
		return 0, "", false
	}
	if !allowed(perms) {
		h.sendText(ctx, chatID, "⛔ Недостаточно прав")
		return 0, "", false
	}

	parts := strings.Fields(strings.TrimPrefix(update.Message.Text, cmd))
	if len(parts) < 1 {
		h.sendText(ctx, chatID, usage)
		return 0, "", false
	}
	target = parseID(parts[0])
	if target == 0 {
		h.sendText(ctx, chatID, "❌ Некорректный chat_id")
		return 0, "", false
	}
	return target, strings.Join(parts[1:], " "), true
}

func (h *Handler) adminQueryFailed(ctx context.Context, chatID int64, err error) {
	slog.Error("admin query failed", "error", err, "chat_id", chatID)
	h.sendText(ctx, chatID, "❌ Ошибка при выполнении запроса")
}
