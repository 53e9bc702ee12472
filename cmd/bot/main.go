package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	cargobot "github.com/pr-poehali-dev/telegram-bot-creation-7"
	"github.com/pr-poehali-dev/telegram-bot-creation-7/internal/config"
	"github.com/pr-poehali-dev/telegram-bot-creation-7/internal/domain"
	"github.com/pr-poehali-dev/telegram-bot-creation-7/internal/handler"
	"github.com/pr-poehali-dev/telegram-bot-creation-7/internal/middleware"
	"github.com/pr-poehali-dev/telegram-bot-creation-7/internal/ratelimit"
	"github.com/pr-poehali-dev/telegram-bot-creation-7/internal/repository"
	"github.com/pr-poehali-dev/telegram-bot-creation-7/internal/service"
	"github.com/pr-poehali-dev/telegram-bot-creation-7/internal/telegram"
)

func main() {
	// Setup structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Setup context with graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to database
	pool, err := repository.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Run migrations
	if err := repository.RunMigrations(cfg.DatabaseURL, cargobot.MigrationsFS); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Repositories
	orderRepo := repository.NewOrders(pool)
	subscriptionRepo := repository.NewSubscriptions(pool)
	eventRepo := repository.NewSecurityEvents(pool)
	blockRepo := repository.NewBlocks(pool)
	limitRepo := repository.NewLimits(pool)
	adminRepo := repository.NewAdmins(pool)
	templateRepo := repository.NewTemplates(pool)

	limiter := ratelimit.New(config.MaxRequestsPerMinute, config.RateWindow)

	// Pointers for closures wired up after the bot exists.
	var (
		h        *handler.Handler
		security *service.Security
	)

	opts := []bot.Option{
		bot.WithMiddlewares(
			middleware.Recover(),
			middleware.Logging(),
			middleware.AbuseGate(func() *service.Security { return security }, limiter),
		),
		bot.WithDefaultHandler(func(ctx context.Context, b *bot.Bot, update *models.Update) {
			// Stray callbacks (stale keyboards, unknown payloads) are acked
			// so the client stops the spinner.
			if update.CallbackQuery != nil {
				b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
					CallbackQueryID: update.CallbackQuery.ID,
				})
				return
			}
			if h == nil || update.Message == nil {
				return
			}
			if len(update.Message.Text) > 0 && update.Message.Text[0] == '/' {
				return
			}
			h.HandleText(ctx, b, update)
		}),
	}

	b, err := bot.New(cfg.BotToken, opts...)
	if err != nil {
		slog.Error("failed to create bot", "error", err)
		os.Exit(1)
	}

	if cfg.DropPendingUpdates {
		if _, err := b.DeleteWebhook(ctx, &bot.DeleteWebhookParams{DropPendingUpdates: true}); err != nil {
			slog.Warn("failed to drop pending updates", "error", err)
		}
	}

	me, err := b.GetMe(ctx)
	if err != nil {
		slog.Error("failed to get bot info", "error", err)
		os.Exit(1)
	}

	// Transport helpers
	sender := telegram.NewSender(b)
	operator := telegram.NewOperator(b, cfg.OperatorChatID)

	// Services
	conversation := service.NewConversation(templateRepo)
	admins := service.NewAdmins(adminRepo)
	security = service.NewSecurity(eventRepo, blockRepo, orderRepo, limitRepo, operator)
	orders := service.NewOrders(orderRepo, limitRepo, security)
	matcher := service.NewMatcher(orderRepo, sender)
	dispatcher := service.NewDispatcher(subscriptionRepo, sender)
	labels := service.NewLabels(cfg.LabelServiceURL)

	// The owner role is pinned from the environment so a fresh database
	// always has at least one full-capability admin.
	if cfg.OwnerChatID != 0 {
		if err := admins.Grant(ctx, cfg.OwnerChatID, domain.RoleOwner); err != nil {
			slog.Error("failed to bootstrap owner", "error", err)
			os.Exit(1)
		}
	}

	h = handler.New(handler.Deps{
		Bot:          b,
		Conversation: conversation,
		Orders:       orders,
		Matcher:      matcher,
		Dispatcher:   dispatcher,
		Security:     security,
		Admins:       admins,
		Labels:       labels,
		Sender:       sender,
		OrderRepo:    orderRepo,
		TemplateRepo: templateRepo,
		EventRepo:    eventRepo,
		BlockRepo:    blockRepo,
		LimitRepo:    limitRepo,
	})
	h.Register()

	// Expired sender listings are swept daily.
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				purged, err := orderRepo.PurgeExpiredSenders(context.Background(), config.SenderRetentionDays)
				if err != nil {
					slog.Error("purge expired orders", "error", err)
					operator.NotifyError(err, "purge expired orders")
				} else if purged > 0 {
					slog.Info("expired sender orders purged", "count", purged)
				}
			}
		}
	}()

	slog.Info("starting bot", "username", me.Username, "id", me.ID)
	b.Start(ctx)

	slog.Info("bot stopped gracefully")
}
