package handler

import (
	"github.com/go-telegram/bot"

	"github.com/pr-poehali-dev/telegram-bot-creation-7/internal/repository"
	"github.com/pr-poehali-dev/telegram-bot-creation-7/internal/service"
	"github.com/pr-poehali-dev/telegram-bot-creation-7/internal/telegram"
)

// Handler holds all dependencies needed by command and callback handlers.
type Handler struct {
	bot          *bot.Bot
	conversation *service.Conversation
	orders       *service.Orders
	matcher      *service.Matcher
	dispatcher   *service.Dispatcher
	security     *service.Security
	admins       *service.Admins
	labels       *service.Labels
	sender       *telegram.Sender
	orderRepo    *repository.Orders
	templateRepo *repository.Templates
	eventRepo    *repository.SecurityEvents
	blockRepo    *repository.Blocks
	limitRepo    *repository.Limits
}

// Deps contains all dependencies required to construct a Handler.
type Deps struct {
	Bot          *bot.Bot
	Conversation *service.Conversation
	Orders       *service.Orders
	Matcher      *service.Matcher
	Dispatcher   *service.Dispatcher
	Security     *service.Security
	Admins       *service.Admins
	Labels       *service.Labels
	Sender       *telegram.Sender
	OrderRepo    *repository.Orders
	TemplateRepo *repository.Templates
	EventRepo    *repository.SecurityEvents
	BlockRepo    *repository.Blocks
	LimitRepo    *repository.Limits
}

// New creates a new Handler from the provided dependencies.
func New(deps Deps) *Handler {
	return &Handler{
		bot:          deps.Bot,
		conversation: deps.Conversation,
		orders:       deps.Orders,
		matcher:      deps.Matcher,
		dispatcher:   deps.Dispatcher,
		security:     deps.Security,
		admins:       deps.Admins,
		labels:       deps.Labels,
		sender:       deps.Sender,
		orderRepo:    deps.OrderRepo,
		templateRepo: deps.TemplateRepo,
		eventRepo:    deps.EventRepo,
		blockRepo:    deps.BlockRepo,
		limitRepo:    deps.LimitRepo,
	}
}
