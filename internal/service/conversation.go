package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pr-poehali-dev/telegram-bot-creation-7/internal/config"
	"github.com/pr-poehali-dev/telegram-bot-creation-7/internal/domain"
)

// TemplateLister is the slice of the template store the engine needs for
// the main-menu shortcut buttons.
type TemplateLister interface {
	ListByOwner(ctx context.Context, chatID int64) ([]domain.Template, error)
}

// Conversation drives the multi-step intake form. Sessions are keyed by
// chat id, held in process memory and reclaimed lazily on the next
// interaction after the timeout.
type Conversation struct {
	mu        sync.Mutex
	sessions  map[int64]*domain.Session
	templates TemplateLister
	timeout   time.Duration
	now       func() time.Time
}

func NewConversation(templates TemplateLister) *Conversation {
	return &Conversation{
		sessions:  make(map[int64]*domain.Session),
		templates: templates,
		timeout:   config.SessionTimeout,
		now:       time.Now,
	}
}

// WithClock replaces the time source, for tests.
func (c *Conversation) WithClock(now func() time.Time) *Conversation {
	c.now = now
	return c
}

// session returns the live session for chatID, dropping it first if it has
// been idle past the timeout. Caller must hold c.mu.
func (c *Conversation) session(chatID int64) (*domain.Session, error) {
	s, ok := c.sessions[chatID]
	if !ok {
		return nil, domain.ErrSessionExpired
	}
	if s.Expired(c.now(), c.timeout) {
		delete(c.sessions, chatID)
		return nil, domain.ErrSessionExpired
	}
	s.LastActivity = c.now()
	return s, nil
}

// MainMenu resets the chat to the service-selection state and builds the
// welcome keyboard, with shortcut buttons for the user's saved templates on
// top.
func (c *Conversation) MainMenu(ctx context.Context, chatID int64) Reply {
	c.mu.Lock()
	c.sessions[chatID] = &domain.Session{
		ChatID:       chatID,
		Step:         domain.StepChooseService,
		Order:        &domain.Order{ChatID: chatID},
		LastActivity: c.now(),
	}
	c.mu.Unlock()

	keyboard := [][]Button{}

	templates, err := c.templates.ListByOwner(ctx, chatID)
	if err == nil {
		for i, t := range templates {
			if i >= config.MenuTemplateLimit {
				break
			}
			keyboard = append(keyboard, row(btn(typeEmoji(t.OrderType)+" "+t.Name)))
		}
	}

	keyboard = append(keyboard,
		row(btn(MenuSender)),
		row(btn(MenuCarrier)),
		row(btn(MenuMyOrders)),
	)
	if len(templates) > 0 {
		keyboard = append(keyboard, row(btn(MenuTemplates)))
	}

	return Reply{
		Text: fmt.Sprintf(
			"👋 <b>Добро пожаловать!</b>\n\n"+
				"⚠️ <b>Важно:</b>\n"+
				"• Заявки отправителей удаляются через %d дней после даты поставки\n"+
				"• Сохраняйте скрины переписок\n"+
				"• Сверяйте данные авто с заявкой\n\n"+
				"<b>Выберите услугу:</b>", config.SenderRetentionDays),
		Keyboard: keyboard,
	}
}

// Menu button texts. The text handler routes on them before the step
// machine sees the input.
const (
	MenuSender    = "📦 Отправитель"
	MenuCarrier   = "🚚 Перевозчик"
	MenuMyOrders  = "📋 Мои заявки"
	MenuTemplates = "💾 Мои шаблоны"
)

func typeEmoji(t domain.OrderType) string {
	if t == domain.OrderTypeSender {
		return "📦"
	}
	return "🚚"
}

// StartSender begins a fresh sender form.
func (c *Conversation) StartSender(chatID int64) Reply {
	return c.start(chatID, domain.OrderTypeSender)
}

// StartCarrier begins a fresh carrier form.
func (c *Conversation) StartCarrier(chatID int64) Reply {
	return c.start(chatID, domain.OrderTypeCarrier)
}

func (c *Conversation) start(chatID int64, t domain.OrderType) Reply {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := &domain.Session{
		ChatID:       chatID,
		Step:         domain.StepChooseMarketplace,
		Order:        &domain.Order{ChatID: chatID, Type: t},
		LastActivity: c.now(),
	}
	c.sessions[chatID] = s
	return fields["marketplace"].prompt(s.Order, c.now())
}

// Input feeds one text message into the state machine and returns the next
// prompt. Invalid input re-prompts without advancing the step.
func (c *Conversation) Input(chatID int64, input string) (Reply, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, err := c.session(chatID)
	if err != nil {
		return Reply{}, err
	}

	if len([]rune(input)) > config.MaxTextLength {
		return text(fmt.Sprintf("❌ Сообщение слишком длинное. Максимум %d символов.", config.MaxTextLength)), nil
	}

	now := c.now()

	// Field-edit overlay: write the one field and go back to the preview.
	if s.EditingField != "" {
		def := fields[s.EditingField]
		if err := def.assign(s.Order, input, now); err != nil {
			return text(def.invalid), nil
		}
		s.EditingField = ""
		s.Step = domain.StepShowPreview
		return previewReply(s), nil
	}

	switch s.Step {
	case domain.StepChooseService:
		return text("Пожалуйста, выберите услугу из меню"), nil
	case domain.StepShowPreview:
		return previewReply(s), nil
	}

	def, ok := steps[s.Step]
	if !ok {
		return text("Введите /start чтобы начать"), nil
	}

	f := fields[def.field]
	if err := f.assign(s.Order, input, now); err != nil {
		return text(f.invalid), nil
	}

	// The marketplace step is the one branch point of the sequence.
	if s.Step == domain.StepChooseMarketplace {
		if s.Order.Type == domain.OrderTypeSender {
			s.Step = domain.StepSenderWarehouse
		} else {
			s.Step = domain.StepCarrierWarehouse
		}
	} else {
		s.Step = def.next
	}

	if s.Step == domain.StepShowPreview {
		return previewReply(s), nil
	}
	next := steps[s.Step]
	return fields[next.field].prompt(s.Order, now), nil
}

// BeginEdit arms the edit overlay for one preview field and returns that
// field's prompt.
func (c *Conversation) BeginEdit(chatID int64, fieldKey string) (Reply, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, err := c.session(chatID)
	if err != nil {
		return Reply{}, err
	}
	def, ok := fields[fieldKey]
	if !ok || s.Order == nil {
		return Reply{}, domain.ErrInvalidInput
	}
	s.EditingField = fieldKey
	return def.prompt(s.Order, c.now()), nil
}

// Current returns the session if it is sitting at the preview, ready to be
// confirmed.
func (c *Conversation) Current(chatID int64) (*domain.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, err := c.session(chatID)
	if err != nil {
		return nil, err
	}
	if s.Step != domain.StepShowPreview || s.Order == nil {
		return nil, domain.ErrInvalidInput
	}
	return s, nil
}

// Clear discards the session, e.g. after a successful submission or an
// explicit cancel.
func (c *Conversation) Clear(chatID int64) {
	c.mu.Lock()
	delete(c.sessions, chatID)
	c.mu.Unlock()
}

// LoadTemplate replays a saved snapshot: the session jumps straight to the
// preview with the template data as the working order.
func (c *Conversation) LoadTemplate(chatID int64, t *domain.Template) Reply {
	c.mu.Lock()
	defer c.mu.Unlock()

	order := *t.Data
	order.ID = 0
	order.ChatID = chatID
	order.Type = t.OrderType

	s := &domain.Session{
		ChatID:       chatID,
		Step:         domain.StepShowPreview,
		Order:        &order,
		LastActivity: c.now(),
	}
	c.sessions[chatID] = s
	return previewReply(s)
}

// LoadOrder puts an already persisted order back into the form so the owner
// can edit it; confirmation will update instead of insert.
func (c *Conversation) LoadOrder(chatID int64, o *domain.Order) Reply {
	c.mu.Lock()
	defer c.mu.Unlock()

	order := *o
	s := &domain.Session{
		ChatID:         chatID,
		Step:           domain.StepShowPreview,
		Order:          &order,
		EditingOrderID: o.ID,
		LastActivity:   c.now(),
	}
	c.sessions[chatID] = s
	return previewReply(s)
}

// AwaitTemplateName arms the "save as template" prompt for an order.
func (c *Conversation) AwaitTemplateName(chatID, orderID int64, t domain.OrderType) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.sessions[chatID]
	if !ok {
		s = &domain.Session{ChatID: chatID, Step: domain.StepChooseService, Order: &domain.Order{ChatID: chatID}}
		c.sessions[chatID] = s
	}
	s.AwaitingTemplateName = true
	s.TemplateOrderID = orderID
	s.TemplateOrderType = t
	s.LastActivity = c.now()
}

// TakeTemplateName consumes the pending template-name state, if armed.
func (c *Conversation) TakeTemplateName(chatID int64) (orderID int64, t domain.OrderType, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, found := c.sessions[chatID]
	if !found || !s.AwaitingTemplateName {
		return 0, "", false
	}
	s.AwaitingTemplateName = false
	orderID, t = s.TemplateOrderID, s.TemplateOrderType
	s.TemplateOrderID, s.TemplateOrderType = 0, ""
	return orderID, t, true
}
