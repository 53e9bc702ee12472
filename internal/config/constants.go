package config

import "time"

const (
	// Rate limiting
	MaxRequestsPerMinute = 20
	RateWindow           = 60 * time.Second

	// Abuse thresholds
	MaxOrdersPerDay         = 10
	SuspiciousEventsPerHour = 50

	// Input limits
	MaxTextLength = 500

	// Conversation session lifetime, checked lazily on each interaction
	SessionTimeout = 6 * time.Hour

	// Matching
	MaxMatchResults = 5

	// Listing limits
	OrdersListLimit   = 20
	AdminOrdersLimit  = 50
	AdminUsersLimit   = 30
	SecurityLogsLimit = 20
	MenuTemplateLimit = 5

	// Sender orders are swept this long after the delivery date
	SenderRetentionDays = 5

	// Label rendering
	LabelRenderTimeout = 30 * time.Second

	// Telegram limits
	MaxTelegramMessageLen = 4096
)

// Marketplaces offered on the marketplace step.
var Marketplaces = []string{
	"Wildberries",
	"OZON",
	"Яндекс.Маркет",
	"AliExpress",
	"Другой",
}

// LabelSizes offered on the thermal label step, millimeters.
var LabelSizes = []string{"120x75", "58x40"}
