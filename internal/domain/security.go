package domain

import "time"

type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// SecurityEvent is one row of the append-only abuse log.
type SecurityEvent struct {
	ID        int64
	ChatID    int64
	EventType string
	Details   string
	Severity  Severity
	CreatedAt time.Time
}

// BlockedUser is an entry of the block list. Blocks are terminal until an
// admin removes them, there is no automatic expiry.
type BlockedUser struct {
	ChatID    int64
	Reason    string
	BlockedAt time.Time
}
