package domain

import "time"

// Template is a named snapshot of a completed order form. Loading one jumps
// the conversation straight to the preview with the snapshot as the working
// data.
type Template struct {
	ID        int64
	ChatID    int64
	Name      string
	OrderType OrderType
	Data      *Order
	CreatedAt time.Time
}
