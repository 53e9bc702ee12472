package domain

import "errors"

var (
	ErrDailyLimit       = errors.New("daily order limit reached")
	ErrOrderNotFound    = errors.New("order not found")
	ErrTemplateNotFound = errors.New("template not found")
	ErrSessionExpired   = errors.New("conversation session expired")
	ErrInvalidInput     = errors.New("invalid input")
)
