package domain

import "time"

type SubscriptionMode string

const (
	SubscriptionAll       SubscriptionMode = "all"
	SubscriptionWarehouse SubscriptionMode = "warehouse"
)

// Subscription is a standing request to hear about new listings of UserType.
// A warehouse-mode subscription only matches orders whose warehouse
// normalizes to the same form as WarehouseFilter.
type Subscription struct {
	ID              int64
	ChatID          int64
	UserType        OrderType
	Mode            SubscriptionMode
	WarehouseFilter string
	CreatedAt       time.Time
}
