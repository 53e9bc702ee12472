package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderType string

const (
	OrderTypeSender  OrderType = "sender"
	OrderTypeCarrier OrderType = "carrier"
)

// Opposite returns the complementary side of the marketplace.
func (t OrderType) Opposite() OrderType {
	if t == OrderTypeSender {
		return OrderTypeCarrier
	}
	return OrderTypeSender
}

// Order is a single listing, either a sender request or a carrier offer.
// WarehouseNormalized is always derived from Warehouse at write time and is
// never edited independently.
type Order struct {
	ID                  int64      `json:"id,omitempty"`
	Type                OrderType  `json:"type"`
	ChatID              int64      `json:"chat_id,omitempty"`
	Username            string     `json:"username,omitempty"`
	Marketplace         string     `json:"marketplace,omitempty"`
	Warehouse           string     `json:"warehouse,omitempty"`
	WarehouseNormalized string     `json:"-"`
	LoadingDate         *time.Time `json:"loading_date,omitempty"`
	CreatedAt           time.Time  `json:"-"`
	Phone               string     `json:"phone,omitempty"`

	// Sender fields
	LoadingAddress string          `json:"loading_address,omitempty"`
	LoadingTime    string          `json:"loading_time,omitempty"`
	DeliveryDate   *time.Time      `json:"delivery_date,omitempty"`
	PalletQuantity int             `json:"pallet_quantity,omitempty"`
	BoxQuantity    int             `json:"box_quantity,omitempty"`
	SenderName     string          `json:"sender_name,omitempty"`
	Rate           decimal.Decimal `json:"rate,omitempty"`
	LabelSize      string          `json:"label_size,omitempty"`

	// Carrier fields
	CarBrand       string     `json:"car_brand,omitempty"`
	CarModel       string     `json:"car_model,omitempty"`
	LicensePlate   string     `json:"license_plate,omitempty"`
	PalletCapacity int        `json:"pallet_capacity,omitempty"`
	BoxCapacity    int        `json:"box_capacity,omitempty"`
	Hydroboard     bool       `json:"hydroboard,omitempty"`
	DriverName     string     `json:"driver_name,omitempty"`
	ArrivalDate    *time.Time `json:"arrival_date,omitempty"`
}

// ContactName returns the person attached to the listing.
func (o *Order) ContactName() string {
	if o.Type == OrderTypeSender {
		return o.SenderName
	}
	return o.DriverName
}
