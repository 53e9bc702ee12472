package domain

import "time"

// Step is a state of the intake conversation. The set is closed: every
// transition is declared in the engine's step table.
type Step int

const (
	StepChooseService Step = iota
	StepChooseMarketplace

	StepSenderWarehouse
	StepSenderLoadingAddress
	StepSenderLoadingDate
	StepSenderLoadingTime
	StepSenderDeliveryDate
	StepSenderPallets
	StepSenderBoxes
	StepSenderName
	StepSenderPhone
	StepSenderRate
	StepSenderLabelSize

	StepCarrierWarehouse
	StepCarrierCarBrand
	StepCarrierCarModel
	StepCarrierLicensePlate
	StepCarrierPalletCapacity
	StepCarrierBoxCapacity
	StepCarrierDriverName
	StepCarrierPhone
	StepCarrierHydroboard
	StepCarrierLoadingDate
	StepCarrierArrivalDate

	StepShowPreview
)

func (s Step) String() string {
	names := map[Step]string{
		StepChooseService:         "choose_service",
		StepChooseMarketplace:     "choose_marketplace",
		StepSenderWarehouse:       "sender_warehouse",
		StepSenderLoadingAddress:  "sender_loading_address",
		StepSenderLoadingDate:     "sender_loading_date",
		StepSenderLoadingTime:     "sender_loading_time",
		StepSenderDeliveryDate:    "sender_delivery_date",
		StepSenderPallets:         "sender_pallet_quantity",
		StepSenderBoxes:           "sender_box_quantity",
		StepSenderName:            "sender_name",
		StepSenderPhone:           "sender_phone",
		StepSenderRate:            "sender_rate",
		StepSenderLabelSize:       "sender_label_size",
		StepCarrierWarehouse:      "carrier_warehouse",
		StepCarrierCarBrand:       "carrier_car_brand",
		StepCarrierCarModel:       "carrier_car_model",
		StepCarrierLicensePlate:   "carrier_license_plate",
		StepCarrierPalletCapacity: "carrier_pallet_capacity",
		StepCarrierBoxCapacity:    "carrier_box_capacity",
		StepCarrierDriverName:     "carrier_driver_name",
		StepCarrierPhone:          "carrier_phone",
		StepCarrierHydroboard:     "carrier_hydroboard",
		StepCarrierLoadingDate:    "carrier_loading_date",
		StepCarrierArrivalDate:    "carrier_arrival_date",
		StepShowPreview:           "show_preview",
	}
	if n, ok := names[s]; ok {
		return n
	}
	return "unknown"
}

// Session is the per-chat conversation state. It lives in process memory,
// is owned by a single chat and is reclaimed lazily once LastActivity is
// older than the session timeout.
type Session struct {
	ChatID int64
	Step   Step
	Order  *Order

	// EditingField overlays the main sequence: when set, the next input is
	// written to that field and the session returns to the preview.
	EditingField string

	// EditingOrderID is non-zero when an already persisted order was loaded
	// back into the session; confirmation then updates instead of inserting.
	EditingOrderID int64

	// AwaitingTemplateName is set after "save as template" until the user
	// replies with a name for the snapshot.
	AwaitingTemplateName bool
	TemplateOrderID      int64
	TemplateOrderType    OrderType

	LastActivity time.Time
}

// Expired reports whether the session has been idle past ttl.
func (s *Session) Expired(now time.Time, ttl time.Duration) bool {
	return now.Sub(s.LastActivity) > ttl
}
