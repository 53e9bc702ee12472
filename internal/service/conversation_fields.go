package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/pr-poehali-dev/telegram-bot-creation-7/internal/config"
	"github.com/pr-poehali-dev/telegram-bot-creation-7/internal/domain"
	"github.com/shopspring/decimal"
)

// fieldDef describes one collectable field: its edit-button label, the
// prompt shown when the step (or the edit overlay) asks for it, how input
// is written to the order, and the re-prompt text for invalid input.
type fieldDef struct {
	label   string
	invalid string
	assign  func(o *domain.Order, input string, now time.Time) error
	prompt  func(o *domain.Order, now time.Time) Reply
}

// stepDef binds a conversation step to the field it collects and the step
// that follows. The marketplace step branches on the order type and is
// special-cased in Input.
type stepDef struct {
	field string
	next  domain.Step
}

var steps = map[domain.Step]stepDef{
	domain.StepChooseMarketplace: {field: "marketplace"},

	domain.StepSenderWarehouse:      {field: "warehouse", next: domain.StepSenderLoadingAddress},
	domain.StepSenderLoadingAddress: {field: "loading_address", next: domain.StepSenderLoadingDate},
	domain.StepSenderLoadingDate:    {field: "loading_date", next: domain.StepSenderLoadingTime},
	domain.StepSenderLoadingTime:    {field: "loading_time", next: domain.StepSenderDeliveryDate},
	domain.StepSenderDeliveryDate:   {field: "delivery_date", next: domain.StepSenderPallets},
	domain.StepSenderPallets:        {field: "pallet_quantity", next: domain.StepSenderBoxes},
	domain.StepSenderBoxes:          {field: "box_quantity", next: domain.StepSenderName},
	domain.StepSenderName:           {field: "sender_name", next: domain.StepSenderPhone},
	domain.StepSenderPhone:          {field: "phone", next: domain.StepSenderRate},
	domain.StepSenderRate:           {field: "rate", next: domain.StepSenderLabelSize},
	domain.StepSenderLabelSize:      {field: "label_size", next: domain.StepShowPreview},

	domain.StepCarrierWarehouse:      {field: "warehouse", next: domain.StepCarrierCarBrand},
	domain.StepCarrierCarBrand:       {field: "car_brand", next: domain.StepCarrierCarModel},
	domain.StepCarrierCarModel:       {field: "car_model", next: domain.StepCarrierLicensePlate},
	domain.StepCarrierLicensePlate:   {field: "license_plate", next: domain.StepCarrierPalletCapacity},
	domain.StepCarrierPalletCapacity: {field: "pallet_capacity", next: domain.StepCarrierBoxCapacity},
	domain.StepCarrierBoxCapacity:    {field: "box_capacity", next: domain.StepCarrierDriverName},
	domain.StepCarrierDriverName:     {field: "driver_name", next: domain.StepCarrierPhone},
	domain.StepCarrierPhone:          {field: "phone", next: domain.StepCarrierHydroboard},
	domain.StepCarrierHydroboard:     {field: "hydroboard", next: domain.StepCarrierLoadingDate},
	domain.StepCarrierLoadingDate:    {field: "loading_date", next: domain.StepCarrierArrivalDate},
	domain.StepCarrierArrivalDate:    {field: "arrival_date", next: domain.StepShowPreview},
}

func dateKeyboard(now time.Time) [][]Button {
	today := now.Format(dateLayout)
	tomorrow := now.AddDate(0, 0, 1).Format(dateLayout)
	return [][]Button{
		row(btn(fmt.Sprintf("🔴 Сегодня (%s)", today))),
		row(btn(fmt.Sprintf("🟢 Завтра (%s)", tomorrow))),
	}
}

func datePrompt(title string) func(o *domain.Order, now time.Time) Reply {
	return func(_ *domain.Order, now time.Time) Reply {
		return Reply{
			Text:     title + "\n\nВыберите из вариантов или введите дату вручную\nФормат: ДД.ММ.ГГГГ",
			Keyboard: dateKeyboard(now),
			OneTime:  true,
		}
	}
}

func textPrompt(s string) func(o *domain.Order, now time.Time) Reply {
	return func(_ *domain.Order, _ time.Time) Reply { return text(s) }
}

var fields = map[string]fieldDef{
	"marketplace": {
		label:   "Маркетплейс",
		invalid: "❌ Выберите маркетплейс из списка",
		assign: func(o *domain.Order, input string, _ time.Time) error {
			for _, mp := range config.Marketplaces {
				if input == mp {
					o.Marketplace = input
					return nil
				}
			}
			return domain.ErrInvalidInput
		},
		prompt: func(_ *domain.Order, _ time.Time) Reply {
			keyboard := make([][]Button, 0, len(config.Marketplaces))
			for _, mp := range config.Marketplaces {
				keyboard = append(keyboard, row(btn(mp)))
			}
			return Reply{Text: "📦 <b>Выберите маркетплейс</b>", Keyboard: keyboard, OneTime: true}
		},
	},
	"warehouse": {
		label: "Склад",
		assign: func(o *domain.Order, input string, _ time.Time) error {
			if o.Type == domain.OrderTypeCarrier && strings.Contains(strings.ToLower(input), "любой") {
				o.Warehouse = "Любой склад"
				return nil
			}
			o.Warehouse = input
			return nil
		},
		prompt: func(o *domain.Order, _ time.Time) Reply {
			if o.Type == domain.OrderTypeCarrier {
				return Reply{
					Text:     "📍 <b>Укажите склад назначения</b>\n\nНапример: Подольск или Коледино\nИли напишите 'Любой склад'",
					Keyboard: [][]Button{row(btn("Любой склад"))},
					OneTime:  true,
				}
			}
			return Reply{
				Text:           "📍 <b>Укажите склад отгрузки</b>\n\nНапример: Подольск или Коледино",
				RemoveKeyboard: true,
			}
		},
	},
	"loading_address": {
		label: "Адрес погрузки",
		assign: func(o *domain.Order, input string, _ time.Time) error {
			o.LoadingAddress = input
			return nil
		},
		prompt: textPrompt("🏠 <b>Укажите адрес погрузки</b>\n\nНапример: г. Москва, ул. Ленина, д. 10"),
	},
	"loading_date": {
		label:   "Дата погрузки",
		invalid: "❌ Неверный формат даты. Используйте ДД.ММ.ГГГГ",
		assign: func(o *domain.Order, input string, now time.Time) error {
			d, err := parseDate(input, now)
			if err != nil {
				return err
			}
			o.LoadingDate = &d
			return nil
		},
		prompt: datePrompt("📅 <b>Укажите желаемую дату ПОГРУЗКИ</b>"),
	},
	"loading_time": {
		label:   "Время погрузки",
		invalid: "❌ Неверный формат времени. Используйте ЧЧ:ММ",
		assign: func(o *domain.Order, input string, _ time.Time) error {
			t, err := parseClock(input)
			if err != nil {
				return err
			}
			o.LoadingTime = t
			return nil
		},
		prompt: textPrompt("🕐 <b>Укажите время погрузки</b>\n\nФормат: ЧЧ:ММ\nНапример: 14:30"),
	},
	"delivery_date": {
		label:   "Дата поставки",
		invalid: "❌ Неверный формат даты. Используйте ДД.ММ.ГГГГ",
		assign: func(o *domain.Order, input string, now time.Time) error {
			d, err := parseDate(input, now)
			if err != nil {
				return err
			}
			o.DeliveryDate = &d
			return nil
		},
		prompt: datePrompt("📅 <b>Укажите дату поставки на склад</b>"),
	},
	"pallet_quantity": {
		label: "Паллеты",
		assign: func(o *domain.Order, input string, _ time.Time) error {
			o.PalletQuantity = parseQuantity(input)
			return nil
		},
		prompt: textPrompt("📦 <b>Укажите количество паллет</b>\n\nНапример: 5\nИли 0, если нет паллет"),
	},
	"box_quantity": {
		label: "Коробки",
		assign: func(o *domain.Order, input string, _ time.Time) error {
			o.BoxQuantity = parseQuantity(input)
			return nil
		},
		prompt: textPrompt("📦 <b>Укажите количество коробок</b>\n\nНапример: 10\nИли 0, если нет коробок"),
	},
	"sender_name": {
		label: "ФИО",
		assign: func(o *domain.Order, input string, _ time.Time) error {
			o.SenderName = input
			return nil
		},
		prompt: textPrompt("👤 <b>Укажите ФИО отправителя</b>\n\nНапример: Иванов Иван Иванович"),
	},
	"phone": {
		label: "Телефон",
		assign: func(o *domain.Order, input string, _ time.Time) error {
			o.Phone = normalizePhone(input)
			return nil
		},
		prompt: textPrompt("📱 <b>Укажите номер телефона</b>\n\nФормат: +79991234567"),
	},
	"rate": {
		label: "Ставка",
		assign: func(o *domain.Order, input string, _ time.Time) error {
			o.Rate = decimal.NewFromInt(int64(parseQuantity(input)))
			return nil
		},
		prompt: func(_ *domain.Order, _ time.Time) Reply {
			return Reply{
				Text:           "💵 <b>Укажите желаемую ставку в рублях</b>\n\nНапример: 5000",
				RemoveKeyboard: true,
			}
		},
	},
	"label_size": {
		label: "Этикетка",
		assign: func(o *domain.Order, input string, _ time.Time) error {
			if strings.Contains(input, "120") {
				o.LabelSize = "120x75"
			} else {
				o.LabelSize = "58x40"
			}
			return nil
		},
		prompt: func(_ *domain.Order, _ time.Time) Reply {
			keyboard := make([][]Button, 0, len(config.LabelSizes))
			for _, size := range config.LabelSizes {
				keyboard = append(keyboard, row(btn(size+" мм")))
			}
			return Reply{
				Text:     "🏷️ <b>Выберите термоэтикетку с инфо для водителя</b>",
				Keyboard: keyboard,
				OneTime:  true,
			}
		},
	},
	"car_brand": {
		label: "Марка",
		assign: func(o *domain.Order, input string, _ time.Time) error {
			o.CarBrand = input
			return nil
		},
		prompt: func(_ *domain.Order, _ time.Time) Reply {
			return Reply{
				Text:           "🚗 <b>Укажите марку автомобиля</b>\n\nНапример: Mercedes",
				RemoveKeyboard: true,
			}
		},
	},
	"car_model": {
		label: "Модель",
		assign: func(o *domain.Order, input string, _ time.Time) error {
			o.CarModel = input
			return nil
		},
		prompt: textPrompt("🚗 <b>Укажите модель автомобиля</b>\n\nНапример: Sprinter"),
	},
	"license_plate": {
		label: "Гос. номер",
		assign: func(o *domain.Order, input string, _ time.Time) error {
			o.LicensePlate = input
			return nil
		},
		prompt: textPrompt("🔢 <b>Укажите гос. номер автомобиля</b>\n\nНапример: А000АА777"),
	},
	"pallet_capacity": {
		label: "Вместимость паллет",
		assign: func(o *domain.Order, input string, _ time.Time) error {
			o.PalletCapacity = parseQuantity(input)
			return nil
		},
		prompt: textPrompt("📦 <b>Укажите вместимость паллет</b>\n\nНапример: 10\nИли 0, если не перевозите паллеты"),
	},
	"box_capacity": {
		label: "Вместимость коробок",
		assign: func(o *domain.Order, input string, _ time.Time) error {
			o.BoxCapacity = parseQuantity(input)
			return nil
		},
		prompt: textPrompt("📦 <b>Укажите вместимость коробок</b>\n\nНапример: 50\nИли 0, если не перевозите коробки"),
	},
	"driver_name": {
		label: "Водитель",
		assign: func(o *domain.Order, input string, _ time.Time) error {
			o.DriverName = input
			return nil
		},
		prompt: textPrompt("👤 <b>Укажите ФИО водителя</b>\n\nНапример: Петров Петр Петрович"),
	},
	"hydroboard": {
		label: "Гидроборт",
		assign: func(o *domain.Order, input string, _ time.Time) error {
			o.Hydroboard = strings.Contains(strings.ToLower(input), "есть")
			return nil
		},
		prompt: func(_ *domain.Order, _ time.Time) Reply {
			return Reply{
				Text:     "🚚 <b>Гидроборт</b>",
				Keyboard: [][]Button{row(btn("Есть")), row(btn("Нету"))},
				OneTime:  true,
			}
		},
	},
	"arrival_date": {
		label:   "Прибытие",
		invalid: "❌ Неверный формат даты. Используйте ДД.ММ.ГГГГ",
		assign: func(o *domain.Order, input string, now time.Time) error {
			d, err := parseDate(input, now)
			if err != nil {
				return err
			}
			o.ArrivalDate = &d
			return nil
		},
		prompt: datePrompt("📅 <b>Укажите дату прибытия на склад</b>"),
	},
}

// senderEditFields / carrierEditFields define the preview edit buttons, in
// display order.
var senderEditFields = []string{
	"marketplace", "warehouse", "loading_address", "loading_date",
	"loading_time", "delivery_date", "pallet_quantity", "box_quantity",
	"sender_name", "phone", "rate", "label_size",
}

var carrierEditFields = []string{
	"marketplace", "warehouse", "car_brand", "car_model", "license_plate",
	"pallet_capacity", "box_capacity", "driver_name", "phone", "hydroboard",
	"loading_date", "arrival_date",
}

const (
	CallbackConfirmOrder = "confirm_order"
	CallbackCancelOrder  = "cancel_order"
	CallbackEditPrefix   = "edit_"
)

func fmtDate(d *time.Time) string {
	if d == nil {
		return "—"
	}
	return d.Format(dateLayout)
}

func yesNo(b bool) string {
	if b {
		return "Есть"
	}
	return "Нету"
}

func previewText(o *domain.Order) string {
	if o.Type == domain.OrderTypeSender {
		return "📦 <b>Проверьте данные заявки отправителя:</b>\n\n" + orderBody(o)
	}
	return "🚚 <b>Проверьте данные заявки перевозчика:</b>\n\n" + orderBody(o)
}

// OrderCard renders the full detail card of a stored listing.
func OrderCard(o *domain.Order) string {
	if o.Type == domain.OrderTypeSender {
		return fmt.Sprintf("📦 <b>Заявка #%d (отправитель)</b>\n\n", o.ID) + orderBody(o)
	}
	return fmt.Sprintf("🚚 <b>Заявка #%d (перевозчик)</b>\n\n", o.ID) + orderBody(o)
}

func orderBody(o *domain.Order) string {
	if o.Type == domain.OrderTypeSender {
		return fmt.Sprintf(
			"📦 <b>Маркетплейс:</b> %s\n"+
				"📍 <b>Склад:</b> %s\n"+
				"🏠 <b>Адрес погрузки:</b> %s\n"+
				"📅 <b>Дата погрузки:</b> %s\n"+
				"🕐 <b>Время погрузки:</b> %s\n"+
				"📅 <b>Дата поставки:</b> %s\n"+
				"📦 <b>Паллеты:</b> %d шт\n"+
				"📦 <b>Коробки:</b> %d шт\n"+
				"👤 <b>ФИО:</b> %s\n"+
				"📱 <b>Телефон:</b> %s\n"+
				"💵 <b>Ставка:</b> %s руб\n"+
				"🏷️ <b>Термоэтикетка:</b> %s мм",
			o.Marketplace, o.Warehouse, o.LoadingAddress,
			fmtDate(o.LoadingDate), o.LoadingTime, fmtDate(o.DeliveryDate),
			o.PalletQuantity, o.BoxQuantity, o.SenderName, o.Phone,
			o.Rate.StringFixed(0), o.LabelSize,
		)
	}
	return fmt.Sprintf(
		"📦 <b>Маркетплейс:</b> %s\n"+
			"📍 <b>Склад:</b> %s\n"+
			"🚗 <b>Авто:</b> %s %s\n"+
			"🔢 <b>Гос. номер:</b> %s\n"+
			"📦 <b>Вместимость паллет:</b> %d шт\n"+
			"📦 <b>Вместимость коробок:</b> %d шт\n"+
			"👤 <b>Водитель:</b> %s\n"+
			"📱 <b>Телефон:</b> %s\n"+
			"🚚 <b>Гидроборт:</b> %s\n"+
			"📅 <b>Дата погрузки:</b> %s\n"+
			"📅 <b>Прибытие на склад:</b> %s",
		o.Marketplace, o.Warehouse, o.CarBrand, o.CarModel, o.LicensePlate,
		o.PalletCapacity, o.BoxCapacity, o.DriverName, o.Phone,
		yesNo(o.Hydroboard), fmtDate(o.LoadingDate), fmtDate(o.ArrivalDate),
	)
}

func previewReply(s *domain.Session) Reply {
	editable := senderEditFields
	if s.Order.Type == domain.OrderTypeCarrier {
		editable = carrierEditFields
	}

	inline := [][]Button{
		row(
			inlineBtn("✅ Всё верно, сохранить", CallbackConfirmOrder),
			inlineBtn("❌ Отменить", CallbackCancelOrder),
		),
	}

	// Edit buttons, two per row.
	var current []Button
	for _, key := range editable {
		current = append(current, inlineBtn("✏️ "+fields[key].label, CallbackEditPrefix+key))
		if len(current) == 2 {
			inline = append(inline, current)
			current = nil
		}
	}
	if len(current) > 0 {
		inline = append(inline, current)
	}

	return Reply{Text: previewText(s.Order), Inline: inline}
}
