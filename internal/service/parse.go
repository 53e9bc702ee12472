package service

import (
	"strconv"
	"strings"
	"time"

	"github.com/pr-poehali-dev/telegram-bot-creation-7/internal/domain"
)

const dateLayout = "02.01.2006"

// parseDate accepts the "today"/"tomorrow" keyboard tokens (with or without
// their emoji and the parenthesized date) and manual DD.MM.YYYY input.
func parseDate(input string, now time.Time) (time.Time, error) {
	lower := strings.ToLower(input)

	switch {
	case strings.Contains(lower, "сегодня"), strings.Contains(input, "🔴"):
		return midnight(now), nil
	case strings.Contains(lower, "завтра"), strings.Contains(input, "🟢"):
		return midnight(now.AddDate(0, 0, 1)), nil
	}

	cleaned := strings.NewReplacer("🔴", "", "🟢", "").Replace(input)
	cleaned = strings.TrimSpace(cleaned)
	if i := strings.LastIndex(cleaned, "("); i >= 0 {
		cleaned = strings.TrimSpace(strings.TrimSuffix(cleaned[i+1:], ")"))
	}

	d, err := time.Parse(dateLayout, cleaned)
	if err != nil {
		return time.Time{}, domain.ErrInvalidInput
	}
	return d, nil
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// parseClock validates HH:MM and returns it in canonical form.
func parseClock(input string) (string, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(input))
	if err != nil {
		return "", domain.ErrInvalidInput
	}
	return t.Format("15:04"), nil
}

// normalizePhone applies the local dialing conventions: a leading 8 becomes
// +7, any number without + gets +7 prefixed.
func normalizePhone(input string) string {
	phone := strings.TrimSpace(input)
	switch {
	case strings.HasPrefix(phone, "8"):
		return "+7" + phone[1:]
	case !strings.HasPrefix(phone, "+"):
		return "+7" + phone
	}
	return phone
}

// parseQuantity coerces non-numeric input to 0 instead of rejecting it,
// matching the historical form behavior.
func parseQuantity(input string) int {
	n, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
