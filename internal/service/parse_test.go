package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDateTokens(t *testing.T) {
	now := time.Date(2024, 3, 15, 18, 30, 0, 0, time.UTC)

	d, err := parseDate("🔴 Сегодня (15.03.2024)", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), d)

	d, err = parseDate("завтра", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 16, 0, 0, 0, 0, time.UTC), d)

	d, err = parseDate("🟢 Завтра (16.03.2024)", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 16, 0, 0, 0, 0, time.UTC), d)
}

func TestParseDateManual(t *testing.T) {
	now := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	d, err := parseDate("20.03.2024", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC), d)

	// Date inside parentheses wins over any surrounding text.
	d, err = parseDate("Пятница (22.03.2024)", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 22, 0, 0, 0, 0, time.UTC), d)
}

func TestParseDateRejectsOtherFormats(t *testing.T) {
	now := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	for _, input := range []string{"2024-03-20", "20/03/2024", "20.03.24", "скоро", ""} {
		_, err := parseDate(input, now)
		assert.Error(t, err, "input %q", input)
	}
}

func TestParseClock(t *testing.T) {
	got, err := parseClock("14:30")
	require.NoError(t, err)
	assert.Equal(t, "14:30", got)

	got, err = parseClock(" 09:05 ")
	require.NoError(t, err)
	assert.Equal(t, "09:05", got)

	_, err = parseClock("25:00")
	assert.Error(t, err)
	_, err = parseClock("полдень")
	assert.Error(t, err)
}

func TestNormalizePhone(t *testing.T) {
	assert.Equal(t, "+79991234567", normalizePhone("89991234567"))
	assert.Equal(t, "+79991234567", normalizePhone("9991234567"))
	assert.Equal(t, "+79991234567", normalizePhone("+79991234567"))
	assert.Equal(t, "+79991234567", normalizePhone(" +79991234567 "))
}

func TestParseQuantityCoercesToZero(t *testing.T) {
	assert.Equal(t, 5, parseQuantity("5"))
	assert.Equal(t, 10, parseQuantity(" 10 "))
	assert.Equal(t, 0, parseQuantity("пять"))
	assert.Equal(t, 0, parseQuantity("-3"))
	assert.Equal(t, 0, parseQuantity(""))
}
