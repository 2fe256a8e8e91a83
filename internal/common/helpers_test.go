package common

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPluralizeDays(t *testing.T) {
	cases := map[int]string{
		0: "дней", 1: "день", 2: "дня", 4: "дня", 5: "дней",
		11: "дней", 12: "дней", 21: "день", 22: "дня", 111: "дней", -3: "дня",
	}
	for n, want := range cases {
		assert.Equal(t, want, PluralizeDays(n), "n=%d", n)
	}
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "0", FormatNumber(0))
	assert.Equal(t, "999", FormatNumber(999))
	assert.Equal(t, "2 350", FormatNumber(2350))
	assert.Equal(t, "1 000 007", FormatNumber(1000007))
	assert.Equal(t, "-5 000", FormatNumber(-5000))
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "1 234,50 ₽", FormatMoney(decimal.RequireFromString("1234.5"), "₽"))
	assert.Equal(t, "-20,00 ₽", FormatMoney(decimal.NewFromInt(-20), "₽"))
	assert.Equal(t, "0,00", FormatMoney(decimal.Zero, ""))
}

func TestDaysBetweenIgnoresTimeOfDay(t *testing.T) {
	loc := time.FixedZone("MSK", 3*60*60)
	from := time.Date(2026, 3, 1, 23, 59, 0, 0, loc)
	to := time.Date(2026, 3, 2, 0, 1, 0, 0, loc)
	assert.Equal(t, 1, DaysBetween(from, to))
	assert.Equal(t, -1, DaysBetween(to, from))
	assert.Equal(t, 0, DaysBetween(from, from.Add(-time.Hour)))
}

func TestParseDay(t *testing.T) {
	today := time.Date(2026, 10, 19, 15, 30, 0, 0, time.UTC)

	got, err := ParseDay("вчера", today)
	require.NoError(t, err)
	assert.Equal(t, "2026-10-18", DayKey(got))

	got, err = ParseDay("", today)
	require.NoError(t, err)
	assert.Equal(t, "2026-10-19", DayKey(got))

	got, err = ParseDay("01.11.2026", today)
	require.NoError(t, err)
	assert.Equal(t, "2026-11-01", DayKey(got))

	_, err = ParseDay("послезавтра-ish", today)
	assert.ErrorIs(t, err, ErrInvalidDate)
}
