package utils

import (
	"errors"
	"math"
	"testing"
	"time"

	"vehicle-rental-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, s)
	require.NoError(t, err)
	return ts
}

func TestBillableDays(t *testing.T) {
	tests := []struct {
		name     string
		start    string
		end      string
		expected int32
	}{
		{"Exact two days", "2024-01-01T00:00:00Z", "2024-01-03T00:00:00Z", 2},
		{"Partial day rounds up", "2024-01-01T00:00:00Z", "2024-01-02T00:00:01Z", 2},
		{"Less than a day is one day", "2024-01-01T10:00:00Z", "2024-01-01T11:00:00Z", 1},
		{"Exactly one day", "2024-01-01T10:00:00Z", "2024-01-02T10:00:00Z", 1},
		{"Across leap day", "2024-02-28T00:00:00Z", "2024-03-01T00:00:00Z", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			days := BillableDays(mustTime(t, tt.start), mustTime(t, tt.end))
			assert.Equal(t, tt.expected, days)
		})
	}
}

func TestCalculateBookingPrice(t *testing.T) {
	t.Run("Two day booking", func(t *testing.T) {
		// 10000.00 per day
		quote, err := CalculateBookingPrice(mustTime(t, "2024-01-01T00:00:00Z"), mustTime(t, "2024-01-03T00:00:00Z"), 1000000)
		assert.NoError(t, err)
		assert.Equal(t, int32(2), quote.TotalDays)
		assert.Equal(t, int64(2000000), quote.TotalPriceCents)
	})

	t.Run("Partial day charged as full day", func(t *testing.T) {
		quote, err := CalculateBookingPrice(mustTime(t, "2024-01-01T09:00:00Z"), mustTime(t, "2024-01-02T10:30:00Z"), 4599)
		assert.NoError(t, err)
		assert.Equal(t, int32(2), quote.TotalDays)
		assert.Equal(t, int64(9198), quote.TotalPriceCents)
	})

	t.Run("End equal to start", func(t *testing.T) {
		ts := mustTime(t, "2024-01-01T00:00:00Z")
		_, err := CalculateBookingPrice(ts, ts, 1000)
		assert.True(t, errors.Is(err, domain.ErrValidation))
	})

	t.Run("End before start", func(t *testing.T) {
		_, err := CalculateBookingPrice(mustTime(t, "2024-01-03T00:00:00Z"), mustTime(t, "2024-01-01T00:00:00Z"), 1000)
		assert.True(t, errors.Is(err, domain.ErrValidation))
	})

	t.Run("Non-positive rate", func(t *testing.T) {
		_, err := CalculateBookingPrice(mustTime(t, "2024-01-01T00:00:00Z"), mustTime(t, "2024-01-03T00:00:00Z"), 0)
		assert.True(t, errors.Is(err, domain.ErrValidation))
	})

	t.Run("Total overflowing int64 is rejected", func(t *testing.T) {
		quote, err := CalculateBookingPrice(mustTime(t, "2024-01-01T00:00:00Z"), mustTime(t, "2024-01-03T00:00:00Z"), 5_000_000_000_000_000_000)
		assert.True(t, errors.Is(err, domain.ErrValidation))
		assert.Zero(t, quote.TotalPriceCents)
	})

	t.Run("Largest exact total is accepted", func(t *testing.T) {
		quote, err := CalculateBookingPrice(mustTime(t, "2024-01-01T00:00:00Z"), mustTime(t, "2024-01-03T00:00:00Z"), math.MaxInt64/2)
		require.NoError(t, err)
		assert.Equal(t, int64(math.MaxInt64/2)*2, quote.TotalPriceCents)
	})
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
	}{
		{"10000", 1000000},
		{"45.99", 4599},
		{"0.005", 1},
		{"0.004", 0},
		{"149.995", 15000},
		{" 12.3 ", 1230},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			cents, err := ParseAmount(tt.input)
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, cents)
		})
	}

	t.Run("Invalid", func(t *testing.T) {
		_, err := ParseAmount("ten dollars")
		assert.True(t, errors.Is(err, domain.ErrValidation))
	})

	t.Run("Negative", func(t *testing.T) {
		_, err := ParseAmount("-1.00")
		assert.True(t, errors.Is(err, domain.ErrValidation))
	})
}

func TestFormatCents(t *testing.T) {
	assert.Equal(t, "20000.00", FormatCents(2000000))
	assert.Equal(t, "0.05", FormatCents(5))
	assert.Equal(t, "-1.50", FormatCents(-150))
}
