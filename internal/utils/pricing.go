package utils

import (
	"fmt"
	"math"
	"math/big"
	"strings"
	"time"

	"vehicle-rental-backend/internal/domain"
)

const day = 24 * time.Hour

// PriceQuote is the outcome of pricing a date range.
type PriceQuote struct {
	TotalDays        int32
	PricePerDayCents int64
	TotalPriceCents  int64
}

// BillableDays returns ceil((end - start) / 1 day) with a minimum of 1.
func BillableDays(startDate, endDate time.Time) int32 {
	span := endDate.Sub(startDate)
	days := int64(span / day)
	if span%day > 0 {
		days++
	}
	if days < 1 {
		days = 1
	}
	return int32(days)
}

// CalculateBookingPrice prices a booking. Amounts are integer cents so the total is exact;
// the caller stores the result as the frozen booking price.
func CalculateBookingPrice(startDate, endDate time.Time, pricePerDayCents int64) (PriceQuote, error) {
	if !endDate.After(startDate) {
		return PriceQuote{}, fmt.Errorf("%w: end date must be after start date", domain.ErrValidation)
	}
	if pricePerDayCents <= 0 {
		return PriceQuote{}, fmt.Errorf("%w: price per day must be positive", domain.ErrValidation)
	}

	days := BillableDays(startDate, endDate)
	if pricePerDayCents > math.MaxInt64/int64(days) {
		return PriceQuote{}, fmt.Errorf("%w: total price of %d days exceeds the supported range", domain.ErrValidation, days)
	}
	return PriceQuote{
		TotalDays:        days,
		PricePerDayCents: pricePerDayCents,
		TotalPriceCents:  int64(days) * pricePerDayCents,
	}, nil
}

// ParseAmount converts a decimal amount such as "149.995" into cents, rounding half-up.
func ParseAmount(s string) (int64, error) {
	s = strings.TrimSpace(s)
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return 0, fmt.Errorf("%w: invalid amount %q", domain.ErrValidation, s)
	}
	if r.Sign() < 0 {
		return 0, fmt.Errorf("%w: amount must not be negative", domain.ErrValidation)
	}

	// cents = floor(amount*100 + 1/2)
	r.Mul(r, big.NewRat(100, 1))
	r.Add(r, big.NewRat(1, 2))
	cents := new(big.Int).Quo(r.Num(), r.Denom())
	if !cents.IsInt64() {
		return 0, fmt.Errorf("%w: amount %q is too large", domain.ErrValidation, s)
	}
	return cents.Int64(), nil
}

// FormatCents renders cents as a decimal string with two places.
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
