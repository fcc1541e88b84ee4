package utils

import (
	"fmt"
	"strings"
	"time"

	"vehicle-rental-backend/internal/domain"
)

// declinedCardSuffix is the simulated fraud rule of the payment stub.
const declinedCardSuffix = "0002"

// NormalizeCardNumber strips spaces and dashes.
func NormalizeCardNumber(number string) string {
	return strings.Map(func(r rune) rune {
		if r == ' ' || r == '-' {
			return -1
		}
		return r
	}, number)
}

// ValidateCard checks the shape of the card input against now.
func ValidateCard(card domain.CardDetails, now time.Time) error {
	number := NormalizeCardNumber(card.Number)
	if len(number) < 12 || len(number) > 19 || !isDigits(number) {
		return fmt.Errorf("%w: card number must be 12 to 19 digits", domain.ErrValidation)
	}
	if strings.TrimSpace(card.HolderName) == "" {
		return fmt.Errorf("%w: card holder name is required", domain.ErrValidation)
	}
	if card.ExpiryMonth < 1 || card.ExpiryMonth > 12 {
		return fmt.Errorf("%w: expiry month must be between 1 and 12", domain.ErrValidation)
	}
	year := card.ExpiryYear
	if year < 100 {
		year += 2000
	}
	// valid through the last day of the expiry month
	expires := time.Date(year, time.Month(card.ExpiryMonth)+1, 1, 0, 0, 0, 0, time.UTC)
	if !now.Before(expires) {
		return fmt.Errorf("%w: card has expired", domain.ErrValidation)
	}
	if (len(card.CVV) != 3 && len(card.CVV) != 4) || !isDigits(card.CVV) {
		return fmt.Errorf("%w: cvv must be 3 or 4 digits", domain.ErrValidation)
	}
	return nil
}

// IsDeclined applies the fraud rule: numbers ending in 0002 are always declined.
func IsDeclined(number string) bool {
	return strings.HasSuffix(NormalizeCardNumber(number), declinedCardSuffix)
}

func CardLast4(number string) string {
	n := NormalizeCardNumber(number)
	if len(n) < 4 {
		return n
	}
	return n[len(n)-4:]
}

func CardBrand(number string) string {
	n := NormalizeCardNumber(number)
	switch {
	case strings.HasPrefix(n, "4"):
		return "VISA"
	case strings.HasPrefix(n, "34"), strings.HasPrefix(n, "37"):
		return "AMEX"
	case len(n) >= 2 && n[0] == '5' && n[1] >= '1' && n[1] <= '5':
		return "MASTERCARD"
	case strings.HasPrefix(n, "6"):
		return "DISCOVER"
	}
	return "UNKNOWN"
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
