package domain

import "time"

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
	PaymentStatusRefunded  PaymentStatus = "REFUNDED"
)

type Payment struct {
	ID            int32         `json:"id"`
	BookingID     int32         `json:"booking_id"`
	AmountCents   int64         `json:"amount_cents"`
	Status        PaymentStatus `json:"status"`
	TransactionID string        `json:"transaction_id"`
	CardLast4     string        `json:"card_last4"`
	CardBrand     string        `json:"card_brand"`
	CardHolder    string        `json:"card_holder"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// CardDetails is the raw card input of a payment attempt. It is never persisted.
type CardDetails struct {
	Number      string
	HolderName  string
	ExpiryMonth int
	ExpiryYear  int
	CVV         string
}

// Ticket is the read-only projection returned after a successful payment.
type Ticket struct {
	Booking  Booking `json:"booking"`
	Vehicle  Vehicle `json:"vehicle"`
	Customer User    `json:"customer"`
	Payment  Payment `json:"payment"`
}
