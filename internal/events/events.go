package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"vehicle-rental-backend/internal/domain"
)

const (
	TypeBookingCreated   = "booking.created"
	TypePaymentCompleted = "payment.completed"

	currentVersion = 1
)

var (
	ErrBufferFull = errors.New("event buffer is full")
	ErrClosed     = errors.New("event publisher is closed")
)

// Envelope is the wire format of every booking event.
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlation_id,omitempty"` // booking id
	Payload       json.RawMessage `json:"payload"`
}

type BookingCreatedPayload struct {
	Booking domain.Booking `json:"booking"`
}

type PaymentCompletedPayload struct {
	Ticket domain.Ticket `json:"ticket"`
}

// Handler processes one decoded event. A nil return acknowledges it.
type Handler func(ctx context.Context, env Envelope) error

// Publisher hands envelopes to a transport. Publish must not block.
type Publisher interface {
	Publish(ctx context.Context, env Envelope) error
	Close() error
}

func NewEnvelope(eventType, producer, correlationID string, payload any) (Envelope, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("encode %s payload: %w", eventType, err)
	}
	return Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  currentVersion,
		OccurredAt:    time.Now().UTC(),
		Producer:      producer,
		CorrelationID: correlationID,
		Payload:       body,
	}, nil
}

func DecodeEnvelope(b []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	if env.EventID == "" || env.EventType == "" {
		return Envelope{}, errors.New("decode envelope: missing event id or type")
	}
	return env, nil
}

func UnwrapPayload[T any](payload json.RawMessage) (T, error) {
	var t T
	if err := json.Unmarshal(payload, &t); err != nil {
		return t, fmt.Errorf("decode payload: %w", err)
	}
	return t, nil
}
