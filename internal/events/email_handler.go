package events

import (
	"context"
	"fmt"

	"vehicle-rental-backend/internal/logger"
	"vehicle-rental-backend/internal/service"
)

// Deduper remembers processed event ids across consumer restarts.
type Deduper interface {
	// Claim reports whether eventID was not seen before and marks it.
	Claim(ctx context.Context, eventID string) (bool, error)
	Release(ctx context.Context, eventID string) error
}

// EmailHandler sends the customer emails of booking events.
type EmailHandler struct {
	email service.EmailService
}

func NewEmailHandler(email service.EmailService) *EmailHandler {
	return &EmailHandler{email: email}
}

func (h *EmailHandler) Handle(ctx context.Context, env Envelope) error {
	switch env.EventType {
	case TypeBookingCreated:
		p, err := UnwrapPayload[BookingCreatedPayload](env.Payload)
		if err != nil {
			return err
		}
		if p.Booking.Customer == nil {
			return fmt.Errorf("booking %d event has no customer", p.Booking.ID)
		}
		return h.email.SendBookingConfirmation(ctx, p.Booking.Customer.Email, p.Booking.Customer.Name, &p.Booking)

	case TypePaymentCompleted:
		p, err := UnwrapPayload[PaymentCompletedPayload](env.Payload)
		if err != nil {
			return err
		}
		return h.email.SendPaymentReceipt(ctx, p.Ticket.Customer.Email, p.Ticket.Customer.Name, &p.Ticket)
	}

	logger.Debug("Ignoring event", "event_type", env.EventType, "event_id", env.EventID)
	return nil
}

// WithDedup skips events already claimed. A failed handler releases its
// claim so a redelivery is processed again. When the deduper itself fails
// the event is processed anyway.
func WithDedup(h Handler, d Deduper) Handler {
	return func(ctx context.Context, env Envelope) error {
		first, err := d.Claim(ctx, env.EventID)
		if err != nil {
			logger.WarnContext(ctx, "Event dedup unavailable", "event_id", env.EventID, "error", err)
			return h(ctx, env)
		}
		if !first {
			logger.DebugContext(ctx, "Skipping duplicate event", "event_id", env.EventID)
			return nil
		}
		if err := h(ctx, env); err != nil {
			if rerr := d.Release(ctx, env.EventID); rerr != nil {
				logger.WarnContext(ctx, "Failed to release event claim", "event_id", env.EventID, "error", rerr)
			}
			return err
		}
		return nil
	}
}
