package events

import (
	"context"
	"strconv"

	"vehicle-rental-backend/internal/domain"
	"vehicle-rental-backend/internal/logger"
	"vehicle-rental-backend/internal/metrics"
	"vehicle-rental-backend/internal/service"
)

var _ service.Notifier = (*Notifier)(nil)

// Notifier turns committed booking changes into events on a Publisher.
// Publication failures are logged and counted, never returned.
type Notifier struct {
	pub      Publisher
	producer string
	metrics  *metrics.Metrics
}

func NewNotifier(pub Publisher, producer string, m *metrics.Metrics) *Notifier {
	return &Notifier{pub: pub, producer: producer, metrics: m}
}

func (n *Notifier) NotifyBookingCreated(ctx context.Context, booking *domain.Booking) {
	n.publish(ctx, TypeBookingCreated, booking.ID, BookingCreatedPayload{Booking: *booking})
}

func (n *Notifier) NotifyPaymentCompleted(ctx context.Context, ticket *domain.Ticket) {
	n.publish(ctx, TypePaymentCompleted, ticket.Booking.ID, PaymentCompletedPayload{Ticket: *ticket})
}

func (n *Notifier) publish(ctx context.Context, eventType string, bookingID int32, payload any) {
	env, err := NewEnvelope(eventType, n.producer, strconv.Itoa(int(bookingID)), payload)
	if err == nil {
		err = n.pub.Publish(ctx, env)
	}
	n.metrics.EventPublished(eventType, err)
	logger.EventPublished(ctx, eventType, env.EventID, err)
}
