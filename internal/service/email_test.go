package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vehicle-rental-backend/internal/domain"
)

type fakeMailSender struct {
	sent     []*mail.SGMailV3
	response *rest.Response
	err      error
}

func (f *fakeMailSender) Send(email *mail.SGMailV3) (*rest.Response, error) {
	f.sent = append(f.sent, email)
	return f.response, f.err
}

func sampleTicket() *domain.Ticket {
	start := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	return &domain.Ticket{
		Booking: domain.Booking{ID: 7, StartDate: start, EndDate: start.Add(48 * time.Hour), TotalDays: 2, TotalPriceCents: 2000000},
		Vehicle: domain.Vehicle{Make: "Toyota", Model: "Corolla", PlateNumber: "AB-123"},
		Payment: domain.Payment{AmountCents: 2000000, TransactionID: "tx-42", CardBrand: "VISA", CardLast4: "4242"},
	}
}

func TestSendGridEmailService(t *testing.T) {
	ctx := context.Background()

	t.Run("Payment receipt", func(t *testing.T) {
		sender := &fakeMailSender{response: &rest.Response{StatusCode: 202}}
		svc := &sendGridEmailService{client: sender, fromEmail: "noreply@rental.test", fromName: "Rental"}

		require.NoError(t, svc.SendPaymentReceipt(ctx, "jane@example.com", "Jane", sampleTicket()))
		require.Len(t, sender.sent, 1)
		msg := sender.sent[0]
		assert.Equal(t, "Your ticket for booking #7", msg.Subject)
		assert.Equal(t, "noreply@rental.test", msg.From.Address)
		require.Len(t, msg.Personalizations, 1)
		assert.Equal(t, "jane@example.com", msg.Personalizations[0].To[0].Address)
		require.NotEmpty(t, msg.Content)
		assert.Contains(t, msg.Content[0].Value, "20000.00")
		assert.Contains(t, msg.Content[0].Value, "tx-42")
	})

	t.Run("Booking confirmation", func(t *testing.T) {
		sender := &fakeMailSender{response: &rest.Response{StatusCode: 202}}
		svc := &sendGridEmailService{client: sender, fromEmail: "noreply@rental.test"}
		ticket := sampleTicket()
		b := ticket.Booking
		b.Status = domain.BookingStatusPending
		b.Vehicle = &ticket.Vehicle

		require.NoError(t, svc.SendBookingConfirmation(ctx, "jane@example.com", "Jane", &b))
		require.Len(t, sender.sent, 1)
		assert.Equal(t, "Booking #7 received", sender.sent[0].Subject)
		assert.Contains(t, sender.sent[0].Content[0].Value, "Toyota Corolla (AB-123)")
		assert.Contains(t, sender.sent[0].Content[0].Value, "PENDING")
	})

	t.Run("Error status", func(t *testing.T) {
		sender := &fakeMailSender{response: &rest.Response{StatusCode: 401, Body: "unauthorized"}}
		svc := &sendGridEmailService{client: sender}
		err := svc.SendPaymentReceipt(ctx, "jane@example.com", "Jane", sampleTicket())
		assert.ErrorContains(t, err, "status 401")
	})

	t.Run("Transport error", func(t *testing.T) {
		sender := &fakeMailSender{err: errors.New("connection reset")}
		svc := &sendGridEmailService{client: sender}
		err := svc.SendPaymentReceipt(ctx, "jane@example.com", "Jane", sampleTicket())
		assert.ErrorContains(t, err, "connection reset")
	})
}

func TestNewEmailService_WithoutKeyOnlyLogs(t *testing.T) {
	svc := NewEmailService("", "noreply@rental.test", "Rental")
	_, ok := svc.(*logEmailService)
	require.True(t, ok)
	assert.NoError(t, svc.SendPaymentReceipt(context.Background(), "jane@example.com", "Jane", sampleTicket()))
}
