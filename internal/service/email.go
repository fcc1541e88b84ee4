package service

import (
	"context"
	"fmt"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"vehicle-rental-backend/internal/domain"
	"vehicle-rental-backend/internal/logger"
	"vehicle-rental-backend/internal/utils"
)

const bookingDateLayout = "Mon, 02 Jan 2006 15:04 MST"

// mailSender is the part of the SendGrid client used here.
type mailSender interface {
	Send(email *mail.SGMailV3) (*rest.Response, error)
}

type sendGridEmailService struct {
	client    mailSender
	fromEmail string
	fromName  string
}

// NewEmailService returns a SendGrid backed sender, or one that only logs
// when apiKey is empty.
func NewEmailService(apiKey, fromEmail, fromName string) EmailService {
	if apiKey == "" {
		return &logEmailService{}
	}
	return &sendGridEmailService{
		client:    sendgrid.NewSendClient(apiKey),
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

func (s *sendGridEmailService) SendBookingConfirmation(ctx context.Context, to, name string, b *domain.Booking) error {
	subject, plain, html := bookingConfirmationContent(name, b)
	return s.send(ctx, to, name, subject, plain, html)
}

func (s *sendGridEmailService) SendPaymentReceipt(ctx context.Context, to, name string, t *domain.Ticket) error {
	subject, plain, html := paymentReceiptContent(name, t)
	return s.send(ctx, to, name, subject, plain, html)
}

func (s *sendGridEmailService) send(ctx context.Context, to, toName, subject, plainText, htmlContent string) error {
	logger.ExternalServiceCall("sendgrid", "send", "to", to, "subject", subject)
	from := mail.NewEmail(s.fromName, s.fromEmail)
	message := mail.NewSingleEmail(from, subject, mail.NewEmail(toName, to), plainText, htmlContent)

	response, err := s.client.Send(message)
	if err == nil && response.StatusCode >= 400 {
		err = fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
	}
	logger.ExternalServiceResult("sendgrid", "send", err, "to", to)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

type logEmailService struct{}

func (logEmailService) SendBookingConfirmation(ctx context.Context, to, name string, b *domain.Booking) error {
	subject, _, _ := bookingConfirmationContent(name, b)
	logger.InfoContext(ctx, "Email delivery disabled, skipping", "to", to, "subject", subject)
	return nil
}

func (logEmailService) SendPaymentReceipt(ctx context.Context, to, name string, t *domain.Ticket) error {
	subject, _, _ := paymentReceiptContent(name, t)
	logger.InfoContext(ctx, "Email delivery disabled, skipping", "to", to, "subject", subject)
	return nil
}

func bookingConfirmationContent(name string, b *domain.Booking) (subject, plain, html string) {
	vehicle := fmt.Sprintf("vehicle #%d", b.VehicleID)
	if b.Vehicle != nil {
		vehicle = fmt.Sprintf("%s %s (%s)", b.Vehicle.Make, b.Vehicle.Model, b.Vehicle.PlateNumber)
	}
	subject = fmt.Sprintf("Booking #%d received", b.ID)
	plain = fmt.Sprintf("Hello %s,\n\nYour booking #%d for %s from %s to %s is %s.\nTotal: %s for %d day(s).\n\nThe Vehicle Rental Team",
		name, b.ID, vehicle,
		b.StartDate.Format(bookingDateLayout), b.EndDate.Format(bookingDateLayout),
		b.Status, utils.FormatCents(b.TotalPriceCents), b.TotalDays)
	html = fmt.Sprintf(`<html><body>
<h2>Booking #%d</h2>
<p>Hello %s, your booking for <strong>%s</strong> is <strong>%s</strong>.</p>
<p>%s &rarr; %s</p>
<p>Total: <strong>%s</strong> for %d day(s)</p>
</body></html>`,
		b.ID, name, vehicle, b.Status,
		b.StartDate.Format(bookingDateLayout), b.EndDate.Format(bookingDateLayout),
		utils.FormatCents(b.TotalPriceCents), b.TotalDays)
	return subject, plain, html
}

func paymentReceiptContent(name string, t *domain.Ticket) (subject, plain, html string) {
	subject = fmt.Sprintf("Your ticket for booking #%d", t.Booking.ID)
	plain = fmt.Sprintf("Hello %s,\n\nWe received your payment of %s for %s %s (%s).\nTransaction: %s\nCard: %s ending in %s\nPickup: %s\n\nThe Vehicle Rental Team",
		name, utils.FormatCents(t.Payment.AmountCents),
		t.Vehicle.Make, t.Vehicle.Model, t.Vehicle.PlateNumber,
		t.Payment.TransactionID, t.Payment.CardBrand, t.Payment.CardLast4,
		t.Booking.StartDate.Format(bookingDateLayout))
	html = fmt.Sprintf(`<html><body>
<h2>Ticket for booking #%d</h2>
<p>Hello %s, we received your payment of <strong>%s</strong>.</p>
<p>%s %s (%s), pickup %s</p>
<p>Transaction <code>%s</code></p>
</body></html>`,
		t.Booking.ID, name, utils.FormatCents(t.Payment.AmountCents),
		t.Vehicle.Make, t.Vehicle.Model, t.Vehicle.PlateNumber,
		t.Booking.StartDate.Format(bookingDateLayout), t.Payment.TransactionID)
	return subject, plain, html
}
