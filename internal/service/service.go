package service

import (
	"context"
	"time"

	"vehicle-rental-backend/internal/domain"
)

// BookingService is the booking conflict and lifecycle engine.
type BookingService interface {
	CreateBooking(ctx context.Context, customerID int32, req domain.BookingRequest) (*domain.Booking, error)
	AdminCreateBooking(ctx context.Context, admin domain.Actor, customerID int32, req domain.BookingRequest) (*domain.Booking, error)
	UpdateStatus(ctx context.Context, actor domain.Actor, bookingID int32, status domain.BookingStatus) (*domain.Booking, error)
	Pay(ctx context.Context, customerID, bookingID int32, card domain.CardDetails) (*domain.Ticket, error)
	DeleteBooking(ctx context.Context, admin domain.Actor, bookingID int32) error

	GetBooking(ctx context.Context, actor domain.Actor, bookingID int32) (*domain.Booking, error)
	ListMyBookings(ctx context.Context, customerID int32, page, pageSize int32) ([]domain.Booking, int32, error)
	ListBookings(ctx context.Context, admin domain.Actor, filter domain.BookingFilter) ([]domain.Booking, int32, error)
	CheckAvailability(ctx context.Context, vehicleID int32, start, end time.Time) (*domain.AvailabilityReport, error)
	GetTicket(ctx context.Context, customerID, bookingID int32) (*domain.Ticket, error)

	// Maintenance transitions run by the scheduler as the system actor.
	CompleteFinishedBookings(ctx context.Context, now time.Time) (int, error)
	ExpireStalePending(ctx context.Context, cutoff time.Time) (int, error)
}

type VehicleService interface {
	CreateVehicle(ctx context.Context, actor domain.Actor, vehicle *domain.Vehicle) error
	GetVehicle(ctx context.Context, id int32) (*domain.Vehicle, error)
	ListVehicles(ctx context.Context, status domain.VehicleStatus, page, pageSize int32) ([]domain.Vehicle, int32, error)
	UpdateVehicle(ctx context.Context, actor domain.Actor, id int32, update domain.VehicleUpdate) (*domain.Vehicle, error)
	DeleteVehicle(ctx context.Context, actor domain.Actor, id int32) error
}

type AuthService interface {
	Register(ctx context.Context, name, email, phone, password string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*domain.User, string, time.Time, error) // user, access token, expiry
}

// Notifier receives booking events after commit. Calls must not block the
// caller and failures are never reported back.
type Notifier interface {
	NotifyBookingCreated(ctx context.Context, booking *domain.Booking)
	NotifyPaymentCompleted(ctx context.Context, ticket *domain.Ticket)
}

type EmailService interface {
	SendBookingConfirmation(ctx context.Context, to, name string, booking *domain.Booking) error
	SendPaymentReceipt(ctx context.Context, to, name string, ticket *domain.Ticket) error
}

// TicketCache stores ticket projections of paid bookings.
type TicketCache interface {
	Get(ctx context.Context, bookingID int32) (*domain.Ticket, bool, error)
	Set(ctx context.Context, ticket *domain.Ticket) error
	Delete(ctx context.Context, bookingID int32) error
}

type noopNotifier struct{}

func (noopNotifier) NotifyBookingCreated(context.Context, *domain.Booking)  {}
func (noopNotifier) NotifyPaymentCompleted(context.Context, *domain.Ticket) {}

type noopTicketCache struct{}

func (noopTicketCache) Get(context.Context, int32) (*domain.Ticket, bool, error) {
	return nil, false, nil
}
func (noopTicketCache) Set(context.Context, *domain.Ticket) error { return nil }
func (noopTicketCache) Delete(context.Context, int32) error       { return nil }
