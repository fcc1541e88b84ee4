package repository

import (
	"context"
	"errors"
	"time"

	"vehicle-rental-backend/internal/domain"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int32) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

type VehicleRepository interface {
	Create(ctx context.Context, vehicle *domain.Vehicle) error
	GetByID(ctx context.Context, id int32) (*domain.Vehicle, error)
	// GetByIDForUpdate locks the vehicle row until the surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, id int32) (*domain.Vehicle, error)
	Update(ctx context.Context, vehicle *domain.Vehicle) error
	Delete(ctx context.Context, id int32) error
	List(ctx context.Context, status domain.VehicleStatus, page, pageSize int32) ([]domain.Vehicle, int32, error)
}

type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error
	GetByID(ctx context.Context, id int32) (*domain.Booking, error)
	GetByIDForUpdate(ctx context.Context, id int32) (*domain.Booking, error)
	// Update persists status and payment status only. Price and dates are immutable.
	Update(ctx context.Context, booking *domain.Booking) error
	Delete(ctx context.Context, id int32) error
	ListBlockingByVehicle(ctx context.Context, vehicleID int32) ([]domain.Booking, error)
	CountBlockingByVehicle(ctx context.Context, vehicleID int32) (int32, error)
	// ListIDsByVehicle returns the ids of every booking of the vehicle, in any status.
	ListIDsByVehicle(ctx context.Context, vehicleID int32) ([]int32, error)
	List(ctx context.Context, filter domain.BookingFilter) ([]domain.Booking, int32, error)
	// ListFinished returns paid CONFIRMED bookings whose end date is before now.
	ListFinished(ctx context.Context, now time.Time) ([]domain.Booking, error)
	// ListStalePending returns PENDING bookings created before cutoff.
	ListStalePending(ctx context.Context, cutoff time.Time) ([]domain.Booking, error)
}

type PaymentRepository interface {
	GetByBookingID(ctx context.Context, bookingID int32) (*domain.Payment, error)
	// Upsert inserts the payment or overwrites the existing one for the same booking.
	Upsert(ctx context.Context, payment *domain.Payment) error
}

// Repositories is the set of repositories bound to one unit of work.
type Repositories struct {
	Users    UserRepository
	Vehicles VehicleRepository
	Bookings BookingRepository
	Payments PaymentRepository
}

// Transactor runs fn inside a unit of work. If fn returns an error every
// change made through repos is rolled back.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}

// Store is the persistence port handed to the services.
type Store interface {
	Transactor
	// Repos returns repositories that run outside any transaction.
	Repos() Repositories
	Ping(ctx context.Context) error
	Close() error
}
