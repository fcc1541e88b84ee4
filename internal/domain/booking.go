package domain

import (
	"time"

	"gopkg.in/guregu/null.v4"
)

type Booking struct {
	ID              int32         `json:"id"`
	VehicleID       int32         `json:"vehicle_id"`
	UserID          int32         `json:"user_id"`
	StartDate       time.Time     `json:"start_date"`
	EndDate         time.Time     `json:"end_date"`
	TotalDays       int32         `json:"total_days"`
	TotalPriceCents int64         `json:"total_price_cents"` // frozen at creation
	Status          BookingStatus `json:"status"`
	PaymentStatus   PaymentStatus `json:"payment_status"`
	PickupLocation  null.String   `json:"pickup_location"`
	DropoffLocation null.String   `json:"dropoff_location"`
	Notes           null.String   `json:"notes"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`

	// Populated on create and on detail reads.
	Vehicle  *Vehicle `json:"vehicle,omitempty"`
	Customer *User    `json:"customer,omitempty"`
}

// BookingExtras carries the free-text fields of a booking request.
type BookingExtras struct {
	PickupLocation  null.String
	DropoffLocation null.String
	Notes           null.String
}

type BookingRequest struct {
	VehicleID int32
	StartDate time.Time
	EndDate   time.Time
	Extras    BookingExtras
}

type BookingFilter struct {
	UserID    int32
	VehicleID int32
	Status    BookingStatus
	Page      int32
	PageSize  int32
}

// AvailabilityReport is the result of an overlap check against a vehicle calendar.
type AvailabilityReport struct {
	VehicleID int32     `json:"vehicle_id"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Available bool      `json:"available"`
	Conflicts []Booking `json:"conflicts,omitempty"`
}
