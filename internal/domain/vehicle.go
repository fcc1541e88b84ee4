package domain

import "time"

type VehicleStatus string

const (
	VehicleStatusAvailable   VehicleStatus = "AVAILABLE"
	VehicleStatusUnavailable VehicleStatus = "UNAVAILABLE"
	VehicleStatusMaintenance VehicleStatus = "MAINTENANCE"
	VehicleStatusRented      VehicleStatus = "RENTED"
)

func (s VehicleStatus) IsValid() bool {
	switch s {
	case VehicleStatusAvailable, VehicleStatusUnavailable, VehicleStatusMaintenance, VehicleStatusRented:
		return true
	}
	return false
}

type Vehicle struct {
	ID               int32         `json:"id"`
	Make             string        `json:"make"`
	Model            string        `json:"model"`
	Year             int32         `json:"year"`
	PlateNumber      string        `json:"plate_number"`
	Status           VehicleStatus `json:"status"`
	PricePerDayCents int64         `json:"price_per_day_cents"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

// VehicleUpdate is a partial update of a vehicle. Nil fields are left unchanged.
type VehicleUpdate struct {
	Make             *string
	Model            *string
	Year             *int32
	PlateNumber      *string
	Status           *VehicleStatus
	PricePerDayCents *int64
}
