package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"vehicle-rental-backend/internal/domain"
	"vehicle-rental-backend/internal/logger"
	"vehicle-rental-backend/internal/repository"
	"vehicle-rental-backend/internal/security"
)

const (
	minVehicleYear = 1900
	// MaxPricePerDayCents bounds the daily rate (10,000,000.00).
	MaxPricePerDayCents = 1_000_000_000
)

type vehicleService struct {
	store   repository.Store
	tickets TicketCache
}

// NewVehicleService builds the fleet service. tickets may be nil.
func NewVehicleService(store repository.Store, tickets TicketCache) VehicleService {
	if tickets == nil {
		tickets = noopTicketCache{}
	}
	return &vehicleService{store: store, tickets: tickets}
}

func (s *vehicleService) CreateVehicle(ctx context.Context, actor domain.Actor, v *domain.Vehicle) error {
	logger.EnterMethod("vehicleService.CreateVehicle", "actorID", actor.UserID, "plate", v.PlateNumber)
	if err := security.RequirePermission(actor, domain.PermissionCreate); err != nil {
		return err
	}
	if v.Status == "" {
		v.Status = domain.VehicleStatusAvailable
	}
	v.PlateNumber = strings.TrimSpace(v.PlateNumber)
	if err := validateVehicle(v); err != nil {
		return err
	}
	if err := s.store.Repos().Vehicles.Create(ctx, v); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return fmt.Errorf("%w: plate number %s is already registered", domain.ErrConflict, v.PlateNumber)
		}
		logger.ExitMethodWithError("vehicleService.CreateVehicle", err, "plate", v.PlateNumber)
		return err
	}
	logger.ExitMethod("vehicleService.CreateVehicle", "vehicleID", v.ID)
	return nil
}

func (s *vehicleService) GetVehicle(ctx context.Context, id int32) (*domain.Vehicle, error) {
	v, err := s.store.Repos().Vehicles.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "vehicle", id)
	}
	return v, nil
}

func (s *vehicleService) ListVehicles(ctx context.Context, status domain.VehicleStatus, page, pageSize int32) ([]domain.Vehicle, int32, error) {
	if status != "" && !status.IsValid() {
		return nil, 0, fmt.Errorf("%w: unknown vehicle status %q", domain.ErrValidation, status)
	}
	return s.store.Repos().Vehicles.List(ctx, status, page, pageSize)
}

// UpdateVehicle applies a partial update. Existing bookings keep their frozen price.
func (s *vehicleService) UpdateVehicle(ctx context.Context, actor domain.Actor, id int32, update domain.VehicleUpdate) (*domain.Vehicle, error) {
	logger.EnterMethod("vehicleService.UpdateVehicle", "actorID", actor.UserID, "vehicleID", id)
	if err := security.RequirePermission(actor, domain.PermissionCreate); err != nil {
		return nil, err
	}

	var updated *domain.Vehicle
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		v, err := repos.Vehicles.GetByIDForUpdate(ctx, id)
		if err != nil {
			return notFound(err, "vehicle", id)
		}
		if update.Make != nil {
			v.Make = *update.Make
		}
		if update.Model != nil {
			v.Model = *update.Model
		}
		if update.Year != nil {
			v.Year = *update.Year
		}
		if update.PlateNumber != nil {
			v.PlateNumber = strings.TrimSpace(*update.PlateNumber)
		}
		if update.Status != nil {
			v.Status = *update.Status
		}
		if update.PricePerDayCents != nil {
			v.PricePerDayCents = *update.PricePerDayCents
		}
		if err := validateVehicle(v); err != nil {
			return err
		}
		if err := repos.Vehicles.Update(ctx, v); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return fmt.Errorf("%w: plate number %s is already registered", domain.ErrConflict, v.PlateNumber)
			}
			return err
		}
		updated = v
		return nil
	})
	if err != nil {
		logger.ExitMethodWithError("vehicleService.UpdateVehicle", err, "vehicleID", id)
		return nil, err
	}
	logger.ExitMethod("vehicleService.UpdateVehicle", "vehicleID", id)
	return updated, nil
}

// DeleteVehicle refuses while any PENDING or CONFIRMED booking references the vehicle.
// Remaining bookings are removed with it and their cached tickets invalidated.
func (s *vehicleService) DeleteVehicle(ctx context.Context, actor domain.Actor, id int32) error {
	logger.EnterMethod("vehicleService.DeleteVehicle", "actorID", actor.UserID, "vehicleID", id)
	if err := security.RequirePermission(actor, domain.PermissionDelete); err != nil {
		return err
	}

	var cascaded []int32
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if _, err := repos.Vehicles.GetByIDForUpdate(ctx, id); err != nil {
			return notFound(err, "vehicle", id)
		}
		active, err := repos.Bookings.CountBlockingByVehicle(ctx, id)
		if err != nil {
			return fmt.Errorf("count bookings of vehicle %d: %w", id, err)
		}
		if active > 0 {
			return fmt.Errorf("%w: vehicle %d has %d active booking(s)", domain.ErrConflict, id, active)
		}
		if cascaded, err = repos.Bookings.ListIDsByVehicle(ctx, id); err != nil {
			return fmt.Errorf("list bookings of vehicle %d: %w", id, err)
		}
		return repos.Vehicles.Delete(ctx, id)
	})
	if err != nil {
		logger.ExitMethodWithError("vehicleService.DeleteVehicle", err, "vehicleID", id)
		return err
	}
	for _, bookingID := range cascaded {
		if err := s.tickets.Delete(ctx, bookingID); err != nil {
			logger.WarnContext(ctx, "Failed to invalidate cached ticket", "booking_id", bookingID, "error", err)
		}
	}
	logger.InfoContext(ctx, "Vehicle deleted", "vehicle_id", id, "actor_id", actor.UserID, "cascaded_bookings", len(cascaded))
	logger.ExitMethod("vehicleService.DeleteVehicle", "vehicleID", id)
	return nil
}

func validateVehicle(v *domain.Vehicle) error {
	if strings.TrimSpace(v.Make) == "" || strings.TrimSpace(v.Model) == "" {
		return fmt.Errorf("%w: make and model are required", domain.ErrValidation)
	}
	if v.PlateNumber == "" {
		return fmt.Errorf("%w: plate number is required", domain.ErrValidation)
	}
	if v.Year < minVehicleYear || int(v.Year) > time.Now().Year()+1 {
		return fmt.Errorf("%w: year %d is out of range", domain.ErrValidation, v.Year)
	}
	if !v.Status.IsValid() {
		return fmt.Errorf("%w: unknown vehicle status %q", domain.ErrValidation, v.Status)
	}
	if v.PricePerDayCents <= 0 {
		return fmt.Errorf("%w: price per day must be positive", domain.ErrValidation)
	}
	if v.PricePerDayCents > MaxPricePerDayCents {
		return fmt.Errorf("%w: price per day must be at most %d cents", domain.ErrValidation, MaxPricePerDayCents)
	}
	return nil
}
