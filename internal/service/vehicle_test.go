package service_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"vehicle-rental-backend/internal/domain"
	"vehicle-rental-backend/internal/service"
)

func TestCreateVehicle(t *testing.T) {
	f := newFixture(t)

	t.Run("Success defaults to AVAILABLE", func(t *testing.T) {
		v := &domain.Vehicle{Make: "Honda", Model: "Civic", Year: 2020, PlateNumber: " XY-555 ", PricePerDayCents: 4500}
		require.NoError(t, f.fleet.CreateVehicle(f.ctx, f.admin, v))
		assert.NotZero(t, v.ID)
		assert.Equal(t, domain.VehicleStatusAvailable, v.Status)
		assert.Equal(t, "XY-555", v.PlateNumber)
	})

	t.Run("Duplicate plate", func(t *testing.T) {
		v := &domain.Vehicle{Make: "Honda", Model: "Jazz", Year: 2020, PlateNumber: "ab-123", PricePerDayCents: 4500}
		err := f.fleet.CreateVehicle(f.ctx, f.admin, v)
		assert.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("Customer forbidden", func(t *testing.T) {
		v := &domain.Vehicle{Make: "Honda", Model: "Civic", Year: 2020, PlateNumber: "ZZ-1", PricePerDayCents: 4500}
		err := f.fleet.CreateVehicle(f.ctx, f.customerActor(), v)
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	invalid := []struct {
		name string
		v    domain.Vehicle
	}{
		{"missing make", domain.Vehicle{Model: "Civic", Year: 2020, PlateNumber: "Q-1", PricePerDayCents: 1}},
		{"missing plate", domain.Vehicle{Make: "Honda", Model: "Civic", Year: 2020, PricePerDayCents: 1}},
		{"ancient year", domain.Vehicle{Make: "Honda", Model: "Civic", Year: 1800, PlateNumber: "Q-2", PricePerDayCents: 1}},
		{"zero price", domain.Vehicle{Make: "Honda", Model: "Civic", Year: 2020, PlateNumber: "Q-3"}},
		{"bad status", domain.Vehicle{Make: "Honda", Model: "Civic", Year: 2020, PlateNumber: "Q-4", PricePerDayCents: 1, Status: "SOLD"}},
		{"price above cap", domain.Vehicle{Make: "Honda", Model: "Civic", Year: 2020, PlateNumber: "Q-5", PricePerDayCents: service.MaxPricePerDayCents + 1}},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			v := tt.v
			assert.ErrorIs(t, f.fleet.CreateVehicle(f.ctx, f.admin, &v), domain.ErrValidation)
		})
	}
}

func TestUpdateVehicle(t *testing.T) {
	f := newFixture(t)

	model := "Camry"
	status := domain.VehicleStatusRented
	v, err := f.fleet.UpdateVehicle(f.ctx, f.admin, f.vehicle.ID, domain.VehicleUpdate{Model: &model, Status: &status})
	require.NoError(t, err)
	assert.Equal(t, "Camry", v.Model)
	assert.Equal(t, "Toyota", v.Make)
	assert.Equal(t, domain.VehicleStatusRented, v.Status)

	negative := int64(-1)
	_, err = f.fleet.UpdateVehicle(f.ctx, f.admin, f.vehicle.ID, domain.VehicleUpdate{PricePerDayCents: &negative})
	assert.ErrorIs(t, err, domain.ErrValidation)

	huge := int64(5_000_000_000_000_000_000)
	_, err = f.fleet.UpdateVehicle(f.ctx, f.admin, f.vehicle.ID, domain.VehicleUpdate{PricePerDayCents: &huge})
	assert.ErrorIs(t, err, domain.ErrValidation)

	got, err := f.fleet.GetVehicle(f.ctx, f.vehicle.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1000000), got.PricePerDayCents)

	_, err = f.fleet.UpdateVehicle(f.ctx, f.admin, 999, domain.VehicleUpdate{Model: &model})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	deleter := domain.Actor{UserID: 103, Role: domain.UserRoleAdmin, Permissions: []domain.Permission{domain.PermissionDelete}}
	_, err = f.fleet.UpdateVehicle(f.ctx, deleter, f.vehicle.ID, domain.VehicleUpdate{Model: &model})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestListVehicles(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.fleet.CreateVehicle(f.ctx, f.admin, &domain.Vehicle{Make: "Kia", Model: "Rio", Year: 2019,
		PlateNumber: "K-1", Status: domain.VehicleStatusMaintenance, PricePerDayCents: 3000}))

	all, total, err := f.fleet.ListVehicles(f.ctx, "", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int32(2), total)
	assert.Len(t, all, 2)

	available, total, err := f.fleet.ListVehicles(f.ctx, domain.VehicleStatusAvailable, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int32(1), total)
	assert.Equal(t, "AB-123", available[0].PlateNumber)

	_, _, err = f.fleet.ListVehicles(f.ctx, "FLYING", 1, 10)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestDeleteVehicle_ActiveBookingGuard(t *testing.T) {
	f := newFixture(t)
	b := f.book(t, day(1), day(3))

	err := f.fleet.DeleteVehicle(f.ctx, f.admin, f.vehicle.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)
	_, err = f.fleet.GetVehicle(f.ctx, f.vehicle.ID)
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(f.ctx, f.customerActor(), b.ID, domain.BookingStatusCancelled)
	require.NoError(t, err)

	creator := domain.Actor{UserID: 102, Role: domain.UserRoleAdmin, Permissions: []domain.Permission{domain.PermissionCreate}}
	assert.ErrorIs(t, f.fleet.DeleteVehicle(f.ctx, creator, f.vehicle.ID), domain.ErrForbidden)

	require.NoError(t, f.fleet.DeleteVehicle(f.ctx, f.admin, f.vehicle.ID))
	_, err = f.fleet.GetVehicle(f.ctx, f.vehicle.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.store.Repos().Bookings.GetByID(f.ctx, b.ID)
	assert.Error(t, err)

	assert.ErrorIs(t, f.fleet.DeleteVehicle(f.ctx, f.admin, f.vehicle.ID), domain.ErrNotFound)
}

func TestDeleteVehicle_InvalidatesCascadedTickets(t *testing.T) {
	f := newFixture(t)
	repos := f.store.Repos()
	completed := &domain.Booking{VehicleID: f.vehicle.ID, UserID: f.customer.ID, StartDate: day(1), EndDate: day(3),
		Status: domain.BookingStatusCompleted, PaymentStatus: domain.PaymentStatusCompleted}
	require.NoError(t, repos.Bookings.Create(f.ctx, completed))
	cancelled := &domain.Booking{VehicleID: f.vehicle.ID, UserID: f.other.ID, StartDate: day(5), EndDate: day(6),
		Status: domain.BookingStatusCancelled, PaymentStatus: domain.PaymentStatusPending}
	require.NoError(t, repos.Bookings.Create(f.ctx, cancelled))

	tickets := new(MockTicketCache)
	tickets.On("Delete", mock.Anything, completed.ID).Return(nil).Once()
	tickets.On("Delete", mock.Anything, cancelled.ID).Return(errors.New("redis unavailable")).Once()
	fleet := service.NewVehicleService(f.store, tickets)

	require.NoError(t, fleet.DeleteVehicle(f.ctx, f.admin, f.vehicle.ID))
	tickets.AssertExpectations(t)
	_, err := repos.Bookings.GetByID(f.ctx, completed.ID)
	assert.Error(t, err)
}

func TestDeleteVehicle_GuardLeavesTicketsAlone(t *testing.T) {
	f := newFixture(t)
	f.book(t, day(1), day(3))

	tickets := new(MockTicketCache)
	fleet := service.NewVehicleService(f.store, tickets)

	assert.ErrorIs(t, fleet.DeleteVehicle(f.ctx, f.admin, f.vehicle.ID), domain.ErrConflict)
	tickets.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}
