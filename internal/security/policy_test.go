package security

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"vehicle-rental-backend/internal/domain"
)

var (
	customer   = domain.Actor{UserID: 1, Role: domain.UserRoleUser}
	stranger   = domain.Actor{UserID: 2, Role: domain.UserRoleUser}
	superAdmin = domain.Actor{UserID: 10, Role: domain.UserRoleAdmin}
	reader     = domain.Actor{UserID: 11, Role: domain.UserRoleAdmin, Permissions: []domain.Permission{domain.PermissionRead}}
	creator    = domain.Actor{UserID: 12, Role: domain.UserRoleAdmin, Permissions: []domain.Permission{domain.PermissionCreate}}
)

func TestHasPermission(t *testing.T) {
	assert.True(t, HasPermission(superAdmin, domain.PermissionDelete))
	assert.True(t, HasPermission(reader, domain.PermissionRead))
	assert.False(t, HasPermission(reader, domain.PermissionCreate))
	assert.False(t, HasPermission(customer, domain.PermissionRead))
	assert.False(t, HasPermission(domain.Actor{UserID: 3, Role: domain.UserRoleUser, Permissions: []domain.Permission{domain.PermissionRead}}, domain.PermissionRead))
}

func TestCanView(t *testing.T) {
	b := &domain.Booking{ID: 5, UserID: customer.UserID}
	assert.NoError(t, CanView(customer, b))
	assert.NoError(t, CanView(reader, b))
	assert.NoError(t, CanView(superAdmin, b))
	assert.ErrorIs(t, CanView(stranger, b), domain.ErrForbidden)
	assert.ErrorIs(t, CanView(creator, b), domain.ErrForbidden)
}

func TestCanTransition(t *testing.T) {
	b := &domain.Booking{ID: 5, UserID: customer.UserID, Status: domain.BookingStatusPending}

	tests := []struct {
		name    string
		actor   domain.Actor
		target  domain.BookingStatus
		wantErr error
	}{
		{"owner cancels", customer, domain.BookingStatusCancelled, nil},
		{"owner confirms", customer, domain.BookingStatusConfirmed, domain.ErrForbidden},
		{"owner completes", customer, domain.BookingStatusCompleted, domain.ErrForbidden},
		{"stranger cancels", stranger, domain.BookingStatusCancelled, domain.ErrForbidden},
		{"super admin confirms", superAdmin, domain.BookingStatusConfirmed, nil},
		{"creator confirms", creator, domain.BookingStatusConfirmed, nil},
		{"reader confirms", reader, domain.BookingStatusConfirmed, domain.ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CanTransition(tt.actor, b, tt.target)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCanTransition_AdminOwnBooking(t *testing.T) {
	own := &domain.Booking{ID: 6, UserID: reader.UserID, Status: domain.BookingStatusPending}

	tests := []struct {
		name    string
		actor   domain.Actor
		booking *domain.Booking
		target  domain.BookingStatus
		wantErr error
	}{
		{"reader cancels own booking", reader, own, domain.BookingStatusCancelled, nil},
		{"reader confirms own booking", reader, own, domain.BookingStatusConfirmed, domain.ErrForbidden},
		{"reader cancels customer booking", reader, &domain.Booking{ID: 5, UserID: customer.UserID}, domain.BookingStatusCancelled, domain.ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CanTransition(tt.actor, tt.booking, tt.target)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
