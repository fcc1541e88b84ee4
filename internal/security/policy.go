package security

import (
	"fmt"

	"vehicle-rental-backend/internal/domain"
)

// HasPermission reports whether the actor is an admin holding perm.
// An admin with an empty permission set is a super-admin.
func HasPermission(actor domain.Actor, perm domain.Permission) bool {
	if !actor.IsAdmin() {
		return false
	}
	if len(actor.Permissions) == 0 {
		return true
	}
	for _, p := range actor.Permissions {
		if p == perm {
			return true
		}
	}
	return false
}

// RequirePermission returns ErrForbidden unless HasPermission holds.
func RequirePermission(actor domain.Actor, perm domain.Permission) error {
	if !HasPermission(actor, perm) {
		return fmt.Errorf("%w: %s permission required", domain.ErrForbidden, perm)
	}
	return nil
}

// CanView allows the owner of a booking, or an admin with READ, to see it.
func CanView(actor domain.Actor, booking *domain.Booking) error {
	if booking.UserID == actor.UserID || HasPermission(actor, domain.PermissionRead) {
		return nil
	}
	return fmt.Errorf("%w: booking %d belongs to another user", domain.ErrForbidden, booking.ID)
}

// CanTransition applies the transition rights of a booking status change.
// Admins with CREATE may request any status. Everyone else, admins included,
// may only cancel bookings they own.
// Whether the move itself is legal is decided by the state machine.
func CanTransition(actor domain.Actor, booking *domain.Booking, target domain.BookingStatus) error {
	if actor.IsAdmin() && HasPermission(actor, domain.PermissionCreate) {
		return nil
	}
	if booking.UserID != actor.UserID {
		return fmt.Errorf("%w: booking %d belongs to another user", domain.ErrForbidden, booking.ID)
	}
	if target != domain.BookingStatusCancelled {
		return fmt.Errorf("%w: only the owner's cancellation is allowed without CREATE permission", domain.ErrForbidden)
	}
	return nil
}
