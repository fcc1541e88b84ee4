package utils

import (
	"time"

	"vehicle-rental-backend/internal/domain"
)

// Overlaps reports whether the existing range [s, e] conflicts with the candidate
// [start, end]. Both ranges are closed, so touching boundaries conflict.
func Overlaps(s, e, start, end time.Time) bool {
	// candidate start falls inside existing
	if !start.Before(s) && !start.After(e) {
		return true
	}
	// candidate end falls inside existing
	if !end.Before(s) && !end.After(e) {
		return true
	}
	// candidate fully contains existing
	return !s.Before(start) && !e.After(end)
}

// FindConflicts returns the blocking bookings that overlap [start, end].
func FindConflicts(start, end time.Time, existing []domain.Booking) []domain.Booking {
	var conflicts []domain.Booking
	for _, b := range existing {
		if !b.Status.IsBlocking() {
			continue
		}
		if Overlaps(b.StartDate, b.EndDate, start, end) {
			conflicts = append(conflicts, b)
		}
	}
	return conflicts
}
