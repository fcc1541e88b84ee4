package jobs

import (
	"context"
	"errors"

	"vehicle-rental-backend/internal/logger"
)

var errPanicked = errors.New("job panicked")

// CompleteFinishedBookings moves paid CONFIRMED bookings whose end date has
// passed to COMPLETED.
func (jr *JobRunner) CompleteFinishedBookings() error {
	return jr.runWithRecovery(JobCompleteFinishedBookings, func() error {
		ctx, cancel := context.WithTimeout(context.Background(), jr.timeout)
		defer cancel()

		n, err := jr.bookings.CompleteFinishedBookings(ctx, jr.clock.Now())
		if n > 0 {
			logger.Info("Completed finished bookings", "count", n)
		}
		return err
	})
}

// ExpireStalePending cancels PENDING bookings older than the pending TTL.
func (jr *JobRunner) ExpireStalePending() error {
	return jr.runWithRecovery(JobExpireStalePending, func() error {
		if jr.pendingTTL <= 0 {
			logger.Debug("Pending TTL disabled, skipping")
			return nil
		}
		ctx, cancel := context.WithTimeout(context.Background(), jr.timeout)
		defer cancel()

		cutoff := jr.clock.Now().Add(-jr.pendingTTL)
		n, err := jr.bookings.ExpireStalePending(ctx, cutoff)
		if n > 0 {
			logger.Info("Expired stale pending bookings", "count", n, "cutoff", cutoff)
		}
		return err
	})
}
