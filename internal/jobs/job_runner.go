package jobs

import (
	"fmt"
	"time"

	"vehicle-rental-backend/internal/logger"
	"vehicle-rental-backend/internal/metrics"
	"vehicle-rental-backend/internal/service"
	"vehicle-rental-backend/internal/utils"
)

const (
	JobCompleteFinishedBookings = "complete-finished-bookings"
	JobExpireStalePending       = "expire-stale-pending"
)

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	bookings   service.BookingService
	clock      utils.Clock
	pendingTTL time.Duration
	timeout    time.Duration
	metrics    *metrics.Metrics
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(bookings service.BookingService, clock utils.Clock, pendingTTL time.Duration, m *metrics.Metrics) *JobRunner {
	if clock == nil {
		clock = utils.SystemClock{}
	}
	return &JobRunner{
		bookings:   bookings,
		clock:      clock,
		pendingTTL: pendingTTL,
		timeout:    5 * time.Minute,
		metrics:    m,
	}
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
			err = errPanicked
		}
		jr.metrics.JobRun(jobName, err)
	}()

	logger.Info("Starting job", "job", jobName)
	start := time.Now()
	if err = jobFunc(); err != nil {
		logger.Error("Job failed", "job", jobName, "error", err, "duration_ms", time.Since(start).Milliseconds())
		return err
	}
	logger.Info("Job completed", "job", jobName, "duration_ms", time.Since(start).Milliseconds())
	return nil
}

// RunAll runs every maintenance job once (for manual execution)
func (jr *JobRunner) RunAll() error {
	errComplete := jr.CompleteFinishedBookings()
	errExpire := jr.ExpireStalePending()
	if errComplete != nil {
		return errComplete
	}
	return errExpire
}

// RunByName runs a single job once.
func (jr *JobRunner) RunByName(name string) error {
	switch name {
	case JobCompleteFinishedBookings:
		return jr.CompleteFinishedBookings()
	case JobExpireStalePending:
		return jr.ExpireStalePending()
	case "all":
		return jr.RunAll()
	}
	return fmt.Errorf("unknown job %q", name)
}
