package scheduler_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vehicle-rental-backend/internal/config"
	"vehicle-rental-backend/internal/jobs"
	"vehicle-rental-backend/internal/scheduler"
)

func TestNewScheduler_RegistersJobs(t *testing.T) {
	runner := jobs.NewJobRunner(nil, nil, time.Hour, nil)
	s, err := scheduler.NewScheduler(runner, config.SchedulerConfig{
		CompleteFinishedBookings: "0 */15 * * * *",
		ExpireStalePending:       "0 0 * * * *",
	})
	require.NoError(t, err)
	assert.Len(t, s.Entries(), 2)

	s.Start()
	s.Stop()
}

func TestNewScheduler_InvalidSpec(t *testing.T) {
	runner := jobs.NewJobRunner(nil, nil, time.Hour, nil)
	_, err := scheduler.NewScheduler(runner, config.SchedulerConfig{
		CompleteFinishedBookings: "every now and then",
		ExpireStalePending:       "0 0 * * * *",
	})
	assert.Error(t, err)
}
