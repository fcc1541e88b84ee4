package jobs_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"vehicle-rental-backend/internal/jobs"
	"vehicle-rental-backend/internal/metrics"
	"vehicle-rental-backend/internal/service"
	"vehicle-rental-backend/internal/utils"
)

// MockBookingService implements only the maintenance side of the engine.
type MockBookingService struct {
	service.BookingService
	mock.Mock
}

func (m *MockBookingService) CompleteFinishedBookings(ctx context.Context, now time.Time) (int, error) {
	args := m.Called(ctx, now)
	return args.Int(0), args.Error(1)
}

func (m *MockBookingService) ExpireStalePending(ctx context.Context, cutoff time.Time) (int, error) {
	args := m.Called(ctx, cutoff)
	return args.Int(0), args.Error(1)
}

var now = time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)

func newRunner(svc service.BookingService, ttl time.Duration) (*jobs.JobRunner, *metrics.Metrics) {
	m := metrics.New(prometheus.NewRegistry())
	return jobs.NewJobRunner(svc, utils.FixedClock{At: now}, ttl, m), m
}

func TestCompleteFinishedBookings(t *testing.T) {
	svc := new(MockBookingService)
	svc.On("CompleteFinishedBookings", mock.Anything, now).Return(3, nil).Once()
	runner, m := newRunner(svc, time.Hour)

	require.NoError(t, runner.CompleteFinishedBookings())
	svc.AssertExpectations(t)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.JobRuns.WithLabelValues(jobs.JobCompleteFinishedBookings, "ok")))
}

func TestExpireStalePending_UsesCutoff(t *testing.T) {
	svc := new(MockBookingService)
	svc.On("ExpireStalePending", mock.Anything, now.Add(-24*time.Hour)).Return(1, nil).Once()
	runner, _ := newRunner(svc, 24*time.Hour)

	require.NoError(t, runner.ExpireStalePending())
	svc.AssertExpectations(t)
}

func TestExpireStalePending_DisabledTTL(t *testing.T) {
	svc := new(MockBookingService)
	runner, _ := newRunner(svc, 0)

	require.NoError(t, runner.ExpireStalePending())
	svc.AssertNotCalled(t, "ExpireStalePending", mock.Anything, mock.Anything)
}

func TestJobFailureIsCounted(t *testing.T) {
	svc := new(MockBookingService)
	svc.On("CompleteFinishedBookings", mock.Anything, now).Return(0, errors.New("db down"))
	svc.On("ExpireStalePending", mock.Anything, mock.Anything).Return(2, nil)
	runner, m := newRunner(svc, time.Hour)

	err := runner.RunAll()
	assert.EqualError(t, err, "db down")
	svc.AssertNumberOfCalls(t, "ExpireStalePending", 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.JobRuns.WithLabelValues(jobs.JobCompleteFinishedBookings, "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.JobRuns.WithLabelValues(jobs.JobExpireStalePending, "ok")))
}

func TestJobPanicIsRecovered(t *testing.T) {
	svc := new(MockBookingService)
	svc.On("CompleteFinishedBookings", mock.Anything, now).Run(func(mock.Arguments) { panic("boom") })
	runner, _ := newRunner(svc, time.Hour)

	assert.Error(t, runner.CompleteFinishedBookings())
}

func TestRunByName(t *testing.T) {
	svc := new(MockBookingService)
	svc.On("ExpireStalePending", mock.Anything, mock.Anything).Return(0, nil)
	runner, _ := newRunner(svc, time.Hour)

	assert.NoError(t, runner.RunByName(jobs.JobExpireStalePending))
	assert.Error(t, runner.RunByName("mark-overdue"))
}
