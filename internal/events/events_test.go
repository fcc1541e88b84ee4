package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"vehicle-rental-backend/internal/domain"
)

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, env Envelope) error {
	args := m.Called(ctx, env)
	return args.Error(0)
}

func (m *MockPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

func sampleBooking() *domain.Booking {
	return &domain.Booking{
		ID:              12,
		VehicleID:       3,
		UserID:          4,
		StartDate:       time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:         time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
		TotalDays:       2,
		TotalPriceCents: 2000000,
		Status:          domain.BookingStatusPending,
		PaymentStatus:   domain.PaymentStatusPending,
		Customer:        &domain.User{ID: 4, Email: "jane@example.com", Name: "Jane", PasswordHash: "secret-hash"},
	}
}

func TestEnvelopeRoundTrip(t *testing.T) {
	env, err := NewEnvelope(TypeBookingCreated, "rental-api", "12", BookingCreatedPayload{Booking: *sampleBooking()})
	require.NoError(t, err)
	assert.Len(t, env.EventID, 36)
	assert.Equal(t, 1, env.EventVersion)
	assert.NotContains(t, string(env.Payload), "secret-hash")

	raw, err := json.Marshal(env)
	require.NoError(t, err)
	decoded, err := DecodeEnvelope(raw)
	require.NoError(t, err)
	assert.Equal(t, env.EventID, decoded.EventID)

	p, err := UnwrapPayload[BookingCreatedPayload](decoded.Payload)
	require.NoError(t, err)
	assert.Equal(t, int32(12), p.Booking.ID)
	assert.Equal(t, "jane@example.com", p.Booking.Customer.Email)

	_, err = DecodeEnvelope([]byte(`{"payload":{}}`))
	assert.Error(t, err)
	_, err = DecodeEnvelope([]byte(`not json`))
	assert.Error(t, err)
}

func TestNotifier(t *testing.T) {
	pub := new(MockPublisher)
	pub.On("Publish", mock.Anything, mock.MatchedBy(func(env Envelope) bool {
		return env.EventType == TypeBookingCreated && env.CorrelationID == "12" && env.Producer == "rental-api"
	})).Return(nil).Once()
	pub.On("Publish", mock.Anything, mock.MatchedBy(func(env Envelope) bool {
		return env.EventType == TypePaymentCompleted
	})).Return(ErrBufferFull).Once()

	n := NewNotifier(pub, "rental-api", nil)
	n.NotifyBookingCreated(context.Background(), sampleBooking())
	// a failing publisher is swallowed
	n.NotifyPaymentCompleted(context.Background(), &domain.Ticket{Booking: *sampleBooking()})

	pub.AssertExpectations(t)
}

func TestDispatcher(t *testing.T) {
	var mu sync.Mutex
	var seen []string
	d := NewDispatcher(func(ctx context.Context, env Envelope) error {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, env.EventID)
		if env.EventID == "boom" {
			panic("handler bug")
		}
		return errors.New("ignored")
	}, 2, 10)

	for _, id := range []string{"a", "boom", "b", "c"} {
		require.NoError(t, d.Publish(context.Background(), Envelope{EventID: id, EventType: TypeBookingCreated}))
	}
	require.NoError(t, d.Close())

	assert.ElementsMatch(t, []string{"a", "boom", "b", "c"}, seen)
	assert.ErrorIs(t, d.Publish(context.Background(), Envelope{EventID: "late"}), ErrClosed)
	assert.NoError(t, d.Close())
}

func TestDispatcher_BufferFull(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	d := NewDispatcher(func(ctx context.Context, env Envelope) error {
		started <- struct{}{}
		<-release
		return nil
	}, 1, 1)

	require.NoError(t, d.Publish(context.Background(), Envelope{EventID: "1"}))
	<-started
	require.NoError(t, d.Publish(context.Background(), Envelope{EventID: "2"}))
	assert.ErrorIs(t, d.Publish(context.Background(), Envelope{EventID: "3"}), ErrBufferFull)

	close(release)
	require.NoError(t, d.Close())
}
