package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Counters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.BookingCreated("PENDING")
	m.BookingCreated("PENDING")
	m.Transition("PENDING", "CONFIRMED")
	m.Payment("completed", 2000000)
	m.Payment("declined", 0)
	m.EventPublished("booking.created", errors.New("down"))
	m.TicketCache(true)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.BookingsCreated.WithLabelValues("PENDING")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Transitions.WithLabelValues("PENDING", "CONFIRMED")))
	assert.Equal(t, 2000000.0, testutil.ToFloat64(m.PaymentAmount))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PaymentsTotal.WithLabelValues("declined")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EventsPublished.WithLabelValues("booking.created", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TicketCacheLookup.WithLabelValues("hit")))
}

func TestMetrics_NilReceiver(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.BookingCreated("PENDING")
		m.BookingRejected("conflict")
		m.Transition("PENDING", "CANCELLED")
		m.Payment("completed", 1)
		m.EventPublished("x", nil)
		m.JobRun("job", nil)
		m.ObserveRPC("/m", "OK", time.Millisecond)
		m.TicketCache(false)
	})
}

func TestNew_SeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		New(prometheus.NewRegistry())
		New(prometheus.NewRegistry())
	})
}
