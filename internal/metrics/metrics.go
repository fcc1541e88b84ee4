package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "vehicle_rental"

// Metrics holds the Prometheus collectors of the booking backend.
// All methods are safe on a nil receiver.
type Metrics struct {
	BookingsCreated   *prometheus.CounterVec
	BookingsRejected  *prometheus.CounterVec
	Transitions       *prometheus.CounterVec
	PaymentsTotal     *prometheus.CounterVec
	PaymentAmount     prometheus.Counter
	EventsPublished   *prometheus.CounterVec
	JobRuns           *prometheus.CounterVec
	RPCDuration       *prometheus.HistogramVec
	TicketCacheLookup *prometheus.CounterVec
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		BookingsCreated: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_created_total",
			Help:      "Count of bookings created by initial status.",
		}, []string{"status"}),

		BookingsRejected: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_rejected_total",
			Help:      "Count of rejected booking requests by reason.",
		}, []string{"reason"}),

		Transitions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_transitions_total",
			Help:      "Count of booking status transitions.",
		}, []string{"from", "to"}),

		PaymentsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payments_total",
			Help:      "Count of payment attempts by outcome.",
		}, []string{"outcome"}),

		PaymentAmount: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payments_amount_cents_total",
			Help:      "Sum of completed payment amounts in cents.",
		}),

		EventsPublished: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Count of booking events handed to the event bus by type and result.",
		}, []string{"type", "result"}),

		JobRuns: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "job_runs_total",
			Help:      "Count of scheduled job runs by job and result.",
		}, []string{"job", "result"}),

		RPCDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rpc_duration_seconds",
			Help:      "Duration of gRPC calls.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "code"}),

		TicketCacheLookup: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticket_cache_lookups_total",
			Help:      "Count of ticket cache lookups by result.",
		}, []string{"result"}),
	}
}

func (m *Metrics) BookingCreated(status string) {
	if m == nil {
		return
	}
	m.BookingsCreated.WithLabelValues(status).Inc()
}

func (m *Metrics) BookingRejected(reason string) {
	if m == nil {
		return
	}
	m.BookingsRejected.WithLabelValues(reason).Inc()
}

func (m *Metrics) Transition(from, to string) {
	if m == nil {
		return
	}
	m.Transitions.WithLabelValues(from, to).Inc()
}

func (m *Metrics) Payment(outcome string, amountCents int64) {
	if m == nil {
		return
	}
	m.PaymentsTotal.WithLabelValues(outcome).Inc()
	if amountCents > 0 {
		m.PaymentAmount.Add(float64(amountCents))
	}
}

func (m *Metrics) EventPublished(eventType string, err error) {
	if m == nil {
		return
	}
	m.EventsPublished.WithLabelValues(eventType, result(err)).Inc()
}

func (m *Metrics) JobRun(job string, err error) {
	if m == nil {
		return
	}
	m.JobRuns.WithLabelValues(job, result(err)).Inc()
}

func (m *Metrics) ObserveRPC(method, code string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.RPCDuration.WithLabelValues(method, code).Observe(elapsed.Seconds())
}

func (m *Metrics) TicketCache(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.TicketCacheLookup.WithLabelValues("hit").Inc()
		return
	}
	m.TicketCacheLookup.WithLabelValues("miss").Inc()
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
