package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"

	"github.com/iho/goloan/internal/domain"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Loan metrics
	LoansCreated    prometheus.Counter
	LoansClosed     prometheus.Counter
	PrincipalIssued prometheus.Histogram

	// Payment metrics
	PaymentsRecorded *prometheus.CounterVec
	PaymentAmount    *prometheus.HistogramVec
	PaymentDuration  prometheus.Histogram
	PaymentErrors    *prometheus.CounterVec

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Rate limiting metrics
	RateLimitHits prometheus.Counter

	// Outbox metrics
	EventsPublished *prometheus.CounterVec
	PublishErrors   prometheus.Counter
}

// New creates all metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		// Loan metrics
		LoansCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "goloan_loans_created_total",
			Help: "Total number of loans created",
		}),
		LoansClosed: factory.NewCounter(prometheus.CounterOpts{
			Name: "goloan_loans_closed_total",
			Help: "Total number of loans paid off",
		}),
		PrincipalIssued: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "goloan_loan_principal",
			Help:    "Principal of created loans",
			Buckets: []float64{100, 1000, 10000, 100000, 1000000, 10000000},
		}),

		// Payment metrics
		PaymentsRecorded: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goloan_payments_recorded_total",
				Help: "Total number of payments recorded by type",
			},
			[]string{"type"},
		),
		PaymentAmount: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "goloan_payment_amount",
				Help:    "Payment amounts",
				Buckets: []float64{10, 100, 1000, 10000, 100000, 1000000},
			},
			[]string{"type"},
		),
		PaymentDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "goloan_payment_duration_seconds",
			Help:    "Duration of payment transactions including retries",
			Buckets: prometheus.DefBuckets,
		}),
		PaymentErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goloan_payment_errors_total",
				Help: "Total number of rejected or failed payments by reason",
			},
			[]string{"reason"},
		),

		// API metrics
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goloan_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "goloan_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		// Rate limiting metrics
		RateLimitHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "goloan_rate_limit_hits_total",
			Help: "Total requests rejected by the rate limiter",
		}),

		// Outbox metrics
		EventsPublished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goloan_events_published_total",
				Help: "Total outbox events published by type",
			},
			[]string{"event_type"},
		),
		PublishErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "goloan_event_publish_errors_total",
			Help: "Total outbox publish failures",
		}),
	}
}

// LoanCreated records a new loan.
func (m *Metrics) LoanCreated(principal decimal.Decimal) {
	m.LoansCreated.Inc()
	m.PrincipalIssued.Observe(principal.InexactFloat64())
}

// PaymentRecorded records a committed payment.
func (m *Metrics) PaymentRecorded(paymentType domain.PaymentType, amount decimal.Decimal, closed bool, duration time.Duration) {
	m.PaymentsRecorded.WithLabelValues(string(paymentType)).Inc()
	m.PaymentAmount.WithLabelValues(string(paymentType)).Observe(amount.InexactFloat64())
	m.PaymentDuration.Observe(duration.Seconds())
	if closed {
		m.LoansClosed.Inc()
	}
}

// PaymentFailed records a payment that did not commit.
func (m *Metrics) PaymentFailed(reason string) {
	m.PaymentErrors.WithLabelValues(reason).Inc()
}

// EventPublished records a published outbox event.
func (m *Metrics) EventPublished(eventType string) {
	m.EventsPublished.WithLabelValues(eventType).Inc()
}

// EventPublishFailed records an outbox publish failure.
func (m *Metrics) EventPublishFailed() {
	m.PublishErrors.Inc()
}
