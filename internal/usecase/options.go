package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/goloan/internal/domain"
)

// Option configures optional collaborators shared by the use cases.
type Option func(*options)

type options struct {
	cache    Cache
	cacheTTL time.Duration
	metrics  Metrics
	retrier  Retrier
	logger   zerolog.Logger
}

func newOptions(opts []Option) options {
	o := options{
		cacheTTL: DefaultViewCacheTTL,
		metrics:  nopMetrics{},
		retrier:  onceRetrier{},
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithCache enables read-through caching of payment histories.
func WithCache(cache Cache, ttl time.Duration) Option {
	return func(o *options) {
		o.cache = cache
		if ttl > 0 {
			o.cacheTTL = ttl
		}
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m Metrics) Option {
	return func(o *options) {
		if m != nil {
			o.metrics = m
		}
	}
}

// WithRetrier sets the retry policy for payment transactions.
func WithRetrier(r Retrier) Option {
	return func(o *options) {
		if r != nil {
			o.retrier = r
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

type nopMetrics struct{}

func (nopMetrics) LoanCreated(decimal.Decimal) {}

func (nopMetrics) PaymentRecorded(domain.PaymentType, decimal.Decimal, bool, time.Duration) {}

func (nopMetrics) PaymentFailed(string) {}

type onceRetrier struct{}

func (onceRetrier) Retry(_ context.Context, operation func() error) error {
	return operation()
}

// errorReason buckets an error for metrics labels.
func errorReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, domain.ErrLoanNotFound):
		return "loan_not_found"
	case errors.Is(err, domain.ErrLoanClosed):
		return "loan_closed"
	case errors.Is(err, domain.ErrPaymentExceedsBalance):
		return "exceeds_balance"
	case errors.Is(err, domain.ErrConcurrentModification):
		return "conflict"
	case errors.Is(err, domain.ErrStorageUnavailable):
		return "storage"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return "timeout"
	default:
		return "other"
	}
}
