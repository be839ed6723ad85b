package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/goloan/internal/domain"
)

// LoanRepository defines data access for loans.
type LoanRepository interface {
	Create(ctx context.Context, tx Transaction, loan *domain.Loan) error
	GetByID(ctx context.Context, id string) (*domain.Loan, error)
	// GetByIDForUpdate reads a loan and holds it against concurrent writers until tx ends.
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Loan, error)
	// UpdateState persists the running state if the stored version still equals expectedVersion,
	// otherwise it returns domain.ErrConcurrentModification.
	UpdateState(ctx context.Context, tx Transaction, loan *domain.Loan, expectedVersion int64) error
	ListByCustomer(ctx context.Context, customerID string) ([]*domain.Loan, error)
}

// PaymentRepository defines data access for payments.
type PaymentRepository interface {
	Create(ctx context.Context, tx Transaction, payment *domain.Payment) error
	// ListByLoan returns payments oldest first.
	ListByLoan(ctx context.Context, loanID string) ([]*domain.Payment, error)
}

// CustomerRepository defines data access for customers.
type CustomerRepository interface {
	Upsert(ctx context.Context, tx Transaction, customer *domain.Customer) error
	GetByID(ctx context.Context, id string) (*domain.Customer, error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Retrier re-runs an operation while it fails with a transient error.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops a key so that a failed request can be retried.
	Release(ctx context.Context, key string) error
}

// Metrics records loan activity.
type Metrics interface {
	LoanCreated(principal decimal.Decimal)
	PaymentRecorded(paymentType domain.PaymentType, amount decimal.Decimal, closed bool, duration time.Duration)
	PaymentFailed(reason string)
}
