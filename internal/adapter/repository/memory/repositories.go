package memory

import (
	"context"
	"time"

	"github.com/iho/goloan/internal/domain"
	"github.com/iho/goloan/internal/usecase"
)

// LoanRepository implements usecase.LoanRepository.
type LoanRepository struct {
	store *Store
}

// NewLoanRepository creates a new LoanRepository.
func NewLoanRepository(store *Store) *LoanRepository {
	return &LoanRepository{store: store}
}

// Create stages a new loan.
func (r *LoanRepository) Create(ctx context.Context, tx usecase.Transaction, loan *domain.Loan) error {
	t, err := asTx(tx)
	if err != nil {
		return err
	}
	t.newLoans = append(t.newLoans, *loan)
	return nil
}

// GetByID returns a copy of the committed loan.
func (r *LoanRepository) GetByID(ctx context.Context, id string) (*domain.Loan, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	loan, ok := r.store.loans[id]
	if !ok {
		return nil, domain.ErrLoanNotFound
	}
	return &loan, nil
}

// GetByIDForUpdate locks the loan until tx ends and returns its committed state.
func (r *LoanRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Loan, error) {
	t, err := asTx(tx)
	if err != nil {
		return nil, err
	}

	if _, err := r.GetByID(ctx, id); err != nil {
		return nil, err
	}

	if err := t.lock(ctx, id); err != nil {
		return nil, err
	}

	return r.GetByID(ctx, id)
}

// UpdateState stages the new running state of a loan.
func (r *LoanRepository) UpdateState(ctx context.Context, tx usecase.Transaction, loan *domain.Loan, expectedVersion int64) error {
	t, err := asTx(tx)
	if err != nil {
		return err
	}

	current, err := r.GetByID(ctx, loan.ID)
	if err != nil {
		return err
	}
	if current.Version != expectedVersion {
		return domain.ErrConcurrentModification
	}

	t.updates = append(t.updates, loanUpdate{loan: *loan, expectedVersion: expectedVersion})
	return nil
}

// ListByCustomer returns a customer's loans, oldest first.
func (r *LoanRepository) ListByCustomer(ctx context.Context, customerID string) ([]*domain.Loan, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var loans []domain.Loan
	for _, l := range r.store.loans {
		if l.CustomerID == customerID {
			loans = append(loans, l)
		}
	}
	return sortedLoans(loans), nil
}

// PaymentRepository implements usecase.PaymentRepository.
type PaymentRepository struct {
	store *Store
}

// NewPaymentRepository creates a new PaymentRepository.
func NewPaymentRepository(store *Store) *PaymentRepository {
	return &PaymentRepository{store: store}
}

// Create stages a payment.
func (r *PaymentRepository) Create(ctx context.Context, tx usecase.Transaction, payment *domain.Payment) error {
	t, err := asTx(tx)
	if err != nil {
		return err
	}
	t.payments = append(t.payments, *payment)
	return nil
}

// ListByLoan returns copies of the committed payments of a loan in insertion order.
func (r *PaymentRepository) ListByLoan(ctx context.Context, loanID string) ([]*domain.Payment, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	stored := r.store.payments[loanID]
	out := make([]*domain.Payment, 0, len(stored))
	for i := range stored {
		p := stored[i]
		out = append(out, &p)
	}
	return out, nil
}

// CustomerRepository implements usecase.CustomerRepository.
type CustomerRepository struct {
	store *Store
}

// NewCustomerRepository creates a new CustomerRepository.
func NewCustomerRepository(store *Store) *CustomerRepository {
	return &CustomerRepository{store: store}
}

// Upsert stages a customer. An existing customer keeps its creation time and
// only takes a non-empty name.
func (r *CustomerRepository) Upsert(ctx context.Context, tx usecase.Transaction, customer *domain.Customer) error {
	t, err := asTx(tx)
	if err != nil {
		return err
	}
	t.customers = append(t.customers, *customer)
	return nil
}

// GetByID returns a committed customer.
func (r *CustomerRepository) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	c, ok := r.store.customers[id]
	if !ok {
		return nil, domain.ErrCustomerNotFound
	}
	return &c, nil
}

// OutboxRepository implements usecase.OutboxRepository.
type OutboxRepository struct {
	store *Store
}

// NewOutboxRepository creates a new OutboxRepository.
func NewOutboxRepository(store *Store) *OutboxRepository {
	return &OutboxRepository{store: store}
}

// Create stages an outbox event.
func (r *OutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	t, err := asTx(tx)
	if err != nil {
		return err
	}
	e := *event
	t.events = append(t.events, &e)
	return nil
}

// GetUnpublished returns up to limit unpublished events, oldest first.
func (r *OutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var events []*domain.OutboxEvent
	for _, e := range r.store.outbox {
		if len(events) >= limit {
			break
		}
		if !e.Published {
			c := *e
			events = append(events, &c)
		}
	}
	return events, nil
}

// MarkPublished marks an event as published.
func (r *OutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, e := range r.store.outbox {
		if e.ID == id {
			at := publishedAt
			e.Published = true
			e.PublishedAt = &at
			return nil
		}
	}
	return nil
}
