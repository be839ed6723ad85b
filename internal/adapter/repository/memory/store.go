// Package memory is a process-local storage backend. Each loan carries its own
// lock, taken by GetByIDForUpdate and released when the transaction ends, and
// writes staged in a transaction become visible together on commit.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/iho/goloan/internal/domain"
	"github.com/iho/goloan/internal/usecase"
)

var errTxDone = errors.New("transaction already finished")

// Store holds all data of the memory backend.
type Store struct {
	mu        sync.RWMutex
	loans     map[string]domain.Loan
	payments  map[string][]domain.Payment
	customers map[string]domain.Customer
	outbox    []*domain.OutboxEvent

	locksMu sync.Mutex
	locks   map[string]chan struct{}
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		loans:     make(map[string]domain.Loan),
		payments:  make(map[string][]domain.Payment),
		customers: make(map[string]domain.Customer),
		locks:     make(map[string]chan struct{}),
	}
}

func (s *Store) loanLock(id string) chan struct{} {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()

	l, ok := s.locks[id]
	if !ok {
		l = make(chan struct{}, 1)
		s.locks[id] = l
	}
	return l
}

// TxManager implements usecase.TransactionManager.
type TxManager struct {
	store *Store
}

// NewTxManager creates a new TxManager.
func NewTxManager(store *Store) *TxManager {
	return &TxManager{store: store}
}

// Begin starts a new transaction.
func (m *TxManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &Tx{store: m.store, held: make(map[string]chan struct{})}, nil
}

type loanUpdate struct {
	loan            domain.Loan
	expectedVersion int64
}

// Tx stages writes until Commit.
type Tx struct {
	store *Store
	done  bool
	held  map[string]chan struct{}

	customers []domain.Customer
	newLoans  []domain.Loan
	updates   []loanUpdate
	payments  []domain.Payment
	events    []*domain.OutboxEvent
}

func asTx(tx usecase.Transaction) (*Tx, error) {
	t, ok := tx.(*Tx)
	if !ok || t == nil {
		return nil, domain.StorageError("memory", errors.New("foreign transaction"))
	}
	if t.done {
		return nil, domain.StorageError("memory", errTxDone)
	}
	return t, nil
}

func (t *Tx) lock(ctx context.Context, loanID string) error {
	if _, ok := t.held[loanID]; ok {
		return nil
	}

	l := t.store.loanLock(loanID)
	select {
	case l <- struct{}{}:
		t.held[loanID] = l
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *Tx) release() {
	for id, l := range t.held {
		<-l
		delete(t.held, id)
	}
}

// Commit applies every staged write at once.
func (t *Tx) Commit(ctx context.Context) error {
	if t.done {
		return errTxDone
	}
	t.done = true
	defer t.release()

	s := t.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range t.updates {
		current, ok := s.loans[u.loan.ID]
		if !ok {
			return domain.ErrLoanNotFound
		}
		if current.Version != u.expectedVersion {
			return domain.ErrConcurrentModification
		}
	}
	for _, l := range t.newLoans {
		if _, ok := s.loans[l.ID]; ok {
			return domain.StorageError("insert loan", errors.New("duplicate loan id"))
		}
	}

	for _, c := range t.customers {
		if existing, ok := s.customers[c.ID]; ok {
			existing.Name = mergeName(existing.Name, c.Name)
			s.customers[c.ID] = existing
			continue
		}
		s.customers[c.ID] = c
	}
	for _, l := range t.newLoans {
		s.loans[l.ID] = l
	}
	for _, u := range t.updates {
		s.loans[u.loan.ID] = u.loan
	}
	for _, p := range t.payments {
		s.payments[p.LoanID] = append(s.payments[p.LoanID], p)
	}
	s.outbox = append(s.outbox, t.events...)

	return nil
}

// Rollback discards staged writes. It is a no-op after Commit.
func (t *Tx) Rollback(ctx context.Context) error {
	if t.done {
		return nil
	}
	t.done = true
	t.release()
	return nil
}

func mergeName(existing, incoming string) string {
	if incoming == "" {
		return existing
	}
	return incoming
}

func sortedLoans(loans []domain.Loan) []*domain.Loan {
	sort.Slice(loans, func(i, j int) bool {
		if loans[i].CreatedAt.Equal(loans[j].CreatedAt) {
			return loans[i].ID < loans[j].ID
		}
		return loans[i].CreatedAt.Before(loans[j].CreatedAt)
	})

	out := make([]*domain.Loan, 0, len(loans))
	for i := range loans {
		out = append(out, &loans[i])
	}
	return out
}
