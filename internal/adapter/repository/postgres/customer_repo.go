package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/iho/goloan/internal/domain"
	"github.com/iho/goloan/internal/infrastructure/postgres/generated"
	"github.com/iho/goloan/internal/usecase"
)

// CustomerRepository implements usecase.CustomerRepository.
type CustomerRepository struct {
	queries *generated.Queries
}

// NewCustomerRepository creates a new CustomerRepository.
func NewCustomerRepository(db generated.DBTX) *CustomerRepository {
	return &CustomerRepository{
		queries: generated.New(db),
	}
}

// Upsert inserts a customer, or updates the name of an existing one when a name is given.
func (r *CustomerRepository) Upsert(ctx context.Context, tx usecase.Transaction, customer *domain.Customer) error {
	pgxTx, err := pgxTxFrom(tx)
	if err != nil {
		return err
	}

	err = r.queries.WithTx(pgxTx).UpsertCustomer(ctx, generated.UpsertCustomerParams{
		ID:        customer.ID,
		Name:      customer.Name,
		CreatedAt: timeToPgTimestamptz(customer.CreatedAt),
	})

	return domain.StorageError("upsert customer", err)
}

// GetByID retrieves a customer by ID.
func (r *CustomerRepository) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	row, err := r.queries.GetCustomerByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCustomerNotFound
		}
		return nil, domain.StorageError("get customer", err)
	}

	return &domain.Customer{
		ID:        row.ID,
		Name:      row.Name,
		CreatedAt: row.CreatedAt.Time,
	}, nil
}
