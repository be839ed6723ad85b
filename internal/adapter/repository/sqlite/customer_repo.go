package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iho/goloan/internal/domain"
	"github.com/iho/goloan/internal/usecase"
)

// CustomerRepository implements usecase.CustomerRepository.
type CustomerRepository struct {
	db *sql.DB
}

// NewCustomerRepository creates a new CustomerRepository.
func NewCustomerRepository(db *sql.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

// Upsert inserts a customer, or updates the name of an existing one when a name is given.
func (r *CustomerRepository) Upsert(ctx context.Context, tx usecase.Transaction, c *domain.Customer) error {
	sqlTx, err := sqlTxFrom(tx)
	if err != nil {
		return err
	}

	_, err = sqlTx.ExecContext(ctx, `INSERT INTO customers (id, name, created_at) VALUES (?, ?, ?)
		ON CONFLICT (id) DO UPDATE
		SET name = CASE WHEN excluded.name <> '' THEN excluded.name ELSE customers.name END`,
		c.ID, c.Name, c.CreatedAt.UTC(),
	)

	return storageError("upsert customer", err)
}

// GetByID retrieves a customer by ID.
func (r *CustomerRepository) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	var c domain.Customer
	err := r.db.QueryRowContext(ctx, `SELECT id, name, created_at FROM customers WHERE id = ?`, id).
		Scan(&c.ID, &c.Name, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCustomerNotFound
		}
		return nil, storageError("get customer", err)
	}

	return &c, nil
}
