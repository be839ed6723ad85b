package sqlite

import (
	"context"
	"database/sql"

	"github.com/iho/goloan/internal/domain"
	"github.com/iho/goloan/internal/usecase"
)

// PaymentRepository implements usecase.PaymentRepository.
type PaymentRepository struct {
	db *sql.DB
}

// NewPaymentRepository creates a new PaymentRepository.
func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Create inserts a payment.
func (r *PaymentRepository) Create(ctx context.Context, tx usecase.Transaction, p *domain.Payment) error {
	sqlTx, err := sqlTxFrom(tx)
	if err != nil {
		return err
	}

	_, err = sqlTx.ExecContext(ctx, `INSERT INTO payments (
			id, loan_id, payment_type, amount, balance_before, balance_after,
			emis_remaining_before, emis_remaining_after, loan_version, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.LoanID, string(p.Type), p.Amount, p.BalanceBefore, p.BalanceAfter,
		p.EMIsRemainingBefore, p.EMIsRemainingAfter, p.LoanVersion, p.CreatedAt.UTC(),
	)

	return storageError("insert payment", err)
}

// ListByLoan lists the payments of a loan in the order they were applied.
func (r *PaymentRepository) ListByLoan(ctx context.Context, loanID string) ([]*domain.Payment, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT
			id, loan_id, payment_type, amount, balance_before, balance_after,
			emis_remaining_before, emis_remaining_after, loan_version, created_at
		FROM payments WHERE loan_id = ? ORDER BY loan_version ASC`, loanID)
	if err != nil {
		return nil, storageError("list payments", err)
	}
	defer rows.Close()

	payments := make([]*domain.Payment, 0)
	for rows.Next() {
		var (
			p   domain.Payment
			typ string
		)
		if err := rows.Scan(
			&p.ID, &p.LoanID, &typ, &p.Amount, &p.BalanceBefore, &p.BalanceAfter,
			&p.EMIsRemainingBefore, &p.EMIsRemainingAfter, &p.LoanVersion, &p.CreatedAt,
		); err != nil {
			return nil, storageError("list payments", err)
		}
		p.Type = domain.PaymentType(typ)
		payments = append(payments, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("list payments", err)
	}

	return payments, nil
}
