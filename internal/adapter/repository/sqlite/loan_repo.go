package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iho/goloan/internal/domain"
	"github.com/iho/goloan/internal/usecase"
)

const loanColumns = `id, customer_id, principal, period_years, annual_rate_percent, total_interest, total_amount,
	monthly_emi, total_emis, amount_paid, balance_amount, emis_paid, emis_remaining, status, version,
	created_at, updated_at`

// LoanRepository implements usecase.LoanRepository.
type LoanRepository struct {
	db *sql.DB
}

// NewLoanRepository creates a new LoanRepository.
func NewLoanRepository(db *sql.DB) *LoanRepository {
	return &LoanRepository{db: db}
}

// Create inserts a new loan.
func (r *LoanRepository) Create(ctx context.Context, tx usecase.Transaction, loan *domain.Loan) error {
	sqlTx, err := sqlTxFrom(tx)
	if err != nil {
		return err
	}

	_, err = sqlTx.ExecContext(ctx, `INSERT INTO loans (`+loanColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		loan.ID, loan.CustomerID, loan.Principal, loan.PeriodYears, loan.AnnualRatePercent,
		loan.TotalInterest, loan.TotalAmount, loan.MonthlyEMI, loan.TotalEMIs, loan.AmountPaid,
		loan.BalanceAmount, loan.EMIsPaid, loan.EMIsRemaining, string(loan.Status), loan.Version,
		loan.CreatedAt.UTC(), loan.UpdatedAt.UTC(),
	)

	return storageError("insert loan", err)
}

// GetByID retrieves a loan by ID.
func (r *LoanRepository) GetByID(ctx context.Context, id string) (*domain.Loan, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+loanColumns+` FROM loans WHERE id = ?`, id)
	return scanLoan(row)
}

// GetByIDForUpdate reads a loan inside tx. The immediate transaction already
// holds the database write lock.
func (r *LoanRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Loan, error) {
	sqlTx, err := sqlTxFrom(tx)
	if err != nil {
		return nil, err
	}

	row := sqlTx.QueryRowContext(ctx, `SELECT `+loanColumns+` FROM loans WHERE id = ?`, id)
	return scanLoan(row)
}

// UpdateState writes the running state of a loan if its version is still expectedVersion.
func (r *LoanRepository) UpdateState(ctx context.Context, tx usecase.Transaction, loan *domain.Loan, expectedVersion int64) error {
	sqlTx, err := sqlTxFrom(tx)
	if err != nil {
		return err
	}

	res, err := sqlTx.ExecContext(ctx, `UPDATE loans
		SET amount_paid = ?, balance_amount = ?, emis_paid = ?, emis_remaining = ?, status = ?,
			version = ?, updated_at = ?
		WHERE id = ? AND version = ?`,
		loan.AmountPaid, loan.BalanceAmount, loan.EMIsPaid, loan.EMIsRemaining, string(loan.Status),
		loan.Version, loan.UpdatedAt.UTC(), loan.ID, expectedVersion,
	)
	if err != nil {
		return storageError("update loan", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return storageError("update loan", err)
	}
	if affected == 0 {
		return domain.ErrConcurrentModification
	}

	return nil
}

// ListByCustomer lists a customer's loans, oldest first.
func (r *LoanRepository) ListByCustomer(ctx context.Context, customerID string) ([]*domain.Loan, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+loanColumns+` FROM loans
		WHERE customer_id = ? ORDER BY created_at ASC, id ASC`, customerID)
	if err != nil {
		return nil, storageError("list loans", err)
	}
	defer rows.Close()

	loans := make([]*domain.Loan, 0)
	for rows.Next() {
		loan, err := scanLoan(rows)
		if err != nil {
			return nil, err
		}
		loans = append(loans, loan)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("list loans", err)
	}

	return loans, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanLoan(s scanner) (*domain.Loan, error) {
	var (
		loan   domain.Loan
		status string
	)

	err := s.Scan(
		&loan.ID, &loan.CustomerID, &loan.Principal, &loan.PeriodYears, &loan.AnnualRatePercent,
		&loan.TotalInterest, &loan.TotalAmount, &loan.MonthlyEMI, &loan.TotalEMIs, &loan.AmountPaid,
		&loan.BalanceAmount, &loan.EMIsPaid, &loan.EMIsRemaining, &status, &loan.Version,
		&loan.CreatedAt, &loan.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrLoanNotFound
		}
		return nil, storageError("get loan", err)
	}

	loan.Status = domain.LoanStatus(status)
	return &loan, nil
}
