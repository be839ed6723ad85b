package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/iho/goloan/internal/domain"
	"github.com/iho/goloan/internal/infrastructure/postgres/generated"
	"github.com/iho/goloan/internal/usecase"
)

// LoanRepository implements usecase.LoanRepository.
type LoanRepository struct {
	queries *generated.Queries
}

// NewLoanRepository creates a new LoanRepository. db is normally a *pgxpool.Pool.
func NewLoanRepository(db generated.DBTX) *LoanRepository {
	return &LoanRepository{
		queries: generated.New(db),
	}
}

// Create inserts a new loan.
func (r *LoanRepository) Create(ctx context.Context, tx usecase.Transaction, loan *domain.Loan) error {
	pgxTx, err := pgxTxFrom(tx)
	if err != nil {
		return err
	}

	err = r.queries.WithTx(pgxTx).CreateLoan(ctx, generated.CreateLoanParams{
		ID:                loan.ID,
		CustomerID:        loan.CustomerID,
		Principal:         decimalToNumeric(loan.Principal),
		PeriodYears:       int32(loan.PeriodYears),
		AnnualRatePercent: decimalToNumeric(loan.AnnualRatePercent),
		TotalInterest:     decimalToNumeric(loan.TotalInterest),
		TotalAmount:       decimalToNumeric(loan.TotalAmount),
		MonthlyEmi:        decimalToNumeric(loan.MonthlyEMI),
		TotalEmis:         int32(loan.TotalEMIs),
		AmountPaid:        decimalToNumeric(loan.AmountPaid),
		BalanceAmount:     decimalToNumeric(loan.BalanceAmount),
		EmisPaid:          int32(loan.EMIsPaid),
		EmisRemaining:     int32(loan.EMIsRemaining),
		Status:            string(loan.Status),
		Version:           loan.Version,
		CreatedAt:         timeToPgTimestamptz(loan.CreatedAt),
		UpdatedAt:         timeToPgTimestamptz(loan.UpdatedAt),
	})

	return domain.StorageError("insert loan", err)
}

// GetByID retrieves a loan by ID.
func (r *LoanRepository) GetByID(ctx context.Context, id string) (*domain.Loan, error) {
	row, err := r.queries.GetLoanByID(ctx, id)
	if err != nil {
		return nil, loanLookupError(err)
	}

	return rowToLoan(row), nil
}

// GetByIDForUpdate retrieves a loan by ID with a FOR UPDATE lock.
func (r *LoanRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Loan, error) {
	pgxTx, err := pgxTxFrom(tx)
	if err != nil {
		return nil, err
	}

	row, err := r.queries.WithTx(pgxTx).GetLoanByIDForUpdate(ctx, id)
	if err != nil {
		return nil, loanLookupError(err)
	}

	return rowToLoan(row), nil
}

// UpdateState writes the running state of a loan if its version is still expectedVersion.
func (r *LoanRepository) UpdateState(ctx context.Context, tx usecase.Transaction, loan *domain.Loan, expectedVersion int64) error {
	pgxTx, err := pgxTxFrom(tx)
	if err != nil {
		return err
	}

	affected, err := r.queries.WithTx(pgxTx).UpdateLoanState(ctx, generated.UpdateLoanStateParams{
		ID:            loan.ID,
		Version:       expectedVersion,
		AmountPaid:    decimalToNumeric(loan.AmountPaid),
		BalanceAmount: decimalToNumeric(loan.BalanceAmount),
		EmisPaid:      int32(loan.EMIsPaid),
		EmisRemaining: int32(loan.EMIsRemaining),
		Status:        string(loan.Status),
		Version_2:     loan.Version,
		UpdatedAt:     timeToPgTimestamptz(loan.UpdatedAt),
	})
	if err != nil {
		return domain.StorageError("update loan", err)
	}

	if affected == 0 {
		return domain.ErrConcurrentModification
	}

	return nil
}

// ListByCustomer lists a customer's loans, oldest first.
func (r *LoanRepository) ListByCustomer(ctx context.Context, customerID string) ([]*domain.Loan, error) {
	rows, err := r.queries.ListLoansByCustomer(ctx, customerID)
	if err != nil {
		return nil, domain.StorageError("list loans", err)
	}

	loans := make([]*domain.Loan, 0, len(rows))
	for _, row := range rows {
		loans = append(loans, rowToLoan(row))
	}

	return loans, nil
}

func loanLookupError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrLoanNotFound
	}
	return domain.StorageError("get loan", err)
}

func rowToLoan(row generated.Loan) *domain.Loan {
	return &domain.Loan{
		ID:                row.ID,
		CustomerID:        row.CustomerID,
		Principal:         numericToDecimal(row.Principal),
		PeriodYears:       int(row.PeriodYears),
		AnnualRatePercent: numericToDecimal(row.AnnualRatePercent),
		TotalInterest:     numericToDecimal(row.TotalInterest),
		TotalAmount:       numericToDecimal(row.TotalAmount),
		MonthlyEMI:        numericToDecimal(row.MonthlyEmi),
		TotalEMIs:         int(row.TotalEmis),
		AmountPaid:        numericToDecimal(row.AmountPaid),
		BalanceAmount:     numericToDecimal(row.BalanceAmount),
		EMIsPaid:          int(row.EmisPaid),
		EMIsRemaining:     int(row.EmisRemaining),
		Status:            domain.LoanStatus(row.Status),
		Version:           row.Version,
		CreatedAt:         row.CreatedAt.Time,
		UpdatedAt:         row.UpdatedAt.Time,
	}
}
