package postgres

import (
	"context"

	"github.com/iho/goloan/internal/domain"
	"github.com/iho/goloan/internal/infrastructure/postgres/generated"
	"github.com/iho/goloan/internal/usecase"
)

// PaymentRepository implements usecase.PaymentRepository.
type PaymentRepository struct {
	queries *generated.Queries
}

// NewPaymentRepository creates a new PaymentRepository.
func NewPaymentRepository(db generated.DBTX) *PaymentRepository {
	return &PaymentRepository{
		queries: generated.New(db),
	}
}

// Create inserts a payment.
func (r *PaymentRepository) Create(ctx context.Context, tx usecase.Transaction, payment *domain.Payment) error {
	pgxTx, err := pgxTxFrom(tx)
	if err != nil {
		return err
	}

	err = r.queries.WithTx(pgxTx).CreatePayment(ctx, generated.CreatePaymentParams{
		ID:                  payment.ID,
		LoanID:              payment.LoanID,
		PaymentType:         string(payment.Type),
		Amount:              decimalToNumeric(payment.Amount),
		BalanceBefore:       decimalToNumeric(payment.BalanceBefore),
		BalanceAfter:        decimalToNumeric(payment.BalanceAfter),
		EmisRemainingBefore: int32(payment.EMIsRemainingBefore),
		EmisRemainingAfter:  int32(payment.EMIsRemainingAfter),
		LoanVersion:         payment.LoanVersion,
		CreatedAt:           timeToPgTimestamptz(payment.CreatedAt),
	})

	return domain.StorageError("insert payment", err)
}

// ListByLoan lists the payments of a loan in the order they were applied.
func (r *PaymentRepository) ListByLoan(ctx context.Context, loanID string) ([]*domain.Payment, error) {
	rows, err := r.queries.ListPaymentsByLoan(ctx, loanID)
	if err != nil {
		return nil, domain.StorageError("list payments", err)
	}

	payments := make([]*domain.Payment, 0, len(rows))
	for _, row := range rows {
		payments = append(payments, &domain.Payment{
			ID:                  row.ID,
			LoanID:              row.LoanID,
			Type:                domain.PaymentType(row.PaymentType),
			Amount:              numericToDecimal(row.Amount),
			BalanceBefore:       numericToDecimal(row.BalanceBefore),
			BalanceAfter:        numericToDecimal(row.BalanceAfter),
			EMIsRemainingBefore: int(row.EmisRemainingBefore),
			EMIsRemainingAfter:  int(row.EmisRemainingAfter),
			LoanVersion:         row.LoanVersion,
			CreatedAt:           row.CreatedAt.Time,
		})
	}

	return payments, nil
}
