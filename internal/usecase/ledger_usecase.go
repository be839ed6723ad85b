package usecase

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/iho/goloan/internal/domain"
)

// LedgerUseCase handles loan ledger reads and consistency checks.
type LedgerUseCase struct {
	loanRepo LoanRepository
	history  *paymentHistory
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(loanRepo LoanRepository, paymentRepo PaymentRepository, opts ...Option) *LedgerUseCase {
	o := newOptions(opts)
	return &LedgerUseCase{
		loanRepo: loanRepo,
		history:  newPaymentHistory(paymentRepo, o),
	}
}

// LedgerSummary aggregates the payments of one loan.
type LedgerSummary struct {
	TotalPaid     decimal.Decimal
	Balance       decimal.Decimal
	PaymentCount  int
	EMIsPaid      int
	EMIsRemaining int
}

// Ledger is a loan snapshot with its payments in chronological order.
type Ledger struct {
	Loan     *domain.Loan
	Payments []*domain.Payment
	Summary  LedgerSummary
}

// GetLedger returns the loan and every payment applied to it, oldest first.
func (uc *LedgerUseCase) GetLedger(ctx context.Context, loanID string) (*Ledger, error) {
	loan, err := uc.loanRepo.GetByID(ctx, loanID)
	if err != nil {
		return nil, err
	}

	payments, err := uc.history.forLoan(ctx, loan)
	if err != nil {
		return nil, err
	}

	return &Ledger{
		Loan:     loan,
		Payments: payments,
		Summary: LedgerSummary{
			TotalPaid:     sumPayments(payments),
			Balance:       loan.BalanceAmount,
			PaymentCount:  len(payments),
			EMIsPaid:      loan.EMIsPaid,
			EMIsRemaining: loan.EMIsRemaining,
		},
	}, nil
}

// VerificationResult reports whether a loan's stored state agrees with its payments.
type VerificationResult struct {
	LoanID         string
	RecordedPaid   decimal.Decimal
	CalculatedPaid decimal.Decimal
	Difference     decimal.Decimal
	PaymentCount   int
	Consistent     bool
	Violations     []string
}

// VerifyLedger replays the payment chain of a loan and checks it against the
// stored running totals.
func (uc *LedgerUseCase) VerifyLedger(ctx context.Context, loanID string) (*VerificationResult, error) {
	ledger, err := uc.GetLedger(ctx, loanID)
	if err != nil {
		return nil, err
	}

	loan := ledger.Loan
	violations := loan.CheckInvariants()

	balance := loan.TotalAmount
	for i, p := range ledger.Payments {
		if !p.BalanceBefore.Equal(balance) {
			violations = append(violations, fmt.Sprintf(
				"payment %d (%s): balance_before %s, expected %s",
				i+1, p.ID, p.BalanceBefore.StringFixed(2), balance.StringFixed(2)))
		}
		expectedAfter := p.BalanceBefore.Sub(p.Amount)
		if expectedAfter.IsNegative() {
			expectedAfter = decimal.Zero
		}
		if !p.BalanceAfter.Equal(expectedAfter) {
			violations = append(violations, fmt.Sprintf(
				"payment %d (%s): balance_after %s, expected %s",
				i+1, p.ID, p.BalanceAfter.StringFixed(2), expectedAfter.StringFixed(2)))
		}
		balance = p.BalanceAfter
	}

	if !balance.Equal(loan.BalanceAmount) {
		violations = append(violations, fmt.Sprintf(
			"final payment balance %s does not match loan balance %s",
			balance.StringFixed(2), loan.BalanceAmount.StringFixed(2)))
	}

	calculated := ledger.Summary.TotalPaid
	difference := loan.AmountPaid.Sub(calculated)
	if !difference.IsZero() {
		violations = append(violations, fmt.Sprintf(
			"amount_paid %s does not match sum of payments %s",
			loan.AmountPaid.StringFixed(2), calculated.StringFixed(2)))
	}

	return &VerificationResult{
		LoanID:         loan.ID,
		RecordedPaid:   loan.AmountPaid,
		CalculatedPaid: calculated,
		Difference:     difference,
		PaymentCount:   len(ledger.Payments),
		Consistent:     len(violations) == 0,
		Violations:     violations,
	}, nil
}

func sumPayments(payments []*domain.Payment) decimal.Decimal {
	total := decimal.Zero
	for _, p := range payments {
		total = total.Add(p.Amount)
	}
	return total
}
