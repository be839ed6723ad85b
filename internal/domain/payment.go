package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentType classifies how a payment reduces the remaining EMI count.
type PaymentType string

const (
	PaymentTypeEMI     PaymentType = "EMI"
	PaymentTypeLumpSum PaymentType = "LUMP_SUM"
)

// ParsePaymentType accepts EMI or LUMP_SUM, case-insensitively.
func ParsePaymentType(s string) (PaymentType, error) {
	t := PaymentType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", fmt.Errorf("%w: payment type must be EMI or LUMP_SUM, got %q", ErrInvalidInput, s)
	}
	return t, nil
}

// IsValid reports whether t is a known payment type.
func (t PaymentType) IsValid() bool {
	return t == PaymentTypeEMI || t == PaymentTypeLumpSum
}

// Payment is an immutable record of one payment and the loan state around it.
type Payment struct {
	CreatedAt           time.Time
	ID                  string
	LoanID              string
	Type                PaymentType
	Amount              decimal.Decimal
	BalanceBefore       decimal.Decimal
	BalanceAfter        decimal.Decimal
	EMIsRemainingBefore int
	EMIsRemainingAfter  int
	LoanVersion         int64
}

// PaymentResult is the outcome of applying a payment: the loan's new state
// and the payment record to persist alongside it.
type PaymentResult struct {
	Loan    *Loan
	Payment *Payment
}

// Closed reports whether this payment paid the loan off.
func (r PaymentResult) Closed() bool {
	return r.Loan.Status == LoanStatusClosed
}

// ApplyPayment computes the effect of paying amount against loan.
// The supplied loan is not modified.
func ApplyPayment(loan *Loan, paymentID string, amount decimal.Decimal, paymentType PaymentType, now time.Time) (PaymentResult, error) {
	if !loan.IsActive() {
		return PaymentResult{}, ErrLoanClosed
	}
	if !amount.IsPositive() {
		return PaymentResult{}, fmt.Errorf("%w: payment amount must be positive", ErrInvalidInput)
	}
	if !paymentType.IsValid() {
		return PaymentResult{}, fmt.Errorf("%w: unknown payment type %q", ErrInvalidInput, paymentType)
	}
	if amount.GreaterThan(loan.BalanceAmount) {
		return PaymentResult{}, &PaymentExceedsBalanceError{Amount: amount, Balance: loan.BalanceAmount}
	}

	emisBefore := loan.EMIsRemaining
	emisAfter := emisBefore - emisCovered(loan, amount, paymentType)
	if emisAfter < 0 {
		emisAfter = 0
	}

	balanceAfter := loan.BalanceAmount.Sub(amount)
	status := LoanStatusActive
	if !balanceAfter.IsPositive() {
		balanceAfter = decimal.Zero
		emisAfter = 0
		status = LoanStatusClosed
	}

	next := *loan
	next.AmountPaid = loan.AmountPaid.Add(amount)
	next.BalanceAmount = balanceAfter
	next.EMIsRemaining = emisAfter
	next.EMIsPaid = loan.TotalEMIs - emisAfter
	next.Status = status
	next.Version = loan.Version + 1
	next.UpdatedAt = now

	payment := &Payment{
		ID:                  paymentID,
		LoanID:              loan.ID,
		Type:                paymentType,
		Amount:              amount,
		BalanceBefore:       loan.BalanceAmount,
		BalanceAfter:        balanceAfter,
		EMIsRemainingBefore: emisBefore,
		EMIsRemainingAfter:  emisAfter,
		LoanVersion:         next.Version,
		CreatedAt:           now,
	}

	return PaymentResult{Loan: &next, Payment: payment}, nil
}

// emisCovered is the number of EMIs a payment retires before flooring.
// An EMI payment always retires exactly one installment, whatever its amount.
func emisCovered(loan *Loan, amount decimal.Decimal, paymentType PaymentType) int {
	if paymentType == PaymentTypeEMI {
		return 1
	}
	if !loan.MonthlyEMI.IsPositive() {
		return 0
	}
	return int(amount.Div(loan.MonthlyEMI).Floor().IntPart())
}
