package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LoanStatus is the lifecycle state of a loan.
type LoanStatus string

const (
	LoanStatusActive LoanStatus = "ACTIVE"
	LoanStatusClosed LoanStatus = "CLOSED"
)

// Loan is a simple-interest loan together with its running repayment state.
// Terms fields are fixed at creation; only payments move the running state.
type Loan struct {
	CreatedAt         time.Time
	UpdatedAt         time.Time
	ID                string
	CustomerID        string
	Status            LoanStatus
	Principal         decimal.Decimal
	AnnualRatePercent decimal.Decimal
	TotalInterest     decimal.Decimal
	TotalAmount       decimal.Decimal
	MonthlyEMI        decimal.Decimal
	AmountPaid        decimal.Decimal
	BalanceAmount     decimal.Decimal
	PeriodYears       int
	TotalEMIs         int
	EMIsPaid          int
	EMIsRemaining     int
	Version           int64
}

// NewLoan builds an ACTIVE loan from computed terms.
func NewLoan(id, customerID string, terms LoanTerms, now time.Time) *Loan {
	return &Loan{
		ID:                id,
		CustomerID:        customerID,
		Principal:         terms.Principal,
		PeriodYears:       terms.PeriodYears,
		AnnualRatePercent: terms.AnnualRatePercent,
		TotalInterest:     terms.TotalInterest,
		TotalAmount:       terms.TotalAmount,
		TotalEMIs:         terms.TotalEMIs,
		MonthlyEMI:        terms.MonthlyEMI,
		AmountPaid:        decimal.Zero,
		BalanceAmount:     terms.TotalAmount,
		EMIsPaid:          0,
		EMIsRemaining:     terms.TotalEMIs,
		Status:            LoanStatusActive,
		Version:           1,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// IsActive reports whether the loan still accepts payments.
func (l *Loan) IsActive() bool {
	return l.Status == LoanStatusActive
}

// Terms returns the immutable terms the loan was created with.
func (l *Loan) Terms() LoanTerms {
	return LoanTerms{
		Principal:         l.Principal,
		PeriodYears:       l.PeriodYears,
		AnnualRatePercent: l.AnnualRatePercent,
		TotalInterest:     l.TotalInterest,
		TotalAmount:       l.TotalAmount,
		TotalEMIs:         l.TotalEMIs,
		MonthlyEMI:        l.MonthlyEMI,
	}
}

// CheckInvariants verifies the running state is consistent with the terms.
func (l *Loan) CheckInvariants() []string {
	var violations []string

	if !l.AmountPaid.Add(l.BalanceAmount).Equal(l.TotalAmount) {
		violations = append(violations, "amount_paid + balance_amount != total_amount")
	}
	if l.EMIsPaid+l.EMIsRemaining != l.TotalEMIs {
		violations = append(violations, "emis_paid + emis_remaining != total_emis")
	}
	if l.BalanceAmount.IsNegative() {
		violations = append(violations, "balance_amount is negative")
	}
	if (l.Status == LoanStatusClosed) != l.BalanceAmount.IsZero() {
		violations = append(violations, "status does not match balance")
	}

	return violations
}
