package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

const (
	monthsPerYear = 12
	moneyPlaces   = 2
)

// LoanTerms are the values derived once when a loan is created.
type LoanTerms struct {
	Principal         decimal.Decimal
	AnnualRatePercent decimal.Decimal
	TotalInterest     decimal.Decimal
	TotalAmount       decimal.Decimal
	MonthlyEMI        decimal.Decimal
	PeriodYears       int
	TotalEMIs         int
}

// ComputeLoanTerms applies simple interest: I = P * N * R / 100, A = P + I,
// EMI = A / (N * 12). Interest and EMI are rounded half-up to cents, so the
// total is always payable in whole cents.
func ComputeLoanTerms(principal decimal.Decimal, periodYears int, annualRatePercent decimal.Decimal) (LoanTerms, error) {
	if !principal.IsPositive() {
		return LoanTerms{}, fmt.Errorf("%w: principal must be positive", ErrInvalidInput)
	}
	if periodYears <= 0 {
		return LoanTerms{}, fmt.Errorf("%w: period must be a positive number of years", ErrInvalidInput)
	}
	if annualRatePercent.IsNegative() {
		return LoanTerms{}, fmt.Errorf("%w: interest rate cannot be negative", ErrInvalidInput)
	}

	years := decimal.NewFromInt(int64(periodYears))
	interest := principal.Mul(years).Mul(annualRatePercent).Shift(-2).Round(moneyPlaces)
	total := principal.Add(interest)
	emis := periodYears * monthsPerYear

	emi := total.Div(decimal.NewFromInt(int64(emis))).Round(moneyPlaces)
	if !emi.IsPositive() {
		return LoanTerms{}, fmt.Errorf("%w: principal too small for a %d month term", ErrInvalidInput, emis)
	}

	return LoanTerms{
		Principal:         principal,
		PeriodYears:       periodYears,
		AnnualRatePercent: annualRatePercent,
		TotalInterest:     interest,
		TotalAmount:       total,
		TotalEMIs:         emis,
		MonthlyEMI:        emi,
	}, nil
}
