package domain

import "github.com/shopspring/decimal"

// Installment is one row of an amortization schedule.
type Installment struct {
	Number       int
	Amount       decimal.Decimal
	BalanceAfter decimal.Decimal
}

// BuildSchedule lays out the monthly installments for terms. Every row is
// MonthlyEMI except the last, which settles whatever balance remains so the
// schedule sums to TotalAmount exactly.
func BuildSchedule(terms LoanTerms) []Installment {
	schedule := make([]Installment, 0, terms.TotalEMIs)
	balance := terms.TotalAmount

	for n := 1; n <= terms.TotalEMIs; n++ {
		amount := terms.MonthlyEMI
		if n == terms.TotalEMIs || amount.GreaterThan(balance) {
			amount = balance
		}
		balance = balance.Sub(amount)

		schedule = append(schedule, Installment{
			Number:       n,
			Amount:       amount,
			BalanceAfter: balance,
		})

		if balance.IsZero() {
			break
		}
	}

	return schedule
}
