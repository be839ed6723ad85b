package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/goloan/internal/domain"
	"github.com/iho/goloan/internal/usecase"
)

// Money renders an amount with exactly two decimal places.
func Money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// LoanResponse represents a loan in API responses.
type LoanResponse struct {
	LoanID            string    `json:"loan_id"`
	CustomerID        string    `json:"customer_id"`
	Principal         string    `json:"principal"`
	PeriodYears       int       `json:"period_years"`
	AnnualRatePercent string    `json:"annual_rate_percent"`
	TotalInterest     string    `json:"total_interest"`
	TotalAmount       string    `json:"total_amount"`
	MonthlyEMI        string    `json:"monthly_emi"`
	TotalEMIs         int       `json:"total_emis"`
	AmountPaid        string    `json:"amount_paid"`
	BalanceAmount     string    `json:"balance_amount"`
	EMIsPaid          int       `json:"emis_paid"`
	EMIsRemaining     int       `json:"emis_remaining"`
	Status            string    `json:"status"`
	Version           int64     `json:"version"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// LoanFromDomain converts a domain loan to a response.
func LoanFromDomain(l *domain.Loan) *LoanResponse {
	return &LoanResponse{
		LoanID:            l.ID,
		CustomerID:        l.CustomerID,
		Principal:         Money(l.Principal),
		PeriodYears:       l.PeriodYears,
		AnnualRatePercent: l.AnnualRatePercent.String(),
		TotalInterest:     Money(l.TotalInterest),
		TotalAmount:       Money(l.TotalAmount),
		MonthlyEMI:        Money(l.MonthlyEMI),
		TotalEMIs:         l.TotalEMIs,
		AmountPaid:        Money(l.AmountPaid),
		BalanceAmount:     Money(l.BalanceAmount),
		EMIsPaid:          l.EMIsPaid,
		EMIsRemaining:     l.EMIsRemaining,
		Status:            string(l.Status),
		Version:           l.Version,
		CreatedAt:         l.CreatedAt,
		UpdatedAt:         l.UpdatedAt,
	}
}

// TermsResponse represents computed loan terms.
type TermsResponse struct {
	Principal         string `json:"principal"`
	PeriodYears       int    `json:"period_years"`
	AnnualRatePercent string `json:"annual_rate_percent"`
	TotalInterest     string `json:"total_interest"`
	TotalAmount       string `json:"total_amount"`
	MonthlyEMI        string `json:"monthly_emi"`
	TotalEMIs         int    `json:"total_emis"`
}

// InstallmentResponse is one row of a repayment schedule.
type InstallmentResponse struct {
	Number       int    `json:"number"`
	Amount       string `json:"amount"`
	BalanceAfter string `json:"balance_after"`
}

// QuoteResponse represents loan terms with their schedule.
type QuoteResponse struct {
	Terms    TermsResponse         `json:"terms"`
	Schedule []InstallmentResponse `json:"schedule"`
}

// QuoteFromUseCase converts a quote to a response.
func QuoteFromUseCase(q *usecase.QuoteLoanOutput) *QuoteResponse {
	t := q.Terms
	return &QuoteResponse{
		Terms: TermsResponse{
			Principal:         Money(t.Principal),
			PeriodYears:       t.PeriodYears,
			AnnualRatePercent: t.AnnualRatePercent.String(),
			TotalInterest:     Money(t.TotalInterest),
			TotalAmount:       Money(t.TotalAmount),
			MonthlyEMI:        Money(t.MonthlyEMI),
			TotalEMIs:         t.TotalEMIs,
		},
		Schedule: ScheduleFromDomain(q.Schedule),
	}
}

// ScheduleResponse represents the schedule of a stored loan.
type ScheduleResponse struct {
	LoanID   string                `json:"loan_id"`
	Schedule []InstallmentResponse `json:"schedule"`
}

// ScheduleFromDomain converts installments to responses.
func ScheduleFromDomain(schedule []domain.Installment) []InstallmentResponse {
	result := make([]InstallmentResponse, len(schedule))
	for i, in := range schedule {
		result[i] = InstallmentResponse{
			Number:       in.Number,
			Amount:       Money(in.Amount),
			BalanceAfter: Money(in.BalanceAfter),
		}
	}
	return result
}

// PaymentResponse represents a payment in API responses.
type PaymentResponse struct {
	PaymentID           string    `json:"payment_id"`
	LoanID              string    `json:"loan_id"`
	Type                string    `json:"type"`
	Amount              string    `json:"amount"`
	BalanceBefore       string    `json:"balance_before"`
	BalanceAfter        string    `json:"balance_after"`
	EMIsRemainingBefore int       `json:"emis_remaining_before"`
	EMIsRemainingAfter  int       `json:"emis_remaining_after"`
	CreatedAt           time.Time `json:"created_at"`
}

// PaymentFromDomain converts a domain payment to a response.
func PaymentFromDomain(p *domain.Payment) PaymentResponse {
	return PaymentResponse{
		PaymentID:           p.ID,
		LoanID:              p.LoanID,
		Type:                string(p.Type),
		Amount:              Money(p.Amount),
		BalanceBefore:       Money(p.BalanceBefore),
		BalanceAfter:        Money(p.BalanceAfter),
		EMIsRemainingBefore: p.EMIsRemainingBefore,
		EMIsRemainingAfter:  p.EMIsRemainingAfter,
		CreatedAt:           p.CreatedAt,
	}
}

// RecordPaymentResponse is returned after a payment is applied.
type RecordPaymentResponse struct {
	PaymentID     string `json:"payment_id"`
	LoanID        string `json:"loan_id"`
	Amount        string `json:"amount"`
	Type          string `json:"type"`
	BalanceAfter  string `json:"balance_after"`
	EMIsRemaining int    `json:"emis_remaining"`
	Status        string `json:"status"`
}

// RecordPaymentFromUseCase converts a payment outcome to a response.
func RecordPaymentFromUseCase(out *usecase.RecordPaymentOutput) *RecordPaymentResponse {
	return &RecordPaymentResponse{
		PaymentID:     out.Payment.ID,
		LoanID:        out.Payment.LoanID,
		Amount:        Money(out.Payment.Amount),
		Type:          string(out.Payment.Type),
		BalanceAfter:  Money(out.BalanceAfter),
		EMIsRemaining: out.EMIsRemaining,
		Status:        string(out.Status),
	}
}

// LedgerSummaryResponse summarizes a loan's payments.
type LedgerSummaryResponse struct {
	TotalPaid     string `json:"total_paid"`
	Balance       string `json:"balance"`
	PaymentCount  int    `json:"payment_count"`
	EMIsPaid      int    `json:"emis_paid"`
	EMIsRemaining int    `json:"emis_remaining"`
}

// LedgerResponse represents a loan ledger.
type LedgerResponse struct {
	Loan     *LoanResponse         `json:"loan"`
	Payments []PaymentResponse     `json:"payments"`
	Summary  LedgerSummaryResponse `json:"summary"`
}

// LedgerFromUseCase converts a ledger to a response.
func LedgerFromUseCase(l *usecase.Ledger) *LedgerResponse {
	payments := make([]PaymentResponse, len(l.Payments))
	for i, p := range l.Payments {
		payments[i] = PaymentFromDomain(p)
	}

	return &LedgerResponse{
		Loan:     LoanFromDomain(l.Loan),
		Payments: payments,
		Summary: LedgerSummaryResponse{
			TotalPaid:     Money(l.Summary.TotalPaid),
			Balance:       Money(l.Summary.Balance),
			PaymentCount:  l.Summary.PaymentCount,
			EMIsPaid:      l.Summary.EMIsPaid,
			EMIsRemaining: l.Summary.EMIsRemaining,
		},
	}
}

// VerificationResponse reports a ledger consistency check.
type VerificationResponse struct {
	LoanID         string   `json:"loan_id"`
	Consistent     bool     `json:"consistent"`
	RecordedPaid   string   `json:"recorded_paid"`
	CalculatedPaid string   `json:"calculated_paid"`
	Difference     string   `json:"difference"`
	PaymentCount   int      `json:"payment_count"`
	Violations     []string `json:"violations"`
}

// VerificationFromUseCase converts a verification result to a response.
func VerificationFromUseCase(v *usecase.VerificationResult) *VerificationResponse {
	violations := v.Violations
	if violations == nil {
		violations = []string{}
	}
	return &VerificationResponse{
		LoanID:         v.LoanID,
		Consistent:     v.Consistent,
		RecordedPaid:   Money(v.RecordedPaid),
		CalculatedPaid: Money(v.CalculatedPaid),
		Difference:     Money(v.Difference),
		PaymentCount:   v.PaymentCount,
		Violations:     violations,
	}
}

// CustomerResponse represents a customer in API responses.
type CustomerResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// CustomerFromDomain converts a domain customer to a response.
func CustomerFromDomain(c *domain.Customer) *CustomerResponse {
	return &CustomerResponse{
		ID:        c.ID,
		Name:      c.Name,
		CreatedAt: c.CreatedAt,
	}
}

// LoanOverviewResponse is one loan line of an account overview.
type LoanOverviewResponse struct {
	LoanID        string `json:"loan_id"`
	Principal     string `json:"principal"`
	TotalAmount   string `json:"total_amount"`
	MonthlyEMI    string `json:"monthly_emi"`
	TotalPaid     string `json:"total_paid"`
	BalanceAmount string `json:"balance_amount"`
	EMIsRemaining int    `json:"emis_remaining"`
	PaymentCount  int    `json:"payment_count"`
	Status        string `json:"status"`
}

// OverviewSummaryResponse aggregates a customer's loans.
type OverviewSummaryResponse struct {
	TotalLoans     int    `json:"total_loans"`
	TotalPrincipal string `json:"total_principal"`
	TotalAmount    string `json:"total_amount"`
	TotalPaid      string `json:"total_paid"`
	TotalBalance   string `json:"total_balance"`
	ActiveLoans    int    `json:"active_loans"`
	ClosedLoans    int    `json:"closed_loans"`
}

// AccountOverviewResponse represents a customer's account overview.
type AccountOverviewResponse struct {
	CustomerID string                  `json:"customer_id"`
	Name       string                  `json:"name,omitempty"`
	Loans      []LoanOverviewResponse  `json:"loans"`
	Summary    OverviewSummaryResponse `json:"summary"`
}

// AccountOverviewFromUseCase converts an overview to a response.
func AccountOverviewFromUseCase(o *usecase.AccountOverview) *AccountOverviewResponse {
	loans := make([]LoanOverviewResponse, len(o.Loans))
	for i, lo := range o.Loans {
		loans[i] = LoanOverviewResponse{
			LoanID:        lo.Loan.ID,
			Principal:     Money(lo.Loan.Principal),
			TotalAmount:   Money(lo.Loan.TotalAmount),
			MonthlyEMI:    Money(lo.Loan.MonthlyEMI),
			TotalPaid:     Money(lo.TotalPaid),
			BalanceAmount: Money(lo.Loan.BalanceAmount),
			EMIsRemaining: lo.Loan.EMIsRemaining,
			PaymentCount:  lo.PaymentCount,
			Status:        string(lo.Loan.Status),
		}
	}

	s := o.Summary
	return &AccountOverviewResponse{
		CustomerID: o.Customer.ID,
		Name:       o.Customer.Name,
		Loans:      loans,
		Summary: OverviewSummaryResponse{
			TotalLoans:     s.TotalLoans,
			TotalPrincipal: Money(s.TotalPrincipal),
			TotalAmount:    Money(s.TotalAmount),
			TotalPaid:      Money(s.TotalPaid),
			TotalBalance:   Money(s.TotalBalance),
			ActiveLoans:    s.ActiveLoans,
			ClosedLoans:    s.ClosedLoans,
		},
	}
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error          string `json:"error"`
	Message        string `json:"message,omitempty"`
	CurrentBalance string `json:"current_balance,omitempty"`
}
