package dto

import (
	"github.com/shopspring/decimal"

	"github.com/iho/goloan/internal/domain"
	"github.com/iho/goloan/internal/usecase"
)

// CreateLoanRequest represents a request to create or quote a loan.
// Money fields accept JSON numbers or strings.
type CreateLoanRequest struct {
	CustomerID        string          `json:"customer_id"`
	Principal         decimal.Decimal `json:"principal"`
	PeriodYears       int             `json:"period_years"`
	AnnualRatePercent decimal.Decimal `json:"annual_rate_percent"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateLoanRequest) ToUseCaseInput() usecase.CreateLoanInput {
	return usecase.CreateLoanInput{
		CustomerID:        r.CustomerID,
		Principal:         r.Principal,
		PeriodYears:       r.PeriodYears,
		AnnualRatePercent: r.AnnualRatePercent,
	}
}

// RecordPaymentRequest represents a payment against a loan.
type RecordPaymentRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Type   string          `json:"type"`
}

// ToUseCaseInput converts to use case input.
func (r *RecordPaymentRequest) ToUseCaseInput(loanID string) usecase.RecordPaymentInput {
	return usecase.RecordPaymentInput{
		LoanID: loanID,
		Amount: r.Amount,
		Type:   domain.PaymentType(r.Type),
	}
}

// RegisterCustomerRequest represents a request to register a customer.
type RegisterCustomerRequest struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *RegisterCustomerRequest) ToUseCaseInput() usecase.RegisterCustomerInput {
	return usecase.RegisterCustomerInput{
		ID:   r.ID,
		Name: r.Name,
	}
}
