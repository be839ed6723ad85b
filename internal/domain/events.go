package domain

import (
	"encoding/json"
	"time"
)

// Event types
const (
	EventTypeLoanCreated     = "loan.created"
	EventTypePaymentRecorded = "payment.recorded"
	EventTypeLoanClosed      = "loan.closed"
)

// Aggregate types
const (
	AggregateTypeLoan = "loan"
)

// OutboxEvent represents an event to be published
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// LoanCreatedEvent payload
type LoanCreatedEvent struct {
	LoanID      string `json:"loan_id"`
	CustomerID  string `json:"customer_id"`
	Principal   string `json:"principal"`
	TotalAmount string `json:"total_amount"`
	MonthlyEMI  string `json:"monthly_emi"`
	TotalEMIs   int    `json:"total_emis"`
}

// PaymentRecordedEvent payload
type PaymentRecordedEvent struct {
	PaymentID     string `json:"payment_id"`
	LoanID        string `json:"loan_id"`
	Amount        string `json:"amount"`
	Type          string `json:"type"`
	BalanceAfter  string `json:"balance_after"`
	EMIsRemaining int    `json:"emis_remaining"`
}

// LoanClosedEvent payload
type LoanClosedEvent struct {
	LoanID     string `json:"loan_id"`
	CustomerID string `json:"customer_id"`
	AmountPaid string `json:"amount_paid"`
	ClosedAt   string `json:"closed_at"`
}

// NewLoanCreatedEvent builds the outbox event for a new loan.
func NewLoanCreatedEvent(id string, loan *Loan) *OutboxEvent {
	return newLoanEvent(id, loan.ID, EventTypeLoanCreated, loan.CreatedAt, LoanCreatedEvent{
		LoanID:      loan.ID,
		CustomerID:  loan.CustomerID,
		Principal:   loan.Principal.String(),
		TotalAmount: loan.TotalAmount.String(),
		MonthlyEMI:  loan.MonthlyEMI.String(),
		TotalEMIs:   loan.TotalEMIs,
	})
}

// NewPaymentRecordedEvent builds the outbox event for an applied payment.
func NewPaymentRecordedEvent(id string, p *Payment) *OutboxEvent {
	return newLoanEvent(id, p.LoanID, EventTypePaymentRecorded, p.CreatedAt, PaymentRecordedEvent{
		PaymentID:     p.ID,
		LoanID:        p.LoanID,
		Amount:        p.Amount.String(),
		Type:          string(p.Type),
		BalanceAfter:  p.BalanceAfter.String(),
		EMIsRemaining: p.EMIsRemainingAfter,
	})
}

// NewLoanClosedEvent builds the outbox event for a loan that was paid off.
func NewLoanClosedEvent(id string, loan *Loan) *OutboxEvent {
	return newLoanEvent(id, loan.ID, EventTypeLoanClosed, loan.UpdatedAt, LoanClosedEvent{
		LoanID:     loan.ID,
		CustomerID: loan.CustomerID,
		AmountPaid: loan.AmountPaid.String(),
		ClosedAt:   loan.UpdatedAt.Format(time.RFC3339),
	})
}

func newLoanEvent(id, loanID, eventType string, at time.Time, payload any) *OutboxEvent {
	return &OutboxEvent{
		ID:            id,
		AggregateID:   loanID,
		AggregateType: AggregateTypeLoan,
		EventType:     eventType,
		Payload:       toPayload(payload),
		CreatedAt:     at,
	}
}

// toPayload flattens an event struct into the generic outbox payload.
func toPayload(v any) map[string]any {
	data, err := json.Marshal(v)
	if err != nil {
		return map[string]any{"error": "failed to marshal payload"}
	}

	var result map[string]any
	if err := json.Unmarshal(data, &result); err != nil {
		return map[string]any{"error": "failed to unmarshal payload"}
	}

	return result
}
