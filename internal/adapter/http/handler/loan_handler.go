package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/goloan/internal/adapter/http/dto"
	"github.com/iho/goloan/internal/domain"
	"github.com/iho/goloan/internal/usecase"
)

// LoanService defines the behavior needed by LoanHandler.
type LoanService interface {
	CreateLoan(ctx context.Context, input usecase.CreateLoanInput) (*domain.Loan, error)
	QuoteLoan(ctx context.Context, input usecase.CreateLoanInput) (*usecase.QuoteLoanOutput, error)
	GetLoan(ctx context.Context, id string) (*domain.Loan, error)
	GetSchedule(ctx context.Context, id string) ([]domain.Installment, error)
}

// PaymentService defines the payment behavior needed by LoanHandler.
type PaymentService interface {
	RecordPayment(ctx context.Context, input usecase.RecordPaymentInput) (*usecase.RecordPaymentOutput, error)
}

// LoanHandler handles loan-related HTTP requests.
type LoanHandler struct {
	loanUC    LoanService
	paymentUC PaymentService
}

// NewLoanHandler creates a new LoanHandler.
func NewLoanHandler(loanUC LoanService, paymentUC PaymentService) *LoanHandler {
	return &LoanHandler{loanUC: loanUC, paymentUC: paymentUC}
}

// Create creates a new loan.
func (h *LoanHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateLoanRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	loan, err := h.loanUC.CreateLoan(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, r, "failed to create loan", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.LoanFromDomain(loan))
}

// Quote computes terms and a schedule without creating a loan.
func (h *LoanHandler) Quote(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateLoanRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	quote, err := h.loanUC.QuoteLoan(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, r, "failed to quote loan", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.QuoteFromUseCase(quote))
}

// Get retrieves a loan by ID.
func (h *LoanHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing loan ID", "")
		return
	}

	loan, err := h.loanUC.GetLoan(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, "failed to get loan", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.LoanFromDomain(loan))
}

// Schedule returns the repayment schedule of a stored loan.
func (h *LoanHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing loan ID", "")
		return
	}

	schedule, err := h.loanUC.GetSchedule(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, "failed to get schedule", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ScheduleResponse{
		LoanID:   id,
		Schedule: dto.ScheduleFromDomain(schedule),
	})
}

// RecordPayment applies a payment to a loan.
func (h *LoanHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing loan ID", "")
		return
	}

	var req dto.RecordPaymentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	out, err := h.paymentUC.RecordPayment(r.Context(), req.ToUseCaseInput(id))
	if err != nil {
		writeDomainError(w, r, "failed to record payment", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.RecordPaymentFromUseCase(out))
}
