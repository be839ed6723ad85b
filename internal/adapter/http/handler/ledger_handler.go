package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/goloan/internal/adapter/http/dto"
	"github.com/iho/goloan/internal/usecase"
)

// LedgerService defines the behavior needed by LedgerHandler.
type LedgerService interface {
	GetLedger(ctx context.Context, loanID string) (*usecase.Ledger, error)
	VerifyLedger(ctx context.Context, loanID string) (*usecase.VerificationResult, error)
}

// LedgerHandler serves loan ledgers.
type LedgerHandler struct {
	ledgerUC LedgerService
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledgerUC LedgerService) *LedgerHandler {
	return &LedgerHandler{ledgerUC: ledgerUC}
}

// Get returns the loan snapshot, its payments and a summary.
func (h *LedgerHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing loan ID", "")
		return
	}

	ledger, err := h.ledgerUC.GetLedger(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, "failed to get ledger", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.LedgerFromUseCase(ledger))
}

// Verify checks the loan's stored state against its payments.
func (h *LedgerHandler) Verify(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing loan ID", "")
		return
	}

	result, err := h.ledgerUC.VerifyLedger(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, "failed to verify ledger", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.VerificationFromUseCase(result))
}
