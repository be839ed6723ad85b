package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iho/goloan/internal/adapter/http/dto"
	"github.com/iho/goloan/internal/domain"
	"github.com/iho/goloan/internal/usecase"
)

type customerServiceStub struct {
	registerFn func(ctx context.Context, input usecase.RegisterCustomerInput) (*domain.Customer, error)
	overviewFn func(ctx context.Context, customerID string) (*usecase.AccountOverview, error)
}

func (s *customerServiceStub) RegisterCustomer(ctx context.Context, input usecase.RegisterCustomerInput) (*domain.Customer, error) {
	return s.registerFn(ctx, input)
}

func (s *customerServiceStub) GetAccountOverview(ctx context.Context, customerID string) (*usecase.AccountOverview, error) {
	return s.overviewFn(ctx, customerID)
}

func TestCustomerHandler_Register(t *testing.T) {
	h := NewCustomerHandler(&customerServiceStub{
		registerFn: func(ctx context.Context, input usecase.RegisterCustomerInput) (*domain.Customer, error) {
			return &domain.Customer{ID: input.ID, Name: input.Name}, nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/customers", bytes.NewBufferString(`{"id":"cust-1","name":"Ada"}`))
	rec := httptest.NewRecorder()

	h.Register(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp dto.CustomerResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ID != "cust-1" || resp.Name != "Ada" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestCustomerHandler_Register_Invalid(t *testing.T) {
	h := NewCustomerHandler(&customerServiceStub{
		registerFn: func(ctx context.Context, input usecase.RegisterCustomerInput) (*domain.Customer, error) {
			return nil, domain.ErrInvalidInput
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/customers", bytes.NewBufferString(`{"id":""}`))
	rec := httptest.NewRecorder()

	h.Register(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCustomerHandler_Overview(t *testing.T) {
	h := NewCustomerHandler(&customerServiceStub{
		overviewFn: func(ctx context.Context, customerID string) (*usecase.AccountOverview, error) {
			return &usecase.AccountOverview{
				Customer: &domain.Customer{ID: customerID},
				Loans:    []usecase.LoanOverview{},
				Summary: usecase.OverviewSummary{
					TotalPrincipal: decimal.Zero,
					TotalAmount:    decimal.Zero,
					TotalPaid:      decimal.Zero,
					TotalBalance:   decimal.Zero,
				},
			}, nil
		},
	})

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/customers/cust-1/overview", nil), "id", "cust-1")
	rec := httptest.NewRecorder()

	h.Overview(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte(`"loans":[]`)) {
		t.Fatalf("expected empty loans array, got %s", rec.Body.String())
	}
}

func TestCustomerHandler_Overview_UnknownCustomer(t *testing.T) {
	h := NewCustomerHandler(&customerServiceStub{
		overviewFn: func(ctx context.Context, customerID string) (*usecase.AccountOverview, error) {
			return nil, domain.ErrCustomerNotFound
		},
	})

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/customers/ghost/overview", nil), "id", "ghost")
	rec := httptest.NewRecorder()

	h.Overview(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
