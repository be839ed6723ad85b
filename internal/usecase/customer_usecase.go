package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/goloan/internal/domain"
)

// CustomerUseCase handles customer registration and account overviews.
type CustomerUseCase struct {
	txManager    TransactionManager
	customerRepo CustomerRepository
	loanRepo     LoanRepository
	history      *paymentHistory
	opts         options
}

// NewCustomerUseCase creates a new CustomerUseCase.
func NewCustomerUseCase(
	txManager TransactionManager,
	customerRepo CustomerRepository,
	loanRepo LoanRepository,
	paymentRepo PaymentRepository,
	opts ...Option,
) *CustomerUseCase {
	o := newOptions(opts)
	return &CustomerUseCase{
		txManager:    txManager,
		customerRepo: customerRepo,
		loanRepo:     loanRepo,
		history:      newPaymentHistory(paymentRepo, o),
		opts:         o,
	}
}

// RegisterCustomerInput represents input for registering a customer.
type RegisterCustomerInput struct {
	ID   string
	Name string
}

// RegisterCustomer creates a customer or updates the name of an existing one.
func (uc *CustomerUseCase) RegisterCustomer(ctx context.Context, input RegisterCustomerInput) (*domain.Customer, error) {
	customer := &domain.Customer{
		ID:        strings.TrimSpace(input.ID),
		Name:      strings.TrimSpace(input.Name),
		CreatedAt: time.Now().UTC(),
	}

	if err := domain.ValidateCustomerID(customer.ID); err != nil {
		return nil, err
	}
	if err := domain.ValidateCustomerName(customer.Name); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, domain.StorageError("begin transaction", err)
	}
	defer tx.Rollback(ctx)

	if err := uc.customerRepo.Upsert(ctx, tx, customer); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.StorageError("commit transaction", err)
	}

	uc.opts.logger.Info().Str("customer_id", customer.ID).Msg("customer registered")

	return uc.customerRepo.GetByID(ctx, customer.ID)
}

// LoanOverview is one loan line of an account overview.
type LoanOverview struct {
	Loan         *domain.Loan
	TotalPaid    decimal.Decimal
	PaymentCount int
}

// OverviewSummary aggregates all loans of a customer.
type OverviewSummary struct {
	TotalLoans     int
	TotalPrincipal decimal.Decimal
	TotalAmount    decimal.Decimal
	TotalPaid      decimal.Decimal
	TotalBalance   decimal.Decimal
	ActiveLoans    int
	ClosedLoans    int
}

// AccountOverview lists every loan of a customer with aggregate totals.
type AccountOverview struct {
	Customer *domain.Customer
	Loans    []LoanOverview
	Summary  OverviewSummary
}

// GetAccountOverview returns all loans of a customer. A known customer with
// no loans gets an empty overview.
func (uc *CustomerUseCase) GetAccountOverview(ctx context.Context, customerID string) (*AccountOverview, error) {
	customer, err := uc.customerRepo.GetByID(ctx, customerID)
	if err != nil {
		return nil, err
	}

	loans, err := uc.loanRepo.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}

	overview := &AccountOverview{
		Customer: customer,
		Loans:    make([]LoanOverview, 0, len(loans)),
		Summary: OverviewSummary{
			TotalPrincipal: decimal.Zero,
			TotalAmount:    decimal.Zero,
			TotalPaid:      decimal.Zero,
			TotalBalance:   decimal.Zero,
		},
	}

	for _, loan := range loans {
		payments, err := uc.history.forLoan(ctx, loan)
		if err != nil {
			return nil, err
		}

		paid := sumPayments(payments)
		overview.Loans = append(overview.Loans, LoanOverview{
			Loan:         loan,
			TotalPaid:    paid,
			PaymentCount: len(payments),
		})

		s := &overview.Summary
		s.TotalLoans++
		s.TotalPrincipal = s.TotalPrincipal.Add(loan.Principal)
		s.TotalAmount = s.TotalAmount.Add(loan.TotalAmount)
		s.TotalPaid = s.TotalPaid.Add(paid)
		s.TotalBalance = s.TotalBalance.Add(loan.BalanceAmount)
		if loan.IsActive() {
			s.ActiveLoans++
		} else {
			s.ClosedLoans++
		}
	}

	return overview, nil
}
