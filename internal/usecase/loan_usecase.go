package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/goloan/internal/domain"
)

// LoanUseCase handles loan creation and lookup.
type LoanUseCase struct {
	txManager    TransactionManager
	loanRepo     LoanRepository
	customerRepo CustomerRepository
	outboxRepo   OutboxRepository
	idGen        IDGenerator
	opts         options
}

// NewLoanUseCase creates a new LoanUseCase.
func NewLoanUseCase(
	txManager TransactionManager,
	loanRepo LoanRepository,
	customerRepo CustomerRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	opts ...Option,
) *LoanUseCase {
	return &LoanUseCase{
		txManager:    txManager,
		loanRepo:     loanRepo,
		customerRepo: customerRepo,
		outboxRepo:   outboxRepo,
		idGen:        idGen,
		opts:         newOptions(opts),
	}
}

// CreateLoanInput represents input for creating a loan.
type CreateLoanInput struct {
	CustomerID        string
	Principal         decimal.Decimal
	PeriodYears       int
	AnnualRatePercent decimal.Decimal
}

// QuoteLoanOutput holds computed terms and the repayment schedule for them.
type QuoteLoanOutput struct {
	Terms    domain.LoanTerms
	Schedule []domain.Installment
}

// QuoteLoan computes terms without creating anything.
func (uc *LoanUseCase) QuoteLoan(ctx context.Context, input CreateLoanInput) (*QuoteLoanOutput, error) {
	terms, err := computeTerms(input)
	if err != nil {
		return nil, err
	}

	return &QuoteLoanOutput{
		Terms:    terms,
		Schedule: domain.BuildSchedule(terms),
	}, nil
}

// CreateLoan creates a new loan, registering the customer if needed.
func (uc *LoanUseCase) CreateLoan(ctx context.Context, input CreateLoanInput) (*domain.Loan, error) {
	input.CustomerID = strings.TrimSpace(input.CustomerID)
	if err := domain.ValidateCustomerID(input.CustomerID); err != nil {
		return nil, err
	}

	terms, err := computeTerms(input)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	now := time.Now().UTC()
	loan := domain.NewLoan(uc.idGen.Generate(), input.CustomerID, terms, now)

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, domain.StorageError("begin transaction", err)
	}
	defer tx.Rollback(ctx)

	if err := uc.customerRepo.Upsert(ctx, tx, &domain.Customer{ID: input.CustomerID, CreatedAt: now}); err != nil {
		return nil, err
	}

	if err := uc.loanRepo.Create(ctx, tx, loan); err != nil {
		return nil, err
	}

	if err := uc.outboxRepo.Create(ctx, tx, domain.NewLoanCreatedEvent(uc.idGen.Generate(), loan)); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.StorageError("commit transaction", err)
	}

	uc.opts.metrics.LoanCreated(loan.Principal)
	uc.opts.logger.Info().
		Str("loan_id", loan.ID).
		Str("customer_id", loan.CustomerID).
		Str("total_amount", loan.TotalAmount.String()).
		Msg("loan created")

	return loan, nil
}

// GetLoan retrieves a loan by ID.
func (uc *LoanUseCase) GetLoan(ctx context.Context, id string) (*domain.Loan, error) {
	return uc.loanRepo.GetByID(ctx, id)
}

// GetSchedule returns the repayment schedule a stored loan was created with.
func (uc *LoanUseCase) GetSchedule(ctx context.Context, id string) ([]domain.Installment, error) {
	loan, err := uc.loanRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return domain.BuildSchedule(loan.Terms()), nil
}

func computeTerms(input CreateLoanInput) (domain.LoanTerms, error) {
	if err := domain.ValidateMoneyAmount(input.Principal); err != nil {
		return domain.LoanTerms{}, err
	}

	if err := domain.ValidateLoanRequest(input.Principal, input.PeriodYears, input.AnnualRatePercent); err != nil {
		return domain.LoanTerms{}, err
	}

	return domain.ComputeLoanTerms(input.Principal, input.PeriodYears, input.AnnualRatePercent)
}
