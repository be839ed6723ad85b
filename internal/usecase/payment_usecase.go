package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/goloan/internal/domain"
)

// PaymentUseCase applies payments to loans.
type PaymentUseCase struct {
	txManager   TransactionManager
	loanRepo    LoanRepository
	paymentRepo PaymentRepository
	outboxRepo  OutboxRepository
	idGen       IDGenerator
	opts        options
}

// NewPaymentUseCase creates a new PaymentUseCase.
func NewPaymentUseCase(
	txManager TransactionManager,
	loanRepo LoanRepository,
	paymentRepo PaymentRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	opts ...Option,
) *PaymentUseCase {
	return &PaymentUseCase{
		txManager:   txManager,
		loanRepo:    loanRepo,
		paymentRepo: paymentRepo,
		outboxRepo:  outboxRepo,
		idGen:       idGen,
		opts:        newOptions(opts),
	}
}

// RecordPaymentInput represents input for recording a payment.
type RecordPaymentInput struct {
	LoanID string
	Amount decimal.Decimal
	Type   domain.PaymentType
}

// RecordPaymentOutput is what the caller needs to show after a payment.
type RecordPaymentOutput struct {
	Payment       *domain.Payment
	BalanceAfter  decimal.Decimal
	EMIsRemaining int
	Status        domain.LoanStatus
}

// RecordPayment applies a payment atomically. The loan is locked for the
// duration of the transaction and its version is checked on write, so
// concurrent payments on one loan are applied one after another.
func (uc *PaymentUseCase) RecordPayment(ctx context.Context, input RecordPaymentInput) (*RecordPaymentOutput, error) {
	if err := domain.ValidateMoneyAmount(input.Amount); err != nil {
		uc.opts.metrics.PaymentFailed(errorReason(err))
		return nil, err
	}

	paymentType, err := domain.ParsePaymentType(string(input.Type))
	if err != nil {
		uc.opts.metrics.PaymentFailed(errorReason(err))
		return nil, err
	}
	input.Type = paymentType

	start := time.Now()

	var result domain.PaymentResult
	err = uc.opts.retrier.Retry(ctx, func() error {
		r, err := uc.applyOnce(ctx, input)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		uc.opts.metrics.PaymentFailed(errorReason(err))
		return nil, err
	}

	uc.opts.metrics.PaymentRecorded(input.Type, input.Amount, result.Closed(), time.Since(start))

	event := uc.opts.logger.Info().
		Str("loan_id", input.LoanID).
		Str("payment_id", result.Payment.ID).
		Str("amount", input.Amount.String()).
		Str("type", string(input.Type)).
		Str("balance_after", result.Loan.BalanceAmount.String())
	if result.Closed() {
		event.Msg("loan paid off")
	} else {
		event.Msg("payment recorded")
	}

	return &RecordPaymentOutput{
		Payment:       result.Payment,
		BalanceAfter:  result.Loan.BalanceAmount,
		EMIsRemaining: result.Loan.EMIsRemaining,
		Status:        result.Loan.Status,
	}, nil
}

func (uc *PaymentUseCase) applyOnce(ctx context.Context, input RecordPaymentInput) (domain.PaymentResult, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return domain.PaymentResult{}, domain.StorageError("begin transaction", err)
	}
	defer tx.Rollback(ctx)

	loan, err := uc.loanRepo.GetByIDForUpdate(ctx, tx, input.LoanID)
	if err != nil {
		return domain.PaymentResult{}, err
	}

	result, err := domain.ApplyPayment(loan, uc.idGen.Generate(), input.Amount, input.Type, time.Now().UTC())
	if err != nil {
		return domain.PaymentResult{}, err
	}

	if err := uc.paymentRepo.Create(ctx, tx, result.Payment); err != nil {
		return domain.PaymentResult{}, err
	}

	if err := uc.loanRepo.UpdateState(ctx, tx, result.Loan, loan.Version); err != nil {
		return domain.PaymentResult{}, err
	}

	if err := uc.outboxRepo.Create(ctx, tx, domain.NewPaymentRecordedEvent(uc.idGen.Generate(), result.Payment)); err != nil {
		return domain.PaymentResult{}, err
	}

	if result.Closed() {
		if err := uc.outboxRepo.Create(ctx, tx, domain.NewLoanClosedEvent(uc.idGen.Generate(), result.Loan)); err != nil {
			return domain.PaymentResult{}, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.PaymentResult{}, domain.StorageError("commit transaction", err)
	}

	return result, nil
}
