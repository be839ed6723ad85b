package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/iho/goloan/internal/domain"
	"github.com/iho/goloan/internal/usecase"
	"github.com/iho/goloan/internal/usecase/mocks"
)

type paymentMocks struct {
	txManager   *mocks.MockTransactionManager
	tx          *mocks.MockTransaction
	loanRepo    *mocks.MockLoanRepository
	paymentRepo *mocks.MockPaymentRepository
	outboxRepo  *mocks.MockOutboxRepository
	idGen       *mocks.MockIDGenerator
	metrics     *mocks.MockMetrics
}

func newPaymentMocks(ctrl *gomock.Controller) paymentMocks {
	return paymentMocks{
		txManager:   mocks.NewMockTransactionManager(ctrl),
		tx:          mocks.NewMockTransaction(ctrl),
		loanRepo:    mocks.NewMockLoanRepository(ctrl),
		paymentRepo: mocks.NewMockPaymentRepository(ctrl),
		outboxRepo:  mocks.NewMockOutboxRepository(ctrl),
		idGen:       mocks.NewMockIDGenerator(ctrl),
		metrics:     mocks.NewMockMetrics(ctrl),
	}
}

func (m paymentMocks) useCase(opts ...usecase.Option) *usecase.PaymentUseCase {
	opts = append([]usecase.Option{usecase.WithMetrics(m.metrics)}, opts...)
	return usecase.NewPaymentUseCase(m.txManager, m.loanRepo, m.paymentRepo, m.outboxRepo, m.idGen, opts...)
}

func activeLoan(t *testing.T) *domain.Loan {
	t.Helper()
	terms, err := domain.ComputeLoanTerms(decimal.NewFromInt(100000), 2, decimal.NewFromInt(10))
	require.NoError(t, err)
	return domain.NewLoan("loan-1", "cust-1", terms, time.Now().UTC())
}

func TestPaymentUseCase_RecordPayment_EMI(t *testing.T) {
	ctrl := gomock.NewController(t)
	m := newPaymentMocks(ctrl)
	loan := activeLoan(t)

	m.idGen.EXPECT().Generate().Return("pay-1")
	m.idGen.EXPECT().Generate().Return("evt-1")
	m.txManager.EXPECT().Begin(gomock.Any()).Return(m.tx, nil)
	m.tx.EXPECT().Rollback(gomock.Any()).Return(nil).AnyTimes()
	m.loanRepo.EXPECT().GetByIDForUpdate(gomock.Any(), m.tx, "loan-1").Return(loan, nil)
	m.paymentRepo.EXPECT().Create(gomock.Any(), m.tx, gomock.Any()).Return(nil)
	m.loanRepo.EXPECT().UpdateState(gomock.Any(), m.tx, gomock.Any(), int64(1)).
		DoAndReturn(func(_ context.Context, _ usecase.Transaction, updated *domain.Loan, _ int64) error {
			assert.Equal(t, int64(2), updated.Version)
			return nil
		})
	m.outboxRepo.EXPECT().Create(gomock.Any(), m.tx, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ usecase.Transaction, e *domain.OutboxEvent) error {
			assert.Equal(t, domain.EventTypePaymentRecorded, e.EventType)
			return nil
		})
	m.tx.EXPECT().Commit(gomock.Any()).Return(nil)
	m.metrics.EXPECT().PaymentRecorded(domain.PaymentTypeEMI, gomock.Any(), false, gomock.Any())

	out, err := m.useCase().RecordPayment(context.Background(), usecase.RecordPaymentInput{
		LoanID: "loan-1",
		Amount: decimal.NewFromInt(5000),
		Type:   domain.PaymentTypeEMI,
	})
	require.NoError(t, err)

	assert.Equal(t, "pay-1", out.Payment.ID)
	assert.True(t, out.BalanceAfter.Equal(decimal.NewFromInt(115000)))
	assert.Equal(t, 23, out.EMIsRemaining)
	assert.Equal(t, domain.LoanStatusActive, out.Status)

	// the loan handed out by the repository is left untouched
	assert.True(t, loan.BalanceAmount.Equal(decimal.NewFromInt(120000)))
}

func TestPaymentUseCase_RecordPayment_ClosesLoan(t *testing.T) {
	ctrl := gomock.NewController(t)
	m := newPaymentMocks(ctrl)
	loan := activeLoan(t)

	m.idGen.EXPECT().Generate().Return("id").Times(3)
	m.txManager.EXPECT().Begin(gomock.Any()).Return(m.tx, nil)
	m.tx.EXPECT().Rollback(gomock.Any()).Return(nil).AnyTimes()
	m.loanRepo.EXPECT().GetByIDForUpdate(gomock.Any(), m.tx, "loan-1").Return(loan, nil)
	m.paymentRepo.EXPECT().Create(gomock.Any(), m.tx, gomock.Any()).Return(nil)
	m.loanRepo.EXPECT().UpdateState(gomock.Any(), m.tx, gomock.Any(), int64(1)).Return(nil)

	var eventTypes []string
	m.outboxRepo.EXPECT().Create(gomock.Any(), m.tx, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ usecase.Transaction, e *domain.OutboxEvent) error {
			eventTypes = append(eventTypes, e.EventType)
			return nil
		}).Times(2)
	m.tx.EXPECT().Commit(gomock.Any()).Return(nil)
	m.metrics.EXPECT().PaymentRecorded(domain.PaymentTypeLumpSum, gomock.Any(), true, gomock.Any())

	out, err := m.useCase().RecordPayment(context.Background(), usecase.RecordPaymentInput{
		LoanID: "loan-1",
		Amount: decimal.NewFromInt(120000),
		Type:   domain.PaymentTypeLumpSum,
	})
	require.NoError(t, err)

	assert.True(t, out.BalanceAfter.IsZero())
	assert.Equal(t, 0, out.EMIsRemaining)
	assert.Equal(t, domain.LoanStatusClosed, out.Status)
	assert.Equal(t, []string{domain.EventTypePaymentRecorded, domain.EventTypeLoanClosed}, eventTypes)
}

func TestPaymentUseCase_RecordPayment_SubCentRateClosesOnDisplayedTotal(t *testing.T) {
	ctrl := gomock.NewController(t)
	m := newPaymentMocks(ctrl)

	terms, err := domain.ComputeLoanTerms(decimal.RequireFromString("100.01"), 1, decimal.RequireFromString("7.5"))
	require.NoError(t, err)
	loan := domain.NewLoan("loan-1", "cust-1", terms, time.Now().UTC())
	require.Equal(t, "107.51", loan.TotalAmount.StringFixed(2))

	m.idGen.EXPECT().Generate().Return("id").Times(3)
	m.txManager.EXPECT().Begin(gomock.Any()).Return(m.tx, nil)
	m.tx.EXPECT().Rollback(gomock.Any()).Return(nil).AnyTimes()
	m.loanRepo.EXPECT().GetByIDForUpdate(gomock.Any(), m.tx, "loan-1").Return(loan, nil)
	m.paymentRepo.EXPECT().Create(gomock.Any(), m.tx, gomock.Any()).Return(nil)
	m.loanRepo.EXPECT().UpdateState(gomock.Any(), m.tx, gomock.Any(), int64(1)).
		DoAndReturn(func(_ context.Context, _ usecase.Transaction, updated *domain.Loan, _ int64) error {
			assert.True(t, updated.BalanceAmount.IsZero(), "balance %s", updated.BalanceAmount)
			assert.Equal(t, domain.LoanStatusClosed, updated.Status)
			return nil
		})
	m.outboxRepo.EXPECT().Create(gomock.Any(), m.tx, gomock.Any()).Return(nil).Times(2)
	m.tx.EXPECT().Commit(gomock.Any()).Return(nil)
	m.metrics.EXPECT().PaymentRecorded(domain.PaymentTypeLumpSum, gomock.Any(), true, gomock.Any())

	out, err := m.useCase().RecordPayment(context.Background(), usecase.RecordPaymentInput{
		LoanID: "loan-1",
		Amount: decimal.RequireFromString(loan.TotalAmount.StringFixed(2)),
		Type:   domain.PaymentTypeLumpSum,
	})
	require.NoError(t, err)

	assert.True(t, out.BalanceAfter.IsZero())
	assert.Equal(t, domain.LoanStatusClosed, out.Status)
}

func TestPaymentUseCase_RecordPayment_Rejections(t *testing.T) {
	closed := func(t *testing.T) *domain.Loan {
		l := activeLoan(t)
		l.AmountPaid = l.TotalAmount
		l.BalanceAmount = decimal.Zero
		l.EMIsPaid = l.TotalEMIs
		l.EMIsRemaining = 0
		l.Status = domain.LoanStatusClosed
		return l
	}

	tests := []struct {
		name     string
		loan     func(t *testing.T) *domain.Loan
		amount   decimal.Decimal
		reason   string
		expected error
	}{
		{
			name:     "closed loan",
			loan:     closed,
			amount:   decimal.NewFromInt(100),
			reason:   "loan_closed",
			expected: domain.ErrLoanClosed,
		},
		{
			name:     "exceeds balance",
			loan:     activeLoan,
			amount:   decimal.NewFromInt(120001),
			reason:   "exceeds_balance",
			expected: domain.ErrPaymentExceedsBalance,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			m := newPaymentMocks(ctrl)

			m.idGen.EXPECT().Generate().Return("pay-1").AnyTimes()
			m.txManager.EXPECT().Begin(gomock.Any()).Return(m.tx, nil)
			m.tx.EXPECT().Rollback(gomock.Any()).Return(nil)
			m.loanRepo.EXPECT().GetByIDForUpdate(gomock.Any(), m.tx, "loan-1").Return(tt.loan(t), nil)
			m.metrics.EXPECT().PaymentFailed(tt.reason)

			_, err := m.useCase().RecordPayment(context.Background(), usecase.RecordPaymentInput{
				LoanID: "loan-1",
				Amount: tt.amount,
				Type:   domain.PaymentTypeLumpSum,
			})
			assert.ErrorIs(t, err, tt.expected)
		})
	}
}

func TestPaymentUseCase_RecordPayment_ReportsBalance(t *testing.T) {
	ctrl := gomock.NewController(t)
	m := newPaymentMocks(ctrl)

	m.idGen.EXPECT().Generate().Return("pay-1")
	m.txManager.EXPECT().Begin(gomock.Any()).Return(m.tx, nil)
	m.tx.EXPECT().Rollback(gomock.Any()).Return(nil)
	m.loanRepo.EXPECT().GetByIDForUpdate(gomock.Any(), m.tx, "loan-1").Return(activeLoan(t), nil)
	m.metrics.EXPECT().PaymentFailed("exceeds_balance")

	_, err := m.useCase().RecordPayment(context.Background(), usecase.RecordPaymentInput{
		LoanID: "loan-1",
		Amount: decimal.NewFromInt(200000),
		Type:   domain.PaymentTypeLumpSum,
	})

	var exceeds *domain.PaymentExceedsBalanceError
	require.ErrorAs(t, err, &exceeds)
	assert.True(t, exceeds.Balance.Equal(decimal.NewFromInt(120000)))
}

func TestPaymentUseCase_RecordPayment_InvalidInputSkipsStorage(t *testing.T) {
	tests := []struct {
		name   string
		amount decimal.Decimal
		typ    domain.PaymentType
	}{
		{name: "zero amount", amount: decimal.Zero, typ: domain.PaymentTypeEMI},
		{name: "negative amount", amount: decimal.NewFromInt(-5), typ: domain.PaymentTypeEMI},
		{name: "fractional cents", amount: decimal.RequireFromString("10.001"), typ: domain.PaymentTypeEMI},
		{name: "unknown type", amount: decimal.NewFromInt(10), typ: domain.PaymentType("BONUS")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			m := newPaymentMocks(ctrl)
			m.metrics.EXPECT().PaymentFailed("invalid_input")

			_, err := m.useCase().RecordPayment(context.Background(), usecase.RecordPaymentInput{
				LoanID: "loan-1",
				Amount: tt.amount,
				Type:   tt.typ,
			})
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

// retryOnConflict re-runs the operation while it reports a version conflict.
type retryOnConflict struct {
	attempts int
}

func (r *retryOnConflict) Retry(_ context.Context, operation func() error) error {
	var err error
	for i := 0; i < 3; i++ {
		r.attempts++
		if err = operation(); !errors.Is(err, domain.ErrConcurrentModification) {
			return err
		}
	}
	return err
}

func TestPaymentUseCase_RecordPayment_RetriesConflict(t *testing.T) {
	ctrl := gomock.NewController(t)
	m := newPaymentMocks(ctrl)
	retrier := &retryOnConflict{}

	m.idGen.EXPECT().Generate().Return("id").AnyTimes()
	m.txManager.EXPECT().Begin(gomock.Any()).Return(m.tx, nil).Times(2)
	m.tx.EXPECT().Rollback(gomock.Any()).Return(nil).AnyTimes()
	m.loanRepo.EXPECT().GetByIDForUpdate(gomock.Any(), m.tx, "loan-1").
		DoAndReturn(func(context.Context, usecase.Transaction, string) (*domain.Loan, error) {
			return activeLoan(t), nil
		}).Times(2)
	m.paymentRepo.EXPECT().Create(gomock.Any(), m.tx, gomock.Any()).Return(nil).Times(2)
	gomock.InOrder(
		m.loanRepo.EXPECT().UpdateState(gomock.Any(), m.tx, gomock.Any(), int64(1)).Return(domain.ErrConcurrentModification),
		m.loanRepo.EXPECT().UpdateState(gomock.Any(), m.tx, gomock.Any(), int64(1)).Return(nil),
	)
	m.outboxRepo.EXPECT().Create(gomock.Any(), m.tx, gomock.Any()).Return(nil)
	m.tx.EXPECT().Commit(gomock.Any()).Return(nil)
	m.metrics.EXPECT().PaymentRecorded(domain.PaymentTypeEMI, gomock.Any(), false, gomock.Any())

	_, err := m.useCase(usecase.WithRetrier(retrier)).RecordPayment(context.Background(), usecase.RecordPaymentInput{
		LoanID: "loan-1",
		Amount: decimal.NewFromInt(5000),
		Type:   domain.PaymentTypeEMI,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, retrier.attempts)
}
