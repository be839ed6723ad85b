package usecase_test

import (
	"context"
	"strings"
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

func newCustomerUseCase(ctrl *gomock.Controller) (*usecase.CustomerUseCase, *mocks.MockTransactionManager, *mocks.MockCustomerRepository, *mocks.MockLoanRepository, *mocks.MockPaymentRepository) {
	txManager := mocks.NewMockTransactionManager(ctrl)
	customerRepo := mocks.NewMockCustomerRepository(ctrl)
	loanRepo := mocks.NewMockLoanRepository(ctrl)
	paymentRepo := mocks.NewMockPaymentRepository(ctrl)
	return usecase.NewCustomerUseCase(txManager, customerRepo, loanRepo, paymentRepo), txManager, customerRepo, loanRepo, paymentRepo
}

func TestCustomerUseCase_RegisterCustomer(t *testing.T) {
	ctrl := gomock.NewController(t)
	uc, txManager, customerRepo, _, _ := newCustomerUseCase(ctrl)
	tx := mocks.NewMockTransaction(ctrl)

	txManager.EXPECT().Begin(gomock.Any()).Return(tx, nil)
	tx.EXPECT().Rollback(gomock.Any()).Return(nil).AnyTimes()
	customerRepo.EXPECT().Upsert(gomock.Any(), tx, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ usecase.Transaction, c *domain.Customer) error {
			assert.Equal(t, "cust-1", c.ID)
			assert.Equal(t, "Ada", c.Name)
			return nil
		})
	tx.EXPECT().Commit(gomock.Any()).Return(nil)
	customerRepo.EXPECT().GetByID(gomock.Any(), "cust-1").
		Return(&domain.Customer{ID: "cust-1", Name: "Ada"}, nil)

	c, err := uc.RegisterCustomer(context.Background(), usecase.RegisterCustomerInput{ID: "cust-1", Name: " Ada "})
	require.NoError(t, err)
	assert.Equal(t, "Ada", c.Name)
}

func TestCustomerUseCase_RegisterCustomer_InvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		input usecase.RegisterCustomerInput
	}{
		{name: "empty id", input: usecase.RegisterCustomerInput{ID: "  "}},
		{name: "bad characters", input: usecase.RegisterCustomerInput{ID: "a b"}},
		{name: "long name", input: usecase.RegisterCustomerInput{ID: "c", Name: strings.Repeat("x", domain.MaxCustomerNameLength+1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			uc, _, _, _, _ := newCustomerUseCase(ctrl)

			_, err := uc.RegisterCustomer(context.Background(), tt.input)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestCustomerUseCase_GetAccountOverview(t *testing.T) {
	ctrl := gomock.NewController(t)
	uc, _, customerRepo, loanRepo, paymentRepo := newCustomerUseCase(ctrl)
	now := time.Now().UTC()

	termsA, err := domain.ComputeLoanTerms(decimal.NewFromInt(100000), 2, decimal.NewFromInt(10))
	require.NoError(t, err)
	termsB, err := domain.ComputeLoanTerms(decimal.NewFromInt(1200), 1, decimal.Zero)
	require.NoError(t, err)

	loanA := domain.NewLoan("loan-a", "cust-1", termsA, now)
	resA, err := domain.ApplyPayment(loanA, "pay-1", decimal.NewFromInt(5000), domain.PaymentTypeEMI, now)
	require.NoError(t, err)

	loanB := domain.NewLoan("loan-b", "cust-1", termsB, now)
	resB, err := domain.ApplyPayment(loanB, "pay-2", decimal.NewFromInt(1200), domain.PaymentTypeLumpSum, now)
	require.NoError(t, err)

	customerRepo.EXPECT().GetByID(gomock.Any(), "cust-1").Return(&domain.Customer{ID: "cust-1"}, nil)
	loanRepo.EXPECT().ListByCustomer(gomock.Any(), "cust-1").Return([]*domain.Loan{resA.Loan, resB.Loan}, nil)
	paymentRepo.EXPECT().ListByLoan(gomock.Any(), "loan-a").Return([]*domain.Payment{resA.Payment}, nil)
	paymentRepo.EXPECT().ListByLoan(gomock.Any(), "loan-b").Return([]*domain.Payment{resB.Payment}, nil)

	overview, err := uc.GetAccountOverview(context.Background(), "cust-1")
	require.NoError(t, err)

	require.Len(t, overview.Loans, 2)
	assert.Equal(t, 1, overview.Loans[0].PaymentCount)
	assert.True(t, overview.Loans[0].TotalPaid.Equal(decimal.NewFromInt(5000)))

	s := overview.Summary
	assert.Equal(t, 2, s.TotalLoans)
	assert.True(t, s.TotalPrincipal.Equal(decimal.NewFromInt(101200)))
	assert.True(t, s.TotalAmount.Equal(decimal.NewFromInt(121200)))
	assert.True(t, s.TotalPaid.Equal(decimal.NewFromInt(6200)))
	assert.True(t, s.TotalBalance.Equal(decimal.NewFromInt(115000)))
	assert.Equal(t, 1, s.ActiveLoans)
	assert.Equal(t, 1, s.ClosedLoans)
}

func TestCustomerUseCase_GetAccountOverview_NoLoans(t *testing.T) {
	ctrl := gomock.NewController(t)
	uc, _, customerRepo, loanRepo, _ := newCustomerUseCase(ctrl)

	customerRepo.EXPECT().GetByID(gomock.Any(), "cust-1").Return(&domain.Customer{ID: "cust-1"}, nil)
	loanRepo.EXPECT().ListByCustomer(gomock.Any(), "cust-1").Return(nil, nil)

	overview, err := uc.GetAccountOverview(context.Background(), "cust-1")
	require.NoError(t, err)

	assert.NotNil(t, overview.Loans)
	assert.Empty(t, overview.Loans)
	assert.Equal(t, 0, overview.Summary.TotalLoans)
	assert.True(t, overview.Summary.TotalBalance.IsZero())
}

func TestCustomerUseCase_GetAccountOverview_UnknownCustomer(t *testing.T) {
	ctrl := gomock.NewController(t)
	uc, _, customerRepo, _, _ := newCustomerUseCase(ctrl)

	customerRepo.EXPECT().GetByID(gomock.Any(), "ghost").Return(nil, domain.ErrCustomerNotFound)

	_, err := uc.GetAccountOverview(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrCustomerNotFound)
}
