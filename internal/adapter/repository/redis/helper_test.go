package redis

import (
	"context"
	"strings"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	redislib "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/iho/goloan/internal/adapter/repository/memory"
	"github.com/iho/goloan/internal/domain"
	"github.com/iho/goloan/internal/infrastructure/idgen"
	"github.com/iho/goloan/internal/usecase"
)

func newTestRedisClient(t *testing.T) (*redislib.Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redislib.NewClient(&redislib.Options{
		Addr: mr.Addr(),
	})

	return client, mr
}

func TestCache_BacksLedgerReads(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	store := memory.NewStore()
	txManager := memory.NewTxManager(store)
	loans := memory.NewLoanRepository(store)
	payments := memory.NewPaymentRepository(store)
	outbox := memory.NewOutboxRepository(store)

	loan, err := usecase.NewLoanUseCase(txManager, loans, memory.NewCustomerRepository(store), outbox, idgen.NewULIDGenerator()).
		CreateLoan(ctx, usecase.CreateLoanInput{
			CustomerID:        "cust-1",
			Principal:         decimal.NewFromInt(1200),
			PeriodYears:       1,
			AnnualRatePercent: decimal.Zero,
		})
	if err != nil {
		t.Fatalf("create loan: %v", err)
	}

	if _, err := usecase.NewPaymentUseCase(txManager, loans, payments, outbox, idgen.NewULIDGenerator()).
		RecordPayment(ctx, usecase.RecordPaymentInput{LoanID: loan.ID, Amount: decimal.NewFromInt(100), Type: domain.PaymentTypeEMI}); err != nil {
		t.Fatalf("record payment: %v", err)
	}

	ledger := usecase.NewLedgerUseCase(loans, payments, usecase.WithCache(NewCache(client), 0))
	got, err := ledger.GetLedger(ctx, loan.ID)
	if err != nil {
		t.Fatalf("get ledger: %v", err)
	}
	if len(got.Payments) != 1 {
		t.Fatalf("expected 1 payment, got %d", len(got.Payments))
	}

	want := "goloan:cache:ledger:" + loan.ID + ":v2"
	keys := mr.Keys()
	if len(keys) != 1 || keys[0] != want {
		t.Fatalf("expected cached history under %s, got %v", want, keys)
	}
	if !strings.Contains(mustGet(t, mr, want), loan.ID) {
		t.Fatalf("expected cached payments to reference the loan")
	}
}

func mustGet(t *testing.T, mr *miniredis.Miniredis, key string) string {
	t.Helper()
	v, err := mr.Get(key)
	if err != nil {
		t.Fatalf("get %s: %v", key, err)
	}
	return v
}
