package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/goloan/internal/domain"
)

// paymentHistory loads the payments that make up a loan snapshot.
//
// The loan and its payments are read separately, so payments committed after
// the loan was read are dropped by version. The result for a given loan
// version never changes, which is what makes it safe to cache without
// invalidation.
type paymentHistory struct {
	repo   PaymentRepository
	cache  Cache
	ttl    time.Duration
	logger zerolog.Logger
}

func newPaymentHistory(repo PaymentRepository, o options) *paymentHistory {
	return &paymentHistory{
		repo:   repo,
		cache:  o.cache,
		ttl:    o.cacheTTL,
		logger: o.logger,
	}
}

func (h *paymentHistory) forLoan(ctx context.Context, loan *domain.Loan) ([]*domain.Payment, error) {
	key := fmt.Sprintf("%s:v%d", ledgerCacheKey(loan.ID), loan.Version)

	if h.cache != nil {
		if data, err := h.cache.Get(ctx, key); err == nil && len(data) > 0 {
			var cached []*domain.Payment
			if err := json.Unmarshal(data, &cached); err == nil {
				return cached, nil
			}
		}
	}

	all, err := h.repo.ListByLoan(ctx, loan.ID)
	if err != nil {
		return nil, err
	}

	payments := make([]*domain.Payment, 0, len(all))
	for _, p := range all {
		if p.LoanVersion <= loan.Version {
			payments = append(payments, p)
		}
	}

	if h.cache != nil {
		data, err := json.Marshal(payments)
		if err == nil {
			err = h.cache.Set(ctx, key, data, h.ttl)
		}
		if err != nil {
			h.logger.Warn().Err(err).Str("loan_id", loan.ID).Msg("failed to cache payment history")
		}
	}

	return payments, nil
}
