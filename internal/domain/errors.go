package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// Input errors
	ErrInvalidInput = errors.New("invalid input")

	// Lookup errors
	ErrLoanNotFound     = errors.New("loan not found")
	ErrCustomerNotFound = errors.New("customer not found")

	// Payment errors
	ErrLoanClosed            = errors.New("loan is closed")
	ErrPaymentExceedsBalance = errors.New("payment exceeds outstanding balance")

	// Storage errors
	ErrStorageUnavailable     = errors.New("storage unavailable")
	ErrConcurrentModification = errors.New("loan was modified concurrently")
)

// PaymentExceedsBalanceError reports the balance a rejected payment was checked against.
type PaymentExceedsBalanceError struct {
	Amount  decimal.Decimal
	Balance decimal.Decimal
}

func (e *PaymentExceedsBalanceError) Error() string {
	return fmt.Sprintf("payment amount (%s) exceeds balance amount (%s)", e.Amount.StringFixed(2), e.Balance.StringFixed(2))
}

// Is makes errors.Is(err, ErrPaymentExceedsBalance) match.
func (e *PaymentExceedsBalanceError) Is(target error) bool {
	return target == ErrPaymentExceedsBalance
}

// StorageError wraps a backend failure so it matches ErrStorageUnavailable
// while keeping the driver error reachable through errors.As.
func StorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrStorageUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", ErrStorageUnavailable, op, err)
}
