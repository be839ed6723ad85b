package domain

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Validation constants
const (
	MaxCustomerIDLength   = 64
	MaxCustomerNameLength = 255
	MaxPeriodYears        = 50
	MaxAnnualRatePercent  = "100"
	MaxPrincipal          = "1000000000000" // 1 trillion
	MinMoneyAmount        = "0.01"
	MaxRatePlaces         = 4
)

var customerIDRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._:-]*$`)

// ValidateCustomerID checks an opaque customer identifier.
func ValidateCustomerID(id string) error {
	id = strings.TrimSpace(id)

	if id == "" {
		return fmt.Errorf("%w: customer_id is required", ErrInvalidInput)
	}

	if len(id) > MaxCustomerIDLength {
		return fmt.Errorf("%w: customer_id exceeds %d characters", ErrInvalidInput, MaxCustomerIDLength)
	}

	if !customerIDRegex.MatchString(id) {
		return fmt.Errorf("%w: customer_id contains forbidden characters", ErrInvalidInput)
	}

	return nil
}

// ValidateCustomerName checks an optional display name.
func ValidateCustomerName(name string) error {
	if len(strings.TrimSpace(name)) > MaxCustomerNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidInput, MaxCustomerNameLength)
	}
	return nil
}

// ValidateLoanRequest applies the API-level limits on top of ComputeLoanTerms.
func ValidateLoanRequest(principal decimal.Decimal, periodYears int, annualRatePercent decimal.Decimal) error {
	maxPrincipal, _ := decimal.NewFromString(MaxPrincipal)
	if principal.GreaterThan(maxPrincipal) {
		return fmt.Errorf("%w: principal exceeds maximum of %s", ErrInvalidInput, MaxPrincipal)
	}

	if periodYears > MaxPeriodYears {
		return fmt.Errorf("%w: period exceeds %d years", ErrInvalidInput, MaxPeriodYears)
	}

	maxRate, _ := decimal.NewFromString(MaxAnnualRatePercent)
	if annualRatePercent.GreaterThan(maxRate) {
		return fmt.Errorf("%w: interest rate exceeds %s%%", ErrInvalidInput, MaxAnnualRatePercent)
	}

	if !annualRatePercent.Equal(annualRatePercent.Round(MaxRatePlaces)) {
		return fmt.Errorf("%w: interest rate has more than %d decimal places", ErrInvalidInput, MaxRatePlaces)
	}

	return nil
}

// ValidateMoneyAmount rejects non-positive amounts and fractions of a cent.
func ValidateMoneyAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}

	minAmount, _ := decimal.NewFromString(MinMoneyAmount)
	if amount.LessThan(minAmount) {
		return fmt.Errorf("%w: minimum amount is %s", ErrInvalidInput, MinMoneyAmount)
	}

	if !amount.Equal(amount.Round(moneyPlaces)) {
		return fmt.Errorf("%w: amount has more than %d decimal places", ErrInvalidInput, moneyPlaces)
	}

	return nil
}
