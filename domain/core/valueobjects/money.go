package valueobjects

import (
	"fmt"
	"strings"

	pkgerrors "propcore-backend/pkg/errors"
)

// Money is an amount in minor units (cents) plus an ISO currency code.
// Storing minor units keeps rent arithmetic exact.
type Money struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// NewMoney creates a Money value, normalizing the currency code
func NewMoney(amount int64, currency string) (Money, error) {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if len(currency) != 3 {
		return Money{}, pkgerrors.NewValidationError(
			fmt.Sprintf("invalid currency code %q", currency))
	}
	if amount < 0 {
		return Money{}, pkgerrors.NewValidationError("amount cannot be negative")
	}
	return Money{Amount: amount, Currency: currency}, nil
}

// Zero returns the zero amount in the given currency
func Zero(currency string) Money {
	return Money{Amount: 0, Currency: currency}
}

// IsZero reports whether the money value is unset
func (m Money) IsZero() bool {
	return m.Amount == 0 && m.Currency == ""
}

// SameCurrency reports whether both values share a currency
func (m Money) SameCurrency(other Money) bool {
	return m.Currency == other.Currency
}

// Add returns the sum of two amounts in the same currency
func (m Money) Add(other Money) (Money, error) {
	if !m.SameCurrency(other) {
		return Money{}, pkgerrors.NewValidationError(
			fmt.Sprintf("currency mismatch: %s vs %s", m.Currency, other.Currency))
	}
	return Money{Amount: m.Amount + other.Amount, Currency: m.Currency}, nil
}

// String formats the amount for logs, e.g. "1250.00 USD"
func (m Money) String() string {
	return fmt.Sprintf("%d.%02d %s", m.Amount/100, m.Amount%100, m.Currency)
}
