package money

import "errors"

// USD is the only settlement currency the platform supports.
const USD = "USD"

var (
	ErrInvalidCurrency  = errors.New("money: invalid currency code")
	ErrCurrencyMismatch = errors.New("money: currency mismatch")
)

// Money keeps amounts in integer minor units (cents) to avoid floating point
// issues.
type Money struct {
	Amount   int64
	Currency string
}

// USDCents wraps a cent amount in the platform currency.
func USDCents(amount int64) Money {
	return Money{Amount: amount, Currency: USD}
}

// Add adds two money values ensuring currencies match.
func (m Money) Add(other Money) (Money, error) {
	if m.Currency == "" || other.Currency == "" {
		return Money{}, ErrInvalidCurrency
	}
	if m.Currency != other.Currency {
		return Money{}, ErrCurrencyMismatch
	}
	return Money{Amount: m.Amount + other.Amount, Currency: m.Currency}, nil
}

// Multiply multiplies the amount by the provided factor.
func (m Money) Multiply(times int64) Money {
	return Money{Amount: m.Amount * times, Currency: m.Currency}
}

// FeePortion returns the platform cut of the amount at the given rate in
// basis points, rounded half away from zero.
func (m Money) FeePortion(bps int64) Money {
	amount := m.Amount * bps
	if amount >= 0 {
		amount = (amount + 5000) / 10000
	} else {
		amount = (amount - 5000) / 10000
	}
	return Money{Amount: amount, Currency: m.Currency}
}

// IsZero returns true if the amount equals zero.
func (m Money) IsZero() bool {
	return m.Amount == 0
}
