package domain

import (
	"fmt"

	dErrors "fintrack/pkg/domain-errors"
)

// Currency is a closed ISO 4217 subset. Construct via ParseCurrency at
// trust boundaries; direct casting bypasses the allowlist.
type Currency string

// Supported currencies.
const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyGBP Currency = "GBP"
	CurrencyJPY Currency = "JPY"
	CurrencyCHF Currency = "CHF"
)

// validCurrencies is the single source of truth for supported currencies.
var validCurrencies = map[Currency]bool{
	CurrencyUSD: true,
	CurrencyEUR: true,
	CurrencyGBP: true,
	CurrencyJPY: true,
	CurrencyCHF: true,
}

// ParseCurrency validates a currency code from external input.
func ParseCurrency(s string) (Currency, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeValidation, "currency cannot be empty")
	}
	c := Currency(s)
	if !c.IsValid() {
		return "", dErrors.Newf(dErrors.CodeValidation, "unsupported currency %q", s)
	}
	return c, nil
}

// IsValid checks membership in the supported set.
func (c Currency) IsValid() bool { return validCurrencies[c] }

func (c Currency) String() string { return string(c) }

// Money is an amount in integer minor units (cents) bound to a currency.
// Floating point never appears anywhere in money handling. The amount and
// currency travel together; arithmetic across currencies is an error, not
// a conversion.
type Money struct {
	amount   int64
	currency Currency
}

// NewMoney constructs a Money value. Amounts may be negative: a negative
// transaction amount is a debit.
func NewMoney(amount int64, currency Currency) (Money, error) {
	if !currency.IsValid() {
		return Money{}, dErrors.Newf(dErrors.CodeValidation, "unsupported currency %q", currency)
	}
	return Money{amount: amount, currency: currency}, nil
}

// MustMoney panics on invalid input. Test and wiring use only.
func MustMoney(amount int64, currency Currency) Money {
	m, err := NewMoney(amount, currency)
	if err != nil {
		panic(err)
	}
	return m
}

// ZeroMoney is the zero amount in the given currency.
func ZeroMoney(currency Currency) (Money, error) {
	return NewMoney(0, currency)
}

// Amount returns the value in minor units.
func (m Money) Amount() int64 { return m.amount }

func (m Money) Currency() Currency { return m.currency }

func (m Money) IsZero() bool     { return m.amount == 0 }
func (m Money) IsNegative() bool { return m.amount < 0 }
func (m Money) IsPositive() bool { return m.amount > 0 }

// sameCurrency guards every binary operation.
func (m Money) sameCurrency(other Money) error {
	if m.currency != other.currency {
		return dErrors.Newf(dErrors.CodeInvariantViolation,
			"currency mismatch: %s vs %s", m.currency, other.currency)
	}
	return nil
}

// Add returns m + other, failing on currency mismatch.
func (m Money) Add(other Money) (Money, error) {
	if err := m.sameCurrency(other); err != nil {
		return Money{}, err
	}
	return Money{amount: m.amount + other.amount, currency: m.currency}, nil
}

// Sub returns m - other, failing on currency mismatch.
func (m Money) Sub(other Money) (Money, error) {
	if err := m.sameCurrency(other); err != nil {
		return Money{}, err
	}
	return Money{amount: m.amount - other.amount, currency: m.currency}, nil
}

// Negate flips the sign, turning a credit into a debit and back.
func (m Money) Negate() Money {
	return Money{amount: -m.amount, currency: m.currency}
}

// Equal is structural equality: same amount and same currency.
func (m Money) Equal(other Money) bool {
	return m.amount == other.amount && m.currency == other.currency
}

func (m Money) String() string {
	return fmt.Sprintf("%d %s", m.amount, m.currency)
}
