// Package money provides currency-safe monetary values using integer minor
// units, wrapping go-money for arithmetic and shopspring/decimal for
// precision conversions.
package money

import (
	"fmt"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Common currency codes (ISO-4217)
const (
	EUR = "EUR"
	USD = "USD"
	GBP = "GBP"
	CHF = "CHF"
)

// Money represents a monetary value with currency.
type Money struct {
	m *money.Money
}

// New creates a Money value from minor units (cents) and currency code.
func New(amountCents int64, currencyCode string) *Money {
	return &Money{m: money.New(amountCents, currencyCode)}
}

// NewFromDecimal creates Money from a decimal amount, rounding to the
// currency's minor unit.
func NewFromDecimal(amount decimal.Decimal, currencyCode string) *Money {
	currency := money.GetCurrency(currencyCode)
	if currency == nil {
		currency = money.GetCurrency(EUR)
	}
	multiplier := decimal.New(1, int32(currency.Fraction))
	cents := amount.Mul(multiplier).Round(0).IntPart()
	return New(cents, currencyCode)
}

// Zero returns a zero Money value for the given currency
func Zero(currencyCode string) *Money {
	return New(0, currencyCode)
}

// Amount returns the amount in minor units (cents)
func (m *Money) Amount() int64 {
	if m == nil || m.m == nil {
		return 0
	}
	return m.m.Amount()
}

// Currency returns the ISO-4217 currency code
func (m *Money) Currency() string {
	if m == nil || m.m == nil {
		return ""
	}
	return m.m.Currency().Code
}

// IsZero reports whether the amount is zero
func (m *Money) IsZero() bool {
	return m.Amount() == 0
}

// Add returns the sum of two Money values. Returns an error on currency
// mismatch.
func (m *Money) Add(other *Money) (*Money, error) {
	if m == nil || other == nil {
		return nil, fmt.Errorf("cannot add nil money values")
	}
	sum, err := m.m.Add(other.m)
	if err != nil {
		return nil, fmt.Errorf("adding money: %w", err)
	}
	return &Money{m: sum}, nil
}

// MultiplyDecimal scales the amount by a decimal factor, rounding to minor
// units.
func (m *Money) MultiplyDecimal(factor decimal.Decimal) *Money {
	if m == nil || m.m == nil {
		return m
	}
	cents := decimal.NewFromInt(m.Amount()).Mul(factor).Round(0).IntPart()
	return New(cents, m.Currency())
}

// ToDecimal returns the amount as a decimal in major units.
func (m *Money) ToDecimal() decimal.Decimal {
	if m == nil || m.m == nil {
		return decimal.Zero
	}
	currency := m.m.Currency()
	return decimal.New(m.Amount(), -int32(currency.Fraction))
}

// Display formats the amount with its currency symbol, e.g. "€1,234.50".
func (m *Money) Display() string {
	if m == nil || m.m == nil {
		return ""
	}
	return m.m.Display()
}

// String implements fmt.Stringer
func (m *Money) String() string {
	return m.Display()
}

// Equals reports whether two values have the same currency and amount.
func (m *Money) Equals(other *Money) bool {
	if m == nil || other == nil {
		return m == other
	}
	eq, err := m.m.Equals(other.m)
	return err == nil && eq
}
