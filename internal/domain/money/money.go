// Package money implements a fixed-point, integer-cents representation of
// monetary amounts. No float64 is ever used for a value that represents
// currency: parsing and rate multiplication go through shopspring/decimal,
// while the in-memory representation, addition, subtraction and
// formatting are plain int64 cents.
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Money is an amount of currency expressed in integer cents.
type Money struct {
	cents int64
}

// Zero is the additive identity.
var Zero = Money{}

// ErrMalformedAmount is returned when a string cannot be parsed into a
// valid monetary amount (non-numeric, negative sign issues, or more than
// two fractional digits).
type ErrMalformedAmount struct {
	Input string
}

func (e ErrMalformedAmount) Error() string {
	return fmt.Sprintf("malformed amount: %q", e.Input)
}

// FromCents constructs a Money directly from an integer cents value.
func FromCents(cents int64) Money {
	return Money{cents: cents}
}

// FromDecimalString parses a decimal string such as "199.90" into Money.
// It rejects inputs with more than two fractional digits so that no
// precision is silently discarded.
func FromDecimalString(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Zero, ErrMalformedAmount{Input: s}
	}

	if d.Exponent() < -2 {
		return Zero, ErrMalformedAmount{Input: s}
	}

	cents := d.Shift(2)
	if !cents.IsInteger() {
		return Zero, ErrMalformedAmount{Input: s}
	}

	return Money{cents: cents.IntPart()}, nil
}

// Cents returns the underlying integer cents value.
func (m Money) Cents() int64 {
	return m.cents
}

// Add returns m + other.
func (m Money) Add(other Money) Money {
	return Money{cents: m.cents + other.cents}
}

// Sub returns m - other.
func (m Money) Sub(other Money) Money {
	return Money{cents: m.cents - other.cents}
}

// IsPositive reports whether m is strictly greater than zero.
func (m Money) IsPositive() bool {
	return m.cents > 0
}

// IsNegative reports whether m is strictly less than zero.
func (m Money) IsNegative() bool {
	return m.cents < 0
}

// Equal reports whether m and other represent the same amount.
func (m Money) Equal(other Money) bool {
	return m.cents == other.cents
}

// MulRate multiplies m by a rate (a decimal.Decimal carrying at least four
// fractional digits, e.g. 0.0499) and rounds the result to the nearest
// cent, half away from zero.
func (m Money) MulRate(rate decimal.Decimal) Money {
	exact := decimal.NewFromInt(m.cents).Mul(rate)
	return Money{cents: roundHalfAwayFromZero(exact)}
}

func roundHalfAwayFromZero(d decimal.Decimal) int64 {
	if d.IsNegative() {
		return -roundHalfAwayFromZero(d.Neg())
	}

	floor := d.Truncate(0)
	remainder := d.Sub(floor)

	half := decimal.NewFromFloat(0.5)
	if remainder.GreaterThanOrEqual(half) {
		return floor.IntPart() + 1
	}

	return floor.IntPart()
}

// String renders m as a fixed two-decimal string, e.g. "199.90".
func (m Money) String() string {
	sign := ""
	cents := m.cents

	if cents < 0 {
		sign = "-"
		cents = -cents
	}

	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
