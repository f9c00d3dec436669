// Package money converts between wire amounts ("12.34") and integer minor units.
package money

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidAmount is returned when a string cannot be read as a decimal amount.
var ErrInvalidAmount = errors.New("invalid amount")

// Cents is a monetary amount in minor units.
type Cents int64

var hundred = decimal.NewFromInt(100)

// Parse reads a decimal string and rounds it to the nearest minor unit
// (half away from zero).
func Parse(s string) (Cents, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	minor := d.Mul(hundred).Round(0)
	if !minor.BigInt().IsInt64() {
		return 0, fmt.Errorf("%w: %q out of range", ErrInvalidAmount, s)
	}
	return Cents(minor.IntPart()), nil
}

// FromDecimal rounds d to the nearest minor unit. d must be bounded by an
// amount that already fits in Cents, such as a share of a parsed total.
func FromDecimal(d decimal.Decimal) Cents {
	return Cents(d.Mul(hundred).Round(0).IntPart())
}

// Decimal returns c as a decimal in major units.
func (c Cents) Decimal() decimal.Decimal {
	return decimal.New(int64(c), -2)
}

// String formats c with exactly two decimal places, as the backend expects.
func (c Cents) String() string {
	return c.Decimal().StringFixed(2)
}

// SplitEvenly divides total into n parts of floor(total/n), handing one extra
// minor unit to each of the first total mod n parts.
func SplitEvenly(total Cents, n int) []Cents {
	if n <= 0 {
		return nil
	}
	base := total / Cents(n)
	remainder := int(total % Cents(n))
	shares := make([]Cents, n)
	for i := range shares {
		shares[i] = base
		if i < remainder {
			shares[i]++
		}
	}
	return shares
}
