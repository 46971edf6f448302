// Package money provides exact fixed-point arithmetic helpers for
// currency amounts. All ledger math goes through shopspring/decimal so
// cent-level drift cannot accumulate across many small expenses.
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Scale is the number of minor-unit decimal places carried by amounts.
const Scale = 2

// Epsilon is one currency minor unit (0.01). Amounts whose magnitude is
// below Epsilon are treated as settled.
var Epsilon = decimal.New(1, -Scale)

// Zero is the zero amount.
var Zero = decimal.Zero

// Round normalizes an amount to the minor-unit scale.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Scale)
}

// IsSettled reports whether an amount is within one minor unit of zero.
func IsSettled(d decimal.Decimal) bool {
	return d.Abs().LessThan(Epsilon)
}

// Equal reports whether two amounts agree within one minor unit.
func Equal(a, b decimal.Decimal) bool {
	return IsSettled(a.Sub(b))
}

// Sum adds a list of amounts.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// Parse converts a decimal string into an amount rounded to scale.
func Parse(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return Round(d), nil
}

// Format renders an amount with exactly Scale decimal places.
func Format(d decimal.Decimal) string {
	return d.StringFixed(Scale)
}

// Split divides total into n shares that differ by at most one minor
// unit and sum exactly to total. The first total*10^Scale mod n shares
// absorb the remainder, one cent each. Negative totals split the same
// way with the sign carried through.
func Split(total decimal.Decimal, n int) []decimal.Decimal {
	if n <= 0 {
		return nil
	}
	negative := total.IsNegative()
	total = Round(total.Abs())
	base := total.Div(decimal.NewFromInt(int64(n))).RoundDown(Scale)
	shares := make([]decimal.Decimal, n)
	remainder := total.Sub(base.Mul(decimal.NewFromInt(int64(n))))
	for i := range shares {
		shares[i] = base
		if remainder.GreaterThanOrEqual(Epsilon) {
			shares[i] = shares[i].Add(Epsilon)
			remainder = remainder.Sub(Epsilon)
		}
		if negative {
			shares[i] = shares[i].Neg()
		}
	}
	return shares
}
