// Package money converts between decimal strings and integer cents.
package money

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidAmount is returned for a string that is not a non-negative
// amount with at most two decimal places, or that exceeds MaxCents.
var ErrInvalidAmount = errors.New("invalid money amount")

// MaxCents is the largest amount accepted, 100 billion in major units. Sums
// of up to about 900,000 such amounts still fit in an int64.
const MaxCents int64 = 10_000_000_000_000

var maxCents = decimal.NewFromInt(MaxCents)

// ParseCents parses a non-negative decimal amount such as "25", "25.5" or
// "25.00" into cents. More than two decimal places is rejected rather than
// rounded.
func ParseCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidAmount)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("%w: %q is negative", ErrInvalidAmount, s)
	}
	cents := d.Shift(2)
	if !cents.Equal(cents.Truncate(0)) {
		return 0, fmt.Errorf("%w: %q has more than two decimal places", ErrInvalidAmount, s)
	}
	if cents.GreaterThan(maxCents) {
		return 0, fmt.Errorf("%w: %q is too large", ErrInvalidAmount, s)
	}
	return cents.IntPart(), nil
}

// FormatCents renders cents as a plain decimal string, e.g. -1234 as "-12.34".
func FormatCents(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}
