// Package core holds the expense domain: money, expenses, category totals and
// the chart data payload exchanged between the server and the chart loader.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseDecimalToCents converts a decimal string to cents, rounding to the
// nearest cent with halves rounded away from zero.
//
// Both dot (12.34) and comma (12,34) separators are accepted. Only plain
// digits with an optional single separator are valid: signed, zero, exponent
// (1e5) and malformed values return ErrInvalidAmount.
//
// Examples:
//
//	ParseDecimalToCents("12.34")  -> 1234, nil
//	ParseDecimalToCents("12,345") -> 1235, nil
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if !plainDecimal(s) {
		return 0, ErrInvalidAmount
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	cents := d.Shift(2).Round(0)
	if !cents.IsPositive() || cents.GreaterThan(decimal.NewFromInt(maxCents)) {
		return 0, ErrInvalidAmount
	}
	return cents.IntPart(), nil
}

const maxCents = (1<<63 - 1) / 100

func plainDecimal(s string) bool {
	digits, dots := 0, 0
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '.':
			dots++
		default:
			return false
		}
	}
	return digits > 0 && dots <= 1
}

// Units returns the amount in currency units without float rounding errors.
func (m Money) Units() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// Float returns the amount in currency units for display and chart values.
// Use cents for arithmetic.
func (m Money) Float() float64 {
	return m.Units().InexactFloat64()
}

// String formats the amount with two decimals, e.g. "12.30".
func (m Money) String() string {
	return m.Units().StringFixed(2)
}
