// Package core provides amount parsing and formatting.
//
// Amounts are decimals end to end so that a value written to the table
// reads back unchanged.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts user input to a decimal.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators. Signs
// are rejected; the minimum bound is checked by Transaction.Validate.
//
// Examples:
//
//	ParseAmount("12.34") -> 12.34, nil
//	ParseAmount("12,34") -> 12.34, nil
//	ParseAmount("-1")    -> 0, ErrInvalidAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// FormatAmount renders an amount for persistence: at least two fraction
// digits, more only when the value carries them.
func FormatAmount(d decimal.Decimal) string {
	if exp := d.Exponent(); exp < -2 {
		return d.StringFixed(-exp)
	}
	return d.StringFixed(2)
}

// FormatDollars formats an amount for display (e.g. "$12.34", "-$5.00").
func FormatDollars(d decimal.Decimal) string {
	if d.IsNegative() {
		return "-$" + d.Neg().StringFixed(2)
	}
	return "$" + d.StringFixed(2)
}
