// Package money converts between the rupee amounts spoken at the API and
// receipt boundaries and the integer paise stored everywhere else.
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ParseRupees parses a decimal rupee amount ("50", "50.00") into paise.
// Amounts with more than two decimal places are rejected.
func ParseRupees(s string) (int64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", s, err)
	}
	paise := d.Shift(2)
	if !paise.IsInteger() {
		return 0, fmt.Errorf("amount %q has more than two decimal places", s)
	}
	return paise.IntPart(), nil
}

// FormatRupees renders paise as a rupee string with exactly two decimals.
func FormatRupees(paise int64) string {
	return decimal.New(paise, -2).StringFixed(2)
}

// Label renders paise with the receipt currency prefix.
func Label(paise int64) string {
	return "Rs. " + FormatRupees(paise)
}
