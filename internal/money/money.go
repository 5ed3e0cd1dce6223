// Package money rounds and formats currency amounts at the storage and display boundary.
package money

import "github.com/shopspring/decimal"

// Round returns x rounded half away from zero to two decimals.
func Round(x float64) float64 {
	f, _ := decimal.NewFromFloat(x).Round(2).Float64()
	return f
}

// Cents converts a dollar amount to integer cents.
func Cents(x float64) int64 {
	return decimal.NewFromFloat(x).Shift(2).Round(0).IntPart()
}

// FromCents converts integer cents to a dollar amount.
func FromCents(c int64) float64 {
	f, _ := decimal.New(c, -2).Float64()
	return f
}

// Format renders x with two decimals followed by the currency code, e.g. "172.50 CAD".
func Format(x float64, currency string) string {
	s := decimal.NewFromFloat(x).StringFixed(2)
	if currency == "" {
		return s
	}
	return s + " " + currency
}
