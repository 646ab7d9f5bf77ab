// Package types provides common type aliases and utilities.
package types

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Money represents a monetary value with full precision.
// Uses decimal.Decimal to avoid floating-point errors.
//
// Prices and plan amounts travel through the API as decimal strings and are
// persisted as NUMERIC; they are parsed into Money only at validation
// boundaries, never recomputed through float64.
type Money = decimal.Decimal

// NewMoneyFromString creates a Money value from a string.
// This is the preferred constructor for monetary values.
func NewMoneyFromString(s string) (Money, error) {
	return decimal.NewFromString(s)
}

// MustMoney creates a Money value from a string, panics on error.
// Use only for constants and tests.
func MustMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Zero returns zero Money value.
func Zero() Money {
	return decimal.Zero
}

// ValidAmount reports whether s is a well-formed, non-negative decimal
// string suitable for a price or plan amount. Exponent notation is rejected
// to keep stored amounts canonical.
func ValidAmount(s string) bool {
	if s == "" || strings.ContainsAny(s, "eE") {
		return false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return false
	}
	return !d.IsNegative()
}

// NormalizeAmount parses and re-renders a decimal string so that equal
// amounts compare equal as strings ("99.90" and "99.900" both become
// "99.9"). Returns the input unchanged if it does not parse.
func NormalizeAmount(s string) string {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return s
	}
	return d.String()
}

// AmountEqual compares two decimal strings by value.
func AmountEqual(a, b string) bool {
	da, err := decimal.NewFromString(a)
	if err != nil {
		return false
	}
	db, err := decimal.NewFromString(b)
	if err != nil {
		return false
	}
	return da.Equal(db)
}
