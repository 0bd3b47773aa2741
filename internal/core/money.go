// Package core provides money parsing and summation utilities.
//
// Amounts are stored as float64 to keep the persisted JSON shape a plain
// number. Sums go through shopspring/decimal so that adding many cent values
// does not accumulate binary floating point error.
package core

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a user-entered decimal string to a float amount.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators. Empty
// input yields ErrMissingAmount, anything that is not a finite number yields
// ErrInvalidAmount. Sign and magnitude are not checked.
//
// Examples:
//
//	ParseAmount("12.34") -> 12.34, nil
//	ParseAmount("12,34") -> 12.34, nil
//	ParseAmount("abc")   -> 0, ErrInvalidAmount
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrMissingAmount
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	f, _ := d.Float64()
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, ErrInvalidAmount
	}
	return f, nil
}

// Sum accumulates float amounts exactly. The zero value is ready to use.
type Sum struct {
	d decimal.Decimal
}

// Add adds amount to the running total.
func (s *Sum) Add(amount float64) {
	s.d = s.d.Add(decimal.NewFromFloat(amount))
}

// Value returns the running total as a float64.
func (s Sum) Value() float64 {
	f, _ := s.d.Float64()
	return f
}
