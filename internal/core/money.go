// Package core provides the bill domain types and the pure helpers the
// services rely on.
//
// This file contains functions for parsing monetary amounts typed into the
// new bill form.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a decimal string to an amount rounded to cents.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators. Zero is
// allowed, negative values are not.
//
// Examples:
//
//	ParseAmount("12.34") -> 12.34, nil
//	ParseAmount("12,345") -> 12.35, nil (half-up)
//	ParseAmount("-1") -> 0, ErrInvalidAmount
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
	return d.Round(2), nil
}

// ParseOptionalAmount parses an optional amount such as the VAT field. A blank
// input yields an invalid (empty) NullDecimal.
func ParseOptionalAmount(s string) (decimal.NullDecimal, error) {
	if strings.TrimSpace(s) == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := ParseAmount(s)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NewNullDecimal(d), nil
}

// ParseStoredDecimal reads a number as found in stored records, where either
// decimal separator may appear and blanks mean "no value". It reports false
// when s holds no usable number.
func ParseStoredDecimal(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
