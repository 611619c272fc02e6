// Package moneypkg parses and renders monetary amounts.
//
// Amounts are fixed-point decimals with at most two fractional digits and
// fit the NUMERIC(18, 2) columns of the schema.
package moneypkg

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// Scale is the number of fractional digits kept for every amount.
const Scale = 2

// Max is the largest amount or balance the ledger stores.
var Max = decimal.RequireFromString("9999999999999999.99")

var (
	// ErrMalformed indicates that the amount is not a plain decimal number.
	ErrMalformed = errors.New("malformed amount")
	// ErrNotPositive indicates a zero or negative amount.
	ErrNotPositive = errors.New("amount must be positive")
	// ErrTooPrecise indicates more than two fractional digits.
	ErrTooPrecise = errors.New("amount has more than two decimal places")
	// ErrTooLarge indicates an amount above Max.
	ErrTooLarge = errors.New("amount exceeds the maximum")
)

// Parse converts s into a strictly positive amount with at most two decimal
// places and no greater than Max. Exponent notation is rejected.
func Parse(s string) (decimal.Decimal, error) {
	if strings.ContainsAny(s, "eE") {
		return decimal.Zero, ErrMalformed
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrMalformed
	}

	if !d.IsPositive() {
		return decimal.Zero, ErrNotPositive
	}

	if d.GreaterThan(Max) {
		return decimal.Zero, ErrTooLarge
	}

	if !d.Equal(d.Truncate(Scale)) {
		return decimal.Zero, ErrTooPrecise
	}

	return d.Truncate(Scale), nil
}

// Exceeds reports whether balance is above Max.
func Exceeds(balance decimal.Decimal) bool {
	return balance.GreaterThan(Max)
}

// Format renders d with exactly two decimal places.
func Format(d decimal.Decimal) string {
	return d.StringFixed(Scale)
}
