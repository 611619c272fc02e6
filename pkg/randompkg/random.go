// Package randompkg provides functionality for generating random applications common items.
package randompkg

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	alphabet = "abcdefghijklmnopqrstuvwxyz"
	digits   = "0123456789"
)

// Intn is a shortcut for generating a random integer in [0, max) using crypto/rand.
func Intn(max int) int64 {
	nBig, err := rand.Int(rand.Reader, big.NewInt(int64(max)))
	if err != nil {
		panic(err)
	}

	return nBig.Int64()
}

func fromSet(set string, n int) string {
	var sb strings.Builder

	sb.Grow(n)

	k := len(set)

	for i := 0; i < n; i++ {
		c := set[Intn(k)]

		_ = sb.WriteByte(c) // The returned err is always nil.
	}

	return sb.String()
}

// String generates a random string of length n.
func String(n int) string {
	return fromSet(alphabet, n)
}

// Digits generates a string of n uniformly random decimal digits.
// Leading zeros are kept.
func Digits(n int) string {
	return fromSet(digits, n)
}

// CardNumber generates a random 16-digit card number.
func CardNumber() string {
	return Digits(16)
}

// Pin generates a random 4-digit PIN.
func Pin() string {
	return Digits(4)
}

// Name generates a random account holder name.
func Name() string {
	return String(6)
}

// MoneyAmountBetween generates a random amount with two decimal places
// between min and max (inclusive, whole currency units).
func MoneyAmountBetween(min, max int64) string {
	cents := min*100 + Intn(int((max-min)*100+1))
	return decimal.New(cents, -2).StringFixed(2)
}

// Email generates a random email.
func Email() string {
	return fmt.Sprintf("%s@email.com", String(10))
}
