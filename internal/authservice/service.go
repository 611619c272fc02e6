// Package authservice hashes and verifies account passwords and PINs.
package authservice

import (
	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/passpkg"
)

// PinLength is the number of digits in a PIN.
const PinLength = 4

// HashPassword returns a salted hash of the password.
func HashPassword(password string) ([]byte, error) {
	return passpkg.Hash(password)
}

// VerifyPassword reports whether password matches the stored hash.
func VerifyPassword(password string, hash []byte) bool {
	return passpkg.Check(password, hash) == nil
}

// ValidPin reports whether pin is exactly four ASCII digits.
func ValidPin(pin string) bool {
	if len(pin) != PinLength {
		return false
	}

	for i := 0; i < len(pin); i++ {
		if pin[i] < '0' || pin[i] > '9' {
			return false
		}
	}

	return true
}

// HashPin validates the PIN format and returns its salted hash.
func HashPin(pin string) ([]byte, error) {
	if !ValidPin(pin) {
		return nil, domain.ErrInvalidPinFormat
	}

	return passpkg.Hash(pin)
}

// VerifyPin reports whether the supplied PIN matches the stored hash.
// A malformed PIN never matches.
func VerifyPin(supplied string, hash []byte) bool {
	if !ValidPin(supplied) {
		return false
	}

	return passpkg.Check(supplied, hash) == nil
}
