package test

import (
	"testing"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/randompkg"
	"golang.org/x/crypto/bcrypt"
)

// Credentials of every account created by the helpers in this package.
const (
	Password = "secret-password"
	Pin      = "1234"
)

// RandomCreateAccountParams returns params for a random account holding
// Password and Pin, hashed at the lowest bcrypt cost.
func RandomCreateAccountParams(t *testing.T) domain.CreateAccountParams {
	t.Helper()

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt.GenerateFromPassword(password) returned error: %v", err)
	}

	hashedPin, err := bcrypt.GenerateFromPassword([]byte(Pin), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt.GenerateFromPassword(pin) returned error: %v", err)
	}

	return domain.CreateAccountParams{
		Name:           randompkg.Name(),
		Email:          randompkg.Email(),
		CardNumber:     randompkg.CardNumber(),
		HashedPassword: hashedPassword,
		HashedPin:      hashedPin,
	}
}
