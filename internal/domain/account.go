// Package domain provides definitions of all entities.
package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrAccountNotFound indicates that the account is not found.
	ErrAccountNotFound = errors.New("account not found")
	// ErrDuplicateEmail indicates that an account with the given email already exists.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrDuplicateCardNumber indicates that the card number is already assigned.
	ErrDuplicateCardNumber = errors.New("card number already assigned")
	// ErrCardNumberExhausted indicates that no free card number was found within the retry budget.
	ErrCardNumberExhausted = errors.New("could not allocate a free card number")
	// ErrInvalidCredentials indicates an unknown email or a wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrInvalidPinFormat indicates that the PIN is not exactly four digits.
	ErrInvalidPinFormat = errors.New("PIN must be exactly 4 digits")
)

// Account holds the identity, credentials and balance of a card holder.
type Account struct {
	ID             int64
	Name           string
	Email          string
	CardNumber     string
	HashedPassword []byte
	HashedPin      []byte
	Balance        decimal.Decimal
	CreatedAt      time.Time
}

// CreateAccountParams is the input data to create an account.
// The balance of a new account is always zero.
type CreateAccountParams struct {
	Name           string
	Email          string
	CardNumber     string
	HashedPassword []byte
	HashedPin      []byte
}

// AccountPublic is Account data excluding password and PIN hashes.
type AccountPublic struct {
	ID         int64           `json:"id"`
	Name       string          `json:"name"`
	Email      string          `json:"email"`
	CardNumber string          `json:"card_number"`
	Balance    decimal.Decimal `json:"balance"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Public returns the account with sensitive data removed.
func (a Account) Public() AccountPublic {
	return AccountPublic{
		ID:         a.ID,
		Name:       a.Name,
		Email:      a.Email,
		CardNumber: a.CardNumber,
		Balance:    a.Balance,
		CreatedAt:  a.CreatedAt,
	}
}
