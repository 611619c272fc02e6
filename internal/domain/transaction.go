package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidAmount indicates a malformed, non-positive or too precise amount.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrInsufficientFunds indicates that the account balance does not cover the amount.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrBalanceLimit indicates that the resulting balance would exceed the storable maximum.
	ErrBalanceLimit = errors.New("balance limit exceeded")
	// ErrInvalidPin indicates that the supplied PIN does not match the account PIN.
	ErrInvalidPin = errors.New("invalid PIN")
	// ErrTargetNotFound indicates that no account holds the target card number.
	ErrTargetNotFound = errors.New("target account not found")
	// ErrSelfTransfer indicates a transfer whose target is the sender's own card.
	ErrSelfTransfer = errors.New("cannot transfer to the same account")
)

// Kind is the type of a transaction log entry.
type Kind string

// Transaction kinds.
const (
	KindDeposit  Kind = "deposit"
	KindWithdraw Kind = "withdraw"
	KindTransfer Kind = "transfer"
	KindReceived Kind = "received"
)

// Transaction is an immutable transaction log entry.
type Transaction struct {
	ID               int64
	AccountID        int64
	Kind             Kind
	Amount           decimal.Decimal // always positive
	TargetCardNumber string          // transfer and received only
	TransferID       uuid.UUID       // pairs the two legs of a transfer
	CreatedAt        time.Time
}

// CreateTransactionParams is the input data to append a log entry.
type CreateTransactionParams struct {
	AccountID        int64
	Kind             Kind
	Amount           decimal.Decimal
	TargetCardNumber string
	TransferID       uuid.UUID
	CreatedAt        time.Time
}

// TransferParams is the input data for the transfer transaction.
type TransferParams struct {
	FromAccountID    int64
	ToAccountID      int64
	TargetCardNumber string
	Amount           decimal.Decimal
	TransferID       uuid.UUID
	CreatedAt        time.Time
}

// TransferResult is the result of the transfer transaction.
type TransferResult struct {
	FromBalance decimal.Decimal
	ToBalance   decimal.Decimal
	FromEntry   Transaction
	ToEntry     Transaction
}

// BalanceResult is the result of a single account balance change.
type BalanceResult struct {
	Balance decimal.Decimal
	Entry   Transaction
}
