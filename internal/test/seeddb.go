// Package test provides shared test helpers.
package test

import (
	"context"
	"testing"
	"time"

	"github.com/go-petr/pet-ledger/internal/accountrepo"
	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/internal/transactionrepo"
	"github.com/go-petr/pet-ledger/pkg/dbpkg"
	"github.com/shopspring/decimal"
)

// SeedAccount creates a random account with zero balance.
func SeedAccount(t *testing.T, db dbpkg.SQLInterface) domain.Account {
	t.Helper()

	arg := RandomCreateAccountParams(t)

	account, err := accountrepo.NewRepoPGS(db).Create(context.Background(), arg)
	if err != nil {
		t.Fatalf("accountRepo.Create(context.Background(), %+v) returned error: %v", arg, err)
	}

	return account
}

// SeedAccountWithBalance creates a random account and credits balance to it
// without a log entry.
func SeedAccountWithBalance(t *testing.T, db dbpkg.SQLInterface, balance string) domain.Account {
	t.Helper()

	account := SeedAccount(t, db)

	b, err := accountrepo.NewRepoPGS(db).AddBalance(context.Background(), decimal.RequireFromString(balance), account.ID)
	if err != nil {
		t.Fatalf("accountRepo.AddBalance(context.Background(), %v, %v) returned error: %v", balance, account.ID, err)
	}

	account.Balance = b

	return account
}

// SeedTransaction appends a log entry for the account.
func SeedTransaction(t *testing.T, db dbpkg.SQLInterface, accountID int64, kind domain.Kind, amount string) domain.Transaction {
	t.Helper()

	arg := domain.CreateTransactionParams{
		AccountID: accountID,
		Kind:      kind,
		Amount:    decimal.RequireFromString(amount),
		CreatedAt: time.Now().UTC(),
	}

	entry, err := transactionrepo.NewRepoPGS(db).Create(context.Background(), arg)
	if err != nil {
		t.Fatalf("transactionRepo.Create(context.Background(), %+v) returned error: %v", arg, err)
	}

	return entry
}
