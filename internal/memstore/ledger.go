package memstore

import (
	"context"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/moneypkg"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// LedgerRepo is the in-memory ledger store.
//
// Every mutation holds the mutex of each account it touches, taken in
// ascending id order, so operations on unrelated accounts run in parallel.
type LedgerRepo struct {
	s *Store
}

// GetBalance returns the current balance of the account.
func (r *LedgerRepo) GetBalance(_ context.Context, accountID int64) (decimal.Decimal, error) {
	e, ok := r.s.entry(accountID)
	if !ok {
		return decimal.Zero, domain.ErrAccountNotFound
	}

	return e.snapshot().Balance, nil
}

// ApplyDelta changes the balance by delta and appends the entry as one atomic unit.
func (r *LedgerRepo) ApplyDelta(ctx context.Context, accountID int64, delta decimal.Decimal,
	entry domain.CreateTransactionParams,
) (domain.BalanceResult, error) {
	var result domain.BalanceResult

	e, ok := r.s.entry(accountID)
	if !ok {
		return result, domain.ErrAccountNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	balance := e.account.Balance.Add(delta)
	if balance.IsNegative() {
		zerolog.Ctx(ctx).Info().Int64("account_id", accountID).Msg("insufficient funds")
		return result, domain.ErrInsufficientFunds
	}

	if moneypkg.Exceeds(balance) {
		zerolog.Ctx(ctx).Info().Int64("account_id", accountID).Msg("balance limit exceeded")
		return result, domain.ErrBalanceLimit
	}

	e.account.Balance = balance

	result.Balance = balance
	result.Entry = r.s.appendLog(entry)[0]

	return result, nil
}

// Transfer moves money between two accounts as one atomic unit.
func (r *LedgerRepo) Transfer(ctx context.Context, arg domain.TransferParams) (domain.TransferResult, error) {
	var result domain.TransferResult

	if arg.FromAccountID == arg.ToAccountID {
		return result, domain.ErrSelfTransfer
	}

	from, ok := r.s.entry(arg.FromAccountID)
	if !ok {
		return result, domain.ErrAccountNotFound
	}

	to, ok := r.s.entry(arg.ToAccountID)
	if !ok {
		return result, domain.ErrAccountNotFound
	}

	first, second := from, to
	if arg.ToAccountID < arg.FromAccountID {
		first, second = to, from
	}

	first.mu.Lock()
	defer first.mu.Unlock()

	second.mu.Lock()
	defer second.mu.Unlock()

	fromBalance := from.account.Balance.Sub(arg.Amount)
	if fromBalance.IsNegative() {
		zerolog.Ctx(ctx).Info().Int64("account_id", arg.FromAccountID).Msg("insufficient funds")
		return result, domain.ErrInsufficientFunds
	}

	toBalance := to.account.Balance.Add(arg.Amount)
	if moneypkg.Exceeds(toBalance) {
		zerolog.Ctx(ctx).Info().Int64("account_id", arg.ToAccountID).Msg("balance limit exceeded")
		return result, domain.ErrBalanceLimit
	}

	from.account.Balance = fromBalance
	to.account.Balance = toBalance

	entries := r.s.appendLog(
		domain.CreateTransactionParams{
			AccountID:        arg.FromAccountID,
			Kind:             domain.KindTransfer,
			Amount:           arg.Amount,
			TargetCardNumber: arg.TargetCardNumber,
			TransferID:       arg.TransferID,
			CreatedAt:        arg.CreatedAt,
		},
		domain.CreateTransactionParams{
			AccountID:        arg.ToAccountID,
			Kind:             domain.KindReceived,
			Amount:           arg.Amount,
			TargetCardNumber: arg.TargetCardNumber,
			TransferID:       arg.TransferID,
			CreatedAt:        arg.CreatedAt,
		},
	)

	result.FromBalance = fromBalance
	result.ToBalance = toBalance
	result.FromEntry = entries[0]
	result.ToEntry = entries[1]

	return result, nil
}

// History returns the account's log entries, most recent first.
func (r *LedgerRepo) History(_ context.Context, accountID int64) ([]domain.Transaction, error) {
	r.s.logMu.Lock()
	defer r.s.logMu.Unlock()

	entries := r.s.log[accountID]
	items := make([]domain.Transaction, 0, len(entries))

	for i := len(entries) - 1; i >= 0; i-- {
		items = append(items, entries[i])
	}

	return items, nil
}
