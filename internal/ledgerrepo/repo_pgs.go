// Package ledgerrepo manages repository layer of the ledger.
package ledgerrepo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-petr/pet-ledger/internal/accountrepo"
	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/internal/transactionrepo"
	"github.com/go-petr/pet-ledger/pkg/dbpkg"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// RepoPGS facilitates ledger repository layer logic.
type RepoPGS struct {
	conn dbpkg.TxBeginner
}

// NewRepoPGS returns ledger RepoPGS with connection to start transactions.
func NewRepoPGS(conn dbpkg.TxBeginner) *RepoPGS {
	return &RepoPGS{
		conn: conn,
	}
}

const getBalanceQuery = `
SELECT balance
FROM accounts
WHERE id = $1
`

// GetBalance returns the current balance of the account.
func (r *RepoPGS) GetBalance(ctx context.Context, accountID int64) (decimal.Decimal, error) {
	l := zerolog.Ctx(ctx)

	var balance decimal.Decimal

	err := r.conn.QueryRowContext(ctx, getBalanceQuery, accountID).Scan(&balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			l.Info().Err(err).Send()
			return balance, domain.ErrAccountNotFound
		}

		l.Error().Err(err).Send()

		return balance, errorspkg.ErrStorageUnavailable
	}

	return balance, nil
}

// History returns the account's log entries, most recent first.
func (r *RepoPGS) History(ctx context.Context, accountID int64) ([]domain.Transaction, error) {
	return transactionrepo.NewRepoPGS(r.conn).List(ctx, accountID)
}

// ApplyDelta changes the balance by delta and appends the entry within a single
// db transaction. A negative result fails with domain.ErrInsufficientFunds and
// leaves both the balance and the log untouched.
func (r *RepoPGS) ApplyDelta(ctx context.Context, accountID int64, delta decimal.Decimal,
	entry domain.CreateTransactionParams,
) (domain.BalanceResult, error) {
	var result domain.BalanceResult

	err := r.execTx(ctx, func(accounts *accountrepo.RepoPGS, log *transactionrepo.RepoPGS) error {
		var err error

		result.Balance, err = accounts.AddBalance(ctx, delta, accountID)
		if err != nil {
			return err
		}

		result.Entry, err = log.Create(ctx, entry)

		return err
	})

	return result, err
}

// Transfer moves money between two accounts.
//
// Both balance updates and both log entries happen within a single db transaction.
func (r *RepoPGS) Transfer(ctx context.Context, arg domain.TransferParams) (domain.TransferResult, error) {
	var result domain.TransferResult

	err := r.execTx(ctx, func(accounts *accountrepo.RepoPGS, log *transactionrepo.RepoPGS) error {
		var err error

		// To avoid deadlocks lock rows in consistent id order
		if arg.FromAccountID < arg.ToAccountID {
			result.FromBalance, result.ToBalance, err = addBalances(ctx, accounts,
				arg.FromAccountID, arg.Amount.Neg(), arg.ToAccountID, arg.Amount)
		} else {
			result.ToBalance, result.FromBalance, err = addBalances(ctx, accounts,
				arg.ToAccountID, arg.Amount, arg.FromAccountID, arg.Amount.Neg())
		}

		if err != nil {
			return err
		}

		result.FromEntry, err = log.Create(ctx, domain.CreateTransactionParams{
			AccountID:        arg.FromAccountID,
			Kind:             domain.KindTransfer,
			Amount:           arg.Amount,
			TargetCardNumber: arg.TargetCardNumber,
			TransferID:       arg.TransferID,
			CreatedAt:        arg.CreatedAt,
		})
		if err != nil {
			return err
		}

		result.ToEntry, err = log.Create(ctx, domain.CreateTransactionParams{
			AccountID:        arg.ToAccountID,
			Kind:             domain.KindReceived,
			Amount:           arg.Amount,
			TargetCardNumber: arg.TargetCardNumber,
			TransferID:       arg.TransferID,
			CreatedAt:        arg.CreatedAt,
		})

		return err
	})

	return result, err
}

func addBalances(ctx context.Context, r *accountrepo.RepoPGS,
	id1 int64, delta1 decimal.Decimal, id2 int64, delta2 decimal.Decimal,
) (decimal.Decimal, decimal.Decimal, error) {
	balance1, err := r.AddBalance(ctx, delta1, id1)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	balance2, err := r.AddBalance(ctx, delta2, id2)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	return balance1, balance2, nil
}

// execTx runs fn with repositories bound to one db transaction and commits
// only if fn succeeds.
func (r *RepoPGS) execTx(ctx context.Context,
	fn func(accounts *accountrepo.RepoPGS, log *transactionrepo.RepoPGS) error,
) error {
	l := zerolog.Ctx(ctx)

	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		l.Error().Err(err).Send()
		return errorspkg.ErrStorageUnavailable
	}

	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			l.Error().Err(err).Send()
		}
	}()

	if err := fn(accountrepo.NewRepoPGS(tx), transactionrepo.NewRepoPGS(tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		l.Error().Err(err).Send()
		return errorspkg.ErrStorageUnavailable
	}

	return nil
}
