// Package accountrepo manages repository layer of accounts.
package accountrepo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/dbpkg"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// RepoPGS facilitates account repository layer logic.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns account RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

const accountColumns = `id, name, email, card_number, hashed_password, hashed_pin, balance, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanAccount(row scanner) (domain.Account, error) {
	var a domain.Account

	err := row.Scan(
		&a.ID,
		&a.Name,
		&a.Email,
		&a.CardNumber,
		&a.HashedPassword,
		&a.HashedPin,
		&a.Balance,
		&a.CreatedAt,
	)

	return a, err
}

const createQuery = `
INSERT INTO accounts (
    name,
    email,
    card_number,
    hashed_password,
    hashed_pin
) VALUES (
    $1, $2, $3, $4, $5
) RETURNING ` + accountColumns

// Create creates the account with zero balance and then returns it.
//
// Email and card number uniqueness is enforced by the table constraints,
// so of two concurrent registrations with the same email exactly one succeeds.
func (r *RepoPGS) Create(ctx context.Context, arg domain.CreateAccountParams) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, createQuery,
		arg.Name,
		arg.Email,
		arg.CardNumber,
		arg.HashedPassword,
		arg.HashedPin,
	)

	a, err := scanAccount(row)
	if err != nil {
		if ce, ok := dbpkg.AsConstraintError(err); ok && ce.Code == dbpkg.CodeUniqueViolation {
			switch ce.Constraint {
			case "accounts_email_key":
				l.Info().Err(err).Send()
				return a, domain.ErrDuplicateEmail
			case "accounts_card_number_key":
				l.Warn().Err(err).Send()
				return a, domain.ErrDuplicateCardNumber
			}
		}

		l.Error().Err(err).Send()

		return a, errorspkg.ErrStorageUnavailable
	}

	return a, nil
}

const getQuery = `
SELECT ` + accountColumns + `
FROM accounts
WHERE id = $1
`

// Get returns the account with the given id.
func (r *RepoPGS) Get(ctx context.Context, id int64) (domain.Account, error) {
	return r.getOne(ctx, getQuery, id)
}

const getByEmailQuery = `
SELECT ` + accountColumns + `
FROM accounts
WHERE email = $1
`

// GetByEmail returns the account registered with the given email.
func (r *RepoPGS) GetByEmail(ctx context.Context, email string) (domain.Account, error) {
	return r.getOne(ctx, getByEmailQuery, email)
}

const getByCardNumberQuery = `
SELECT ` + accountColumns + `
FROM accounts
WHERE card_number = $1
`

// GetByCardNumber returns the account holding the given card number.
func (r *RepoPGS) GetByCardNumber(ctx context.Context, cardNumber string) (domain.Account, error) {
	return r.getOne(ctx, getByCardNumberQuery, cardNumber)
}

func (r *RepoPGS) getOne(ctx context.Context, query string, arg any) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	a, err := scanAccount(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			l.Info().Err(err).Send()
			return a, domain.ErrAccountNotFound
		}

		l.Error().Err(err).Send()

		return a, errorspkg.ErrStorageUnavailable
	}

	return a, nil
}

const listQuery = `
SELECT ` + accountColumns + `
FROM accounts
ORDER BY id
`

// List returns all accounts ordered by id.
func (r *RepoPGS) List(ctx context.Context) ([]domain.Account, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, listQuery)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrStorageUnavailable
	}
	defer rows.Close()

	items := []domain.Account{}

	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrStorageUnavailable
		}

		items = append(items, a)
	}

	if err := rows.Close(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrStorageUnavailable
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrStorageUnavailable
	}

	return items, nil
}

const addBalanceQuery = `
UPDATE accounts
SET balance = balance + $1
WHERE id = $2
RETURNING balance
`

// AddBalance changes the account's balance by delta and returns the new balance.
//
// The read-modify-write happens in a single statement holding the row lock;
// a result below zero violates accounts_balance_check and one above the
// column precision overflows; in both cases nothing is written.
func (r *RepoPGS) AddBalance(ctx context.Context, delta decimal.Decimal, id int64) (decimal.Decimal, error) {
	l := zerolog.Ctx(ctx)

	var balance decimal.Decimal

	err := r.db.QueryRowContext(ctx, addBalanceQuery, delta, id).Scan(&balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			l.Info().Err(err).Send()
			return balance, domain.ErrAccountNotFound
		}

		if ce, ok := dbpkg.AsConstraintError(err); ok {
			switch {
			case ce.Constraint == "accounts_balance_check":
				l.Info().Err(err).Send()
				return balance, domain.ErrInsufficientFunds
			case ce.Code == dbpkg.CodeNumericOutOfRange:
				l.Info().Err(err).Send()
				return balance, domain.ErrBalanceLimit
			}
		}

		l.Error().Err(err).Send()

		return balance, errorspkg.ErrStorageUnavailable
	}

	return balance, nil
}
