// Package transactionrepo manages repository layer of the transaction log.
package transactionrepo

import (
	"context"
	"database/sql"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/dbpkg"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RepoPGS facilitates transaction log repository layer logic.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns transaction log RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row scanner) (domain.Transaction, error) {
	var (
		t          domain.Transaction
		kind       string
		target     sql.NullString
		transferID uuid.NullUUID
	)

	err := row.Scan(
		&t.ID,
		&t.AccountID,
		&kind,
		&t.Amount,
		&target,
		&transferID,
		&t.CreatedAt,
	)

	t.Kind = domain.Kind(kind)
	t.TargetCardNumber = target.String
	t.TransferID = transferID.UUID

	return t, err
}

const createQuery = `
INSERT INTO
    transactions (account_id, kind, amount, target_card_number, transfer_id, created_at)
VALUES
    ($1, $2, $3, $4, $5, $6)
RETURNING id, account_id, kind, amount, target_card_number, transfer_id, created_at
`

// Create appends the entry to the log and then returns it.
func (r *RepoPGS) Create(ctx context.Context, arg domain.CreateTransactionParams) (domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	target := sql.NullString{String: arg.TargetCardNumber, Valid: arg.TargetCardNumber != ""}
	transferID := uuid.NullUUID{UUID: arg.TransferID, Valid: arg.TransferID != uuid.Nil}

	row := r.db.QueryRowContext(ctx, createQuery,
		arg.AccountID,
		string(arg.Kind),
		arg.Amount,
		target,
		transferID,
		arg.CreatedAt,
	)

	t, err := scanTransaction(row)
	if err != nil {
		l.Error().Err(err).Msgf("Create(ctx, %+v)", arg)

		if ce, ok := dbpkg.AsConstraintError(err); ok {
			switch ce.Constraint {
			case "transactions_account_id_fkey":
				return t, domain.ErrAccountNotFound
			case "transactions_amount_check":
				return t, domain.ErrInvalidAmount
			}
		}

		return t, errorspkg.ErrStorageUnavailable
	}

	return t, nil
}

const listQuery = `
SELECT id, account_id, kind, amount, target_card_number, transfer_id, created_at
FROM transactions
WHERE account_id = $1
ORDER BY id DESC
`

// List returns the log of the given account, most recent first.
func (r *RepoPGS) List(ctx context.Context, accountID int64) ([]domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, listQuery, accountID)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrStorageUnavailable
	}
	defer rows.Close()

	items := []domain.Transaction{}

	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrStorageUnavailable
		}

		items = append(items, t)
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
