package dbpkg

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// SQLSTATE codes the repositories translate.
const (
	CodeNumericOutOfRange   = "22003"
	CodeForeignKeyViolation = "23503"
	CodeUniqueViolation     = "23505"
	CodeCheckViolation      = "23514"
)

// ConstraintError is a driver independent view of a statement error.
type ConstraintError struct {
	Code       string
	Constraint string
}

// AsConstraintError extracts the SQLSTATE and the violated constraint from a lib/pq or pgx error.
func AsConstraintError(err error) (ConstraintError, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return ConstraintError{Code: string(pqErr.Code), Constraint: pqErr.Constraint}, true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return ConstraintError{Code: pgErr.Code, Constraint: pgErr.ConstraintName}, true
	}

	return ConstraintError{}, false
}
