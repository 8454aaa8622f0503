package db

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL error codes the repositories react to.
const (
	PgErrUniqueViolation = "23505" // unique_violation
	PgErrDuplicateTable  = "42P07" // duplicate_table, also raised for an existing index
	PgErrUndefinedObject = "42704" // undefined_object
)

// IsUniqueViolation reports whether err is a unique constraint violation.
func IsUniqueViolation(err error) bool {
	return hasCode(err, PgErrUniqueViolation)
}

// IsAlreadyExists reports whether err was raised because a relation such as
// an index already exists.
func IsAlreadyExists(err error) bool {
	return hasCode(err, PgErrDuplicateTable)
}

// IsUndefinedObject reports whether err refers to a missing constraint or object.
func IsUndefinedObject(err error) bool {
	return hasCode(err, PgErrUndefinedObject)
}

func hasCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == code
	}
	return false
}
