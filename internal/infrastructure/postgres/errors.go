package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	repo "github.com/oksasatya/crm-accounts/internal/domain/repository"
)

const uniqueViolation = "23505"

// constraintFields maps unique constraints to the account field they protect.
var constraintFields = map[string]string{
	"users_username_key":    "username",
	"issued_usernames_pkey": "username",
	"users_email_key":       "email",
}

// IsUniqueViolation reports whether err is a PostgreSQL unique-key violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// translate maps unique violations to *repository.ConflictError and leaves
// every other error untouched.
func translate(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return err
	}
	field, ok := constraintFields[pgErr.ConstraintName]
	if !ok {
		field = pgErr.ConstraintName
	}
	return &repo.ConflictError{Field: field}
}
