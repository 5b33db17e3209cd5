package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/crm-accounts/internal/domain/entity"
	repo "github.com/oksasatya/crm-accounts/internal/domain/repository"
)

func TestListWhereNoFilter(t *testing.T) {
	where, args := listWhere(repo.AccountFilter{})
	assert.Empty(t, where)
	assert.Empty(t, args)
}

func TestListWhereAllFilters(t *testing.T) {
	active := true
	where, args := listWhere(repo.AccountFilter{Search: " dup_ ", Role: entity.RoleEtudiant, IsActive: &active})

	assert.Equal(t,
		" WHERE (first_name ILIKE $1 OR last_name ILIKE $1 OR email ILIKE $1 OR username ILIKE $1) AND role = $2 AND is_active = $3",
		where)
	assert.Equal(t, []any{`%dup\_%`, "etudiant", true}, args)
}

func TestTranslateUniqueViolation(t *testing.T) {
	cases := map[string]string{
		"users_email_key":       "email",
		"users_username_key":    "username",
		"issued_usernames_pkey": "username",
	}
	for constraint, field := range cases {
		err := translate(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: constraint}))
		var ce *repo.ConflictError
		require.True(t, errors.As(err, &ce), constraint)
		assert.Equal(t, field, ce.Field)
		assert.ErrorIs(t, err, repo.ErrConflict)
	}
}

func TestTranslatePassesOtherErrors(t *testing.T) {
	other := &pgconn.PgError{Code: "23503"}
	assert.Same(t, other, translate(other))
	assert.False(t, IsUniqueViolation(other))
	assert.True(t, IsUniqueViolation(&pgconn.PgError{Code: "23505"}))
}
