package repository

import (
	"context"
	"errors"

	"github.com/oksasatya/crm-accounts/internal/domain/entity"
)

var (
	// ErrNotFound is returned when no account matches the lookup.
	ErrNotFound = errors.New("account not found")
	// ErrConflict is returned when an insert or update violates a unique constraint.
	ErrConflict = errors.New("account conflicts with an existing record")
)

// ConflictError names the column whose uniqueness was violated ("email" or "username").
type ConflictError struct {
	Field string
}

func (e *ConflictError) Error() string {
	return "duplicate " + e.Field
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// AccountFilter narrows List. Zero values mean "no filter".
// Results are always ordered by ascending id.
type AccountFilter struct {
	Search   string // case-insensitive substring over first/last name, email, username
	Role     entity.Role
	IsActive *bool
	Limit    int // 0 = no limit
	Offset   int
}

// AccountRepository defines the persistence operations for accounts.
type AccountRepository interface {
	FindByID(ctx context.Context, id int64) (*entity.Account, error)
	FindByEmail(ctx context.Context, email string) (*entity.Account, error)
	// ExistsByUsername covers every username ever issued, including deleted accounts.
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Insert(ctx context.Context, a *entity.Account) (*entity.Account, error)
	Update(ctx context.Context, a *entity.Account) (*entity.Account, error)
	Delete(ctx context.Context, id int64) error
	// List returns one page of matching accounts and the total match count.
	List(ctx context.Context, f AccountFilter) ([]*entity.Account, int, error)
}
