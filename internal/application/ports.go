package application

import (
	"context"
	"io"
	"time"

	"github.com/oksasatya/crm-accounts/internal/domain/entity"
)

// PasswordHasher is the one-way credential function.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Compare(hash, plain string) bool
}

// SessionRecord is what the session store keeps per account.
// One live session per account; SessionID rotates on login, refresh and password change.
type SessionRecord struct {
	AccountID int64
	SessionID string
	Email     string
	Role      entity.Role
	CreatedAt time.Time
}

type SessionStore interface {
	Save(ctx context.Context, rec SessionRecord, ttl time.Duration) error
	// Get returns ErrSessionNotFound when no live session exists.
	Get(ctx context.Context, accountID int64) (SessionRecord, error)
	Delete(ctx context.Context, accountID int64) error
}

// SessionManager lets the account lifecycle rotate or revoke sessions
// without depending on token mechanics.
type SessionManager interface {
	IssueSession(ctx context.Context, a *entity.Account) (*Session, error)
	RevokeSessions(ctx context.Context, accountID int64) error
}

// AccountIndexer mirrors accounts into a search backend.
type AccountIndexer interface {
	Index(ctx context.Context, a *entity.Account) error
	Remove(ctx context.Context, id int64) error
	Search(ctx context.Context, q string, size int) ([]AccountHit, error)
}

// AccountHit is a search result document.
type AccountHit struct {
	ID        int64       `json:"id"`
	Username  string      `json:"username"`
	Email     string      `json:"email"`
	FirstName string      `json:"first_name"`
	LastName  string      `json:"last_name"`
	Role      entity.Role `json:"role"`
	IsActive  bool        `json:"is_active"`
}

// EventPublisher publishes JSON messages to the broker.
type EventPublisher interface {
	PublishJSON(ctx context.Context, v any) error
}

// AvatarStorage stores profile pictures and returns their public URL.
type AvatarStorage interface {
	Upload(ctx context.Context, accountID int64, r io.Reader, filename, contentType string) (string, error)
}
