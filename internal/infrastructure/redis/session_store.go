package redis

import (
	"context"
	"errors"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/oksasatya/crm-accounts/internal/application"
	"github.com/oksasatya/crm-accounts/internal/domain/entity"
)

// SessionStore keeps one hash per account at user:session:<id>.
type SessionStore struct {
	rdb *goredis.Client
}

var _ application.SessionStore = (*SessionStore)(nil)

func NewSessionStore(rdb *goredis.Client) *SessionStore {
	return &SessionStore{rdb: rdb}
}

func sessionKey(accountID int64) string {
	return "user:session:" + strconv.FormatInt(accountID, 10)
}

// Save replaces the stored session and resets its TTL.
func (s *SessionStore) Save(ctx context.Context, rec application.SessionRecord, ttl time.Duration) error {
	key := sessionKey(rec.AccountID)
	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, map[string]any{
		"user_id":    rec.AccountID,
		"sid":        rec.SessionID,
		"email":      rec.Email,
		"role":       string(rec.Role),
		"logged_in":  true,
		"created_at": rec.CreatedAt.UTC().Format(time.RFC3339Nano),
	})
	pipe.Expire(ctx, key, ttl)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *SessionStore) Get(ctx context.Context, accountID int64) (application.SessionRecord, error) {
	data, err := s.rdb.HGetAll(ctx, sessionKey(accountID)).Result()
	if err != nil {
		return application.SessionRecord{}, err
	}
	if len(data) == 0 || data["sid"] == "" {
		return application.SessionRecord{}, application.ErrSessionNotFound
	}
	rec := application.SessionRecord{
		AccountID: accountID,
		SessionID: data["sid"],
		Email:     data["email"],
		Role:      entity.Role(data["role"]),
	}
	if t, err := time.Parse(time.RFC3339Nano, data["created_at"]); err == nil {
		rec.CreatedAt = t
	}
	return rec, nil
}

func (s *SessionStore) Delete(ctx context.Context, accountID int64) error {
	err := s.rdb.Del(ctx, sessionKey(accountID)).Err()
	if errors.Is(err, goredis.Nil) {
		return nil
	}
	return err
}
