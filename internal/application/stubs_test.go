package application

import (
	"context"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/oksasatya/crm-accounts/internal/domain/entity"
	repo "github.com/oksasatya/crm-accounts/internal/domain/repository"
)

type plainHasher struct{}

func (plainHasher) Hash(p string) (string, error) { return "hashed:" + p, nil }
func (plainHasher) Compare(h, p string) bool      { return h == "hashed:"+p }

type memSessions struct {
	mu   sync.Mutex
	recs map[int64]SessionRecord
}

func newMemSessions() *memSessions { return &memSessions{recs: map[int64]SessionRecord{}} }

func (m *memSessions) Save(_ context.Context, rec SessionRecord, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recs[rec.AccountID] = rec
	return nil
}

func (m *memSessions) Get(_ context.Context, id int64) (SessionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.recs[id]
	if !ok {
		return SessionRecord{}, ErrSessionNotFound
	}
	return rec, nil
}

func (m *memSessions) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.recs, id)
	return nil
}

type recordingSessions struct {
	issued  []int64
	revoked []int64
}

func (r *recordingSessions) IssueSession(_ context.Context, a *entity.Account) (*Session, error) {
	r.issued = append(r.issued, a.ID)
	return &Session{AccountID: a.ID, SessionID: "sid"}, nil
}

func (r *recordingSessions) RevokeSessions(_ context.Context, id int64) error {
	r.revoked = append(r.revoked, id)
	return nil
}

type recordingPublisher struct {
	msgs []any
}

func (p *recordingPublisher) PublishJSON(_ context.Context, v any) error {
	p.msgs = append(p.msgs, v)
	return nil
}

type recordingIndexer struct {
	indexed []int64
	removed []int64
	hits    []AccountHit
	err     error
}

func (i *recordingIndexer) Index(_ context.Context, a *entity.Account) error {
	i.indexed = append(i.indexed, a.ID)
	return nil
}

func (i *recordingIndexer) Remove(_ context.Context, id int64) error {
	i.removed = append(i.removed, id)
	return nil
}

func (i *recordingIndexer) Search(_ context.Context, _ string, _ int) ([]AccountHit, error) {
	return i.hits, i.err
}

type memAvatars struct{}

func (memAvatars) Upload(_ context.Context, id int64, _ io.Reader, filename, _ string) (string, error) {
	return "https://cdn.test/" + strings.ToLower(filename), nil
}

// racingRepo reports a username as free but rejects the first n inserts as if
// another request claimed it first.
type racingRepo struct {
	repo.AccountRepository
	failures int
	inserts  int
}

func (r *racingRepo) Insert(ctx context.Context, a *entity.Account) (*entity.Account, error) {
	r.inserts++
	if r.inserts <= r.failures {
		return nil, &repo.ConflictError{Field: "username"}
	}
	return r.AccountRepository.Insert(ctx, a)
}
