// Package memory is an in-process AccountRepository with the same uniqueness
// and ordering guarantees as the PostgreSQL one.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/oksasatya/crm-accounts/internal/domain/entity"
	repo "github.com/oksasatya/crm-accounts/internal/domain/repository"
)

type AccountRepository struct {
	mu        sync.RWMutex
	nextID    int64
	byID      map[int64]*entity.Account
	usernames map[string]struct{}
}

var _ repo.AccountRepository = (*AccountRepository)(nil)

func NewAccountRepository() *AccountRepository {
	return &AccountRepository{
		byID:      make(map[int64]*entity.Account),
		usernames: make(map[string]struct{}),
	}
}

func clone(a *entity.Account) *entity.Account {
	c := *a
	return &c
}

func (r *AccountRepository) FindByID(_ context.Context, id int64) (*entity.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.byID[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return clone(a), nil
}

func (r *AccountRepository) FindByEmail(_ context.Context, email string) (*entity.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if a := r.emailOwner(email); a != nil {
		return clone(a), nil
	}
	return nil, repo.ErrNotFound
}

func (r *AccountRepository) emailOwner(email string) *entity.Account {
	for _, a := range r.byID {
		if a.Email == email {
			return a
		}
	}
	return nil
}

func (r *AccountRepository) ExistsByUsername(_ context.Context, username string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.usernames[username]
	return ok, nil
}

func (r *AccountRepository) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.emailOwner(email) != nil, nil
}

func (r *AccountRepository) Insert(_ context.Context, a *entity.Account) (*entity.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.usernames[a.Username]; taken {
		return nil, &repo.ConflictError{Field: "username"}
	}
	if r.emailOwner(a.Email) != nil {
		return nil, &repo.ConflictError{Field: "email"}
	}
	r.nextID++
	stored := clone(a)
	stored.ID = r.nextID
	r.byID[stored.ID] = stored
	r.usernames[stored.Username] = struct{}{}
	return clone(stored), nil
}

func (r *AccountRepository) Update(_ context.Context, a *entity.Account) (*entity.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.byID[a.ID]
	if !ok {
		return nil, repo.ErrNotFound
	}
	if owner := r.emailOwner(a.Email); owner != nil && owner.ID != a.ID {
		return nil, &repo.ConflictError{Field: "email"}
	}
	next := clone(a)
	next.Username = cur.Username
	next.CreatedAt = cur.CreatedAt
	r.byID[a.ID] = next
	return clone(next), nil
}

func (r *AccountRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return repo.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *AccountRepository) List(_ context.Context, f repo.AccountFilter) ([]*entity.Account, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	search := strings.ToLower(strings.TrimSpace(f.Search))
	matched := make([]*entity.Account, 0, len(r.byID))
	for _, a := range r.byID {
		if f.Role != "" && a.Role != f.Role {
			continue
		}
		if f.IsActive != nil && a.IsActive != *f.IsActive {
			continue
		}
		if search != "" && !matchesSearch(a, search) {
			continue
		}
		matched = append(matched, a)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	total := len(matched)
	start, end := min(max(f.Offset, 0), total), total
	if f.Limit > 0 && start+f.Limit < end {
		end = start + f.Limit
	}
	out := make([]*entity.Account, 0, end-start)
	for _, a := range matched[start:end] {
		out = append(out, clone(a))
	}
	return out, total, nil
}

func matchesSearch(a *entity.Account, needle string) bool {
	for _, v := range []string{a.FirstName, a.LastName, a.Email, a.Username} {
		if strings.Contains(strings.ToLower(v), needle) {
			return true
		}
	}
	return false
}
