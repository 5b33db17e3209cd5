package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/crm-accounts/internal/domain/entity"
	repo "github.com/oksasatya/crm-accounts/internal/domain/repository"
)

const accountColumns = `id, username, email, first_name, last_name, phone, role, password_hash,
	is_active, email_verified, is_superuser, avatar_url, created_at, updated_at`

type AccountRepository struct {
	pool *pgxpool.Pool
}

var _ repo.AccountRepository = (*AccountRepository)(nil)

func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

func scanAccount(row pgx.Row) (*entity.Account, error) {
	a := &entity.Account{}
	var role string
	err := row.Scan(&a.ID, &a.Username, &a.Email, &a.FirstName, &a.LastName, &a.Phone, &role,
		&a.PasswordHash, &a.IsActive, &a.EmailVerified, &a.IsSuperuser, &a.AvatarURL,
		&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		return nil, err
	}
	a.Role = entity.Role(role)
	return a, nil
}

func (r *AccountRepository) FindByID(ctx context.Context, id int64) (*entity.Account, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM users WHERE id = $1`, id)
	return scanAccount(row)
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*entity.Account, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM users WHERE email = $1`, email)
	return scanAccount(row)
}

func (r *AccountRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM issued_usernames WHERE username = $1)`, username).Scan(&exists)
	return exists, err
}

func (r *AccountRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists)
	return exists, err
}

// Insert reserves the username and creates the row in one transaction.
func (r *AccountRepository) Insert(ctx context.Context, a *entity.Account) (*entity.Account, error) {
	out := *a
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `INSERT INTO issued_usernames (username) VALUES ($1)`, a.Username); err != nil {
			return err
		}
		return tx.QueryRow(ctx, `
			INSERT INTO users (username, email, first_name, last_name, phone, role, password_hash,
				is_active, email_verified, is_superuser, avatar_url, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
			RETURNING id, created_at, updated_at
		`, a.Username, a.Email, a.FirstName, a.LastName, a.Phone, string(a.Role), a.PasswordHash,
			a.IsActive, a.EmailVerified, a.IsSuperuser, a.AvatarURL, a.CreatedAt, a.UpdatedAt,
		).Scan(&out.ID, &out.CreatedAt, &out.UpdatedAt)
	})
	if err != nil {
		return nil, translate(err)
	}
	return &out, nil
}

// Update writes every mutable column. Username and created_at never change.
func (r *AccountRepository) Update(ctx context.Context, a *entity.Account) (*entity.Account, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE users SET
			email = $2, first_name = $3, last_name = $4, phone = $5, role = $6,
			password_hash = $7, is_active = $8, email_verified = $9, is_superuser = $10,
			avatar_url = $11, updated_at = $12
		WHERE id = $1
		RETURNING `+accountColumns,
		a.ID, a.Email, a.FirstName, a.LastName, a.Phone, string(a.Role),
		a.PasswordHash, a.IsActive, a.EmailVerified, a.IsSuperuser, a.AvatarURL, a.UpdatedAt)
	out, err := scanAccount(row)
	if err != nil {
		return nil, translate(err)
	}
	return out, nil
}

func (r *AccountRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *AccountRepository) List(ctx context.Context, f repo.AccountFilter) ([]*entity.Account, int, error) {
	where, args := listWhere(f)

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	q := `SELECT ` + accountColumns + ` FROM users` + where + ` ORDER BY id ASC`
	if f.Limit > 0 {
		args = append(args, f.Limit, f.Offset)
		q += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	out := make([]*entity.Account, 0)
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// listWhere builds the WHERE clause of List with positional arguments.
func listWhere(f repo.AccountFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if s := strings.TrimSpace(f.Search); s != "" {
		args = append(args, "%"+escapeLike(s)+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf(
			"(first_name ILIKE $%[1]d OR last_name ILIKE $%[1]d OR email ILIKE $%[1]d OR username ILIKE $%[1]d)", n))
	}
	if f.Role != "" {
		args = append(args, string(f.Role))
		conds = append(conds, fmt.Sprintf("role = $%d", len(args)))
	}
	if f.IsActive != nil {
		args = append(args, *f.IsActive)
		conds = append(conds, fmt.Sprintf("is_active = $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
