// AngelaMos | 2026
// repository.go

package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/carterperez-dev/jobtracker/internal/core"
)

const userColumns = `
	id, email, password_hash, name, role, token_version,
	created_at, updated_at, deleted_at`

type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	UpdateName(ctx context.Context, id, name string) (*User, error)
	UpdateRole(ctx context.Context, id, role string) (*User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	IncrementTokenVersion(ctx context.Context, id string) error
	Deactivate(ctx context.Context, id string) error
	List(ctx context.Context, params ListParams) ([]User, int, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, u *User) error {
	err := r.db.GetContext(ctx, u, `
		INSERT INTO users (id, email, password_hash, name, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+userColumns,
		u.ID, u.Email, u.PasswordHash, u.Name, u.Role,
	)
	if core.IsDuplicateKeyError(err) {
		return fmt.Errorf("create user %s: %w", u.Email, core.ErrDuplicateKey)
	}
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*User, error) {
	return r.one(ctx, "get user", `
		SELECT `+userColumns+` FROM users
		WHERE id = $1 AND `+core.NotDeleted, id)
}

func (r *repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.one(ctx, "get user by email", `
		SELECT `+userColumns+` FROM users
		WHERE email = $1 AND `+core.NotDeleted, email)
}

func (r *repository) UpdateName(ctx context.Context, id, name string) (*User, error) {
	return r.one(ctx, "update user name", `
		UPDATE users SET name = $2, updated_at = NOW()
		WHERE id = $1 AND `+core.NotDeleted+`
		RETURNING `+userColumns, id, name)
}

// UpdateRole also bumps token_version so access tokens carrying the old
// role stop verifying.
func (r *repository) UpdateRole(ctx context.Context, id, role string) (*User, error) {
	return r.one(ctx, "update user role", `
		UPDATE users
		SET role = $2,
		    token_version = token_version + CASE WHEN role = $2 THEN 0 ELSE 1 END,
		    updated_at = NOW()
		WHERE id = $1 AND `+core.NotDeleted+`
		RETURNING `+userColumns, id, role)
}

func (r *repository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return r.exec(ctx, "update password", `
		UPDATE users SET password_hash = $2, updated_at = NOW()
		WHERE id = $1 AND `+core.NotDeleted, id, passwordHash)
}

func (r *repository) IncrementTokenVersion(ctx context.Context, id string) error {
	return r.exec(ctx, "increment token version", `
		UPDATE users SET token_version = token_version + 1, updated_at = NOW()
		WHERE id = $1 AND `+core.NotDeleted, id)
}

// Deactivate soft deletes the account and invalidates its access tokens.
func (r *repository) Deactivate(ctx context.Context, id string) error {
	return r.exec(ctx, "deactivate user", `
		UPDATE users
		SET deleted_at = NOW(), updated_at = NOW(),
		    token_version = token_version + 1
		WHERE id = $1 AND `+core.NotDeleted, id)
}

func (r *repository) List(ctx context.Context, params ListParams) ([]User, int, error) {
	params.Normalize()

	where := []string{core.NotDeleted}
	var args []any

	if params.Search != "" {
		args = append(args, "%"+core.EscapeLike(params.Search)+"%")
		where = append(where, fmt.Sprintf(
			"(email ILIKE $%[1]d OR name ILIKE $%[1]d)", len(args)))
	}
	if params.Role != "" {
		args = append(args, params.Role)
		where = append(where, fmt.Sprintf("role = $%d", len(args)))
	}
	filter := strings.Join(where, " AND ")

	var total int
	if err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM users WHERE "+filter, args...); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	page := fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		len(args)+1, len(args)+2)
	args = append(args, params.PageSize, params.Offset())

	users := []User{}
	if err := r.db.SelectContext(ctx, &users,
		"SELECT "+userColumns+" FROM users WHERE "+filter+page, args...); err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	return users, total, nil
}

func (r *repository) one(ctx context.Context, op, query string, args ...any) (*User, error) {
	var u User
	err := r.db.GetContext(ctx, &u, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &u, nil
}

func (r *repository) exec(ctx context.Context, op, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}
	return nil
}
