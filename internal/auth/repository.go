// AngelaMos | 2026
// repository.go

package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/carterperez-dev/jobtracker/internal/core"
)

const tokenColumns = `
	id, user_id, token_hash, family_id, expires_at, created_at,
	is_used, used_at, revoked_at, replaced_by_id, user_agent, ip_address`

// Repository stores refresh tokens by their SHA-256 hash. Raw tokens are
// never persisted.
type Repository interface {
	Create(ctx context.Context, token *RefreshToken) error
	FindByHash(ctx context.Context, tokenHash string) (*RefreshToken, error)
	MarkAsUsed(ctx context.Context, id, replacedByID string) error
	RevokeByID(ctx context.Context, id string) error
	RevokeByFamilyID(ctx context.Context, familyID string) error
	RevokeAllForUser(ctx context.Context, userID string) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, t *RefreshToken) error {
	err := r.db.GetContext(ctx, &t.CreatedAt, `
		INSERT INTO refresh_tokens
			(id, user_id, token_hash, family_id, expires_at, user_agent, ip_address)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`,
		t.ID, t.UserID, t.TokenHash, t.FamilyID, t.ExpiresAt, t.UserAgent, t.IPAddress,
	)
	if err != nil {
		return fmt.Errorf("store refresh token: %w", err)
	}
	return nil
}

func (r *repository) FindByHash(ctx context.Context, tokenHash string) (*RefreshToken, error) {
	var t RefreshToken
	err := r.db.GetContext(ctx, &t,
		`SELECT `+tokenColumns+` FROM refresh_tokens WHERE token_hash = $1`, tokenHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("find refresh token: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find refresh token: %w", err)
	}
	return &t, nil
}

// MarkAsUsed fails with ErrNotFound when the token was already rotated,
// so two concurrent refreshes cannot both succeed.
func (r *repository) MarkAsUsed(ctx context.Context, id, replacedByID string) error {
	n, err := r.exec(ctx, `
		UPDATE refresh_tokens
		SET is_used = true, used_at = NOW(), replaced_by_id = $2
		WHERE id = $1 AND is_used = false`, id, replacedByID)
	if err != nil {
		return fmt.Errorf("rotate refresh token: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("rotate refresh token %s: %w", id, core.ErrNotFound)
	}
	return nil
}

func (r *repository) RevokeByID(ctx context.Context, id string) error {
	n, err := r.revoke(ctx, "id", id)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("revoke refresh token %s: %w", id, core.ErrNotFound)
	}
	return nil
}

func (r *repository) RevokeByFamilyID(ctx context.Context, familyID string) error {
	_, err := r.revoke(ctx, "family_id", familyID)
	return err
}

func (r *repository) RevokeAllForUser(ctx context.Context, userID string) error {
	_, err := r.revoke(ctx, "user_id", userID)
	return err
}

// DeleteExpired removes tokens that expired before the cutoff. Rotated
// tokens are kept until then so reuse is still detectable.
func (r *repository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	n, err := r.exec(ctx, `DELETE FROM refresh_tokens WHERE expires_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("prune refresh tokens: %w", err)
	}
	return n, nil
}

// revoke stamps revoked_at on live tokens matching column. column is one of
// the fixed names passed by this file.
func (r *repository) revoke(ctx context.Context, column, value string) (int64, error) {
	n, err := r.exec(ctx, `
		UPDATE refresh_tokens SET revoked_at = NOW()
		WHERE `+column+` = $1 AND revoked_at IS NULL`, value)
	if err != nil {
		return 0, fmt.Errorf("revoke refresh tokens by %s: %w", column, err)
	}
	return n, nil
}

func (r *repository) exec(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
