// AngelaMos | 2026
// repository_test.go

package auth

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/jobtracker/internal/core"
)

func newMockRepo(t *testing.T) (Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewRepository(sqlx.NewDb(db, "sqlmock")), mock
}

func TestRepository_MarkAsUsedTwice(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`UPDATE refresh_tokens\s+SET is_used = true`).
		WithArgs("t1", "t2").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE refresh_tokens\s+SET is_used = true`).
		WithArgs("t1", "t3").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.MarkAsUsed(context.Background(), "t1", "t2"))
	assert.ErrorIs(t, repo.MarkAsUsed(context.Background(), "t1", "t3"), core.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_RevokeScopes(t *testing.T) {
	repo, mock := newMockRepo(t)
	ctx := context.Background()

	mock.ExpectExec(`WHERE family_id = \$1 AND revoked_at IS NULL`).
		WithArgs("fam").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`WHERE user_id = \$1 AND revoked_at IS NULL`).
		WithArgs("u1").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(`WHERE id = \$1 AND revoked_at IS NULL`).
		WithArgs("t9").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, repo.RevokeByFamilyID(ctx, "fam"))
	assert.NoError(t, repo.RevokeAllForUser(ctx, "u1"))
	assert.ErrorIs(t, repo.RevokeByID(ctx, "t9"), core.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_FindByHashMissing(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`FROM refresh_tokens WHERE token_hash = \$1`).
		WithArgs("h").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.FindByHash(context.Background(), "h")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestRepository_DeleteExpired(t *testing.T) {
	repo, mock := newMockRepo(t)
	cutoff := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec(`DELETE FROM refresh_tokens WHERE expires_at < \$1`).
		WithArgs(cutoff).
		WillReturnResult(sqlmock.NewResult(0, 7))

	n, err := repo.DeleteExpired(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)
}
