// AngelaMos | 2026
// repository.go

package activity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/carterperez-dev/jobtracker/internal/core"
)

const table = "activities"

type Repository interface {
	Create(ctx context.Context, a *Activity) error
	ListByJob(ctx context.Context, userID, jobID string) ([]Activity, error)
	SoftDelete(ctx context.Context, id, userID string) error
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

// Create inserts the activity only when its job is live and owned by the
// same user; otherwise ErrNotFound.
func (r *repository) Create(ctx context.Context, a *Activity) error {
	query := `
		INSERT INTO activities (
			id, user_id, job_id, type, title, description, metadata, occurred_at
		)
		SELECT $1, $2, $3, $4, $5, $6, $7, $8
		WHERE EXISTS (
			SELECT 1 FROM jobs WHERE id = $3 AND ` + core.OwnedScope(2) + `
		)
		RETURNING created_at, updated_at`

	err := r.db.GetContext(ctx, a, query,
		a.ID, a.UserID, a.JobID, a.Type, a.Title, a.Description, a.Metadata, a.OccurredAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("create activity: job: %w", core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("create activity: %w", err)
	}

	return nil
}

func (r *repository) ListByJob(
	ctx context.Context,
	userID, jobID string,
) ([]Activity, error) {
	var exists bool
	existsQuery := `SELECT EXISTS (
		SELECT 1 FROM jobs WHERE id = $1 AND ` + core.OwnedScope(2) + `)`
	if err := r.db.GetContext(ctx, &exists, existsQuery, jobID, userID); err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("list activities: job: %w", core.ErrNotFound)
	}

	query := `
		SELECT id, user_id, job_id, type, title, description, metadata,
		       occurred_at, created_at, updated_at, deleted_at
		FROM activities
		WHERE job_id = $1 AND ` + core.OwnedScope(2) + `
		ORDER BY occurred_at DESC, created_at DESC`

	activities := []Activity{}
	if err := r.db.SelectContext(ctx, &activities, query, jobID, userID); err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}

	return activities, nil
}

func (r *repository) SoftDelete(ctx context.Context, id, userID string) error {
	return core.SoftDeleteOwned(ctx, r.db, table, id, userID)
}
