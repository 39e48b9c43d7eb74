// AngelaMos | 2026
// repository.go

package event

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/carterperez-dev/jobtracker/internal/core"
)

const table = "events"

const selectColumns = `
	id, user_id, job_id, type, title, description, location,
	starts_at, ends_at, remind_at, completed,
	created_at, updated_at, deleted_at`

type Repository interface {
	Create(ctx context.Context, e *Event) error
	GetByID(ctx context.Context, id, userID string) (*Event, error)
	Update(ctx context.Context, e *Event) error
	SoftDelete(ctx context.Context, id, userID string) error
	List(ctx context.Context, userID string, params ListParams) ([]Event, int, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, e *Event) error {
	query := `
		INSERT INTO events (
			id, user_id, job_id, type, title, description, location,
			starts_at, ends_at, remind_at, completed
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at`

	err := r.db.GetContext(ctx, e, query,
		e.ID, e.UserID, e.JobID, e.Type, e.Title, e.Description, e.Location,
		e.StartsAt, e.EndsAt, e.RemindAt, e.Completed,
	)
	if err != nil {
		return fmt.Errorf("create event: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id, userID string) (*Event, error) {
	query := `SELECT ` + selectColumns + `
		FROM events
		WHERE id = $1 AND ` + core.OwnedScope(2)

	var e Event
	err := r.db.GetContext(ctx, &e, query, id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get event: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}

	return &e, nil
}

func (r *repository) Update(ctx context.Context, e *Event) error {
	query := `
		UPDATE events
		SET job_id = $3, type = $4, title = $5, description = $6, location = $7,
		    starts_at = $8, ends_at = $9, remind_at = $10, completed = $11,
		    updated_at = NOW()
		WHERE id = $1 AND ` + core.OwnedScope(2) + `
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &e.UpdatedAt, query,
		e.ID, e.UserID, e.JobID, e.Type, e.Title, e.Description, e.Location,
		e.StartsAt, e.EndsAt, e.RemindAt, e.Completed,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update event: %w", core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}

	return nil
}

func (r *repository) SoftDelete(ctx context.Context, id, userID string) error {
	return core.SoftDeleteOwned(ctx, r.db, table, id, userID)
}

func (r *repository) List(
	ctx context.Context,
	userID string,
	params ListParams,
) ([]Event, int, error) {
	conditions := []string{core.OwnedScope(1)}
	args := []any{userID}
	argIdx := 2

	add := func(clause string, v any) {
		conditions = append(conditions, fmt.Sprintf(clause, argIdx))
		args = append(args, v)
		argIdx++
	}

	if params.From != nil {
		add("starts_at >= $%d", *params.From)
	}
	if params.To != nil {
		add("starts_at <= $%d", *params.To)
	}
	if params.JobID != "" {
		add("job_id = $%d", params.JobID)
	}
	if params.Type != "" {
		add("type = $%d", params.Type)
	}
	if params.Completed != nil {
		add("completed = $%d", *params.Completed)
	}

	whereClause := strings.Join(conditions, " AND ")

	var total int
	countQuery := "SELECT COUNT(*) FROM events WHERE " + whereClause
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count events: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s
		FROM events
		WHERE %s
		ORDER BY starts_at ASC
		LIMIT $%d OFFSET $%d`,
		selectColumns, whereClause, argIdx, argIdx+1)
	args = append(args, params.PageSize, params.Offset())

	events := []Event{}
	if err := r.db.SelectContext(ctx, &events, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}

	return events, total, nil
}
