// AngelaMos | 2026
// repository.go

package job

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/carterperez-dev/jobtracker/internal/core"
)

const table = "jobs"

const selectColumns = `
	id, user_id, company_id, title, company_name, location, url, description,
	salary_min, salary_max, employment_type, source, status, notes, applied_at,
	created_at, updated_at, deleted_at`

// exportLimit caps a single spreadsheet export.
const exportLimit = 5000

type Repository interface {
	Create(ctx context.Context, j *Job) error
	GetByID(ctx context.Context, id, userID string) (*Job, error)
	Update(ctx context.Context, j *Job) error
	UpdateStatus(ctx context.Context, j *Job, from Status) error
	SoftDelete(ctx context.Context, id, userID string) error
	List(ctx context.Context, userID string, params ListParams) ([]Job, int, error)
	ListForExport(ctx context.Context, userID string) ([]Job, error)
	CountByStatus(ctx context.Context, userID string) (map[Status]int, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, j *Job) error {
	query := `
		INSERT INTO jobs (
			id, user_id, company_id, title, company_name, location, url,
			description, salary_min, salary_max, employment_type, source,
			status, notes, applied_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING created_at, updated_at`

	err := r.db.GetContext(ctx, j, query,
		j.ID, j.UserID, j.CompanyID, j.Title, j.CompanyName, j.Location, j.URL,
		j.Description, j.SalaryMin, j.SalaryMax, j.EmploymentType, j.Source,
		j.Status, j.Notes, j.AppliedAt,
	)
	if err != nil {
		if core.IsForeignKeyError(err) {
			return fmt.Errorf("create job: %w", core.ErrInvalidInput)
		}
		return fmt.Errorf("create job: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id, userID string) (*Job, error) {
	query := `SELECT ` + selectColumns + `
		FROM jobs
		WHERE id = $1 AND ` + core.OwnedScope(2)

	var j Job
	err := r.db.GetContext(ctx, &j, query, id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get job: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}

	return &j, nil
}

func (r *repository) Update(ctx context.Context, j *Job) error {
	query := `
		UPDATE jobs
		SET company_id = $3, title = $4, company_name = $5, location = $6,
		    url = $7, description = $8, salary_min = $9, salary_max = $10,
		    employment_type = $11, source = $12, notes = $13, updated_at = NOW()
		WHERE id = $1 AND ` + core.OwnedScope(2) + `
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &j.UpdatedAt, query,
		j.ID, j.UserID, j.CompanyID, j.Title, j.CompanyName, j.Location, j.URL,
		j.Description, j.SalaryMin, j.SalaryMax, j.EmploymentType, j.Source, j.Notes,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update job: %w", core.ErrNotFound)
	}
	if err != nil {
		if core.IsForeignKeyError(err) {
			return fmt.Errorf("update job: %w", core.ErrInvalidInput)
		}
		return fmt.Errorf("update job: %w", err)
	}

	return nil
}

// UpdateStatus writes j.Status and j.AppliedAt only if the stored status is
// still from. A concurrent change yields ErrConflict.
func (r *repository) UpdateStatus(ctx context.Context, j *Job, from Status) error {
	query := `
		UPDATE jobs
		SET status = $3, applied_at = $4, updated_at = NOW()
		WHERE id = $1 AND ` + core.OwnedScope(2) + ` AND status = $5
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &j.UpdatedAt, query,
		j.ID, j.UserID, j.Status, j.AppliedAt, from,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update job status: %w", core.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("update job status: %w", err)
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
) ([]Job, int, error) {
	conditions := []string{core.OwnedScope(1)}
	args := []any{userID}
	argIdx := 2

	if params.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, params.Status)
		argIdx++
	}

	if params.CompanyID != "" {
		conditions = append(conditions, fmt.Sprintf("company_id = $%d", argIdx))
		args = append(args, params.CompanyID)
		argIdx++
	}

	if params.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(title ILIKE $%d OR company_name ILIKE $%d)", argIdx, argIdx))
		args = append(args, "%"+core.EscapeLike(params.Search)+"%")
		argIdx++
	}

	whereClause := strings.Join(conditions, " AND ")

	var total int
	countQuery := "SELECT COUNT(*) FROM jobs WHERE " + whereClause
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count jobs: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s
		FROM jobs
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`,
		selectColumns, whereClause, argIdx, argIdx+1)
	args = append(args, params.PageSize, params.Offset())

	jobs := []Job{}
	if err := r.db.SelectContext(ctx, &jobs, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list jobs: %w", err)
	}

	return jobs, total, nil
}

func (r *repository) ListForExport(ctx context.Context, userID string) ([]Job, error) {
	query := `SELECT ` + selectColumns + `
		FROM jobs
		WHERE ` + core.OwnedScope(1) + `
		ORDER BY created_at ASC
		LIMIT $2`

	jobs := []Job{}
	if err := r.db.SelectContext(ctx, &jobs, query, userID, exportLimit); err != nil {
		return nil, fmt.Errorf("list jobs for export: %w", err)
	}

	return jobs, nil
}

func (r *repository) CountByStatus(
	ctx context.Context,
	userID string,
) (map[Status]int, error) {
	query := `
		SELECT status, COUNT(*) AS count
		FROM jobs
		WHERE ` + core.OwnedScope(1) + `
		GROUP BY status`

	var rows []struct {
		Status Status `db:"status"`
		Count  int    `db:"count"`
	}
	if err := r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("count jobs by status: %w", err)
	}

	counts := make(map[Status]int, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}

	return counts, nil
}
