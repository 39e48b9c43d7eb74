// AngelaMos | 2026
// repository.go

package company

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/carterperez-dev/jobtracker/internal/core"
)

const table = "companies"

const selectColumns = `
	id, user_id, name, website, industry, location, size, notes,
	created_at, updated_at, deleted_at`

type Repository interface {
	Create(ctx context.Context, c *Company) error
	GetByID(ctx context.Context, id, userID string) (*Company, error)
	Update(ctx context.Context, c *Company) error
	SoftDelete(ctx context.Context, id, userID string) error
	List(ctx context.Context, userID string, params ListParams) ([]Company, int, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, c *Company) error {
	query := `
		INSERT INTO companies (
			id, user_id, name, website, industry, location, size, notes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`

	err := r.db.GetContext(ctx, c, query,
		c.ID, c.UserID, c.Name, c.Website, c.Industry, c.Location, c.Size, c.Notes,
	)
	if err != nil {
		return fmt.Errorf("create company: %w", err)
	}

	return nil
}

func (r *repository) GetByID(
	ctx context.Context,
	id, userID string,
) (*Company, error) {
	query := `SELECT ` + selectColumns + `
		FROM companies
		WHERE id = $1 AND ` + core.OwnedScope(2)

	var c Company
	err := r.db.GetContext(ctx, &c, query, id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get company: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get company: %w", err)
	}

	return &c, nil
}

func (r *repository) Update(ctx context.Context, c *Company) error {
	query := `
		UPDATE companies
		SET name = $3, website = $4, industry = $5, location = $6,
		    size = $7, notes = $8, updated_at = NOW()
		WHERE id = $1 AND ` + core.OwnedScope(2) + `
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &c.UpdatedAt, query,
		c.ID, c.UserID, c.Name, c.Website, c.Industry, c.Location, c.Size, c.Notes,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update company: %w", core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update company: %w", err)
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
) ([]Company, int, error) {
	conditions := []string{core.OwnedScope(1)}
	args := []any{userID}
	argIdx := 2

	if params.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(name ILIKE $%d OR industry ILIKE $%d)", argIdx, argIdx))
		args = append(args, "%"+core.EscapeLike(params.Search)+"%")
		argIdx++
	}

	whereClause := strings.Join(conditions, " AND ")

	var total int
	countQuery := "SELECT COUNT(*) FROM companies WHERE " + whereClause
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count companies: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s
		FROM companies
		WHERE %s
		ORDER BY name ASC
		LIMIT $%d OFFSET $%d`,
		selectColumns, whereClause, argIdx, argIdx+1)
	args = append(args, params.PageSize, params.Offset())

	companies := []Company{}
	if err := r.db.SelectContext(ctx, &companies, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list companies: %w", err)
	}

	return companies, total, nil
}
