// AngelaMos | 2026
// repository.go

package core

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// NotDeleted is the filter every soft-deletable query applies.
const NotDeleted = "deleted_at IS NULL"

// OwnedScope returns the WHERE fragment that limits a query to live rows
// owned by the user bound at placeholder argIdx.
func OwnedScope(argIdx int) string {
	return fmt.Sprintf("user_id = $%d AND %s", argIdx, NotDeleted)
}

// SoftDeleteOwned marks a row of table as deleted. Rows owned by another user
// or already deleted yield ErrNotFound. table must be a package constant.
func SoftDeleteOwned(
	ctx context.Context,
	db DBTX,
	table, id, userID string,
) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND %s`, table, OwnedScope(2))

	result, err := db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("delete %s: %w", table, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete %s: %w", table, err)
	}

	if rows == 0 {
		return fmt.Errorf("delete %s: %w", table, ErrNotFound)
	}

	return nil
}

// CheckID rejects identifiers that are not UUIDs before they reach a
// query, reporting them as ErrNotFound.
func CheckID(id string) error {
	if err := uuid.Validate(id); err != nil {
		return fmt.Errorf("id %q: %w", id, ErrNotFound)
	}
	return nil
}

type PageParams struct {
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
}

func (p *PageParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 20
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
}

// ParsePageParams reads page and page_size from the query string.
// Malformed values fall back to the defaults applied by Normalize.
func ParsePageParams(r *http.Request) PageParams {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	size, _ := strconv.Atoi(q.Get("page_size"))

	p := PageParams{Page: page, PageSize: size}
	p.Normalize()
	return p
}

func (p *PageParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

func IsDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func IsForeignKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23503"
	}
	return false
}

func EscapeLike(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "%", "\\%")
	s = strings.ReplaceAll(s, "_", "\\_")
	return s
}
