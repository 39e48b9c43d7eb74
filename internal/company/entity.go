// AngelaMos | 2026
// entity.go

package company

import (
	"time"
)

type Company struct {
	ID        string     `db:"id"`
	UserID    string     `db:"user_id"`
	Name      string     `db:"name"`
	Website   string     `db:"website"`
	Industry  string     `db:"industry"`
	Location  string     `db:"location"`
	Size      string     `db:"size"`
	Notes     string     `db:"notes"`
	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt time.Time  `db:"updated_at"`
	DeletedAt *time.Time `db:"deleted_at"`
}
