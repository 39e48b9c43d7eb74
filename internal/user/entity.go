// AngelaMos | 2026
// entity.go

package user

import (
	"fmt"
	"time"

	"github.com/carterperez-dev/jobtracker/internal/core"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

func checkRole(role string) error {
	switch role {
	case RoleUser, RoleAdmin:
		return nil
	}
	return fmt.Errorf("role %q: %w", role, core.ErrInvalidInput)
}

// User is an account. Plan and quota state live with the subscription and
// usage records keyed by ID.
//
// TokenVersion is embedded in access tokens; bumping it invalidates every
// token issued before.
type User struct {
	ID           string     `db:"id"`
	Email        string     `db:"email"`
	PasswordHash string     `db:"password_hash"`
	Name         string     `db:"name"`
	Role         string     `db:"role"`
	TokenVersion int        `db:"token_version"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
	DeletedAt    *time.Time `db:"deleted_at"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
