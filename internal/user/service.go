// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/carterperez-dev/jobtracker/internal/auth"
	"github.com/carterperez-dev/jobtracker/internal/core"
)

var _ auth.UserProvider = (*Service)(nil)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Service) Create(
	ctx context.Context,
	email, passwordHash, name string,
) (*auth.UserInfo, error) {
	u := &User{
		ID:           uuid.NewString(),
		Email:        normalizeEmail(email),
		PasswordHash: passwordHash,
		Name:         name,
		Role:         RoleUser,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u.info(), nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*auth.UserInfo, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return u.info(), nil
}

func (s *Service) GetByEmail(ctx context.Context, email string) (*auth.UserInfo, error) {
	u, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}
	return u.info(), nil
}

func (s *Service) IncrementTokenVersion(ctx context.Context, id string) error {
	return s.repo.IncrementTokenVersion(ctx, id)
}

func (s *Service) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return s.repo.UpdatePassword(ctx, id, passwordHash)
}

func (s *Service) Get(ctx context.Context, id string) (*User, error) {
	if err := core.CheckID(id); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Rename(ctx context.Context, id, name string) (*User, error) {
	if err := core.CheckID(id); err != nil {
		return nil, err
	}
	return s.repo.UpdateName(ctx, id, strings.TrimSpace(name))
}

// SetRole refuses to let an admin demote themselves, so the caller cannot
// lock the last admin out of the console.
func (s *Service) SetRole(ctx context.Context, actorID, id, role string) (*User, error) {
	if err := checkRole(role); err != nil {
		return nil, fmt.Errorf("set role: %w", err)
	}
	if actorID == id && role != RoleAdmin {
		return nil, core.ForbiddenError("admins cannot demote themselves")
	}
	if err := core.CheckID(id); err != nil {
		return nil, err
	}
	return s.repo.UpdateRole(ctx, id, role)
}

// Deactivate closes the caller's own account.
func (s *Service) Deactivate(ctx context.Context, id string) error {
	if err := core.CheckID(id); err != nil {
		return err
	}
	return s.repo.Deactivate(ctx, id)
}

// Remove deactivates another account on behalf of an admin. Admin accounts
// can only close themselves.
func (s *Service) Remove(ctx context.Context, actorID, id string) error {
	if actorID == id {
		return s.Deactivate(ctx, id)
	}

	target, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if target.IsAdmin() {
		return fmt.Errorf("remove admin %s: %w", id, core.ErrForbidden)
	}
	return s.repo.Deactivate(ctx, id)
}

func (s *Service) List(ctx context.Context, params ListParams) ([]User, int, error) {
	if params.Role != "" {
		if err := checkRole(params.Role); err != nil {
			return nil, 0, fmt.Errorf("list users: %w", err)
		}
	}
	params.Normalize()
	return s.repo.List(ctx, params)
}

func (u *User) info() *auth.UserInfo {
	return &auth.UserInfo{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		PasswordHash: u.PasswordHash,
		Role:         u.Role,
		TokenVersion: u.TokenVersion,
		CreatedAt:    u.CreatedAt,
	}
}
