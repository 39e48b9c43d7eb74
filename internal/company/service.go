// AngelaMos | 2026
// service.go

package company

import (
	"context"

	"github.com/google/uuid"

	"github.com/carterperez-dev/jobtracker/internal/core"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(
	ctx context.Context,
	userID string,
	req CreateCompanyRequest,
) (*Company, error) {
	c := &Company{
		ID:       uuid.New().String(),
		UserID:   userID,
		Name:     req.Name,
		Website:  req.Website,
		Industry: req.Industry,
		Location: req.Location,
		Size:     req.Size,
		Notes:    req.Notes,
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

func (s *Service) Get(ctx context.Context, userID, id string) (*Company, error) {
	if err := core.CheckID(id); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id, userID)
}

func (s *Service) Update(
	ctx context.Context,
	userID, id string,
	req UpdateCompanyRequest,
) (*Company, error) {
	c, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	apply(&c.Name, req.Name)
	apply(&c.Website, req.Website)
	apply(&c.Industry, req.Industry)
	apply(&c.Location, req.Location)
	apply(&c.Size, req.Size)
	apply(&c.Notes, req.Notes)

	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if err := core.CheckID(id); err != nil {
		return err
	}
	return s.repo.SoftDelete(ctx, id, userID)
}

func (s *Service) List(
	ctx context.Context,
	userID string,
	params ListParams,
) ([]Company, int, error) {
	params.Normalize()
	return s.repo.List(ctx, userID, params)
}

func apply(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
