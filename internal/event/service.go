// AngelaMos | 2026
// service.go

package event

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/carterperez-dev/jobtracker/internal/core"
	"github.com/carterperez-dev/jobtracker/internal/job"
)

type JobLookup interface {
	Get(ctx context.Context, userID, id string) (*job.Job, error)
}

type Service struct {
	repo Repository
	jobs JobLookup
}

func NewService(repo Repository, jobs JobLookup) *Service {
	return &Service{repo: repo, jobs: jobs}
}

func (s *Service) Create(
	ctx context.Context,
	userID string,
	req CreateEventRequest,
) (*Event, error) {
	t, err := ParseType(req.Type)
	if err != nil {
		return nil, core.BadRequestError("unknown event type")
	}

	e := &Event{
		ID:          uuid.New().String(),
		UserID:      userID,
		Type:        t,
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		StartsAt:    req.StartsAt.UTC(),
		EndsAt:      utc(req.EndsAt),
		RemindAt:    utc(req.RemindAt),
	}

	if err := e.validWindow(); err != nil {
		return nil, err
	}
	if err := s.linkJob(ctx, e, req.JobID); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, e); err != nil {
		return nil, err
	}

	return e, nil
}

func (s *Service) Get(ctx context.Context, userID, id string) (*Event, error) {
	if err := core.CheckID(id); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id, userID)
}

func (s *Service) Update(
	ctx context.Context,
	userID, id string,
	req UpdateEventRequest,
) (*Event, error) {
	e, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if req.Type != nil {
		t, err := ParseType(*req.Type)
		if err != nil {
			return nil, core.BadRequestError("unknown event type")
		}
		e.Type = t
	}
	if req.Title != nil {
		e.Title = *req.Title
	}
	if req.Description != nil {
		e.Description = *req.Description
	}
	if req.Location != nil {
		e.Location = *req.Location
	}
	if req.StartsAt != nil {
		e.StartsAt = req.StartsAt.UTC()
	}
	if req.EndsAt != nil {
		e.EndsAt = utc(req.EndsAt)
	}
	if req.RemindAt != nil {
		e.RemindAt = utc(req.RemindAt)
	}
	if req.Completed != nil {
		e.Completed = *req.Completed
	}

	if err := e.validWindow(); err != nil {
		return nil, err
	}
	if req.JobID != nil {
		if err := s.linkJob(ctx, e, req.JobID); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Update(ctx, e); err != nil {
		return nil, err
	}

	return e, nil
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
) ([]Event, int, error) {
	params.Normalize()

	if params.From != nil && params.To != nil && params.To.Before(*params.From) {
		return nil, 0, core.BadRequestError("to must not be before from")
	}
	if params.JobID != "" {
		if err := core.CheckID(params.JobID); err != nil {
			return []Event{}, 0, nil
		}
	}

	return s.repo.List(ctx, userID, params)
}

// linkJob attaches the event to one of the user's jobs. An empty id detaches.
func (s *Service) linkJob(ctx context.Context, e *Event, jobID *string) error {
	if jobID == nil || *jobID == "" {
		e.JobID = nil
		return nil
	}

	j, err := s.jobs.Get(ctx, e.UserID, *jobID)
	if errors.Is(err, core.ErrNotFound) {
		return core.BadRequestError("unknown job")
	}
	if err != nil {
		return err
	}

	id := j.ID
	e.JobID = &id
	return nil
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
