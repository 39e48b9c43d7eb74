// AngelaMos | 2026
// service.go

package activity

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/carterperez-dev/jobtracker/internal/core"
)

// Entry describes a timeline item written on the user's behalf.
type Entry struct {
	JobID       string
	Type        Type
	Title       string
	Description string
	Metadata    Metadata
	OccurredAt  time.Time
}

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Log appends an entry to a job's timeline. A zero OccurredAt means now.
func (s *Service) Log(ctx context.Context, userID string, e Entry) (*Activity, error) {
	if e.OccurredAt.IsZero() {
		e.OccurredAt = s.now()
	}
	if e.Metadata == nil {
		e.Metadata = Metadata{}
	}

	a := &Activity{
		ID:          uuid.New().String(),
		UserID:      userID,
		JobID:       e.JobID,
		Type:        e.Type,
		Title:       e.Title,
		Description: e.Description,
		Metadata:    e.Metadata,
		OccurredAt:  e.OccurredAt.UTC(),
	}

	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}

	return a, nil
}

func (s *Service) Create(
	ctx context.Context,
	userID, jobID string,
	req CreateActivityRequest,
) (*Activity, error) {
	if err := core.CheckID(jobID); err != nil {
		return nil, err
	}

	t, err := ParseType(req.Type)
	if err != nil {
		return nil, err
	}

	e := Entry{
		JobID:       jobID,
		Type:        t,
		Title:       req.Title,
		Description: req.Description,
		Metadata:    Metadata(req.Metadata),
	}
	if req.OccurredAt != nil {
		e.OccurredAt = *req.OccurredAt
	}

	return s.Log(ctx, userID, e)
}

func (s *Service) ListForJob(
	ctx context.Context,
	userID, jobID string,
) ([]Activity, error) {
	if err := core.CheckID(jobID); err != nil {
		return nil, err
	}
	return s.repo.ListByJob(ctx, userID, jobID)
}

func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if err := core.CheckID(id); err != nil {
		return err
	}
	return s.repo.SoftDelete(ctx, id, userID)
}
