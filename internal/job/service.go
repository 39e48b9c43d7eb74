// AngelaMos | 2026
// service.go

package job

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/carterperez-dev/jobtracker/internal/activity"
	"github.com/carterperez-dev/jobtracker/internal/company"
	"github.com/carterperez-dev/jobtracker/internal/core"
	"github.com/carterperez-dev/jobtracker/internal/subscription"
)

// Quota reserves and returns monthly job creations.
type Quota interface {
	ConsumeJobCreation(ctx context.Context, userID string) (subscription.CheckResult, error)
	ReleaseJobCreation(ctx context.Context, userID, period string) error
}

type CompanyLookup interface {
	Get(ctx context.Context, userID, id string) (*company.Company, error)
}

type Timeline interface {
	Log(ctx context.Context, userID string, e activity.Entry) (*activity.Activity, error)
}

type Service struct {
	repo      Repository
	quota     Quota
	companies CompanyLookup
	timeline  Timeline
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(
	repo Repository,
	quota Quota,
	companies CompanyLookup,
	timeline Timeline,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:      repo,
		quota:     quota,
		companies: companies,
		timeline:  timeline,
		logger:    logger,
		now:       time.Now,
	}
}

// Create stores a new job once the user's plan allows it. The reservation is
// handed back when the insert fails.
func (s *Service) Create(
	ctx context.Context,
	userID string,
	req CreateJobRequest,
) (*Job, error) {
	ctx, span := core.StartSpan(ctx, "job.Create")
	defer span.End()

	status := StatusSaved
	if req.Status != "" {
		parsed, err := ParseStatus(req.Status)
		if err != nil {
			return nil, core.BadRequestError("unknown status")
		}
		status = parsed
	}

	if err := checkSalary(req.SalaryMin, req.SalaryMax); err != nil {
		return nil, err
	}

	j := &Job{
		ID:             uuid.New().String(),
		UserID:         userID,
		Title:          req.Title,
		CompanyName:    req.CompanyName,
		Location:       req.Location,
		URL:            req.URL,
		Description:    req.Description,
		SalaryMin:      req.SalaryMin,
		SalaryMax:      req.SalaryMax,
		EmploymentType: req.EmploymentType,
		Source:         req.Source,
		Status:         status,
		Notes:          req.Notes,
	}

	if err := s.attachCompany(ctx, j, req.CompanyID); err != nil {
		return nil, err
	}
	if j.CompanyName == "" {
		return nil, core.BadRequestError("companyName or companyId is required")
	}

	if status != StatusSaved && status != StatusWithdrawn {
		now := s.now().UTC()
		j.AppliedAt = &now
	}

	result, err := s.quota.ConsumeJobCreation(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !result.Allowed {
		return nil, core.QuotaExceededError(result.Reason)
	}

	if err := s.repo.Create(ctx, j); err != nil {
		if relErr := s.quota.ReleaseJobCreation(context.WithoutCancel(ctx), userID, result.Period); relErr != nil {
			s.logger.Error("release job quota failed",
				"user_id", userID,
				"error", relErr,
			)
		}
		return nil, err
	}

	s.record(ctx, userID, activity.Entry{
		JobID: j.ID,
		Type:  activity.TypeJobCreated,
		Title: fmt.Sprintf("Added %s at %s", j.Title, j.CompanyName),
		Metadata: activity.Metadata{
			"status": string(j.Status),
		},
	})

	return j, nil
}

func (s *Service) Get(ctx context.Context, userID, id string) (*Job, error) {
	if err := core.CheckID(id); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id, userID)
}

func (s *Service) Update(
	ctx context.Context,
	userID, id string,
	req UpdateJobRequest,
) (*Job, error) {
	j, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if req.CompanyID != nil {
		if err := s.attachCompany(ctx, j, req.CompanyID); err != nil {
			return nil, err
		}
	}

	apply(&j.Title, req.Title)
	apply(&j.CompanyName, req.CompanyName)
	apply(&j.Location, req.Location)
	apply(&j.URL, req.URL)
	apply(&j.Description, req.Description)
	apply(&j.EmploymentType, req.EmploymentType)
	apply(&j.Source, req.Source)
	apply(&j.Notes, req.Notes)
	if req.SalaryMin != nil {
		j.SalaryMin = req.SalaryMin
	}
	if req.SalaryMax != nil {
		j.SalaryMax = req.SalaryMax
	}

	if err := checkSalary(j.SalaryMin, j.SalaryMax); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, j); err != nil {
		return nil, err
	}

	return j, nil
}

// ChangeStatus moves a job along its pipeline and records the move on the
// job's timeline. Setting the current status again changes nothing.
func (s *Service) ChangeStatus(
	ctx context.Context,
	userID, id string,
	req UpdateStatusRequest,
) (*Job, error) {
	next, err := ParseStatus(req.Status)
	if err != nil {
		return nil, core.BadRequestError("unknown status")
	}

	j, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	from := j.Status
	if from == next {
		return j, nil
	}
	if !from.CanTransition(next) {
		return nil, &core.AppError{
			Status:  http.StatusBadRequest,
			Code:    "INVALID_TRANSITION",
			Message: fmt.Sprintf("cannot move a job from %s to %s", from, next),
			Err:     core.ErrInvalidInput,
		}
	}

	j.Status = next
	if next == StatusApplied && j.AppliedAt == nil {
		now := s.now().UTC()
		j.AppliedAt = &now
	}

	if err := s.repo.UpdateStatus(ctx, j, from); err != nil {
		return nil, err
	}

	s.record(ctx, userID, activity.Entry{
		JobID:       j.ID,
		Type:        activity.TypeStatusChange,
		Title:       fmt.Sprintf("Status changed from %s to %s", from, next),
		Description: req.Note,
		Metadata: activity.Metadata{
			"from": string(from),
			"to":   string(next),
		},
	})

	return j, nil
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
) ([]Job, int, error) {
	params.Normalize()

	if params.CompanyID != "" {
		if err := core.CheckID(params.CompanyID); err != nil {
			return []Job{}, 0, nil
		}
	}

	return s.repo.List(ctx, userID, params)
}

func (s *Service) Stats(ctx context.Context, userID string) (StatsResponse, error) {
	counts, err := s.repo.CountByStatus(ctx, userID)
	if err != nil {
		return StatsResponse{}, err
	}
	return ToStatsResponse(counts), nil
}

func (s *Service) attachCompany(ctx context.Context, j *Job, companyID *string) error {
	if companyID == nil || *companyID == "" {
		j.CompanyID = nil
		return nil
	}

	c, err := s.companies.Get(ctx, j.UserID, *companyID)
	if errors.Is(err, core.ErrNotFound) {
		return core.BadRequestError("unknown company")
	}
	if err != nil {
		return err
	}

	id := c.ID
	j.CompanyID = &id
	if j.CompanyName == "" {
		j.CompanyName = c.Name
	}
	return nil
}

// record writes a timeline entry. The job change has already been committed,
// so a failure here is logged and not returned.
func (s *Service) record(ctx context.Context, userID string, e activity.Entry) {
	if s.timeline == nil {
		return
	}
	if _, err := s.timeline.Log(ctx, userID, e); err != nil {
		s.logger.Warn("record job activity failed",
			"job_id", e.JobID,
			"type", e.Type,
			"error", err,
		)
	}
}

func checkSalary(lo, hi *int) error {
	if lo != nil && hi != nil && *lo > *hi {
		return core.BadRequestError("salaryMin must not exceed salaryMax")
	}
	return nil
}

func apply(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
