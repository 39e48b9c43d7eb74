// AngelaMos | 2026
// entity.go

package job

import (
	"fmt"
	"time"

	"github.com/carterperez-dev/jobtracker/internal/core"
)

type Status string

const (
	StatusSaved        Status = "saved"
	StatusApplied      Status = "applied"
	StatusInterviewing Status = "interviewing"
	StatusOffered      Status = "offered"
	StatusAccepted     Status = "accepted"
	StatusRejected     Status = "rejected"
	StatusWithdrawn    Status = "withdrawn"
)

// Statuses lists every status in pipeline order.
var Statuses = []Status{
	StatusSaved,
	StatusApplied,
	StatusInterviewing,
	StatusOffered,
	StatusAccepted,
	StatusRejected,
	StatusWithdrawn,
}

var transitions = map[Status][]Status{
	StatusSaved:        {StatusApplied, StatusWithdrawn},
	StatusApplied:      {StatusInterviewing, StatusOffered, StatusRejected, StatusWithdrawn},
	StatusInterviewing: {StatusOffered, StatusRejected, StatusWithdrawn},
	StatusOffered:      {StatusAccepted, StatusRejected, StatusWithdrawn},
}

func ParseStatus(s string) (Status, error) {
	for _, st := range Statuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("parse job status %q: %w", s, core.ErrInvalidInput)
}

// CanTransition reports whether a job may move from s to next. Accepted,
// rejected and withdrawn are terminal.
func (s Status) CanTransition(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s Status) IsTerminal() bool {
	return len(transitions[s]) == 0
}

type Job struct {
	ID             string     `db:"id"`
	UserID         string     `db:"user_id"`
	CompanyID      *string    `db:"company_id"`
	Title          string     `db:"title"`
	CompanyName    string     `db:"company_name"`
	Location       string     `db:"location"`
	URL            string     `db:"url"`
	Description    string     `db:"description"`
	SalaryMin      *int       `db:"salary_min"`
	SalaryMax      *int       `db:"salary_max"`
	EmploymentType string     `db:"employment_type"`
	Source         string     `db:"source"`
	Status         Status     `db:"status"`
	Notes          string     `db:"notes"`
	AppliedAt      *time.Time `db:"applied_at"`
	CreatedAt      time.Time  `db:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at"`
	DeletedAt      *time.Time `db:"deleted_at"`
}
