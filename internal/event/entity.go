// AngelaMos | 2026
// entity.go

package event

import (
	"fmt"
	"time"

	"github.com/carterperez-dev/jobtracker/internal/core"
)

type Type string

const (
	TypeInterview Type = "interview"
	TypeFollowUp  Type = "follow_up"
	TypeDeadline  Type = "deadline"
	TypeReminder  Type = "reminder"
	TypeOther     Type = "other"
)

func ParseType(s string) (Type, error) {
	switch t := Type(s); t {
	case TypeInterview, TypeFollowUp, TypeDeadline, TypeReminder, TypeOther:
		return t, nil
	}
	return "", fmt.Errorf("parse event type %q: %w", s, core.ErrInvalidInput)
}

type Event struct {
	ID          string     `db:"id"`
	UserID      string     `db:"user_id"`
	JobID       *string    `db:"job_id"`
	Type        Type       `db:"type"`
	Title       string     `db:"title"`
	Description string     `db:"description"`
	Location    string     `db:"location"`
	StartsAt    time.Time  `db:"starts_at"`
	EndsAt      *time.Time `db:"ends_at"`
	RemindAt    *time.Time `db:"remind_at"`
	Completed   bool       `db:"completed"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
	DeletedAt   *time.Time `db:"deleted_at"`
}

// validWindow rejects an ends_at before starts_at or a remind_at after it.
func (e *Event) validWindow() error {
	if e.EndsAt != nil && e.EndsAt.Before(e.StartsAt) {
		return core.BadRequestError("endsAt must not be before startsAt")
	}
	if e.RemindAt != nil && e.RemindAt.After(e.StartsAt) {
		return core.BadRequestError("remindAt must not be after startsAt")
	}
	return nil
}
