// AngelaMos | 2026
// entity.go

package activity

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/carterperez-dev/jobtracker/internal/core"
)

type Type string

const (
	TypeJobCreated   Type = "job_created"
	TypeStatusChange Type = "status_change"
	TypeNote         Type = "note"
	TypeApplication  Type = "application"
	TypeInterview    Type = "interview"
	TypeFollowUp     Type = "follow_up"
	TypeOffer        Type = "offer"
	TypeOther        Type = "other"
)

func ParseType(s string) (Type, error) {
	switch t := Type(s); t {
	case TypeJobCreated, TypeStatusChange, TypeNote, TypeApplication,
		TypeInterview, TypeFollowUp, TypeOffer, TypeOther:
		return t, nil
	}
	return "", fmt.Errorf("parse activity type %q: %w", s, core.ErrInvalidInput)
}

// Metadata is free-form context stored as a JSONB object.
type Metadata map[string]any

func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal activity metadata: %w", err)
	}
	return string(b), nil
}

func (m *Metadata) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*m = Metadata{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("scan activity metadata: unsupported type %T", src)
	}
	out := Metadata{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("scan activity metadata: %w", err)
	}
	*m = out
	return nil
}

type Activity struct {
	ID          string     `db:"id"`
	UserID      string     `db:"user_id"`
	JobID       string     `db:"job_id"`
	Type        Type       `db:"type"`
	Title       string     `db:"title"`
	Description string     `db:"description"`
	Metadata    Metadata   `db:"metadata"`
	OccurredAt  time.Time  `db:"occurred_at"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
	DeletedAt   *time.Time `db:"deleted_at"`
}
