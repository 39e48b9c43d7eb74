// AngelaMos | 2026
// entity.go

// Package subscription stores each user's plan and decides, against the
// pricing table and the usage counters, what that user may do.
package subscription

import (
	"time"

	"github.com/carterperez-dev/jobtracker/internal/pricing"
)

type Status string

const (
	StatusActive    Status = "active"
	StatusInactive  Status = "inactive"
	StatusCancelled Status = "cancelled"
	StatusExpired   Status = "expired"
	StatusTrial     Status = "trial"
)

type PaymentMethod string

const (
	PaymentManual PaymentMethod = "manual"
	PaymentOnline PaymentMethod = "online"
	PaymentNone   PaymentMethod = "none"
)

func (p PaymentMethod) Valid() bool {
	switch p {
	case PaymentManual, PaymentOnline, PaymentNone:
		return true
	}
	return false
}

type Subscription struct {
	ID            string        `db:"id"`
	UserID        string        `db:"user_id"`
	Tier          pricing.Tier  `db:"tier"`
	Status        Status        `db:"status"`
	PaymentMethod PaymentMethod `db:"payment_method"`
	StartDate     time.Time     `db:"start_date"`
	EndDate       *time.Time    `db:"end_date"`
	CancelledAt   *time.Time    `db:"cancelled_at"`
	AdminNotes    string        `db:"admin_notes"`
	CreatedBy     *string       `db:"created_by"`
	CreatedAt     time.Time     `db:"created_at"`
	UpdatedAt     time.Time     `db:"updated_at"`
}

// IsActive reports whether the subscription grants its tier at now. An
// unset end date never expires.
func (s *Subscription) IsActive(now time.Time) bool {
	if s.Status != StatusActive {
		return false
	}
	return s.EndDate == nil || !s.EndDate.Before(now)
}

// HasLapsed reports an active subscription whose end date has passed.
func (s *Subscription) HasLapsed(now time.Time) bool {
	return s.Status == StatusActive && s.EndDate != nil && s.EndDate.Before(now)
}
