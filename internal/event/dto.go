// AngelaMos | 2026
// dto.go

package event

import (
	"time"

	"github.com/carterperez-dev/jobtracker/internal/core"
)

type CreateEventRequest struct {
	JobID       *string    `json:"jobId,omitempty"    validate:"omitempty,uuid"`
	Type        string     `json:"type"               validate:"required,oneof=interview follow_up deadline reminder other"`
	Title       string     `json:"title"              validate:"required,min=1,max=200"`
	Description string     `json:"description"        validate:"max=5000"`
	Location    string     `json:"location"           validate:"max=500"`
	StartsAt    time.Time  `json:"startsAt"           validate:"required"`
	EndsAt      *time.Time `json:"endsAt,omitempty"`
	RemindAt    *time.Time `json:"remindAt,omitempty"`
}

type UpdateEventRequest struct {
	JobID       *string    `json:"jobId,omitempty"       validate:"omitempty,uuid"`
	Type        *string    `json:"type,omitempty"        validate:"omitempty,oneof=interview follow_up deadline reminder other"`
	Title       *string    `json:"title,omitempty"       validate:"omitempty,min=1,max=200"`
	Description *string    `json:"description,omitempty" validate:"omitempty,max=5000"`
	Location    *string    `json:"location,omitempty"    validate:"omitempty,max=500"`
	StartsAt    *time.Time `json:"startsAt,omitempty"`
	EndsAt      *time.Time `json:"endsAt,omitempty"`
	RemindAt    *time.Time `json:"remindAt,omitempty"`
	Completed   *bool      `json:"completed,omitempty"`
}

// ListParams filters a user's calendar. From and To bound starts_at
// inclusively.
type ListParams struct {
	core.PageParams
	From      *time.Time
	To        *time.Time
	JobID     string
	Type      Type
	Completed *bool
}

type EventResponse struct {
	ID          string     `json:"id"`
	JobID       *string    `json:"jobId"`
	Type        Type       `json:"type"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Location    string     `json:"location"`
	StartsAt    time.Time  `json:"startsAt"`
	EndsAt      *time.Time `json:"endsAt"`
	RemindAt    *time.Time `json:"remindAt"`
	Completed   bool       `json:"completed"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func ToEventResponse(e *Event) EventResponse {
	return EventResponse{
		ID:          e.ID,
		JobID:       e.JobID,
		Type:        e.Type,
		Title:       e.Title,
		Description: e.Description,
		Location:    e.Location,
		StartsAt:    e.StartsAt,
		EndsAt:      e.EndsAt,
		RemindAt:    e.RemindAt,
		Completed:   e.Completed,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func ToEventResponseList(events []Event) []EventResponse {
	out := make([]EventResponse, 0, len(events))
	for i := range events {
		out = append(out, ToEventResponse(&events[i]))
	}
	return out
}
