// AngelaMos | 2026
// dto.go

package activity

import (
	"time"
)

type CreateActivityRequest struct {
	Type        string         `json:"type"        validate:"required,oneof=note application interview follow_up offer other"`
	Title       string         `json:"title"       validate:"required,min=1,max=200"`
	Description string         `json:"description" validate:"max=5000"`
	Metadata    map[string]any `json:"metadata"`
	OccurredAt  *time.Time     `json:"occurredAt"`
}

type ActivityResponse struct {
	ID          string         `json:"id"`
	JobID       string         `json:"jobId"`
	Type        Type           `json:"type"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Metadata    map[string]any `json:"metadata"`
	OccurredAt  time.Time      `json:"occurredAt"`
	CreatedAt   time.Time      `json:"createdAt"`
}

func ToActivityResponse(a *Activity) ActivityResponse {
	meta := map[string]any(a.Metadata)
	if meta == nil {
		meta = map[string]any{}
	}
	return ActivityResponse{
		ID:          a.ID,
		JobID:       a.JobID,
		Type:        a.Type,
		Title:       a.Title,
		Description: a.Description,
		Metadata:    meta,
		OccurredAt:  a.OccurredAt,
		CreatedAt:   a.CreatedAt,
	}
}

func ToActivityResponseList(activities []Activity) []ActivityResponse {
	out := make([]ActivityResponse, 0, len(activities))
	for i := range activities {
		out = append(out, ToActivityResponse(&activities[i]))
	}
	return out
}
