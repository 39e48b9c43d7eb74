// AngelaMos | 2026
// dto.go

package subscription

import (
	"time"

	"github.com/carterperez-dev/jobtracker/internal/pricing"
	"github.com/carterperez-dev/jobtracker/internal/usage"
)

type UpdateSubscriptionRequest struct {
	UserID         string `json:"userId"                  validate:"required,uuid"`
	Tier           string `json:"tier"                    validate:"required"`
	DurationMonths int    `json:"durationMonths,omitempty" validate:"gte=0"`
	PaymentMethod  string `json:"paymentMethod,omitempty"  validate:"omitempty,oneof=manual online none"`
	AdminNotes     string `json:"adminNotes,omitempty"     validate:"max=1000"`
}

type CheckRequest struct {
	Action string `json:"action" validate:"required"`
}

type RecordUsageRequest struct {
	Type  string `json:"type"            validate:"required"`
	Count int    `json:"count,omitempty" validate:"gte=0,lte=10000"`
}

const (
	UsageTypeJob  = "job"
	UsageTypeChat = "chat"
)

type SubscriptionResponse struct {
	ID            string        `json:"id"`
	UserID        string        `json:"userId"`
	Tier          pricing.Tier  `json:"tier"`
	Status        Status        `json:"status"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
	StartDate     time.Time     `json:"startDate"`
	EndDate       *time.Time    `json:"endDate,omitempty"`
	CancelledAt   *time.Time    `json:"cancelledAt,omitempty"`
	AdminNotes    string        `json:"adminNotes,omitempty"`
	CreatedBy     *string       `json:"createdBy,omitempty"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

type UsageResponse struct {
	CurrentMonth  string             `json:"currentMonth"`
	JobsCreated   int                `json:"jobsCreated"`
	ChatMessages  int                `json:"chatMessages"`
	MonthlyStats  usage.MonthlyStats `json:"monthlyStats"`
	LastResetDate time.Time          `json:"lastResetDate"`
}

type OverviewResponse struct {
	Subscription SubscriptionResponse `json:"subscription"`
	Usage        UsageResponse        `json:"usage"`
	Tier         pricing.Tier         `json:"tier"`
	Config       pricing.TierConfig   `json:"config"`
}

func ToSubscriptionResponse(s *Subscription) SubscriptionResponse {
	return SubscriptionResponse{
		ID:            s.ID,
		UserID:        s.UserID,
		Tier:          s.Tier,
		Status:        s.Status,
		PaymentMethod: s.PaymentMethod,
		StartDate:     s.StartDate,
		EndDate:       s.EndDate,
		CancelledAt:   s.CancelledAt,
		AdminNotes:    s.AdminNotes,
		CreatedBy:     s.CreatedBy,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
}

func ToUsageResponse(u *usage.UsageStats) UsageResponse {
	history := u.MonthlyStats
	if history == nil {
		history = usage.MonthlyStats{}
	}
	return UsageResponse{
		CurrentMonth:  u.CurrentMonth,
		JobsCreated:   u.JobsCreated,
		ChatMessages:  u.ChatMessages,
		MonthlyStats:  history,
		LastResetDate: u.LastResetDate,
	}
}

func ToOverviewResponse(o *Overview) OverviewResponse {
	return OverviewResponse{
		Subscription: ToSubscriptionResponse(o.Subscription),
		Usage:        ToUsageResponse(o.Usage),
		Tier:         o.Tier,
		Config:       o.Config,
	}
}
