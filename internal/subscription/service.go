// AngelaMos | 2026
// service.go

package subscription

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/jobtracker/internal/core"
	"github.com/carterperez-dev/jobtracker/internal/metrics"
	"github.com/carterperez-dev/jobtracker/internal/pricing"
	"github.com/carterperez-dev/jobtracker/internal/usage"
)

type UsageTracker interface {
	GetOrCreateStats(ctx context.Context, userID string) (*usage.UsageStats, error)
	GetUserUsage(ctx context.Context, userID string) (usage.Usage, error)
	RecordJobCreation(ctx context.Context, userID string, count int) (*usage.UsageStats, error)
	RecordChatMessage(ctx context.Context, userID string, count int) (*usage.UsageStats, error)
	Consume(
		ctx context.Context,
		userID string,
		resource pricing.Resource,
		count int,
		limit pricing.Limit,
	) (usage.Decision, error)
	Release(
		ctx context.Context,
		userID string,
		resource pricing.Resource,
		count int,
		month string,
	) error
}

type Action string

const (
	ActionCreateJob       Action = "create_job"
	ActionAccessChat      Action = "access_chat"
	ActionSendChatMessage Action = "send_chat_message"
)

func ParseAction(s string) (Action, error) {
	switch a := Action(s); a {
	case ActionCreateJob, ActionAccessChat, ActionSendChatMessage:
		return a, nil
	}
	return "", fmt.Errorf("parse action %q: %w", s, core.ErrInvalidInput)
}

// CheckResult is the answer to "may this user do X". Reason is set exactly
// when Allowed is false.
type CheckResult struct {
	Allowed      bool           `json:"allowed"`
	Reason       string         `json:"reason,omitempty"`
	CurrentUsage *int           `json:"currentUsage,omitempty"`
	Limit        *pricing.Limit `json:"limit,omitempty"`
	Tier         pricing.Tier   `json:"tier"`

	// Period is the usage month a consumed unit was charged to.
	Period string `json:"-"`
}

// Overview is the composite read model behind GET /api/subscription.
type Overview struct {
	Subscription *Subscription
	Usage        *usage.UsageStats
	Tier         pricing.Tier
	Config       pricing.TierConfig
}

type Service struct {
	store  *Store
	usage  UsageTracker
	logger *slog.Logger
}

func NewService(store *Store, tracker UsageTracker, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, usage: tracker, logger: logger}
}

// GetUserTier resolves the tier decisions are made against. Users without
// an active subscription are on free.
func (s *Service) GetUserTier(
	ctx context.Context,
	userID string,
) (pricing.Tier, error) {
	sub, err := s.store.GetActiveSubscription(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("get user tier: %w", err)
	}
	if sub == nil {
		return pricing.TierFree, nil
	}
	return sub.Tier, nil
}

// Check dispatches a named action to its gating check.
func (s *Service) Check(
	ctx context.Context,
	userID string,
	action Action,
) (CheckResult, error) {
	switch action {
	case ActionCreateJob:
		return s.CanCreateJob(ctx, userID)
	case ActionAccessChat:
		return s.CanAccessChat(ctx, userID)
	case ActionSendChatMessage:
		return s.CanSendChatMessage(ctx, userID)
	}
	return CheckResult{}, fmt.Errorf("check %q: %w", action, core.ErrInvalidInput)
}

func (s *Service) CanCreateJob(
	ctx context.Context,
	userID string,
) (CheckResult, error) {
	ctx, span := core.StartSpan(ctx, "subscription.CanCreateJob")
	defer span.End()

	tier, err := s.GetUserTier(ctx, userID)
	if err != nil {
		return CheckResult{}, err
	}

	result, err := s.checkQuota(ctx, userID, tier, pricing.ResourceJobs)
	if err != nil {
		return CheckResult{}, err
	}

	s.observe(ctx, ActionCreateJob, result)
	return result, nil
}

func (s *Service) CanAccessChat(
	ctx context.Context,
	userID string,
) (CheckResult, error) {
	tier, err := s.GetUserTier(ctx, userID)
	if err != nil {
		return CheckResult{}, err
	}

	result := chatAccess(tier)
	s.observe(ctx, ActionAccessChat, result)
	return result, nil
}

// CanSendChatMessage requires chat access first; a plan without chat gets
// the access denial, not a message-count one.
func (s *Service) CanSendChatMessage(
	ctx context.Context,
	userID string,
) (CheckResult, error) {
	ctx, span := core.StartSpan(ctx, "subscription.CanSendChatMessage")
	defer span.End()

	tier, err := s.GetUserTier(ctx, userID)
	if err != nil {
		return CheckResult{}, err
	}

	if access := chatAccess(tier); !access.Allowed {
		s.observe(ctx, ActionSendChatMessage, access)
		return access, nil
	}

	result, err := s.checkQuota(ctx, userID, tier, pricing.ResourceChat)
	if err != nil {
		return CheckResult{}, err
	}

	s.observe(ctx, ActionSendChatMessage, result)
	return result, nil
}

// CanUseFeature gates a boolean plan feature such as export or calendar.
func (s *Service) CanUseFeature(
	ctx context.Context,
	userID string,
	feature pricing.Feature,
) (CheckResult, error) {
	tier, err := s.GetUserTier(ctx, userID)
	if err != nil {
		return CheckResult{}, err
	}

	result := CheckResult{Allowed: true, Tier: tier}
	if !pricing.HasFeatureAccess(tier, feature) {
		result.Allowed = false
		result.Reason = featureReason(feature)
	}

	s.observe(ctx, Action(feature), result)
	return result, nil
}

// ConsumeJobCreation checks the job quota and, when allowed, counts the job
// in the same step. Callers that fail to create the job afterwards should
// call ReleaseJobCreation with the result's Period.
func (s *Service) ConsumeJobCreation(
	ctx context.Context,
	userID string,
) (CheckResult, error) {
	ctx, span := core.StartSpan(ctx, "subscription.ConsumeJobCreation")
	defer span.End()

	tier, err := s.GetUserTier(ctx, userID)
	if err != nil {
		return CheckResult{}, err
	}

	result, err := s.consume(ctx, userID, tier, pricing.ResourceJobs, 1)
	if err != nil {
		return CheckResult{}, err
	}

	s.observe(ctx, ActionCreateJob, result)
	return result, nil
}

// ConsumeChatMessage counts count chat messages if the plan has chat and
// the monthly allowance covers all of them.
func (s *Service) ConsumeChatMessage(
	ctx context.Context,
	userID string,
	count int,
) (CheckResult, error) {
	ctx, span := core.StartSpan(ctx, "subscription.ConsumeChatMessage")
	defer span.End()

	tier, err := s.GetUserTier(ctx, userID)
	if err != nil {
		return CheckResult{}, err
	}

	if access := chatAccess(tier); !access.Allowed {
		s.observe(ctx, ActionSendChatMessage, access)
		return access, nil
	}

	result, err := s.consume(ctx, userID, tier, pricing.ResourceChat, count)
	if err != nil {
		return CheckResult{}, err
	}

	s.observe(ctx, ActionSendChatMessage, result)
	return result, nil
}

// ReleaseJobCreation returns a job taken by ConsumeJobCreation. It is a
// no-op once the usage month has moved past period.
func (s *Service) ReleaseJobCreation(ctx context.Context, userID, period string) error {
	if err := s.usage.Release(ctx, userID, pricing.ResourceJobs, 1, period); err != nil {
		return fmt.Errorf("release job creation: %w", err)
	}
	return nil
}

// RecordJobCreation counts jobs without checking the plan limit.
func (s *Service) RecordJobCreation(
	ctx context.Context,
	userID string,
	count int,
) (*usage.UsageStats, error) {
	return s.usage.RecordJobCreation(ctx, userID, count)
}

// RecordChatMessage counts chat messages without checking the plan limit.
func (s *Service) RecordChatMessage(
	ctx context.Context,
	userID string,
	count int,
) (*usage.UsageStats, error) {
	return s.usage.RecordChatMessage(ctx, userID, count)
}

func (s *Service) GetUsage(
	ctx context.Context,
	userID string,
) (*usage.UsageStats, error) {
	return s.usage.GetOrCreateStats(ctx, userID)
}

func (s *Service) CreateOrUpdateSubscription(
	ctx context.Context,
	userID string,
	tier pricing.Tier,
	opts Options,
) (*Subscription, error) {
	return s.store.CreateOrUpdateSubscription(ctx, userID, tier, opts)
}

// CancelSubscription only marks the subscription cancelled; see CancelToFree
// for the self-service flow.
func (s *Service) CancelSubscription(
	ctx context.Context,
	userID string,
) (*Subscription, error) {
	return s.store.CancelSubscription(ctx, userID)
}

// CancelToFree cancels the user's plan and puts them back on free. The
// returned subscription is the cancelled one.
func (s *Service) CancelToFree(
	ctx context.Context,
	userID string,
) (*Subscription, error) {
	cancelled, err := s.store.CancelSubscription(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("cancel subscription: %w", err)
	}
	if cancelled == nil {
		return nil, fmt.Errorf("cancel subscription: %w", core.ErrNotFound)
	}

	_, err = s.store.CreateOrUpdateSubscription(ctx, userID, pricing.TierFree, Options{
		PaymentMethod: PaymentNone,
	})
	if err != nil {
		return nil, fmt.Errorf("reinstate free plan: %w", err)
	}

	return cancelled, nil
}

// GetSubscriptionWithUsage provisions a free plan for users seen for the
// first time and returns everything the account page shows.
func (s *Service) GetSubscriptionWithUsage(
	ctx context.Context,
	userID string,
) (*Overview, error) {
	ctx, span := core.StartSpan(ctx, "subscription.GetSubscriptionWithUsage")
	defer span.End()

	sub, err := s.store.GetActiveSubscription(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get subscription with usage: %w", err)
	}

	tier := pricing.TierFree
	if sub != nil {
		tier = sub.Tier
	} else {
		sub, err = s.store.CreateFreeSubscription(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("provision free plan: %w", err)
		}
	}

	stats, err := s.usage.GetOrCreateStats(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get subscription with usage: %w", err)
	}

	return &Overview{
		Subscription: sub,
		Usage:        stats,
		Tier:         tier,
		Config:       pricing.GetPricingConfig(tier),
	}, nil
}

func (s *Service) checkQuota(
	ctx context.Context,
	userID string,
	tier pricing.Tier,
	resource pricing.Resource,
) (CheckResult, error) {
	limit := pricing.GetResourceLimit(tier, resource)
	if limit.IsUnlimited() {
		return CheckResult{Allowed: true, Limit: &limit, Tier: tier}, nil
	}

	current, err := s.usage.GetUserUsage(ctx, userID)
	if err != nil {
		return CheckResult{}, fmt.Errorf("check %s quota: %w", resource, err)
	}

	count := current.JobsCreated
	if resource == pricing.ResourceChat {
		count = current.ChatMessages
	}

	return quotaResult(tier, resource, count, limit, !limit.Reached(count)), nil
}

func (s *Service) consume(
	ctx context.Context,
	userID string,
	tier pricing.Tier,
	resource pricing.Resource,
	count int,
) (CheckResult, error) {
	limit := pricing.GetResourceLimit(tier, resource)

	decision, err := s.usage.Consume(ctx, userID, resource, count, limit)
	if err != nil {
		return CheckResult{}, fmt.Errorf("consume %s: %w", resource, err)
	}

	result := quotaResult(tier, resource, decision.Current, limit, decision.Allowed)
	result.Period = decision.Month
	return result, nil
}

func (s *Service) observe(ctx context.Context, action Action, result CheckResult) {
	outcome := metrics.QuotaResult(result.Allowed)
	metrics.QuotaChecksTotal.WithLabelValues(string(action), string(result.Tier), outcome).Inc()
	core.AddSpanEvent(ctx, "plan.decision",
		attribute.String("action", string(action)),
		attribute.String("tier", string(result.Tier)),
		attribute.String("result", outcome),
	)

	if !result.Allowed {
		s.logger.Debug("plan denied action",
			"action", action,
			"tier", result.Tier,
			"reason", result.Reason,
		)
	}
}

func quotaResult(
	tier pricing.Tier,
	resource pricing.Resource,
	current int,
	limit pricing.Limit,
	allowed bool,
) CheckResult {
	result := CheckResult{
		Allowed:      allowed,
		CurrentUsage: &current,
		Limit:        &limit,
		Tier:         tier,
	}
	if !allowed {
		result.Reason = limitReason(resource, limit)
	}
	return result
}

func chatAccess(tier pricing.Tier) CheckResult {
	if pricing.GetPricingConfig(tier).Features.ChatAccess {
		return CheckResult{Allowed: true, Tier: tier}
	}
	return CheckResult{
		Allowed: false,
		Reason:  "Chat is not available on your plan. Upgrade to Pro to access chat.",
		Tier:    tier,
	}
}

func limitReason(resource pricing.Resource, limit pricing.Limit) string {
	if resource == pricing.ResourceChat {
		return fmt.Sprintf(
			"You've reached your monthly limit of %d chat messages. Upgrade to Custom for unlimited messages.",
			limit.Value(),
		)
	}
	return fmt.Sprintf(
		"You've reached your monthly limit of %d jobs. Upgrade to Pro for unlimited jobs.",
		limit.Value(),
	)
}

func featureReason(feature pricing.Feature) string {
	return feature.DisplayName() + " is not available on your plan. Upgrade to unlock it."
}
