// AngelaMos | 2026
// store.go

package subscription

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/carterperez-dev/jobtracker/internal/core"
	"github.com/carterperez-dev/jobtracker/internal/metrics"
	"github.com/carterperez-dev/jobtracker/internal/pricing"
)

// Options are the optional fields of an admin-initiated plan change.
// DurationMonths of zero means the configured default.
type Options struct {
	PaymentMethod  PaymentMethod
	DurationMonths int
	AdminNotes     string
	CreatedBy      string
}

type StoreConfig struct {
	DefaultDurationMonths int
	MaxDurationMonths     int
}

type Store struct {
	repo   Repository
	cfg    StoreConfig
	now    func() time.Time
	logger *slog.Logger
}

type StoreOption func(*Store)

// WithClock replaces time.Now for start, end and expiry decisions.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		s.now = now
	}
}

func NewStore(repo Repository, cfg StoreConfig, logger *slog.Logger, opts ...StoreOption) *Store {
	if cfg.DefaultDurationMonths < 1 {
		cfg.DefaultDurationMonths = 1
	}
	if cfg.MaxDurationMonths < cfg.DefaultDurationMonths {
		cfg.MaxDurationMonths = cfg.DefaultDurationMonths
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Store{
		repo:   repo,
		cfg:    cfg,
		now:    time.Now,
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetActiveSubscription returns the user's subscription when it currently
// grants its tier, or nil. An active row whose end date has passed is
// persisted as expired on the way.
func (s *Store) GetActiveSubscription(
	ctx context.Context,
	userID string,
) (*Subscription, error) {
	sub, err := s.repo.GetByUserID(ctx, userID)
	if errors.Is(err, core.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	now := s.now()

	if sub.HasLapsed(now) {
		if err := s.repo.MarkExpired(ctx, sub.ID); err != nil {
			return nil, err
		}
		metrics.SubscriptionChangesTotal.WithLabelValues("expired", string(sub.Tier)).Inc()
		s.logger.Info("subscription expired",
			"user_id", userID,
			"tier", sub.Tier,
			"end_date", sub.EndDate,
		)
		return nil, nil
	}

	if !sub.IsActive(now) {
		return nil, nil
	}

	return sub, nil
}

// GetSubscription returns the stored row regardless of status.
func (s *Store) GetSubscription(
	ctx context.Context,
	userID string,
) (*Subscription, error) {
	return s.repo.GetByUserID(ctx, userID)
}

// CreateFreeSubscription provisions the free plan. Calling it again for the
// same user returns the existing row unchanged.
func (s *Store) CreateFreeSubscription(
	ctx context.Context,
	userID string,
) (*Subscription, error) {
	sub := &Subscription{
		ID:            uuid.New().String(),
		UserID:        userID,
		Tier:          pricing.TierFree,
		Status:        StatusActive,
		PaymentMethod: PaymentNone,
		StartDate:     s.now(),
	}

	stored, err := s.repo.CreateIfAbsent(ctx, sub)
	if err != nil {
		return nil, err
	}

	if stored.ID == sub.ID {
		metrics.SubscriptionChangesTotal.WithLabelValues("provisioned", string(pricing.TierFree)).Inc()
	}

	return stored, nil
}

// CreateOrUpdateSubscription sets the user's plan, starting now. Paid tiers
// run for the requested number of months; free never ends.
func (s *Store) CreateOrUpdateSubscription(
	ctx context.Context,
	userID string,
	tier pricing.Tier,
	opts Options,
) (*Subscription, error) {
	if !tier.Valid() {
		return nil, fmt.Errorf("update subscription: tier %q: %w", tier, core.ErrInvalidInput)
	}

	months := opts.DurationMonths
	if months == 0 {
		months = s.cfg.DefaultDurationMonths
	}
	// Free plans never end, so the duration is not checked for them.
	if tier.IsPaid() && (months < 1 || months > s.cfg.MaxDurationMonths) {
		return nil, fmt.Errorf(
			"update subscription: duration %d months outside 1..%d: %w",
			months, s.cfg.MaxDurationMonths, core.ErrInvalidInput,
		)
	}

	method := opts.PaymentMethod
	if method == "" {
		method = PaymentManual
		if !tier.IsPaid() {
			method = PaymentNone
		}
	}
	if !method.Valid() {
		return nil, fmt.Errorf("update subscription: payment method %q: %w", method, core.ErrInvalidInput)
	}

	now := s.now()
	sub := &Subscription{
		ID:            uuid.New().String(),
		UserID:        userID,
		Tier:          tier,
		Status:        StatusActive,
		PaymentMethod: method,
		StartDate:     now,
		AdminNotes:    opts.AdminNotes,
	}
	if tier.IsPaid() {
		end := now.AddDate(0, months, 0)
		sub.EndDate = &end
	}
	if opts.CreatedBy != "" {
		createdBy := opts.CreatedBy
		sub.CreatedBy = &createdBy
	}

	stored, err := s.repo.Upsert(ctx, sub)
	if err != nil {
		return nil, err
	}

	metrics.SubscriptionChangesTotal.WithLabelValues("updated", string(tier)).Inc()
	s.logger.Info("subscription updated",
		"user_id", userID,
		"tier", tier,
		"end_date", stored.EndDate,
		"created_by", opts.CreatedBy,
	)

	return stored, nil
}

// CancelSubscription marks the user's subscription cancelled without
// provisioning a replacement. It returns nil when the user has none.
func (s *Store) CancelSubscription(
	ctx context.Context,
	userID string,
) (*Subscription, error) {
	sub, err := s.repo.Cancel(ctx, userID, s.now())
	if errors.Is(err, core.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	metrics.SubscriptionChangesTotal.WithLabelValues("cancelled", string(sub.Tier)).Inc()
	s.logger.Info("subscription cancelled", "user_id", userID, "tier", sub.Tier)

	return sub, nil
}

func (s *Store) CountByTier(ctx context.Context) (map[pricing.Tier]int, error) {
	return s.repo.CountByTier(ctx)
}
