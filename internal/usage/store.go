// AngelaMos | 2026
// store.go

package usage

import (
	"context"
	"fmt"
	"time"

	"github.com/carterperez-dev/jobtracker/internal/core"
	"github.com/carterperez-dev/jobtracker/internal/metrics"
	"github.com/carterperez-dev/jobtracker/internal/pricing"
)

// Decision is the outcome of Consume. Current is the usage before the
// request was applied and Month is the period it was charged to.
type Decision struct {
	Allowed bool
	Current int
	Limit   pricing.Limit
	Month   string
}

type Option func(*Store)

// WithClock replaces time.Now, mainly for tests that cross month boundaries.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

type Store struct {
	repo Repository
	now  func() time.Time
}

func NewStore(repo Repository, opts ...Option) *Store {
	s := &Store{repo: repo, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) GetOrCreateStats(
	ctx context.Context,
	userID string,
) (*UsageStats, error) {
	return s.update(ctx, userID, func(*UsageStats) (bool, error) {
		return false, nil
	})
}

func (s *Store) GetUserUsage(ctx context.Context, userID string) (Usage, error) {
	stats, err := s.GetOrCreateStats(ctx, userID)
	if err != nil {
		return Usage{}, err
	}
	return stats.Current(), nil
}

func (s *Store) RecordJobCreation(
	ctx context.Context,
	userID string,
	count int,
) (*UsageStats, error) {
	return s.record(ctx, userID, pricing.ResourceJobs, count)
}

func (s *Store) RecordChatMessage(
	ctx context.Context,
	userID string,
	count int,
) (*UsageStats, error) {
	return s.record(ctx, userID, pricing.ResourceChat, count)
}

// Consume adds count units of resource only if the result stays within
// limit. The check and the increment happen under one row lock.
func (s *Store) Consume(
	ctx context.Context,
	userID string,
	resource pricing.Resource,
	count int,
	limit pricing.Limit,
) (Decision, error) {
	n, err := normalizeCount(count)
	if err != nil {
		return Decision{}, fmt.Errorf("consume %s: %w", resource, err)
	}

	decision := Decision{Limit: limit}

	_, err = s.update(ctx, userID, func(stats *UsageStats) (bool, error) {
		decision.Month = stats.CurrentMonth
		decision.Current = stats.Count(resource)
		if !limit.Allows(decision.Current, n) {
			return false, nil
		}
		decision.Allowed = true
		stats.add(resource, n)
		return true, nil
	})
	if err != nil {
		return Decision{}, fmt.Errorf("consume %s: %w", resource, err)
	}

	if decision.Allowed {
		metrics.UsageRecordedTotal.WithLabelValues(string(resource)).Add(float64(n))
	}

	return decision, nil
}

// Release gives back units taken by Consume when the gated action failed.
// month is Decision.Month; once the counters have rolled past it the
// release is dropped. Counters never drop below zero.
func (s *Store) Release(
	ctx context.Context,
	userID string,
	resource pricing.Resource,
	count int,
	month string,
) error {
	n, err := normalizeCount(count)
	if err != nil {
		return fmt.Errorf("release %s: %w", resource, err)
	}
	if month == "" {
		return fmt.Errorf("release %s: empty month: %w", resource, core.ErrInvalidInput)
	}

	_, err = s.update(ctx, userID, func(stats *UsageStats) (bool, error) {
		if stats.CurrentMonth != month || stats.Count(resource) == 0 {
			return false, nil
		}
		stats.add(resource, -n)
		return true, nil
	})
	if err != nil {
		return fmt.Errorf("release %s: %w", resource, err)
	}

	return nil
}

// CountActiveUsers counts users who used anything in the current month.
func (s *Store) CountActiveUsers(ctx context.Context) (int, error) {
	return s.repo.CountActiveThisMonth(ctx, MonthKey(s.now()))
}

func (s *Store) record(
	ctx context.Context,
	userID string,
	resource pricing.Resource,
	count int,
) (*UsageStats, error) {
	n, err := normalizeCount(count)
	if err != nil {
		return nil, fmt.Errorf("record %s: %w", resource, err)
	}

	stats, err := s.update(ctx, userID, func(stats *UsageStats) (bool, error) {
		stats.add(resource, n)
		return true, nil
	})
	if err != nil {
		return nil, fmt.Errorf("record %s: %w", resource, err)
	}

	metrics.UsageRecordedTotal.WithLabelValues(string(resource)).Add(float64(n))
	return stats, nil
}

func (s *Store) update(
	ctx context.Context,
	userID string,
	fn Mutator,
) (*UsageStats, error) {
	if userID == "" {
		return nil, fmt.Errorf("usage: empty user id: %w", core.ErrInvalidInput)
	}

	now := s.now()
	rolled := false

	stats, err := s.repo.Update(ctx, userID, now, func(stats *UsageStats) (bool, error) {
		rolled = stats.Rollover(now)
		changed, err := fn(stats)
		return rolled || changed, err
	})
	if err != nil {
		return nil, err
	}

	if rolled {
		metrics.UsageRolloversTotal.Inc()
	}

	return stats, nil
}

// normalizeCount treats 0 as a single unit and rejects negative counts.
func normalizeCount(count int) (int, error) {
	if count < 0 {
		return 0, fmt.Errorf("negative count %d: %w", count, core.ErrInvalidInput)
	}
	if count == 0 {
		return 1, nil
	}
	return count, nil
}
