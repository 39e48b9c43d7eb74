// AngelaMos | 2026
// fakes_test.go

package subscription

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/carterperez-dev/jobtracker/internal/core"
	"github.com/carterperez-dev/jobtracker/internal/pricing"
	"github.com/carterperez-dev/jobtracker/internal/usage"
)

type memSubscriptionRepo struct {
	mu      sync.Mutex
	rows    map[string]*Subscription
	inserts int
}

func newMemSubscriptionRepo() *memSubscriptionRepo {
	return &memSubscriptionRepo{rows: make(map[string]*Subscription)}
}

func (m *memSubscriptionRepo) GetByUserID(_ context.Context, userID string) (*Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	row, ok := m.rows[userID]
	if !ok {
		return nil, fmt.Errorf("get subscription: %w", core.ErrNotFound)
	}
	out := *row
	return &out, nil
}

func (m *memSubscriptionRepo) CreateIfAbsent(_ context.Context, sub *Subscription) (*Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if row, ok := m.rows[sub.UserID]; ok {
		out := *row
		return &out, nil
	}

	stored := *sub
	stored.CreatedAt = sub.StartDate
	stored.UpdatedAt = sub.StartDate
	m.rows[sub.UserID] = &stored
	m.inserts++

	out := stored
	return &out, nil
}

func (m *memSubscriptionRepo) Upsert(_ context.Context, sub *Subscription) (*Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := *sub
	stored.CancelledAt = nil
	stored.UpdatedAt = sub.StartDate
	if existing, ok := m.rows[sub.UserID]; ok {
		stored.ID = existing.ID
		stored.CreatedAt = existing.CreatedAt
	} else {
		stored.CreatedAt = sub.StartDate
		m.inserts++
	}
	m.rows[sub.UserID] = &stored

	out := stored
	return &out, nil
}

func (m *memSubscriptionRepo) MarkExpired(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, row := range m.rows {
		if row.ID == id && row.Status == StatusActive {
			row.Status = StatusExpired
		}
	}
	return nil
}

func (m *memSubscriptionRepo) Cancel(_ context.Context, userID string, at time.Time) (*Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	row, ok := m.rows[userID]
	if !ok {
		return nil, fmt.Errorf("cancel subscription: %w", core.ErrNotFound)
	}
	row.Status = StatusCancelled
	row.CancelledAt = &at

	out := *row
	return &out, nil
}

func (m *memSubscriptionRepo) CountByTier(context.Context) (map[pricing.Tier]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	counts := map[pricing.Tier]int{}
	for _, row := range m.rows {
		if row.Status == StatusActive {
			counts[row.Tier]++
		}
	}
	return counts, nil
}

type memUsageRepo struct {
	mu   sync.Mutex
	rows map[string]*usage.UsageStats
}

func newMemUsageRepo() *memUsageRepo {
	return &memUsageRepo{rows: make(map[string]*usage.UsageStats)}
}

func (m *memUsageRepo) Update(
	_ context.Context,
	userID string,
	now time.Time,
	fn usage.Mutator,
) (*usage.UsageStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	row, ok := m.rows[userID]
	if !ok {
		row = &usage.UsageStats{
			UserID:        userID,
			CurrentMonth:  usage.MonthKey(now),
			MonthlyStats:  usage.MonthlyStats{},
			LastResetDate: now,
		}
		m.rows[userID] = row
	}

	working := *row
	working.MonthlyStats = append(usage.MonthlyStats{}, row.MonthlyStats...)

	changed, err := fn(&working)
	if err != nil {
		return nil, err
	}
	if changed {
		*row = working
	}

	out := *row
	return &out, nil
}

func (m *memUsageRepo) CountActiveThisMonth(context.Context, string) (int, error) {
	return 0, nil
}

type fixture struct {
	subs    *memSubscriptionRepo
	usages  *memUsageRepo
	store   *Store
	tracker *usage.Store
	service *Service
	now     time.Time
}

func newFixture() *fixture {
	f := &fixture{
		subs:   newMemSubscriptionRepo(),
		usages: newMemUsageRepo(),
		now:    time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC),
	}

	clock := func() time.Time { return f.now }

	f.store = NewStore(f.subs, StoreConfig{DefaultDurationMonths: 1, MaxDurationMonths: 36}, nil,
		WithClock(clock))
	f.tracker = usage.NewStore(f.usages, usage.WithClock(clock))
	f.service = NewService(f.store, f.tracker, nil)
	return f
}

func (f *fixture) setUsage(userID string, jobs, chat int) {
	f.usages.mu.Lock()
	defer f.usages.mu.Unlock()

	f.usages.rows[userID] = &usage.UsageStats{
		UserID:        userID,
		CurrentMonth:  usage.MonthKey(f.now),
		JobsCreated:   jobs,
		ChatMessages:  chat,
		MonthlyStats:  usage.MonthlyStats{},
		LastResetDate: f.now,
	}
}
