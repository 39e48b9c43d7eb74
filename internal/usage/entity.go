// AngelaMos | 2026
// entity.go

// Package usage keeps the per-user monthly counters that plan limits are
// enforced against, along with a short history of past months.
package usage

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/carterperez-dev/jobtracker/internal/pricing"
)

const (
	// MaxHistoryMonths bounds MonthlyStats; older entries are dropped first.
	MaxHistoryMonths = 12

	monthLayout = "2006-01"
)

// MonthKey formats t as the UTC calendar month counters are bucketed by.
func MonthKey(t time.Time) string {
	return t.UTC().Format(monthLayout)
}

type MonthlyStat struct {
	Month        string `json:"month"`
	JobsCreated  int    `json:"jobsCreated"`
	ChatMessages int    `json:"chatMessages"`
}

// MonthlyStats is stored as a JSONB array, oldest month first.
type MonthlyStats []MonthlyStat

func (m MonthlyStats) Value() (driver.Value, error) {
	if m == nil {
		return "[]", nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode monthly stats: %w", err)
	}
	return string(data), nil
}

func (m *MonthlyStats) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*m = MonthlyStats{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("scan monthly stats: unsupported type %T", src)
	}

	var out MonthlyStats
	if err := json.Unmarshal(data, &out); err != nil {
		return fmt.Errorf("scan monthly stats: %w", err)
	}
	if out == nil {
		out = MonthlyStats{}
	}
	*m = out
	return nil
}

type UsageStats struct {
	UserID        string       `db:"user_id"`
	CurrentMonth  string       `db:"current_month"`
	JobsCreated   int          `db:"jobs_created"`
	ChatMessages  int          `db:"chat_messages"`
	MonthlyStats  MonthlyStats `db:"monthly_stats"`
	LastResetDate time.Time    `db:"last_reset_date"`
	CreatedAt     time.Time    `db:"created_at"`
	UpdatedAt     time.Time    `db:"updated_at"`
}

// Usage is the current month's counters.
type Usage struct {
	JobsCreated  int `json:"jobsCreated"`
	ChatMessages int `json:"chatMessages"`
}

func newUsageStats(userID string, now time.Time) *UsageStats {
	return &UsageStats{
		UserID:        userID,
		CurrentMonth:  MonthKey(now),
		MonthlyStats:  MonthlyStats{},
		LastResetDate: now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// Rollover closes out the stored month when now falls in a later one. The
// closed month is archived only if something was counted in it. It reports
// whether the record changed.
func (u *UsageStats) Rollover(now time.Time) bool {
	month := MonthKey(now)
	if u.CurrentMonth == month {
		return false
	}

	if u.JobsCreated != 0 || u.ChatMessages != 0 {
		u.MonthlyStats = append(u.MonthlyStats, MonthlyStat{
			Month:        u.CurrentMonth,
			JobsCreated:  u.JobsCreated,
			ChatMessages: u.ChatMessages,
		})
		if n := len(u.MonthlyStats); n > MaxHistoryMonths {
			u.MonthlyStats = append(
				MonthlyStats{},
				u.MonthlyStats[n-MaxHistoryMonths:]...,
			)
		}
	}

	u.CurrentMonth = month
	u.JobsCreated = 0
	u.ChatMessages = 0
	u.LastResetDate = now
	return true
}

func (u *UsageStats) Current() Usage {
	return Usage{JobsCreated: u.JobsCreated, ChatMessages: u.ChatMessages}
}

func (u *UsageStats) Count(resource pricing.Resource) int {
	switch resource {
	case pricing.ResourceJobs:
		return u.JobsCreated
	case pricing.ResourceChat:
		return u.ChatMessages
	}
	return 0
}

// add adjusts the counter for resource by n, never going below zero.
func (u *UsageStats) add(resource pricing.Resource, n int) {
	switch resource {
	case pricing.ResourceJobs:
		u.JobsCreated = max(u.JobsCreated+n, 0)
	case pricing.ResourceChat:
		u.ChatMessages = max(u.ChatMessages+n, 0)
	}
}
