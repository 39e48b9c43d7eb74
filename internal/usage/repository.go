// AngelaMos | 2026
// repository.go

package usage

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/carterperez-dev/jobtracker/internal/core"
)

// Mutator edits a locked usage row and reports whether it changed anything.
// Returning an error aborts the transaction.
type Mutator func(stats *UsageStats) (bool, error)

type Repository interface {
	// Update loads the user's row under a lock, creating it for month of now
	// when missing, applies fn, and persists the row if fn changed it.
	Update(
		ctx context.Context,
		userID string,
		now time.Time,
		fn Mutator,
	) (*UsageStats, error)
	CountActiveThisMonth(ctx context.Context, month string) (int, error)
}

type DB interface {
	core.DBTX
	core.TxBeginner
}

type repository struct {
	db DB
}

func NewRepository(db DB) Repository {
	return &repository{db: db}
}

func (r *repository) Update(
	ctx context.Context,
	userID string,
	now time.Time,
	fn Mutator,
) (*UsageStats, error) {
	var stats UsageStats

	err := core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		ensure := `
			INSERT INTO usage_stats (user_id, current_month, last_reset_date)
			VALUES ($1, $2, $3)
			ON CONFLICT (user_id) DO NOTHING`

		if _, err := tx.ExecContext(ctx, ensure, userID, MonthKey(now), now); err != nil {
			return fmt.Errorf("ensure usage stats: %w", err)
		}

		lock := `
			SELECT user_id, current_month, jobs_created, chat_messages,
			       monthly_stats, last_reset_date, created_at, updated_at
			FROM usage_stats
			WHERE user_id = $1
			FOR UPDATE`

		if err := tx.GetContext(ctx, &stats, lock, userID); err != nil {
			return fmt.Errorf("lock usage stats: %w", err)
		}

		changed, err := fn(&stats)
		if err != nil {
			return err
		}

		if !changed {
			return nil
		}

		save := `
			UPDATE usage_stats
			SET current_month = $2, jobs_created = $3, chat_messages = $4,
			    monthly_stats = $5, last_reset_date = $6, updated_at = NOW()
			WHERE user_id = $1
			RETURNING updated_at`

		err = tx.GetContext(ctx, &stats.UpdatedAt, save,
			stats.UserID,
			stats.CurrentMonth,
			stats.JobsCreated,
			stats.ChatMessages,
			stats.MonthlyStats,
			stats.LastResetDate,
		)
		if err != nil {
			return fmt.Errorf("save usage stats: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &stats, nil
}

// CountActiveThisMonth counts users with any usage recorded in month.
func (r *repository) CountActiveThisMonth(
	ctx context.Context,
	month string,
) (int, error) {
	query := `
		SELECT COUNT(*) FROM usage_stats
		WHERE current_month = $1 AND (jobs_created > 0 OR chat_messages > 0)`

	var count int
	if err := r.db.GetContext(ctx, &count, query, month); err != nil {
		return 0, fmt.Errorf("count active usage: %w", err)
	}

	return count, nil
}
