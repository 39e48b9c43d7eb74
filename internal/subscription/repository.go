// AngelaMos | 2026
// repository.go

package subscription

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/carterperez-dev/jobtracker/internal/core"
	"github.com/carterperez-dev/jobtracker/internal/pricing"
)

type Repository interface {
	GetByUserID(ctx context.Context, userID string) (*Subscription, error)
	CreateIfAbsent(ctx context.Context, sub *Subscription) (*Subscription, error)
	Upsert(ctx context.Context, sub *Subscription) (*Subscription, error)
	MarkExpired(ctx context.Context, id string) error
	Cancel(ctx context.Context, userID string, at time.Time) (*Subscription, error)
	CountByTier(ctx context.Context) (map[pricing.Tier]int, error)
}

const subscriptionColumns = `
	id, user_id, tier, status, payment_method, start_date, end_date,
	cancelled_at, admin_notes, created_by, created_at, updated_at`

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) GetByUserID(
	ctx context.Context,
	userID string,
) (*Subscription, error) {
	query := `SELECT ` + subscriptionColumns + `
		FROM subscriptions
		WHERE user_id = $1`

	var sub Subscription
	err := r.db.GetContext(ctx, &sub, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get subscription: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get subscription: %w", err)
	}

	return &sub, nil
}

// CreateIfAbsent inserts sub unless the user already has a subscription, and
// returns whichever row is stored afterwards.
func (r *repository) CreateIfAbsent(
	ctx context.Context,
	sub *Subscription,
) (*Subscription, error) {
	query := `
		INSERT INTO subscriptions (
			id, user_id, tier, status, payment_method, start_date, end_date,
			admin_notes, created_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (user_id) DO NOTHING`

	_, err := r.db.ExecContext(ctx, query,
		sub.ID,
		sub.UserID,
		sub.Tier,
		sub.Status,
		sub.PaymentMethod,
		sub.StartDate,
		sub.EndDate,
		sub.AdminNotes,
		sub.CreatedBy,
	)
	if err != nil {
		if core.IsForeignKeyError(err) {
			return nil, fmt.Errorf("create subscription: %w", core.ErrNotFound)
		}
		return nil, fmt.Errorf("create subscription: %w", err)
	}

	return r.GetByUserID(ctx, sub.UserID)
}

// Upsert writes sub as the user's only subscription. On conflict the stored
// id and created_at are kept and every plan field is replaced.
func (r *repository) Upsert(
	ctx context.Context,
	sub *Subscription,
) (*Subscription, error) {
	query := `
		INSERT INTO subscriptions (
			id, user_id, tier, status, payment_method, start_date, end_date,
			cancelled_at, admin_notes, created_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULL, $8, $9)
		ON CONFLICT (user_id) DO UPDATE SET
			tier = EXCLUDED.tier,
			status = EXCLUDED.status,
			payment_method = EXCLUDED.payment_method,
			start_date = EXCLUDED.start_date,
			end_date = EXCLUDED.end_date,
			cancelled_at = NULL,
			admin_notes = EXCLUDED.admin_notes,
			created_by = EXCLUDED.created_by,
			updated_at = NOW()
		RETURNING ` + subscriptionColumns

	var out Subscription
	err := r.db.GetContext(ctx, &out, query,
		sub.ID,
		sub.UserID,
		sub.Tier,
		sub.Status,
		sub.PaymentMethod,
		sub.StartDate,
		sub.EndDate,
		sub.AdminNotes,
		sub.CreatedBy,
	)
	if err != nil {
		if core.IsForeignKeyError(err) {
			return nil, fmt.Errorf("upsert subscription: %w", core.ErrNotFound)
		}
		return nil, fmt.Errorf("upsert subscription: %w", err)
	}

	return &out, nil
}

func (r *repository) MarkExpired(ctx context.Context, id string) error {
	query := `
		UPDATE subscriptions
		SET status = 'expired', updated_at = NOW()
		WHERE id = $1 AND status = 'active'`

	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("expire subscription: %w", err)
	}

	return nil
}

// Cancel marks the user's subscription cancelled. A user without one yields
// ErrNotFound.
func (r *repository) Cancel(
	ctx context.Context,
	userID string,
	at time.Time,
) (*Subscription, error) {
	query := `
		UPDATE subscriptions
		SET status = 'cancelled', cancelled_at = $2, updated_at = NOW()
		WHERE user_id = $1
		RETURNING ` + subscriptionColumns

	var sub Subscription
	err := r.db.GetContext(ctx, &sub, query, userID, at)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("cancel subscription: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("cancel subscription: %w", err)
	}

	return &sub, nil
}

// CountByTier counts subscriptions that currently grant their tier.
func (r *repository) CountByTier(
	ctx context.Context,
) (map[pricing.Tier]int, error) {
	query := `
		SELECT tier, COUNT(*) AS count
		FROM subscriptions
		WHERE status = 'active' AND (end_date IS NULL OR end_date >= NOW())
		GROUP BY tier`

	var rows []struct {
		Tier  pricing.Tier `db:"tier"`
		Count int          `db:"count"`
	}
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("count subscriptions by tier: %w", err)
	}

	counts := make(map[pricing.Tier]int, len(pricing.Tiers()))
	for _, t := range pricing.Tiers() {
		counts[t] = 0
	}
	for _, row := range rows {
		counts[row.Tier] = row.Count
	}

	return counts, nil
}
