// AngelaMos | 2026
// handler.go

// Package admin serves operator statistics: plan distribution, monthly
// activity, and backing service health.
package admin

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/carterperez-dev/jobtracker/internal/core"
	"github.com/carterperez-dev/jobtracker/internal/pricing"
	"github.com/carterperez-dev/jobtracker/internal/usage"
)

type SubscriptionCounter interface {
	CountByTier(ctx context.Context) (map[pricing.Tier]int, error)
}

type ActivityCounter interface {
	CountActiveUsers(ctx context.Context) (int, error)
}

type DatabaseProbe interface {
	Ping(ctx context.Context) error
	Stats() sql.DBStats
}

type RedisProbe interface {
	Ping(ctx context.Context) error
	PoolStats() *redis.PoolStats
}

// HandlerConfig fields may be nil; the matching section is then omitted
// or reported as unhealthy.
type HandlerConfig struct {
	Database      DatabaseProbe
	Redis         RedisProbe
	Subscriptions SubscriptionCounter
	Activity      ActivityCounter
}

type Handler struct {
	cfg HandlerConfig
	now func() time.Time
}

func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{cfg: cfg, now: time.Now}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator, adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/admin/stats", func(r chi.Router) {
		r.Use(authenticator, adminOnly)

		r.Get("/", h.GetSystemStats)
		r.Get("/plans", h.GetPlanStats)
		r.Get("/db", h.GetDatabaseStats)
		r.Get("/redis", h.GetRedisStats)
		r.Get("/runtime", h.GetRuntimeStats)
	})
}

// GetPlanStats reports how many users sit on each tier and how many
// recorded usage in the current month.
func (h *Handler) GetPlanStats(w http.ResponseWriter, r *http.Request) {
	now := h.now().UTC()
	resp := PlanStatsResponse{
		Month:       usage.MonthKey(now),
		ByTier:      make(map[string]int, len(pricing.Tiers())),
		GeneratedAt: now,
	}

	var counts map[pricing.Tier]int
	g, ctx := errgroup.WithContext(r.Context())
	if h.cfg.Subscriptions != nil {
		g.Go(func() (err error) {
			counts, err = h.cfg.Subscriptions.CountByTier(ctx)
			return err
		})
	}
	if h.cfg.Activity != nil {
		g.Go(func() (err error) {
			resp.ActiveUsersThisMonth, err = h.cfg.Activity.CountActiveUsers(ctx)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		core.InternalServerError(w, err)
		return
	}

	for _, tier := range pricing.Tiers() {
		resp.ByTier[string(tier)] = counts[tier]
		resp.TotalSubscriptions += counts[tier]
	}
	core.OK(w, resp)
}
