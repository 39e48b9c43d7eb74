// AngelaMos | 2026
// system.go

package admin

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/carterperez-dev/jobtracker/internal/core"
)

const pingTimeout = 2 * time.Second

func (h *Handler) GetSystemStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()

	resp := SystemStatsResponse{
		Database: DatabaseStatus{Stats: h.dbStats()},
		Redis:    RedisStatus{Stats: h.redisStats()},
		Runtime:  readRuntimeStats(),
	}

	var g errgroup.Group
	if h.cfg.Database != nil {
		g.Go(func() error {
			resp.Database.Healthy = h.cfg.Database.Ping(ctx) == nil
			return nil
		})
	}
	if h.cfg.Redis != nil {
		g.Go(func() error {
			resp.Redis.Healthy = h.cfg.Redis.Ping(ctx) == nil
			return nil
		})
	}
	_ = g.Wait()

	core.OK(w, resp)
}

func (h *Handler) GetDatabaseStats(w http.ResponseWriter, _ *http.Request) {
	core.OK(w, h.dbStats())
}

func (h *Handler) GetRedisStats(w http.ResponseWriter, _ *http.Request) {
	core.OK(w, h.redisStats())
}

func (h *Handler) GetRuntimeStats(w http.ResponseWriter, _ *http.Request) {
	core.OK(w, readRuntimeStats())
}

func (h *Handler) dbStats() *DBPoolStats {
	if h.cfg.Database == nil {
		return nil
	}
	s := h.cfg.Database.Stats()
	return &DBPoolStats{
		MaxOpen:      s.MaxOpenConnections,
		Open:         s.OpenConnections,
		InUse:        s.InUse,
		Idle:         s.Idle,
		WaitCount:    s.WaitCount,
		WaitMillis:   s.WaitDuration.Milliseconds(),
		ClosedIdle:   s.MaxIdleClosed + s.MaxIdleTimeClosed,
		ClosedMaxAge: s.MaxLifetimeClosed,
	}
}

func (h *Handler) redisStats() *RedisPoolStats {
	if h.cfg.Redis == nil {
		return nil
	}
	s := h.cfg.Redis.PoolStats()
	if s == nil {
		return nil
	}
	return &RedisPoolStats{
		Hits:     s.Hits,
		Misses:   s.Misses,
		Timeouts: s.Timeouts,
		Total:    s.TotalConns,
		Idle:     s.IdleConns,
		Stale:    s.StaleConns,
	}
}

func readRuntimeStats() RuntimeStats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return RuntimeStats{
		GoVersion:  runtime.Version(),
		Goroutines: runtime.NumGoroutine(),
		CPUs:       runtime.NumCPU(),
		HeapBytes:  m.HeapAlloc,
		SysBytes:   m.Sys,
		GCCycles:   m.NumGC,
	}
}
