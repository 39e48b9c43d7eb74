// AngelaMos | 2026
// handler.go

// Package health serves liveness and readiness probes.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/carterperez-dev/jobtracker/internal/metrics"
)

const defaultProbeTimeout = 5 * time.Second

type Checker interface {
	Ping(ctx context.Context) error
}

// Dependency is one backing service probed by the readiness check.
type Dependency struct {
	Name    string
	Checker Checker
}

type state int32

const (
	stateServing state = iota
	stateNotReady
	stateDraining
)

type Handler struct {
	deps    []Dependency
	timeout time.Duration
	state   atomic.Int32
}

func NewHandler(deps ...Dependency) *Handler {
	return &Handler{deps: deps, timeout: defaultProbeTimeout}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", h.Liveness)
	r.Get("/livez", h.Liveness)
	r.Get("/readyz", h.Readiness)
}

// SetReady toggles readiness without affecting liveness. It has no effect
// once draining started.
func (h *Handler) SetReady(ready bool) {
	from, to := stateServing, stateNotReady
	if ready {
		from, to = to, from
	}
	h.state.CompareAndSwap(int32(from), int32(to))
}

// Drain fails both probes for the rest of the process lifetime.
func (h *Handler) Drain() {
	h.state.Store(int32(stateDraining))
}

func (h *Handler) current() state {
	return state(h.state.Load())
}

func (h *Handler) Liveness(w http.ResponseWriter, _ *http.Request) {
	if h.current() == stateDraining {
		writeJSON(w, http.StatusServiceUnavailable, StatusResponse{Status: "shutting_down"})
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

func (h *Handler) Readiness(w http.ResponseWriter, r *http.Request) {
	switch h.current() {
	case stateDraining:
		writeJSON(w, http.StatusServiceUnavailable, StatusResponse{Status: "shutting_down"})
		return
	case stateNotReady:
		writeJSON(w, http.StatusServiceUnavailable, StatusResponse{Status: "not_ready"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	resp := ReadinessResponse{Status: "ok", Checks: h.probe(ctx)}
	code := http.StatusOK
	for _, c := range resp.Checks {
		if !c.Healthy {
			resp.Status = "degraded"
			code = http.StatusServiceUnavailable
			break
		}
	}
	writeJSON(w, code, resp)
}

// probe pings every dependency concurrently. Results keep the order of
// h.deps.
func (h *Handler) probe(ctx context.Context) []HealthCheck {
	checks := make([]HealthCheck, len(h.deps))

	var g errgroup.Group
	for i, dep := range h.deps {
		g.Go(func() error {
			checks[i] = ping(ctx, dep)
			return nil
		})
	}
	_ = g.Wait()

	for _, c := range checks {
		up := 0.0
		if c.Healthy {
			up = 1
		}
		metrics.DependencyUp.WithLabelValues(c.Name).Set(up)
	}
	return checks
}

func ping(ctx context.Context, dep Dependency) HealthCheck {
	if dep.Checker == nil {
		return HealthCheck{Name: dep.Name, Message: "checker not configured"}
	}

	start := time.Now()
	err := dep.Checker.Ping(ctx)
	c := HealthCheck{
		Name:      dep.Name,
		Healthy:   err == nil,
		LatencyMS: time.Since(start).Milliseconds(),
	}
	if err != nil {
		c.Message = "ping failed"
	}
	return c
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

type StatusResponse struct {
	Status string `json:"status"`
}

type ReadinessResponse struct {
	Status string        `json:"status"`
	Checks []HealthCheck `json:"checks"`
}

type HealthCheck struct {
	Name      string `json:"name"`
	Healthy   bool   `json:"healthy"`
	LatencyMS int64  `json:"latencyMs"`
	Message   string `json:"message,omitempty"`
}
