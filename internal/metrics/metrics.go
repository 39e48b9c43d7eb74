// AngelaMos | 2026
// metrics.go

// Package metrics declares the Prometheus collectors exported at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "jobtracker"

var (
	// HTTPRequestsTotal counts served requests by route pattern and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests by method, route and status code.",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	// QuotaChecksTotal counts plan decisions. result is "allowed" or "denied".
	QuotaChecksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "subscription",
		Name:      "quota_checks_total",
		Help:      "Plan gating decisions by action, tier and result.",
	}, []string{"action", "tier", "result"})

	UsageRecordedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "usage",
		Name:      "recorded_total",
		Help:      "Units of usage recorded by resource.",
	}, []string{"resource"})

	UsageRolloversTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "usage",
		Name:      "rollovers_total",
		Help:      "Monthly usage counter rollovers.",
	})

	// DependencyUp is 1 when the last readiness probe reached the dependency.
	DependencyUp = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "dependency_up",
		Help:      "Result of the last readiness probe per dependency.",
	}, []string{"dependency"})

	RateLimitedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "rate_limited_total",
		Help:      "Requests rejected by rate limit policy.",
	}, []string{"policy"})

	// SubscriptionChangesTotal counts lifecycle events (provisioned, updated,
	// cancelled, expired) by tier.
	SubscriptionChangesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "subscription",
		Name:      "changes_total",
		Help:      "Subscription lifecycle events by event and tier.",
	}, []string{"event", "tier"})
)

func QuotaResult(allowed bool) string {
	if allowed {
		return "allowed"
	}
	return "denied"
}
