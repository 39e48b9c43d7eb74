// AngelaMos | 2026
// ratelimit.go

package middleware

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	redis_rate "github.com/go-redis/redis_rate/v10"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/carterperez-dev/jobtracker/internal/core"
	"github.com/carterperez-dev/jobtracker/internal/metrics"
)

const keyPrefix = "jobtracker:ratelimit:"

// KeyFunc maps a request to the bucket it is charged against.
type KeyFunc func(*http.Request) string

// Policy is a named limit applied to one group of routes. Buckets of
// different policies never share state.
type Policy struct {
	Name  string
	Limit redis_rate.Limit
	Key   KeyFunc
}

// Every builds a limit of n requests per window with the given burst.
func Every(window time.Duration, n, burst int) redis_rate.Limit {
	if burst < 1 {
		burst = n
	}
	return redis_rate.Limit{Rate: n, Burst: burst, Period: window}
}

// RateLimiter enforces policies with a Redis GCRA limiter and degrades to
// a per-process token bucket while Redis is unreachable.
type RateLimiter struct {
	redis  *redis_rate.Limiter
	local  *localBuckets
	logger *slog.Logger
	now    func() time.Time
}

func NewRateLimiter(rdb *redis.Client, logger *slog.Logger) *RateLimiter {
	return &RateLimiter{
		redis:  redis_rate.NewLimiter(rdb),
		local:  newLocalBuckets(),
		logger: logger,
		now:    time.Now,
	}
}

func (rl *RateLimiter) Limit(p Policy) func(http.Handler) http.Handler {
	if p.Key == nil {
		p.Key = KeyByIP
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := keyPrefix + p.Name + ":" + p.Key(r)

			res, err := rl.redis.Allow(r.Context(), key, p.Limit)
			if err != nil {
				rl.logger.WarnContext(r.Context(), "rate limiter degraded to local buckets",
					"policy", p.Name,
					"error", err,
				)
				res = rl.local.allow(key, p.Limit, rl.now())
			}

			writeLimitHeaders(w.Header(), p.Limit, res, rl.now())

			if res.Allowed == 0 {
				metrics.RateLimitedTotal.WithLabelValues(p.Name).Inc()
				rejectLimited(w, res)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP uses the last X-Forwarded-For hop, which is the one appended by
// the proxy in front of the API.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		hops := strings.Split(xff, ",")
		return strings.TrimSpace(hops[len(hops)-1])
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func KeyByIP(r *http.Request) string {
	return "ip:" + ClientIP(r)
}

// KeyByUser falls back to the client address for anonymous requests.
func KeyByUser(r *http.Request) string {
	if id := GetUserID(r.Context()); id != "" {
		return "user:" + id
	}
	return KeyByIP(r)
}

func writeLimitHeaders(
	h http.Header,
	limit redis_rate.Limit,
	res *redis_rate.Result,
	now time.Time,
) {
	reset := res.ResetAfter
	if reset < 0 {
		reset = 0
	}

	h.Set("X-RateLimit-Limit", strconv.Itoa(limit.Rate))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(now.Add(reset).Unix(), 10))
	h.Set("RateLimit-Policy",
		fmt.Sprintf("%d;w=%d", limit.Rate, int(limit.Period.Seconds())))
}

func rejectLimited(w http.ResponseWriter, res *redis_rate.Result) {
	wait := int(res.RetryAfter.Round(time.Second).Seconds())
	if wait < 1 {
		wait = 1
	}

	w.Header().Set("Retry-After", strconv.Itoa(wait))
	core.JSONError(w, core.NewAppError(
		http.StatusTooManyRequests,
		"RATE_LIMITED",
		fmt.Sprintf("too many requests, retry in %ds", wait),
	))
}

const bucketIdle = 10 * time.Minute

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// localBuckets is swept inline on access instead of by a background
// goroutine, so an idle limiter holds no timers.
type localBuckets struct {
	mu        sync.Mutex
	buckets   map[string]*bucket
	lastSweep time.Time
}

func newLocalBuckets() *localBuckets {
	return &localBuckets{buckets: make(map[string]*bucket)}
}

func (l *localBuckets) allow(
	key string,
	limit redis_rate.Limit,
	now time.Time,
) *redis_rate.Result {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) > bucketIdle {
		for k, b := range l.buckets {
			if now.Sub(b.lastSeen) > bucketIdle {
				delete(l.buckets, k)
			}
		}
		l.lastSweep = now
	}

	perToken := limit.Period / time.Duration(max(limit.Rate, 1))

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(rate.Every(perToken), limit.Burst)}
		l.buckets[key] = b
	}
	b.lastSeen = now

	res := &redis_rate.Result{Limit: limit, RetryAfter: -1, ResetAfter: perToken}
	if b.limiter.AllowN(now, 1) {
		res.Allowed = 1
	} else {
		res.RetryAfter = perToken
	}
	res.Remaining = max(int(b.limiter.TokensAt(now)), 0)
	return res
}
