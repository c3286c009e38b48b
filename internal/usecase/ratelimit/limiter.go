// Package ratelimit enforces per-client, per-endpoint sliding-window quotas.
//
// State lives in process memory: counters reset on restart and are not shared
// between replicas.
package ratelimit

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pathwise-edu/pathwise/internal/domain"
)

// Policy is the quota for one endpoint.
type Policy struct {
	MaxCalls int
	Window   time.Duration
}

// Limiter keeps the timestamps of accepted calls keyed by "client:endpoint".
type Limiter struct {
	mu       sync.Mutex
	calls    map[string][]time.Time
	policies map[string]Policy
	now      func() time.Time

	rejections *prometheus.CounterVec
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

// WithRejectionCounter counts rejections by endpoint label.
func WithRejectionCounter(c *prometheus.CounterVec) Option {
	return func(l *Limiter) { l.rejections = c }
}

// New creates a Limiter with per-endpoint policies used by Allow.
func New(policies map[string]Policy, opts ...Option) *Limiter {
	l := &Limiter{
		calls:    make(map[string][]time.Time),
		policies: policies,
		now:      time.Now,
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Allow applies the configured policy for endpoint. Endpoints without a
// policy are unlimited.
func (l *Limiter) Allow(clientID, endpoint string) error {
	p, ok := l.policies[endpoint]
	if !ok {
		return nil
	}
	return l.Check(clientID, endpoint, p.MaxCalls, p.Window)
}

// Check records a call for clientID on endpoint, or returns a
// *domain.RateLimitError if maxCalls calls were already accepted within
// window. Rejected calls are not recorded.
func (l *Limiter) Check(clientID, endpoint string, maxCalls int, window time.Duration) error {
	key := clientID + ":" + endpoint
	now := l.now()
	windowStart := now.Add(-window)

	l.mu.Lock()
	defer l.mu.Unlock()

	calls := l.calls[key]
	kept := calls[:0]
	for _, ts := range calls {
		if ts.After(windowStart) {
			kept = append(kept, ts)
		}
	}

	if len(kept) >= maxCalls {
		l.calls[key] = kept
		if l.rejections != nil {
			l.rejections.WithLabelValues(endpoint).Inc()
		}
		var retryAfter time.Duration
		if len(kept) > 0 {
			retryAfter = kept[0].Sub(windowStart)
		}
		return domain.NewRateLimited(endpoint, retryAfter)
	}

	l.calls[key] = append(kept, now)
	return nil
}

// Remaining reports how many calls clientID may still make on endpoint
// within its policy window. Unknown endpoints report -1.
func (l *Limiter) Remaining(clientID, endpoint string) int {
	p, ok := l.policies[endpoint]
	if !ok {
		return -1
	}
	windowStart := l.now().Add(-p.Window)

	l.mu.Lock()
	defer l.mu.Unlock()

	n := 0
	for _, ts := range l.calls[clientID+":"+endpoint] {
		if ts.After(windowStart) {
			n++
		}
	}
	if n >= p.MaxCalls {
		return 0
	}
	return p.MaxCalls - n
}
