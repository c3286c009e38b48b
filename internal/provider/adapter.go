// Package provider turns fallible upstream fetchers into the never-failing
// sources the search orchestrator consumes.
package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/pathwise-edu/pathwise/internal/domain/resource"
)

// Fetcher queries one upstream catalog.
type Fetcher interface {
	Fetch(ctx context.Context, topic, language string, maxResults int) ([]resource.Item, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, topic, language string, maxResults int) ([]resource.Item, error)

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context, topic, language string, maxResults int) ([]resource.Item, error) {
	return f(ctx, topic, language, maxResults)
}

// Config tunes the per-call timeout and the circuit breaker.
type Config struct {
	Timeout time.Duration
	// BreakerFailures is the number of consecutive failures that opens the breaker.
	BreakerFailures uint32
	// BreakerTimeout is how long the breaker stays open before probing.
	BreakerTimeout time.Duration
}

// DefaultConfig returns the settings used when config leaves them empty.
func DefaultConfig() Config {
	return Config{
		Timeout:         10 * time.Second,
		BreakerFailures: 5,
		BreakerTimeout:  time.Minute,
	}
}

// Metrics are passed explicitly; any field may be nil.
type Metrics struct {
	Requests     *prometheus.CounterVec   // labels: provider, status
	Duration     *prometheus.HistogramVec // labels: provider
	Results      *prometheus.HistogramVec // labels: provider
	BreakerState *prometheus.GaugeVec     // labels: provider
}

// Adapter wraps a Fetcher with a timeout, a circuit breaker and panic
// recovery. Search never fails: every error becomes an empty result.
type Adapter struct {
	name    string
	fetcher Fetcher
	cb      *gobreaker.CircuitBreaker[[]resource.Item]
	timeout time.Duration
	metrics Metrics
	logger  *zap.Logger
}

// New creates an adapter named name (also the metrics label).
func New(name string, f Fetcher, cfg Config, m Metrics, logger *zap.Logger) *Adapter {
	def := DefaultConfig()
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.BreakerFailures == 0 {
		cfg.BreakerFailures = def.BreakerFailures
	}
	if cfg.BreakerTimeout <= 0 {
		cfg.BreakerTimeout = def.BreakerTimeout
	}

	a := &Adapter{
		name:    name,
		fetcher: f,
		timeout: cfg.Timeout,
		metrics: m,
		logger:  logger.With(zap.String("provider", name)),
	}
	if m.BreakerState != nil {
		m.BreakerState.WithLabelValues(name).Set(stateToFloat(gobreaker.StateClosed))
	}

	a.cb = gobreaker.NewCircuitBreaker[[]resource.Item](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerFailures
		},
		// caller cancellation is not the provider's fault
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			a.logger.Info("Circuit breaker state transition",
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			if a.metrics.BreakerState != nil {
				a.metrics.BreakerState.WithLabelValues(name).Set(stateToFloat(to))
			}
		},
	})

	return a
}

// Name returns the provider name.
func (a *Adapter) Name() string { return a.name }

// Search fetches up to maxResults items. Failures, timeouts, open breakers
// and panics all yield an empty result.
func (a *Adapter) Search(ctx context.Context, topic, language string, maxResults int) []resource.Item {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	start := time.Now()
	items, err := a.cb.Execute(func() (items []resource.Item, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = &panicError{value: r}
			}
		}()
		return a.fetcher.Fetch(ctx, topic, language, maxResults)
	})
	a.observeDuration(time.Since(start))

	if err != nil {
		status := "error"
		var pe *panicError
		switch {
		case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
			status = "rejected"
		case errors.As(err, &pe):
			status = "panic"
		}
		a.incRequests(status)
		a.logger.Warn("Provider search failed",
			zap.String("status", status),
			zap.String("topic", topic),
			zap.Error(err),
		)
		return nil
	}

	if len(items) > maxResults {
		items = items[:maxResults]
	}
	a.incRequests("ok")
	if a.metrics.Results != nil {
		a.metrics.Results.WithLabelValues(a.name).Observe(float64(len(items)))
	}
	return items
}

func (a *Adapter) incRequests(status string) {
	if a.metrics.Requests != nil {
		a.metrics.Requests.WithLabelValues(a.name, status).Inc()
	}
}

func (a *Adapter) observeDuration(d time.Duration) {
	if a.metrics.Duration != nil {
		a.metrics.Duration.WithLabelValues(a.name).Observe(d.Seconds())
	}
}

type panicError struct {
	value any
}

func (e *panicError) Error() string {
	return fmt.Sprintf("provider panicked: %v", e.value)
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
