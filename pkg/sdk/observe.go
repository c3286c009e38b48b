package pathwise

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pathwise-edu/pathwise/internal/domain"
)

// sdkMetrics holds prometheus metrics registered for the SDK.
type sdkMetrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

func newSDKMetrics(reg prometheus.Registerer) (*sdkMetrics, error) {
	m := &sdkMetrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pathwise",
			Subsystem: "sdk",
			Name:      "operations_total",
			Help:      "Total SDK operations by type and status.",
		}, []string{"operation", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "pathwise",
			Subsystem: "sdk",
			Name:      "operation_duration_seconds",
			Help:      "SDK operation duration in seconds.",
			Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"operation"}),
	}
	if err := registerOrReuse(reg, &m.operations); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.duration); err != nil {
		return nil, err
	}
	return m, nil
}

// registerOrReuse registers a collector or reuses an existing one, so two
// clients can share a registry.
func registerOrReuse[T prometheus.Collector](reg prometheus.Registerer, c *T) error {
	if err := reg.Register(*c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			existing, ok := are.ExistingCollector.(T)
			if !ok {
				return fmt.Errorf("pathwise: metric already registered with incompatible type: %T", are.ExistingCollector)
			}
			*c = existing
			return nil
		}
		return fmt.Errorf("pathwise: register metric: %w", err)
	}
	return nil
}

// observer provides logging and metrics for SDK operations.
type observer struct {
	logger  *slog.Logger
	metrics *sdkMetrics
}

func newObserver(logger *slog.Logger, reg prometheus.Registerer) (*observer, error) {
	var m *sdkMetrics
	if reg != nil {
		var err error
		m, err = newSDKMetrics(reg)
		if err != nil {
			return nil, err
		}
	}
	return &observer{logger: logger, metrics: m}, nil
}

// status buckets caller mistakes apart from failures worth alerting on.
func status(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrNotFound):
		return "invalid"
	case errors.Is(err, domain.ErrNotConfigured), errors.Is(err, domain.ErrBudgetExceeded):
		return "unavailable"
	default:
		return "error"
	}
}

func (o *observer) observe(op string, start time.Time, err error) {
	if o == nil {
		return
	}
	dur := time.Since(start)
	st := status(err)

	if o.metrics != nil {
		o.metrics.operations.WithLabelValues(op, st).Inc()
		o.metrics.duration.WithLabelValues(op).Observe(dur.Seconds())
	}

	if o.logger == nil {
		return
	}
	switch st {
	case "ok":
		o.logger.Debug("operation completed", "op", op, "duration", dur)
	case "error":
		o.logger.Warn("operation failed", "op", op, "duration", dur, "error", err)
	default:
		o.logger.Info("operation rejected", "op", op, "status", st, "error", err)
	}
}
