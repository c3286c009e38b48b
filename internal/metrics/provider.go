package metrics

import "github.com/prometheus/client_golang/prometheus"

// Provider, cache, rate limit and generation metrics.
var (
	ProviderRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pathwise",
			Name:      "provider_requests_total",
			Help:      "Total number of content provider requests",
		},
		[]string{"provider", "status"}, // ok / error / rejected / panic
	)

	ProviderRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "pathwise",
			Name:      "provider_request_duration_seconds",
			Help:      "Content provider request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"provider"},
	)

	ProviderResults = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "pathwise",
			Name:      "provider_results",
			Help:      "Number of items returned per provider call",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 40},
		},
		[]string{"provider"},
	)

	ProviderBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "pathwise",
			Name:      "provider_circuit_breaker_state",
			Help:      "Circuit breaker state per provider (0=closed, 1=half-open, 2=open)",
		},
		[]string{"provider"},
	)

	CacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pathwise",
			Name:      "cache_total",
			Help:      "Cache hits and misses",
		},
		[]string{"namespace", "result"}, // "hit" / "miss"
	)

	RateLimitRejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pathwise",
			Name:      "rate_limit_rejections_total",
			Help:      "Requests rejected by the per-client rate limiter",
		},
		[]string{"endpoint"},
	)

	GenerationRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pathwise",
			Name:      "generation_requests_total",
			Help:      "Total number of AI generation requests",
		},
		[]string{"provider", "model", "status"},
	)

	GenerationRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "pathwise",
			Name:      "generation_request_duration_seconds",
			Help:      "AI generation request duration in seconds",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 40, 60},
		},
		[]string{"provider", "model"},
	)

	GenerationTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pathwise",
			Name:      "generation_tokens_total",
			Help:      "Total AI generation tokens consumed",
		},
		[]string{"provider", "model", "type"},
	)

	GenerationErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pathwise",
			Name:      "generation_errors_total",
			Help:      "Total AI generation errors",
		},
		[]string{"provider", "model", "error_type"},
	)

	GenerationBudgetTokensRemaining = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "pathwise",
			Name:      "generation_budget_tokens_remaining",
			Help:      "Remaining AI token budget",
		},
		[]string{"provider", "period"},
	)
)

var registered bool

// Register registers the HTTP and domain metrics with the default registry.
// Must be called once from main.
func Register() {
	if registered {
		return
	}
	prometheus.MustRegister(
		httpRequestDuration,
		httpRequestsTotal,
		httpResponseBytes,
		httpInFlight,
		ProviderRequestsTotal,
		ProviderRequestDuration,
		ProviderResults,
		ProviderBreakerState,
		CacheTotal,
		RateLimitRejectionsTotal,
		GenerationRequestsTotal,
		GenerationRequestDuration,
		GenerationTokensTotal,
		GenerationErrorsTotal,
		GenerationBudgetTokensRemaining,
	)
	registered = true
}
