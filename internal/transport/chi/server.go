package chi

import (
	"errors"
	"fmt"
	"io"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/pathwise-edu/pathwise/internal/domain"
	domusage "github.com/pathwise-edu/pathwise/internal/domain/usage"
	"github.com/pathwise-edu/pathwise/internal/logger"
	generationuc "github.com/pathwise-edu/pathwise/internal/usecase/generation"
	healthuc "github.com/pathwise-edu/pathwise/internal/usecase/health"
	mediauc "github.com/pathwise-edu/pathwise/internal/usecase/media"
	"github.com/pathwise-edu/pathwise/internal/usecase/ratelimit"
	scholarshipuc "github.com/pathwise-edu/pathwise/internal/usecase/scholarship"
	searchuc "github.com/pathwise-edu/pathwise/internal/usecase/search"
	usageuc "github.com/pathwise-edu/pathwise/internal/usecase/usage"
	"github.com/pathwise-edu/pathwise/internal/validation"
	"github.com/pathwise-edu/pathwise/internal/version"
)

// Rate-limited endpoint names. They key the limiter policies in config.
const (
	EndpointTextSearch           = "text_search"
	EndpointVideoSearch          = "video_search"
	EndpointTextGeneration       = "text_generation"
	EndpointPracticeGeneration   = "practice_generation"
	EndpointQuizGeneration       = "quiz_generation"
	EndpointScriptGeneration     = "script_generation"
	EndpointScholarshipSearch    = "scholarship_search"
	EndpointScholarshipRecommend = "scholarship_recommend"
)

// ClientIDHeader lets a frontend pin the rate-limit identity of a user.
const ClientIDHeader = "X-Client-ID"

const maxBodyBytes = 1 << 20

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Deps are the use cases served over HTTP.
type Deps struct {
	Text         *searchuc.Service
	Videos       *searchuc.Service
	Generation   *generationuc.Service
	Scholarships *scholarshipuc.Service
	Media        *mediauc.Service
	Usage        *usageuc.Service
	Health       *healthuc.Service
	Limiter      *ratelimit.Limiter // nil disables per-endpoint quotas
}

// Server serves the PathWise REST API.
type Server struct {
	text          *searchuc.Service
	videos        *searchuc.Service
	generation    *generationuc.Service
	scholarships  *scholarshipuc.Service
	media         *mediauc.Service
	usage         *usageuc.Service
	health        *healthuc.Service
	limiter       *ratelimit.Limiter
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(d Deps, logger *zap.Logger) *Server {
	s := &Server{
		text:         d.Text,
		videos:       d.Videos,
		generation:   d.Generation,
		scholarships: d.Scholarships,
		media:        d.Media,
		usage:        d.Usage,
		health:       d.Health,
		limiter:      d.Limiter,
		logger:       logger,
	}
	s.errorHandlers = []errorHandler{
		rateLimitHandler,
		sentinelHandler(domain.ErrValidation, http.StatusBadRequest),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound),
		sentinelHandler(domain.ErrBudgetExceeded, http.StatusPaymentRequired),
		sentinelHandler(domain.ErrProviderError, http.StatusBadGateway),
		sentinelHandler(domain.ErrNotConfigured, http.StatusServiceUnavailable),
	}
	return s
}

// Routes registers every API route on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/", s.Root)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/api", func(r chi.Router) {
		r.Post("/text/search", s.limited(EndpointTextSearch, s.SearchText))
		r.Post("/text/generate", s.limited(EndpointTextGeneration, s.GenerateStudyGuide))
		r.Post("/text/practice", s.limited(EndpointPracticeGeneration, s.GeneratePractice))
		r.Post("/text/quiz", s.limited(EndpointQuizGeneration, s.GenerateQuiz))
		r.Get("/text/export/pdf", s.ExportPDF)
		r.Get("/text/stream-pdf", s.StreamPDF)

		r.Post("/videos/search", s.limited(EndpointVideoSearch, s.SearchVideos))
		r.Post("/videos/script", s.limited(EndpointScriptGeneration, s.GenerateVideoScript))
		r.Get("/videos/stream", s.StreamVideo)

		r.Post("/scholarships/search", s.limited(EndpointScholarshipSearch, s.SearchScholarships))
		r.Post("/scholarships/recommend", s.limited(EndpointScholarshipRecommend, s.RecommendScholarships))
		r.Get("/scholarships/all", s.ListScholarships)
		r.Get("/scholarships/{id}", s.GetScholarship)

		r.Get("/usage", s.GetUsage)
	})
}

// Root handles GET /.
func (s *Server) Root(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":    "PathWise API",
		"version": version.Version,
		"status":  "running",
		"ai":      s.generation != nil && s.generation.Enabled(),
	})
}

// GetUsage handles GET /api/usage.
func (s *Server) GetUsage(w http.ResponseWriter, r *http.Request) {
	period, err := domusage.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		s.handleDomainError(w, r, domain.NewValidation(err.Error()))
		return
	}

	report := s.usage.GetReport(r.Context(), period)
	b := report.Budget()

	writeJSON(w, http.StatusOK, usageResponse{
		Success:       true,
		Period:        string(report.Period()),
		Provider:      report.Provider(),
		PeriodStartAt: time.UnixMilli(report.PeriodStart()).UTC(),
		PeriodEndAt:   time.UnixMilli(report.PeriodEnd()).UTC(),
		Budget: budgetStatus{
			TokensLimit:     b.TokensLimit,
			TokensUsed:      b.TokensUsed,
			TokensRemaining: b.TokensRemaining,
			IsExhausted:     b.Exhausted,
			ResetsAt:        time.UnixMilli(b.ResetsAt).UTC(),
		},
	})
}

// HealthCheck handles GET /health. Degraded components never fail the probe:
// search keeps working without cache or AI.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	writeJSON(w, http.StatusOK, healthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// limited applies the endpoint quota for the calling client before h.
func (s *Server) limited(endpoint string, h http.HandlerFunc) http.HandlerFunc {
	if s.limiter == nil {
		return h
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.limiter.Allow(ClientID(r), endpoint); err != nil {
			s.handleDomainError(w, r, err)
			return
		}
		h(w, r)
	}
}

// ClientID identifies the caller for rate limiting: the X-Client-ID header,
// else the remote host.
func ClientID(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get(ClientIDHeader)); id != "" {
		return id
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// decode reads a JSON body into v and validates it. On failure the error
// response is already written.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		msg := "Invalid request body"
		if !errors.Is(err, io.EOF) {
			msg += ": " + err.Error()
		}
		writeError(w, http.StatusBadRequest, msg)
		return false
	}
	if err := validation.Struct(v); err != nil {
		s.handleDomainError(w, r, err)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorResponse{Detail: detail})
}

// safeDomainMessage returns a client-facing message without exposing internals.
// Validation errors carry their detail, everything else collapses to the sentinel text.
func safeDomainMessage(err error) string {
	if errors.Is(err, domain.ErrValidation) {
		return err.Error()
	}
	var rle *domain.RateLimitError
	if errors.As(err, &rle) {
		return fmt.Sprintf("Rate limit exceeded for %s. Try again in %d seconds.", rle.Endpoint, retryAfterSeconds(rle.RetryAfter))
	}
	sentinels := []error{
		domain.ErrNotFound,
		domain.ErrRateLimited,
		domain.ErrBudgetExceeded,
		domain.ErrProviderError,
		domain.ErrNotConfigured,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, msg)
		return true
	}
}

// rateLimitHandler handles ErrRateLimited with a Retry-After header.
func rateLimitHandler(w http.ResponseWriter, err error, msg string) bool {
	if !errors.Is(err, domain.ErrRateLimited) {
		return false
	}
	var rle *domain.RateLimitError
	if errors.As(err, &rle) {
		w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(rle.RetryAfter)))
	}
	writeError(w, http.StatusTooManyRequests, msg)
	return true
}

func retryAfterSeconds(d time.Duration) int {
	secs := int(math.Ceil(d.Seconds()))
	if secs < 1 {
		return 1
	}
	return secs
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContextOr(r.Context(), s.logger)
	log.Warn("domain error", zap.String("path", r.URL.Path), zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error")
}
