package chi

import (
	"net/http"
	"time"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"go.uber.org/zap"

	"github.com/pathwise-edu/pathwise/internal/logger"
)

// CORSConfig configures cross-origin access for the web frontend.
type CORSConfig struct {
	AllowedOrigins   []string
	AllowCredentials bool
	MaxAge           time.Duration
}

// CORS returns the cross-origin middleware.
func CORS(cfg CORSConfig) func(http.Handler) http.Handler {
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", ClientIDHeader, "X-Request-ID"},
		ExposedHeaders:   []string{"Retry-After", "X-Cache", "X-Request-ID"},
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           int(cfg.MaxAge.Seconds()),
	})
}

// FloodGuard caps requests per remote IP across all routes. It sits in front
// of the per-endpoint quotas and only stops abusive bursts. requests <= 0
// disables it.
func FloodGuard(requests int, window time.Duration) func(http.Handler) http.Handler {
	if requests <= 0 || window <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(requests, window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, _ *http.Request) {
			writeError(w, http.StatusTooManyRequests, "Too many requests")
		}),
	)
}

// JSONRecoverer returns a JSON 500 instead of a plain text stacktrace on panic.
func JSONRecoverer(log *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					if rvr == http.ErrAbortHandler {
						panic(rvr)
					}
					log.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.String("path", r.URL.Path),
						zap.Stack("stacktrace"),
					)
					writeError(w, http.StatusInternalServerError, "internal error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// WideEvent emits a canonical log line per request and propagates X-Request-ID.
// It expects chi's RequestID middleware to run first.
func WideEvent(log *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := log.With(zap.String("request_id", requestID))
			ctx := logger.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.String("client_id", ClientID(r)),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
