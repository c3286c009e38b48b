package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/pathwise-edu/pathwise/internal/config"
	"github.com/pathwise-edu/pathwise/internal/db"
	dbBadger "github.com/pathwise-edu/pathwise/internal/db/badger"
	dbRedis "github.com/pathwise-edu/pathwise/internal/db/redis"
	"github.com/pathwise-edu/pathwise/internal/domain"
	logpkg "github.com/pathwise-edu/pathwise/internal/logger"
	"github.com/pathwise-edu/pathwise/internal/metrics"
	"github.com/pathwise-edu/pathwise/internal/provider"
	budgetrepo "github.com/pathwise-edu/pathwise/internal/repository/budget"
	"github.com/pathwise-edu/pathwise/internal/repository/cache"
	"github.com/pathwise-edu/pathwise/internal/repository/catalog"
	"github.com/pathwise-edu/pathwise/internal/transport/arxiv"
	chiTransport "github.com/pathwise-edu/pathwise/internal/transport/chi"
	"github.com/pathwise-edu/pathwise/internal/transport/googlecse"
	"github.com/pathwise-edu/pathwise/internal/transport/httputil"
	openaiGen "github.com/pathwise-edu/pathwise/internal/transport/openai"
	"github.com/pathwise-edu/pathwise/internal/transport/openlibrary"
	"github.com/pathwise-edu/pathwise/internal/transport/vimeo"
	"github.com/pathwise-edu/pathwise/internal/transport/youtube"
	generationuc "github.com/pathwise-edu/pathwise/internal/usecase/generation"
	healthuc "github.com/pathwise-edu/pathwise/internal/usecase/health"
	mediauc "github.com/pathwise-edu/pathwise/internal/usecase/media"
	"github.com/pathwise-edu/pathwise/internal/usecase/ratelimit"
	scholarshipuc "github.com/pathwise-edu/pathwise/internal/usecase/scholarship"
	searchuc "github.com/pathwise-edu/pathwise/internal/usecase/search"
	usageuc "github.com/pathwise-edu/pathwise/internal/usecase/usage"
	"github.com/pathwise-edu/pathwise/internal/version"
)

func main() {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting PathWise API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("storage_driver", cfg.Storage.Driver),
		zap.Bool("ai_enabled", cfg.AI.APIKey != ""),
	)

	ctx := context.Background()

	store, err := openStore(ctx, cfg.Storage)
	if err != nil {
		logger.Fatal("Failed to open storage", zap.Error(err))
	}
	if store != nil {
		defer store.Close()
		logger.Info("Connected to storage", zap.String("driver", cfg.Storage.Driver))
	} else {
		logger.Warn("Storage disabled, running without cache and budget persistence")
	}

	metrics.Register()

	// Pass nil interfaces (not typed nil pointers!) down the graph.
	// Go gotcha: (*cache.Cache)(nil) wrapped in searchuc.Cache != nil.
	var (
		searchCache searchuc.Cache
		mediaCache  mediauc.Cache
	)
	if store != nil {
		c := cache.New(store, cfg.Storage.KeyPrefix, metrics.CacheTotal, logger)
		searchCache = c
		mediaCache = c
	}

	budget := buildBudget(ctx, &cfg, store, logger)
	var (
		budgetChecker generationuc.BudgetChecker
		budgetReader  usageuc.BudgetReader
	)
	if budget != nil {
		budgetChecker = budget
		budgetReader = budget
	}

	var generator domain.Generator
	var generatorChecker healthuc.GeneratorChecker
	if cfg.AI.APIKey != "" {
		base := openaiGen.NewGenerator(&openaiGen.Config{
			APIKey:   cfg.AI.APIKey,
			BaseURL:  cfg.AI.BaseURL,
			Model:    cfg.AI.Model,
			User:     cfg.AI.User,
			Provider: cfg.AI.Provider,
			Timeout:  seconds(cfg.AI.RequestTimeoutSec),
			Logger:   logger,
		})
		instrumented := generationuc.NewInstrumentedGenerator(
			base, cfg.AI.Provider, cfg.AI.Model, budgetChecker, logger,
		)
		generator = instrumented
		if cfg.AI.HealthCheck {
			generatorChecker = instrumented
		} else {
			generatorChecker = configuredChecker{}
		}
		logger.Info("AI generation enabled",
			zap.String("provider", cfg.AI.Provider),
			zap.String("model", cfg.AI.Model),
			zap.String("advice_model", cfg.AI.AdviceModel),
		)
	}
	generationSvc := generationuc.New(generator, generationuc.Models{
		Content: cfg.AI.Model,
		Advice:  cfg.AI.AdviceModel,
	}, logger)

	providers := newProviderFactory(cfg.Providers, logger)
	textSvc := searchuc.New("text", []searchuc.Provider{
		providers.build("openlibrary", true, openlibrary.New(openlibrary.Config{
			BaseURL: cfg.Providers.OpenLibrary.BaseURL, HTTPClient: providers.client,
		})),
		providers.build("arxiv", true, arxiv.New(arxiv.Config{
			BaseURL: cfg.Providers.Arxiv.BaseURL, HTTPClient: providers.client,
		})),
		providers.build("google_cse", cfg.Providers.Google.APIKey != "" && cfg.Providers.Google.EngineID != "",
			googlecse.New(googlecse.Config{
				APIKey:     cfg.Providers.Google.APIKey,
				EngineID:   cfg.Providers.Google.EngineID,
				BaseURL:    cfg.Providers.Google.BaseURL,
				HTTPClient: providers.client,
			})),
	}, searchCache, seconds(cfg.Search.TextTTLSec), logger)
	videoSvc := searchuc.New("video", []searchuc.Provider{
		providers.build("youtube", cfg.Providers.YouTube.APIKey != "", youtube.New(youtube.Config{
			APIKey: cfg.Providers.YouTube.APIKey, BaseURL: cfg.Providers.YouTube.BaseURL, HTTPClient: providers.client,
		})),
		providers.build("vimeo", cfg.Providers.Vimeo.AccessToken != "", vimeo.New(vimeo.Config{
			AccessToken: cfg.Providers.Vimeo.AccessToken, BaseURL: cfg.Providers.Vimeo.BaseURL, HTTPClient: providers.client,
		})),
	}, searchCache, seconds(cfg.Search.VideoTTLSec), logger)

	mediaSvc := mediauc.New(mediauc.Config{
		PDFTTL:      seconds(cfg.Media.PDFTTLSec),
		MaxPDFBytes: cfg.Media.MaxPDFBytes,
		Timeout:     seconds(cfg.Media.TimeoutSec),
	}, mediaCache, logger)

	scholarships, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		logger.Fatal("Failed to load scholarship catalog", zap.String("path", cfg.Catalog.Path), zap.Error(err))
	}
	scholarshipSvc := scholarshipuc.New(scholarships, generationSvc, logger)

	usageSvc := usageuc.New(budgetReader)

	var storePinger healthuc.StorePinger
	if store != nil {
		storePinger = store
	}
	healthSvc := healthuc.New(storePinger, generatorChecker)

	policies := make(map[string]ratelimit.Policy, len(cfg.RateLimits))
	for endpoint, rl := range cfg.RateLimits {
		policies[endpoint] = ratelimit.Policy{MaxCalls: rl.MaxCalls, Window: rl.Window()}
	}
	limiter := ratelimit.New(policies, ratelimit.WithRejectionCounter(metrics.RateLimitRejectionsTotal))

	server := chiTransport.NewServer(chiTransport.Deps{
		Text:         textSvc,
		Videos:       videoSvc,
		Generation:   generationSvc,
		Scholarships: scholarshipSvc,
		Media:        mediaSvc,
		Usage:        usageSvc,
		Health:       healthSvc,
		Limiter:      limiter,
	}, logger)

	r := chi.NewRouter()
	r.Use(chiTransport.JSONRecoverer(logger))
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.RequestID)
	r.Use(chiTransport.WideEvent(logger))
	r.Use(chiTransport.CORS(chiTransport.CORSConfig{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           seconds(cfg.CORS.MaxAgeSec),
	}))
	r.Use(chiTransport.FloodGuard(cfg.FloodGuard.Requests, seconds(cfg.FloodGuard.WindowSec)))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: seconds(cfg.HTTP.ReadTimeoutSec),
		ReadTimeout:       seconds(cfg.HTTP.ReadTimeoutSec),
		WriteTimeout:      seconds(cfg.HTTP.WriteTimeoutSec),
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), seconds(cfg.HTTP.ShutdownSec))
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// openStore returns nil for the "none" driver.
func openStore(ctx context.Context, cfg config.StorageConfig) (db.Store, error) {
	var (
		store db.Store
		err   error
	)
	switch cfg.Driver {
	case config.DriverRedis:
		var s *dbRedis.Store
		s, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Addrs,
			Password: cfg.Password,
			DB:       cfg.DB,
		})
		if err == nil {
			store = s
		}
	case config.DriverBadger:
		var s *dbBadger.Store
		s, err = dbBadger.NewStore(dbBadger.Config{Dir: cfg.Dir})
		if err == nil {
			store = s
		}
	case config.DriverNone:
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("create %s store: %w", cfg.Driver, err)
	}

	if err := store.WaitForReady(ctx, seconds(cfg.ReadinessTimeout)); err != nil {
		store.Close()
		return nil, fmt.Errorf("%s not ready: %w", cfg.Driver, err)
	}
	return store, nil
}

// buildBudget returns nil when no token limit is configured.
// Counters persist only when a store is available.
func buildBudget(ctx context.Context, cfg *config.Config, store db.Store, logger *zap.Logger) *generationuc.BudgetTracker {
	b := cfg.AI.Budget
	if b.DailyTokenLimit <= 0 && b.MonthlyTokenLimit <= 0 {
		return nil
	}
	action := generationuc.BudgetActionWarn
	if b.Action == string(generationuc.BudgetActionReject) {
		action = generationuc.BudgetActionReject
	}
	tracker := generationuc.NewBudgetTracker(
		cfg.AI.Provider, cfg.Storage.KeyPrefix, b.DailyTokenLimit, b.MonthlyTokenLimit, action, logger,
	)
	if store != nil {
		tracker.WithStore(ctx, budgetrepo.New(store, 48*time.Hour, 62*24*time.Hour))
	}
	return tracker
}

// providerFactory wraps upstream clients in resilient adapters.
type providerFactory struct {
	client  *http.Client
	cfg     provider.Config
	metrics provider.Metrics
	logger  *zap.Logger
}

func newProviderFactory(cfg config.ProvidersConfig, logger *zap.Logger) *providerFactory {
	timeout := seconds(cfg.TimeoutSec)
	return &providerFactory{
		// The adapter bounds each call; the client timeout is a backstop.
		client: httputil.NewClient(2 * timeout),
		cfg: provider.Config{
			Timeout:         timeout,
			BreakerFailures: uint32(max(cfg.BreakerFailures, 0)), //nolint:gosec // clamped to non-negative
			BreakerTimeout:  seconds(cfg.BreakerTimeoutSec),
		},
		metrics: provider.Metrics{
			Requests:     metrics.ProviderRequestsTotal,
			Duration:     metrics.ProviderRequestDuration,
			Results:      metrics.ProviderResults,
			BreakerState: metrics.ProviderBreakerState,
		},
		logger: logger,
	}
}

// build returns a no-op provider when the upstream is not configured,
// so the merge keeps its shape.
func (f *providerFactory) build(name string, enabled bool, fetcher provider.Fetcher) searchuc.Provider {
	if !enabled {
		f.logger.Info("Provider disabled, missing credentials", zap.String("provider", name))
		return provider.NewNoop(name)
	}
	return provider.New(name, fetcher, f.cfg, f.metrics, f.logger)
}

// configuredChecker reports the AI provider as up without calling it.
type configuredChecker struct{}

func (configuredChecker) HealthCheck(context.Context) error { return nil }

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
