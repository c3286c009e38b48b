package pathwise

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/pathwise-edu/pathwise/internal/db"
	dbBadger "github.com/pathwise-edu/pathwise/internal/db/badger"
	dbRedis "github.com/pathwise-edu/pathwise/internal/db/redis"
	"github.com/pathwise-edu/pathwise/internal/domain"
	"github.com/pathwise-edu/pathwise/internal/domain/query"
	"github.com/pathwise-edu/pathwise/internal/domain/scholarship"
	domusage "github.com/pathwise-edu/pathwise/internal/domain/usage"
	"github.com/pathwise-edu/pathwise/internal/provider"
	budgetrepo "github.com/pathwise-edu/pathwise/internal/repository/budget"
	"github.com/pathwise-edu/pathwise/internal/repository/cache"
	"github.com/pathwise-edu/pathwise/internal/repository/catalog"
	"github.com/pathwise-edu/pathwise/internal/transport/arxiv"
	"github.com/pathwise-edu/pathwise/internal/transport/googlecse"
	"github.com/pathwise-edu/pathwise/internal/transport/httputil"
	openaiGen "github.com/pathwise-edu/pathwise/internal/transport/openai"
	"github.com/pathwise-edu/pathwise/internal/transport/openlibrary"
	"github.com/pathwise-edu/pathwise/internal/transport/vimeo"
	"github.com/pathwise-edu/pathwise/internal/transport/youtube"
	generationuc "github.com/pathwise-edu/pathwise/internal/usecase/generation"
	healthuc "github.com/pathwise-edu/pathwise/internal/usecase/health"
	scholarshipuc "github.com/pathwise-edu/pathwise/internal/usecase/scholarship"
	searchuc "github.com/pathwise-edu/pathwise/internal/usecase/search"
	usageuc "github.com/pathwise-edu/pathwise/internal/usecase/usage"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultKeyPrefix        = "pathwise:"
	defaultContentModel     = "gpt-4o"
	defaultAdviceModel      = "gpt-3.5-turbo"
	defaultTextTTL          = 2 * time.Hour
	defaultVideoTTL         = time.Hour
)

// Внутренние интерфейсы для подмены в тестах.
type searchUseCase interface {
	Search(ctx context.Context, q query.Query) (searchuc.Result, error)
}

type generationUseCase interface {
	StudyGuide(ctx context.Context, in generationuc.StudyGuideInput) (string, error)
	PracticeProblems(ctx context.Context, in generationuc.PracticeInput) (string, error)
	Quiz(ctx context.Context, in generationuc.QuizInput) (generationuc.Quiz, error)
	VideoScript(ctx context.Context, in generationuc.ScriptInput) (string, error)
}

type scholarshipUseCase interface {
	Search(ctx context.Context, p scholarship.Profile) (scholarshipuc.Result, error)
	Recommend(ctx context.Context, p scholarship.Profile) (scholarshipuc.Result, error)
	List() []scholarship.Record
	Get(id string) (scholarship.Record, error)
}

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}

type usageUseCase interface {
	GetReport(ctx context.Context, period domusage.Period) domusage.Report
}

// Client is the PathWise SDK entry point.
type Client struct {
	store        db.Store
	text         searchUseCase
	videos       searchUseCase
	generation   generationUseCase
	scholarships scholarshipUseCase
	healthSvc    healthUseCase
	usageSvc     usageUseCase
	obs          *observer
}

// New creates a Client. Without WithRedis or WithBadger nothing is cached.
// The provided context is used for the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		keyPrefix:       defaultKeyPrefix,
		contentModel:    defaultContentModel,
		adviceModel:     defaultAdviceModel,
		providerTimeout: provider.DefaultConfig().Timeout,
		textTTL:         defaultTextTTL,
		videoTTL:        defaultVideoTTL,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	store, err := createStore(cfg)
	if err != nil {
		return nil, err
	}
	if store != nil {
		if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
			store.Close()
			return nil, fmt.Errorf("pathwise: store not ready: %w", err)
		}
	}

	return wireClient(ctx, store, cfg, obs)
}

// createStore returns nil when no driver is configured.
func createStore(cfg *clientConfig) (db.Store, error) {
	switch cfg.driver {
	case "":
		return nil, nil
	case "redis":
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.addrs,
			Password: cfg.password,
		})
		if err != nil {
			return nil, fmt.Errorf("pathwise: create redis store: %w", err)
		}
		return s, nil
	case "badger":
		s, err := dbBadger.NewStore(dbBadger.Config{Dir: cfg.badgerDir})
		if err != nil {
			return nil, fmt.Errorf("pathwise: open badger store: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("pathwise: unknown driver %q", cfg.driver)
	}
}

func wireClient(ctx context.Context, store db.Store, cfg *clientConfig, obs *observer) (*Client, error) {
	// Internal layers log through zap; SDK users get slog via the observer.
	logger := zap.NewNop()

	var searchCache searchuc.Cache
	var storePinger healthuc.StorePinger
	if store != nil {
		searchCache = cache.New(store, cfg.keyPrefix, nil, logger)
		storePinger = store
	}

	budget := newBudget(ctx, store, cfg, logger)
	var budgetChecker generationuc.BudgetChecker
	var budgetReader usageuc.BudgetReader
	if budget != nil {
		budgetChecker = budget
		budgetReader = budget
	}

	var gen domain.Generator
	switch {
	case cfg.generator != nil:
		gen = &generatorAdapter{inner: cfg.generator}
	case cfg.openAIKey != "":
		gen = openaiGen.NewGenerator(&openaiGen.Config{
			APIKey:   cfg.openAIKey,
			BaseURL:  cfg.openAIBaseURL,
			Model:    cfg.contentModel,
			Provider: "openai",
			Logger:   logger,
		})
	}
	if gen != nil {
		gen = generationuc.NewInstrumentedGenerator(gen, generatorName(cfg), cfg.contentModel, budgetChecker, logger)
	}
	genSvc := generationuc.New(gen, generationuc.Models{Content: cfg.contentModel, Advice: cfg.adviceModel}, logger)

	cat, err := catalog.Load("")
	if err != nil {
		return nil, fmt.Errorf("pathwise: load catalog: %w", err)
	}

	textProviders, videoProviders := buildProviders(cfg, logger)

	return &Client{
		store:        store,
		text:         searchuc.New("text", textProviders, searchCache, cfg.textTTL, logger),
		videos:       searchuc.New("video", videoProviders, searchCache, cfg.videoTTL, logger),
		generation:   genSvc,
		scholarships: scholarshipuc.New(cat, genSvc, logger),
		healthSvc:    healthuc.New(storePinger, nil),
		usageSvc:     usageuc.New(budgetReader),
		obs:          obs,
	}, nil
}

func newBudget(ctx context.Context, store db.Store, cfg *clientConfig, logger *zap.Logger) *generationuc.BudgetTracker {
	if cfg.dailyTokens <= 0 && cfg.monthlyTokens <= 0 {
		return nil
	}
	action := generationuc.BudgetActionWarn
	if cfg.rejectOnLimit {
		action = generationuc.BudgetActionReject
	}
	b := generationuc.NewBudgetTracker(generatorName(cfg), cfg.keyPrefix, cfg.dailyTokens, cfg.monthlyTokens, action, logger)
	if store != nil {
		b.WithStore(ctx, budgetrepo.New(store, 48*time.Hour, 62*24*time.Hour))
	}
	return b
}

func generatorName(cfg *clientConfig) string {
	if cfg.generator != nil {
		return "custom"
	}
	return "openai"
}

// buildProviders wraps fetchers in breaker adapters. Custom fetchers replace
// the built-in catalogs of their family.
func buildProviders(cfg *clientConfig, logger *zap.Logger) (text, video []searchuc.Provider) {
	pc := provider.DefaultConfig()
	pc.Timeout = cfg.providerTimeout
	client := httputil.NewClient(2 * cfg.providerTimeout)

	wrap := func(name string, f provider.Fetcher) searchuc.Provider {
		return provider.New(name, f, pc, provider.Metrics{}, logger)
	}

	if len(cfg.textFetchers) > 0 {
		for _, nf := range cfg.textFetchers {
			text = append(text, wrap(nf.name, fetcherAdapter{nf.fetcher}))
		}
	} else {
		text = append(text,
			wrap("openlibrary", openlibrary.New(openlibrary.Config{HTTPClient: client})),
			wrap("arxiv", arxiv.New(arxiv.Config{HTTPClient: client})),
		)
		if cfg.googleKey != "" && cfg.googleEngine != "" {
			text = append(text, wrap("google_cse", googlecse.New(googlecse.Config{
				APIKey: cfg.googleKey, EngineID: cfg.googleEngine, HTTPClient: client,
			})))
		}
	}

	if len(cfg.videoFetchers) > 0 {
		for _, nf := range cfg.videoFetchers {
			video = append(video, wrap(nf.name, fetcherAdapter{nf.fetcher}))
		}
		return text, video
	}
	if cfg.youtubeKey != "" {
		video = append(video, wrap("youtube", youtube.New(youtube.Config{APIKey: cfg.youtubeKey, HTTPClient: client})))
	}
	if cfg.vimeoToken != "" {
		video = append(video, wrap("vimeo", vimeo.New(vimeo.Config{AccessToken: cfg.vimeoToken, HTTPClient: client})))
	}
	return text, video
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks cache connectivity. It is a no-op without a store.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if c.store == nil {
		return nil
	}
	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// fetcherAdapter lets a public Fetcher serve as a provider.Fetcher.
type fetcherAdapter struct {
	inner Fetcher
}

func (a fetcherAdapter) Fetch(ctx context.Context, topic, language string, maxResults int) ([]Resource, error) {
	items, err := a.inner.Fetch(ctx, topic, language, maxResults)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	return items, nil
}

// generatorAdapter lets a public Generator serve as a domain.Generator.
type generatorAdapter struct {
	inner Generator
}

func (a *generatorAdapter) Generate(ctx context.Context, req domain.GenerationRequest) (domain.GenerationResult, error) {
	res, err := a.inner.Generate(ctx, GenerationRequest{
		System:      req.System,
		Prompt:      req.Prompt,
		Model:       req.Model,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		JSON:        req.JSON,
	})
	if err != nil {
		return domain.GenerationResult{}, fmt.Errorf("%w: %w", domain.ErrProviderError, err)
	}
	return domain.GenerationResult{
		Text:             res.Text,
		PromptTokens:     res.PromptTokens,
		CompletionTokens: max(res.TotalTokens-res.PromptTokens, 0),
		TotalTokens:      res.TotalTokens,
	}, nil
}
