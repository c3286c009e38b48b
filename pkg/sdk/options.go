package pathwise

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type namedFetcher struct {
	name    string
	fetcher Fetcher
}

type clientConfig struct {
	driver    string // "redis", "badger" or "" (no cache)
	addrs     []string
	password  string
	badgerDir string
	keyPrefix string

	openAIKey     string
	openAIBaseURL string
	generator     Generator
	contentModel  string
	adviceModel   string

	dailyTokens   int64
	monthlyTokens int64
	rejectOnLimit bool

	googleKey    string
	googleEngine string
	youtubeKey   string
	vimeoToken   string

	textFetchers  []namedFetcher
	videoFetchers []namedFetcher

	providerTimeout time.Duration
	textTTL         time.Duration
	videoTTL        time.Duration

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithRedis caches search results and budget counters in Redis.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "redis"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithBadger caches in an embedded BadgerDB at dir. An empty dir keeps
// everything in memory.
func WithBadger(dir string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "badger"
		c.badgerDir = dir
	})
}

// WithKeyPrefix namespaces cache keys. Default: "pathwise:".
func WithKeyPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.keyPrefix = prefix
	})
}

// WithOpenAI enables AI generation on the OpenAI chat API or a compatible
// endpoint. An empty baseURL uses api.openai.com.
func WithOpenAI(apiKey, baseURL string) Option {
	return optionFunc(func(c *clientConfig) {
		c.openAIKey = apiKey
		c.openAIBaseURL = baseURL
	})
}

// WithGenerator plugs in a custom text generation backend.
// It takes precedence over WithOpenAI.
func WithGenerator(g Generator) Option {
	return optionFunc(func(c *clientConfig) {
		c.generator = g
	})
}

// WithModels selects the models for content and scholarship advice.
// Defaults: gpt-4o and gpt-3.5-turbo.
func WithModels(content, advice string) Option {
	return optionFunc(func(c *clientConfig) {
		c.contentModel = content
		c.adviceModel = advice
	})
}

// WithTokenBudget caps AI token usage. A zero limit is unlimited.
// With reject set, generation fails once a limit is reached; otherwise
// the overrun is only logged.
func WithTokenBudget(daily, monthly int64, reject bool) Option {
	return optionFunc(func(c *clientConfig) {
		c.dailyTokens = daily
		c.monthlyTokens = monthly
		c.rejectOnLimit = reject
	})
}

// WithGoogleCSE enables the Google Custom Search PDF provider.
func WithGoogleCSE(apiKey, engineID string) Option {
	return optionFunc(func(c *clientConfig) {
		c.googleKey = apiKey
		c.googleEngine = engineID
	})
}

// WithYouTube enables the YouTube video provider.
func WithYouTube(apiKey string) Option {
	return optionFunc(func(c *clientConfig) {
		c.youtubeKey = apiKey
	})
}

// WithVimeo enables the Vimeo video provider.
func WithVimeo(accessToken string) Option {
	return optionFunc(func(c *clientConfig) {
		c.vimeoToken = accessToken
	})
}

// WithTextProvider replaces the built-in text catalogs. Repeat it to add
// several; they are merged in the order given after a shuffle.
func WithTextProvider(name string, f Fetcher) Option {
	return optionFunc(func(c *clientConfig) {
		c.textFetchers = append(c.textFetchers, namedFetcher{name: name, fetcher: f})
	})
}

// WithVideoProvider replaces the built-in video catalogs.
func WithVideoProvider(name string, f Fetcher) Option {
	return optionFunc(func(c *clientConfig) {
		c.videoFetchers = append(c.videoFetchers, namedFetcher{name: name, fetcher: f})
	})
}

// WithProviderTimeout bounds each provider call. Default: 10s.
func WithProviderTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.providerTimeout = d
	})
}

// WithCacheTTL sets how long merged search results stay cached.
// Defaults: 2h for text, 1h for video.
func WithCacheTTL(text, video time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.textTTL = text
		c.videoTTL = video
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
