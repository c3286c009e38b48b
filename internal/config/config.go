package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Storage drivers.
const (
	DriverRedis  = "redis"
	DriverBadger = "badger"
	DriverNone   = "none"
)

// Config holds the PathWise API configuration.
type Config struct {
	HTTP       HTTPConfig                 `yaml:"http"`
	Storage    StorageConfig              `yaml:"storage"`
	Providers  ProvidersConfig            `yaml:"providers"`
	Search     SearchConfig               `yaml:"search"`
	AI         AIConfig                   `yaml:"ai"`
	Media      MediaConfig                `yaml:"media"`
	Catalog    CatalogConfig              `yaml:"catalog"`
	RateLimits map[string]RateLimitConfig `yaml:"rate_limits"`
	FloodGuard FloodGuardConfig           `yaml:"flood_guard"`
	CORS       CORSConfig                 `yaml:"cors"`
	Auth       AuthConfig                 `yaml:"auth"`
	Logging    LoggingConfig              `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"` // covers video pass-through, keep it generous
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// StorageConfig selects the cache and budget backing store.
type StorageConfig struct {
	Driver           string   `yaml:"driver"` // redis, badger, none (default: badger)
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	Dir              string   `yaml:"dir"` // badger only, empty = in-memory
	KeyPrefix        string   `yaml:"key_prefix"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// ProvidersConfig holds the content provider credentials and resilience settings.
type ProvidersConfig struct {
	TimeoutSec        int `yaml:"timeout_sec"`
	BreakerFailures   int `yaml:"breaker_failures"`
	BreakerTimeoutSec int `yaml:"breaker_timeout_sec"`

	OpenLibrary EndpointConfig `yaml:"openlibrary"`
	Arxiv       EndpointConfig `yaml:"arxiv"`
	Google      GoogleConfig   `yaml:"google"`
	YouTube     YouTubeConfig  `yaml:"youtube"`
	Vimeo       VimeoConfig    `yaml:"vimeo"`
}

// EndpointConfig is a keyless provider; an empty base URL uses the public API.
type EndpointConfig struct {
	BaseURL string `yaml:"base_url"`
}

// GoogleConfig holds Google Custom Search settings.
type GoogleConfig struct {
	APIKey   string `yaml:"api_key"`
	EngineID string `yaml:"engine_id"`
	BaseURL  string `yaml:"base_url"`
}

// YouTubeConfig holds YouTube Data API settings.
type YouTubeConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
}

// VimeoConfig holds Vimeo API settings.
type VimeoConfig struct {
	AccessToken string `yaml:"access_token"`
	BaseURL     string `yaml:"base_url"`
}

// SearchConfig holds search cache lifetimes.
type SearchConfig struct {
	TextTTLSec  int `yaml:"text_ttl_sec"`
	VideoTTLSec int `yaml:"video_ttl_sec"`
}

// AIConfig holds the text generation provider settings. An empty API key
// disables every AI endpoint.
type AIConfig struct {
	Provider          string       `yaml:"provider"`
	APIKey            string       `yaml:"api_key"`
	BaseURL           string       `yaml:"base_url"`
	Model             string       `yaml:"model"`
	AdviceModel       string       `yaml:"advice_model"`
	User              string       `yaml:"user"`
	RequestTimeoutSec int          `yaml:"request_timeout_sec"`
	HealthCheck       bool         `yaml:"health_check"` // ping the provider from /health
	Budget            BudgetConfig `yaml:"budget"`
}

// BudgetConfig holds token budget settings.
type BudgetConfig struct {
	DailyTokenLimit   int64  `yaml:"daily_token_limit"`   // 0 = unlimited
	MonthlyTokenLimit int64  `yaml:"monthly_token_limit"` // 0 = unlimited
	Action            string `yaml:"action"`              // "reject" | "warn" (default)
}

// MediaConfig holds the PDF and video proxy settings.
type MediaConfig struct {
	PDFTTLSec   int   `yaml:"pdf_ttl_sec"`
	MaxPDFBytes int64 `yaml:"max_pdf_bytes"`
	TimeoutSec  int   `yaml:"timeout_sec"`
}

// CatalogConfig points at an external scholarship catalog. Empty uses the built-in one.
type CatalogConfig struct {
	Path string `yaml:"path"`
}

// RateLimitConfig is the per-client quota of one endpoint.
type RateLimitConfig struct {
	MaxCalls  int `yaml:"max_calls"`
	WindowSec int `yaml:"window_sec"`
}

// Window returns the quota window.
func (r RateLimitConfig) Window() time.Duration {
	return time.Duration(r.WindowSec) * time.Second
}

// FloodGuardConfig is the coarse per-IP limit applied to every route.
type FloodGuardConfig struct {
	Requests  int `yaml:"requests"` // 0 disables
	WindowSec int `yaml:"window_sec"`
}

// CORSConfig holds cross-origin settings for the frontend.
type CORSConfig struct {
	AllowedOrigins   []string `yaml:"allowed_origins"`
	AllowCredentials bool     `yaml:"allow_credentials"`
	MaxAgeSec        int      `yaml:"max_age_sec"`
}

// DefaultRateLimits are the per-endpoint quotas applied when config omits them.
func DefaultRateLimits() map[string]RateLimitConfig {
	hour := int(time.Hour / time.Second)
	return map[string]RateLimitConfig{
		"text_search":           {MaxCalls: 50, WindowSec: hour},
		"video_search":          {MaxCalls: 50, WindowSec: hour},
		"text_generation":       {MaxCalls: 20, WindowSec: hour},
		"practice_generation":   {MaxCalls: 30, WindowSec: hour},
		"quiz_generation":       {MaxCalls: 20, WindowSec: hour},
		"script_generation":     {MaxCalls: 20, WindowSec: hour},
		"scholarship_search":    {MaxCalls: 30, WindowSec: hour},
		"scholarship_recommend": {MaxCalls: 10, WindowSec: hour},
	}
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse expands env variables in data, decodes it and applies defaults.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8000
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 15
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 300
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}

	if c.Storage.Driver == "" {
		c.Storage.Driver = DriverBadger
	}
	if c.Storage.ReadinessTimeout <= 0 {
		c.Storage.ReadinessTimeout = 10
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = "pathwise:"
	}

	if c.Providers.TimeoutSec <= 0 {
		c.Providers.TimeoutSec = 10
	}
	if c.Providers.BreakerFailures <= 0 {
		c.Providers.BreakerFailures = 5
	}
	if c.Providers.BreakerTimeoutSec <= 0 {
		c.Providers.BreakerTimeoutSec = 60
	}

	if c.Search.TextTTLSec <= 0 {
		c.Search.TextTTLSec = 7200
	}
	if c.Search.VideoTTLSec <= 0 {
		c.Search.VideoTTLSec = 3600
	}

	if c.AI.Provider == "" {
		c.AI.Provider = "openai"
	}
	if c.AI.Model == "" {
		c.AI.Model = "gpt-4o"
	}
	if c.AI.AdviceModel == "" {
		c.AI.AdviceModel = "gpt-3.5-turbo"
	}
	if c.AI.RequestTimeoutSec <= 0 {
		c.AI.RequestTimeoutSec = 60
	}

	if c.Media.PDFTTLSec <= 0 {
		c.Media.PDFTTLSec = 86400
	}
	if c.Media.MaxPDFBytes <= 0 {
		c.Media.MaxPDFBytes = 50 << 20
	}
	if c.Media.TimeoutSec <= 0 {
		c.Media.TimeoutSec = 30
	}

	defaults := DefaultRateLimits()
	if c.RateLimits == nil {
		c.RateLimits = make(map[string]RateLimitConfig, len(defaults))
	}
	for name, def := range defaults {
		if _, ok := c.RateLimits[name]; !ok {
			c.RateLimits[name] = def
		}
	}

	if c.FloodGuard.Requests > 0 && c.FloodGuard.WindowSec <= 0 {
		c.FloodGuard.WindowSec = 60
	}
	if c.CORS.MaxAgeSec <= 0 {
		c.CORS.MaxAgeSec = 300
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Storage.Driver {
	case DriverRedis:
		if len(c.Storage.Addrs) == 0 {
			return fmt.Errorf("storage.addrs is required for the redis driver")
		}
	case DriverBadger, DriverNone:
	default:
		return fmt.Errorf("storage.driver must be redis, badger or none, got %q", c.Storage.Driver)
	}
	switch c.AI.Budget.Action {
	case "", "warn", "reject":
		// ok
	default:
		return fmt.Errorf("ai.budget.action must be \"warn\" or \"reject\", got %q", c.AI.Budget.Action)
	}
	for name, rl := range c.RateLimits {
		if rl.MaxCalls <= 0 || rl.WindowSec <= 0 {
			return fmt.Errorf("rate_limits.%s: max_calls and window_sec must be positive", name)
		}
	}
	if c.CORS.AllowCredentials {
		for _, o := range c.CORS.AllowedOrigins {
			if o == "*" {
				return fmt.Errorf("cors.allow_credentials cannot be combined with a wildcard origin")
			}
		}
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
