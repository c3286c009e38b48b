package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	cfg := Config{HTTP: HTTPConfig{Port: 8080}}
	cfg.ApplyDefaults()
	return cfg
}

func TestValidate_InvalidBudgetAction(t *testing.T) {
	cfg := validConfig()
	cfg.AI.Budget = BudgetConfig{DailyTokenLimit: 1000000, Action: "invalid_action"}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for invalid budget action")
	}

	expected := `ai.budget.action must be "warn" or "reject", got "invalid_action"`
	if err.Error() != expected {
		t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), expected)
	}
}

func TestValidate_ValidBudgetActions(t *testing.T) {
	validActions := []string{"", "warn", "reject"}

	for _, action := range validActions {
		t.Run("action="+action, func(t *testing.T) {
			cfg := validConfig()
			cfg.AI.Budget.Action = action

			if err := cfg.Validate(); err != nil {
				t.Fatalf("unexpected error for valid action %q: %v", action, err)
			}
		})
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 70000

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_Storage(t *testing.T) {
	tests := []struct {
		name    string
		storage StorageConfig
		wantErr bool
	}{
		{"redis without addrs", StorageConfig{Driver: DriverRedis}, true},
		{"redis with addrs", StorageConfig{Driver: DriverRedis, Addrs: []string{"localhost:6379"}}, false},
		{"badger in memory", StorageConfig{Driver: DriverBadger}, false},
		{"none", StorageConfig{Driver: DriverNone}, false},
		{"unknown driver", StorageConfig{Driver: "valkey"}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Storage = tc.storage

			err := cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestValidate_RateLimit(t *testing.T) {
	cfg := validConfig()
	cfg.RateLimits["text_search"] = RateLimitConfig{MaxCalls: 0, WindowSec: 60}

	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "rate_limits.text_search") {
		t.Fatalf("expected rate limit error, got %v", err)
	}
}

func TestValidate_CORSWildcardWithCredentials(t *testing.T) {
	cfg := validConfig()
	cfg.CORS = CORSConfig{AllowedOrigins: []string{"*"}, AllowCredentials: true}

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for wildcard origin with credentials")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.Port != 8000 {
		t.Errorf("expected Port=8000, got %d", cfg.HTTP.Port)
	}
	if cfg.HTTP.ReadTimeoutSec != 15 {
		t.Errorf("expected ReadTimeoutSec=15, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 300 {
		t.Errorf("expected WriteTimeoutSec=300, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.Storage.Driver != DriverBadger {
		t.Errorf("expected badger driver, got %q", cfg.Storage.Driver)
	}
	if cfg.Storage.KeyPrefix != "pathwise:" {
		t.Errorf("expected KeyPrefix='pathwise:', got %q", cfg.Storage.KeyPrefix)
	}
	if cfg.Providers.TimeoutSec != 10 || cfg.Providers.BreakerFailures != 5 || cfg.Providers.BreakerTimeoutSec != 60 {
		t.Errorf("unexpected provider defaults: %+v", cfg.Providers)
	}
	if cfg.Search.TextTTLSec != 7200 || cfg.Search.VideoTTLSec != 3600 {
		t.Errorf("unexpected search TTLs: %+v", cfg.Search)
	}
	if cfg.Media.PDFTTLSec != 86400 || cfg.Media.MaxPDFBytes != 50<<20 {
		t.Errorf("unexpected media defaults: %+v", cfg.Media)
	}
	if cfg.AI.Model != "gpt-4o" || cfg.AI.AdviceModel != "gpt-3.5-turbo" {
		t.Errorf("unexpected AI models: %+v", cfg.AI)
	}
	if len(cfg.RateLimits) != 8 {
		t.Errorf("expected 8 default rate limits, got %d", len(cfg.RateLimits))
	}
	if rl := cfg.RateLimits["scholarship_recommend"]; rl.MaxCalls != 10 || rl.Window() != time.Hour {
		t.Errorf("unexpected scholarship_recommend quota: %+v", rl)
	}
	if cfg.FloodGuard.Requests != 0 {
		t.Error("flood guard must stay disabled by default")
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:       HTTPConfig{Port: 9000, ReadTimeoutSec: 30, WriteTimeoutSec: 60, ShutdownSec: 5},
		Storage:    StorageConfig{Driver: DriverRedis, KeyPrefix: "custom:"},
		RateLimits: map[string]RateLimitConfig{"text_search": {MaxCalls: 5, WindowSec: 60}},
		FloodGuard: FloodGuardConfig{Requests: 100},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.Port != 9000 || cfg.HTTP.ReadTimeoutSec != 30 || cfg.HTTP.WriteTimeoutSec != 60 {
		t.Errorf("HTTP settings overridden: %+v", cfg.HTTP)
	}
	if cfg.Storage.Driver != DriverRedis || cfg.Storage.KeyPrefix != "custom:" {
		t.Errorf("storage overridden: %+v", cfg.Storage)
	}
	if cfg.RateLimits["text_search"].MaxCalls != 5 {
		t.Error("configured quota overridden")
	}
	if cfg.RateLimits["video_search"].MaxCalls != 50 {
		t.Error("missing quotas must be filled from defaults")
	}
	if cfg.FloodGuard.WindowSec != 60 {
		t.Errorf("expected flood guard window default, got %d", cfg.FloodGuard.WindowSec)
	}
}

func TestParse_ExpandsEnv(t *testing.T) {
	t.Setenv("PATHWISE_TEST_YT_KEY", "yt-secret")

	data := []byte(`
http:
  port: ${PATHWISE_TEST_PORT:-8123}
providers:
  youtube:
    api_key: ${PATHWISE_TEST_YT_KEY}
  vimeo:
    access_token: ${PATHWISE_TEST_UNSET_TOKEN}
rate_limits:
  text_search:
    max_calls: 3
    window_sec: 60
`)
	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.HTTP.Port != 8123 {
		t.Errorf("default not applied: port %d", cfg.HTTP.Port)
	}
	if cfg.Providers.YouTube.APIKey != "yt-secret" {
		t.Errorf("env not expanded: %q", cfg.Providers.YouTube.APIKey)
	}
	if cfg.Providers.Vimeo.AccessToken != "" {
		t.Errorf("unset variable should expand to empty, got %q", cfg.Providers.Vimeo.AccessToken)
	}
	if cfg.RateLimits["text_search"].Window() != time.Minute {
		t.Errorf("unexpected window: %s", cfg.RateLimits["text_search"].Window())
	}
}

func TestParse_Invalid(t *testing.T) {
	if _, err := Parse([]byte("storage:\n  driver: etcd\n")); err == nil {
		t.Error("expected validation error")
	}
	if _, err := Parse([]byte("http: [")); err == nil {
		t.Error("expected yaml error")
	}
}

func TestLoad_ShippedConfigs(t *testing.T) {
	for _, env := range []string{"local", "prod"} {
		t.Run(env, func(t *testing.T) {
			if _, err := Load(env); err != nil {
				t.Fatalf("Load(%s): %v", env, err)
			}
		})
	}
}
