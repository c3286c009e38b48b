package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/pathwise-edu/pathwise/internal/domain"
	"github.com/pathwise-edu/pathwise/internal/metrics"
	"github.com/pathwise-edu/pathwise/internal/transport/httputil"
)

// DefaultModel is used when neither the config nor the request names a model.
const DefaultModel = "gpt-4o"

// Generator is a text generation provider on the OpenAI chat completions API
// (or any compatible endpoint).
type Generator struct {
	client   *openai.Client
	model    string
	user     string
	provider string
	logger   *zap.Logger
}

// Config holds the generation provider settings.
type Config struct {
	APIKey   string
	BaseURL  string // empty = api.openai.com
	Model    string
	User     string
	Provider string
	Timeout  time.Duration // whole request, zero = no client timeout
	Logger   *zap.Logger
}

// NewGenerator creates an OpenAI-compatible generation provider.
func NewGenerator(cfg *Config) *Generator {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if cfg.Timeout > 0 {
		clientCfg.HTTPClient = httputil.NewClient(cfg.Timeout)
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Generator{
		client:   openai.NewClientWithConfig(clientCfg),
		model:    model,
		user:     cfg.User,
		provider: cfg.Provider,
		logger:   logger,
	}
}

// Model returns the default model name.
func (g *Generator) Model() string { return g.model }

// Generate implements domain.Generator with transport-level metrics.
func (g *Generator) Generate(ctx context.Context, in domain.GenerationRequest) (domain.GenerationResult, error) {
	model := in.Model
	if model == "" {
		model = g.model
	}

	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if in.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: in.System,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: in.Prompt,
	})

	req := openai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		Temperature: in.Temperature,
		MaxTokens:   in.MaxTokens,
		User:        g.user,
	}
	if in.JSON {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	start := time.Now()

	resp, err := g.client.CreateChatCompletion(ctx, req)

	duration := time.Since(start)

	if err != nil {
		metrics.GenerationRequestsTotal.WithLabelValues(g.provider, model, "error").Inc()
		metrics.GenerationErrorsTotal.WithLabelValues(g.provider, model, "api_error").Inc()
		return domain.GenerationResult{}, parseAPIError(err)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		metrics.GenerationRequestsTotal.WithLabelValues(g.provider, model, "error").Inc()
		metrics.GenerationErrorsTotal.WithLabelValues(g.provider, model, "empty_response").Inc()
		return domain.GenerationResult{}, fmt.Errorf("empty completion response: %w", domain.ErrProviderError)
	}

	metrics.GenerationRequestsTotal.WithLabelValues(g.provider, model, "success").Inc()
	metrics.GenerationRequestDuration.WithLabelValues(g.provider, model).Observe(duration.Seconds())

	usage := resp.Usage
	if usage.TotalTokens > 0 {
		metrics.GenerationTokensTotal.WithLabelValues(g.provider, model, "prompt").Add(float64(usage.PromptTokens))
		metrics.GenerationTokensTotal.WithLabelValues(g.provider, model, "completion").Add(float64(usage.CompletionTokens))
		metrics.GenerationTokensTotal.WithLabelValues(g.provider, model, "total").Add(float64(usage.TotalTokens))
	}

	return domain.GenerationResult{
		Text:             resp.Choices[0].Message.Content,
		PromptTokens:     usage.PromptTokens,
		CompletionTokens: usage.CompletionTokens,
		TotalTokens:      usage.TotalTokens,
	}, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (g *Generator) HealthCheck(ctx context.Context) error {
	if _, err := g.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

// parseAPIError extracts a readable message from the API response.
// Everything is wrapped with domain.ErrProviderError so the HTTP layer answers 502.
func parseAPIError(err error) error {
	wrap := domain.ErrProviderError

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if detail := extractDetail(reqErr.Body); detail != "" {
			return fmt.Errorf("generation API error %d: %s: %w",
				reqErr.HTTPStatusCode, detail, wrap)
		}
		return fmt.Errorf("generation API error %d: %s: %w",
			reqErr.HTTPStatusCode, string(reqErr.Body), wrap)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("generation API error %d: %s: %w",
			apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("generation request: %w: %w", err, wrap)
	}
	return fmt.Errorf("generation request failed: %w", wrap)
}

// extractDetail reads the "detail" field some compatible gateways put in error bodies.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
