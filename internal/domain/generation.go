package domain

import "context"

// Generator is the shared text generation contract between layers.
type Generator interface {
	Generate(ctx context.Context, req GenerationRequest) (GenerationResult, error)
}

// HealthChecker verifies provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// GenerationRequest is a single chat-style completion request.
type GenerationRequest struct {
	System      string
	Prompt      string
	Model       string // empty = provider default
	Temperature float32
	MaxTokens   int
	JSON        bool // ask for a JSON object response
}

// GenerationResult carries generated text and token usage through the decorator chain.
type GenerationResult struct {
	Text             string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}
