package generation

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/pathwise-edu/pathwise/internal/domain"
	"github.com/pathwise-edu/pathwise/internal/metrics"
)

// BudgetChecker is the local interface for budget enforcement.
type BudgetChecker interface {
	Check(ctx context.Context) error
	Record(tokens int64)
	RemainingDaily() int64
	RemainingMonthly() int64
}

// InstrumentedGenerator wraps a Generator with budget enforcement and logging.
// Transport metrics (requests, duration, tokens) are recorded in transport/openai;
// this layer owns the budget gauge only.
type InstrumentedGenerator struct {
	inner    domain.Generator
	provider string
	model    string
	budget   BudgetChecker
	logger   *zap.Logger
}

// NewInstrumentedGenerator wraps a generator with budget and observability.
// budget may be nil.
func NewInstrumentedGenerator(
	inner domain.Generator, provider, model string,
	budget BudgetChecker, logger *zap.Logger,
) *InstrumentedGenerator {
	return &InstrumentedGenerator{
		inner:    inner,
		provider: provider,
		model:    model,
		budget:   budget,
		logger:   logger,
	}
}

// Generate checks the budget, delegates to the inner generator and records usage.
func (p *InstrumentedGenerator) Generate(
	ctx context.Context, req domain.GenerationRequest,
) (domain.GenerationResult, error) {
	model := req.Model
	if model == "" {
		model = p.model
	}

	if p.budget != nil {
		if err := p.budget.Check(ctx); err != nil {
			p.logger.Error("Budget exceeded",
				zap.String("provider", p.provider),
				zap.String("model", model),
				zap.Error(err),
			)
			return domain.GenerationResult{}, fmt.Errorf("budget check: %w", err)
		}
	}

	start := time.Now()

	result, err := p.inner.Generate(ctx, req)

	duration := time.Since(start)

	if err != nil {
		p.logger.Error("Generation request failed",
			zap.String("provider", p.provider),
			zap.String("model", model),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return domain.GenerationResult{}, fmt.Errorf("generate: %w", err)
	}

	if p.budget != nil && result.TotalTokens > 0 {
		p.budget.Record(int64(result.TotalTokens))
		remaining := metrics.GenerationBudgetTokensRemaining
		remaining.WithLabelValues(p.provider, "daily").Set(float64(p.budget.RemainingDaily()))
		remaining.WithLabelValues(p.provider, "monthly").Set(float64(p.budget.RemainingMonthly()))
	}

	p.logger.Debug("Generation request completed",
		zap.String("provider", p.provider),
		zap.String("model", model),
		zap.Duration("duration", duration),
		zap.Bool("json", req.JSON),
		zap.Int("prompt_tokens", result.PromptTokens),
		zap.Int("completion_tokens", result.CompletionTokens),
		zap.Int("total_tokens", result.TotalTokens),
	)

	return result, nil
}

// HealthCheck delegates to the inner generator when it supports health checks.
func (p *InstrumentedGenerator) HealthCheck(ctx context.Context) error {
	hc, ok := p.inner.(domain.HealthChecker)
	if !ok {
		return nil
	}
	if err := hc.HealthCheck(ctx); err != nil {
		return fmt.Errorf("generator health: %w", err)
	}
	return nil
}
