package generation

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/pathwise-edu/pathwise/internal/domain"
	"github.com/pathwise-edu/pathwise/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.Register()
	os.Exit(m.Run())
}

type mockGenerator struct {
	result domain.GenerationResult
	err    error
	calls  int
	last   domain.GenerationRequest
	health error
}

func (m *mockGenerator) Generate(_ context.Context, req domain.GenerationRequest) (domain.GenerationResult, error) {
	m.calls++
	m.last = req
	return m.result, m.err
}

func (m *mockGenerator) HealthCheck(_ context.Context) error { return m.health }

type plainGenerator struct{}

func (plainGenerator) Generate(_ context.Context, _ domain.GenerationRequest) (domain.GenerationResult, error) {
	return domain.GenerationResult{Text: "ok"}, nil
}

func TestInstrumentedGenerator_Success(t *testing.T) {
	inner := &mockGenerator{result: domain.GenerationResult{Text: "hola", TotalTokens: 10}}
	p := NewInstrumentedGenerator(inner, "test", "gpt-4o", nil, zap.NewNop())

	result, err := p.Generate(context.Background(), domain.GenerationRequest{Prompt: "x"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Text != "hola" {
		t.Errorf("unexpected text: %q", result.Text)
	}
}

func TestInstrumentedGenerator_Error(t *testing.T) {
	inner := &mockGenerator{err: domain.ErrProviderError}
	p := NewInstrumentedGenerator(inner, "test", "gpt-4o", nil, zap.NewNop())

	_, err := p.Generate(context.Background(), domain.GenerationRequest{Prompt: "x"})
	if !errors.Is(err, domain.ErrProviderError) {
		t.Fatalf("expected ErrProviderError, got %v", err)
	}
}

func TestInstrumentedGenerator_BudgetRejection(t *testing.T) {
	budget := NewBudgetTracker("test-budget", "pathwise:", 100, 0, BudgetActionReject, zap.NewNop())
	budget.Record(100)

	inner := &mockGenerator{result: domain.GenerationResult{Text: "x"}}
	p := NewInstrumentedGenerator(inner, "test-budget", "gpt-4o", budget, zap.NewNop())

	_, err := p.Generate(context.Background(), domain.GenerationRequest{Prompt: "x"})
	if !errors.Is(err, domain.ErrBudgetExceeded) {
		t.Fatalf("expected domain.ErrBudgetExceeded, got %v", err)
	}
	if inner.calls != 0 {
		t.Errorf("inner generator must not be called when budget is exhausted, got %d calls", inner.calls)
	}
}

func TestInstrumentedGenerator_RecordsBudgetAndGauge(t *testing.T) {
	budget := NewBudgetTracker("test-record", "pathwise:", 1000, 10000, BudgetActionReject, zap.NewNop())

	inner := &mockGenerator{result: domain.GenerationResult{Text: "x", PromptTokens: 200, CompletionTokens: 300, TotalTokens: 500}}
	p := NewInstrumentedGenerator(inner, "test-record", "gpt-4o", budget, zap.NewNop())

	if _, err := p.Generate(context.Background(), domain.GenerationRequest{Prompt: "x"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if budget.RemainingDaily() != 500 {
		t.Errorf("expected daily remaining 500, got %d", budget.RemainingDaily())
	}
	gauge := metrics.GenerationBudgetTokensRemaining.WithLabelValues("test-record", "monthly")
	if got := testutil.ToFloat64(gauge); got != 9500 {
		t.Errorf("expected monthly gauge 9500, got %v", got)
	}
}

func TestInstrumentedGenerator_FailedCallNotRecorded(t *testing.T) {
	budget := NewBudgetTracker("test-fail", "pathwise:", 1000, 0, BudgetActionReject, zap.NewNop())

	inner := &mockGenerator{result: domain.GenerationResult{TotalTokens: 500}, err: errors.New("boom")}
	p := NewInstrumentedGenerator(inner, "test-fail", "gpt-4o", budget, zap.NewNop())

	_, _ = p.Generate(context.Background(), domain.GenerationRequest{Prompt: "x"})

	if budget.DailyUsed() != 0 {
		t.Errorf("expected no usage for failed call, got %d", budget.DailyUsed())
	}
}

func TestInstrumentedGenerator_HealthCheck(t *testing.T) {
	inner := &mockGenerator{health: errors.New("unauthorized")}
	p := NewInstrumentedGenerator(inner, "test", "gpt-4o", nil, zap.NewNop())
	if err := p.HealthCheck(context.Background()); err == nil {
		t.Fatal("expected health error from inner generator")
	}

	plain := NewInstrumentedGenerator(plainGenerator{}, "test", "gpt-4o", nil, zap.NewNop())
	if err := plain.HealthCheck(context.Background()); err != nil {
		t.Fatalf("generator without health check should be healthy, got %v", err)
	}
}
