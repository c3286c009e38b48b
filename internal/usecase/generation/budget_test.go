package generation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/pathwise-edu/pathwise/internal/domain"
)

func TestBudgetTracker_RejectWhenExceeded(t *testing.T) {
	bt := NewBudgetTracker("test", "pathwise:", 100, 0, BudgetActionReject, zap.NewNop())

	bt.Record(100)

	err := bt.Check(context.Background())
	if !errors.Is(err, domain.ErrBudgetExceeded) {
		t.Fatalf("expected domain.ErrBudgetExceeded, got %v", err)
	}
}

func TestBudgetTracker_WarnWhenExceeded(t *testing.T) {
	bt := NewBudgetTracker("test", "pathwise:", 100, 0, BudgetActionWarn, zap.NewNop())

	bt.Record(200)

	if err := bt.Check(context.Background()); err != nil {
		t.Fatalf("expected nil error for warn action, got %v", err)
	}
}

func TestBudgetTracker_MonthlyReject(t *testing.T) {
	bt := NewBudgetTracker("test", "pathwise:", 0, 500, BudgetActionReject, zap.NewNop())

	bt.Record(500)

	if err := bt.Check(context.Background()); !errors.Is(err, domain.ErrBudgetExceeded) {
		t.Fatalf("expected domain.ErrBudgetExceeded for monthly limit, got %v", err)
	}
}

func TestBudgetTracker_UnlimitedWhenZero(t *testing.T) {
	bt := NewBudgetTracker("test", "pathwise:", 0, 0, BudgetActionReject, zap.NewNop())

	bt.Record(999999999)

	if err := bt.Check(context.Background()); err != nil {
		t.Fatalf("expected nil error for unlimited budget, got %v", err)
	}
	if bt.RemainingDaily() != -1 || bt.RemainingMonthly() != -1 {
		t.Errorf("expected -1 remaining for unlimited, got %d/%d", bt.RemainingDaily(), bt.RemainingMonthly())
	}
}

func TestBudgetTracker_Remaining(t *testing.T) {
	bt := NewBudgetTracker("test", "pathwise:", 1000, 10000, BudgetActionWarn, zap.NewNop())

	bt.Record(300)

	if daily := bt.RemainingDaily(); daily != 700 {
		t.Errorf("expected daily remaining 700, got %d", daily)
	}
	if monthly := bt.RemainingMonthly(); monthly != 9700 {
		t.Errorf("expected monthly remaining 9700, got %d", monthly)
	}

	bt.Record(5000)
	if daily := bt.RemainingDaily(); daily != 0 {
		t.Errorf("overspent daily budget should report 0, got %d", daily)
	}
}

func TestBudgetTracker_DayRollover(t *testing.T) {
	now := time.Date(2026, 3, 31, 23, 0, 0, 0, time.UTC)
	bt := NewBudgetTracker("test", "pathwise:", 100, 1000, BudgetActionReject, zap.NewNop()).
		WithClock(func() time.Time { return now })

	bt.Record(100)
	if err := bt.Check(context.Background()); !errors.Is(err, domain.ErrBudgetExceeded) {
		t.Fatalf("expected rejection before midnight, got %v", err)
	}

	// новый день и новый месяц: оба счётчика обнуляются
	now = now.Add(2 * time.Hour)
	if err := bt.Check(context.Background()); err != nil {
		t.Fatalf("expected budget to reset after midnight, got %v", err)
	}
	if bt.DailyUsed() != 0 || bt.MonthlyUsed() != 0 {
		t.Errorf("expected counters reset, got daily=%d monthly=%d", bt.DailyUsed(), bt.MonthlyUsed())
	}
}

func TestBudgetTracker_DayRolloverKeepsMonth(t *testing.T) {
	now := time.Date(2026, 3, 10, 23, 0, 0, 0, time.UTC)
	bt := NewBudgetTracker("test", "pathwise:", 100, 1000, BudgetActionWarn, zap.NewNop()).
		WithClock(func() time.Time { return now })

	bt.Record(80)
	now = now.Add(2 * time.Hour)

	if bt.DailyUsed() != 0 {
		t.Errorf("expected daily reset, got %d", bt.DailyUsed())
	}
	if bt.MonthlyUsed() != 80 {
		t.Errorf("expected monthly to carry over, got %d", bt.MonthlyUsed())
	}
}

// --- Mock BudgetStore ---

type mockBudgetStore struct {
	mu     sync.Mutex
	data   map[string]int64
	getErr error
	setErr error
}

func newMockBudgetStore() *mockBudgetStore {
	return &mockBudgetStore{data: make(map[string]int64)}
}

func (m *mockBudgetStore) IncrBy(_ context.Context, key string, val int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] += val
	return nil
}

func (m *mockBudgetStore) Get(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return 0, m.getErr
	}
	return m.data[key], nil
}

func fixedClock() func() time.Time {
	return func() time.Time { return time.Date(2026, 5, 17, 12, 0, 0, 0, time.UTC) }
}

func TestBudgetTracker_WithStore_LoadsValues(t *testing.T) {
	store := newMockBudgetStore()
	store.data["pathwise:budget:openai:daily:2026-05-17"] = 300
	store.data["pathwise:budget:openai:monthly:2026-05"] = 5000

	bt := NewBudgetTracker("openai", "pathwise:", 1000, 10000, BudgetActionReject, zap.NewNop()).
		WithClock(fixedClock()).
		WithStore(context.Background(), store)

	if bt.DailyUsed() != 300 {
		t.Errorf("expected daily_used=300, got %d", bt.DailyUsed())
	}
	if bt.MonthlyUsed() != 5000 {
		t.Errorf("expected monthly_used=5000, got %d", bt.MonthlyUsed())
	}
}

func TestBudgetTracker_Record_PersistsToStore(t *testing.T) {
	store := newMockBudgetStore()
	bt := NewBudgetTracker("openai", "pathwise:", 10000, 100000, BudgetActionWarn, zap.NewNop()).
		WithClock(fixedClock()).
		WithStore(context.Background(), store)

	bt.Record(100)
	bt.Record(200)

	store.mu.Lock()
	daily := store.data["pathwise:budget:openai:daily:2026-05-17"]
	monthly := store.data["pathwise:budget:openai:monthly:2026-05"]
	store.mu.Unlock()

	if daily != 300 {
		t.Errorf("expected store daily=300, got %d", daily)
	}
	if monthly != 300 {
		t.Errorf("expected store monthly=300, got %d", monthly)
	}
}

func TestBudgetTracker_WithStore_LoadError(t *testing.T) {
	store := newMockBudgetStore()
	store.getErr = errors.New("connection refused")

	bt := NewBudgetTracker("prov", "pathwise:", 1000, 10000, BudgetActionReject, zap.NewNop())
	bt.WithStore(context.Background(), store)

	if bt.DailyUsed() != 0 || bt.MonthlyUsed() != 0 {
		t.Errorf("expected zero counters on load error, got %d/%d", bt.DailyUsed(), bt.MonthlyUsed())
	}
}

func TestBudgetTracker_Record_StoreWriteError(t *testing.T) {
	store := newMockBudgetStore()
	bt := NewBudgetTracker("prov", "pathwise:", 1000, 10000, BudgetActionWarn, zap.NewNop())
	bt.WithStore(context.Background(), store)

	store.mu.Lock()
	store.setErr = errors.New("write timeout")
	store.mu.Unlock()

	bt.Record(50)

	if bt.DailyUsed() != 50 {
		t.Errorf("expected daily_used=50 even with store error, got %d", bt.DailyUsed())
	}
}

func TestBudgetTracker_Keys(t *testing.T) {
	bt := NewBudgetTracker("openai", "pathwise:", 0, 0, BudgetActionWarn, zap.NewNop())
	at := time.Date(2026, 1, 2, 15, 0, 0, 0, time.UTC)

	if got := bt.dailyKey(at); got != "pathwise:budget:openai:daily:2026-01-02" {
		t.Errorf("unexpected daily key: %s", got)
	}
	if got := bt.monthlyKey(at); got != "pathwise:budget:openai:monthly:2026-01" {
		t.Errorf("unexpected monthly key: %s", got)
	}
}
