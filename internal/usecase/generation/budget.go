package generation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pathwise-edu/pathwise/internal/domain"
)

// BudgetAction defines behavior when the token budget is exhausted.
type BudgetAction string

const (
	// BudgetActionWarn logs a warning but lets the generation through.
	BudgetActionWarn BudgetAction = "warn"
	// BudgetActionReject fails the generation with domain.ErrBudgetExceeded.
	BudgetActionReject BudgetAction = "reject"
)

// BudgetStore persists budget counters. IncrBy may be called repeatedly for the same key.
type BudgetStore interface {
	IncrBy(ctx context.Context, key string, val int64) error
	Get(ctx context.Context, key string) (int64, error)
}

// BudgetTracker keeps daily and monthly token counters in memory with
// optional write-behind persistence. Check never touches the store.
type BudgetTracker struct {
	mu             sync.Mutex
	dailyUsed      int64
	monthlyUsed    int64
	dailyLimit     int64
	monthlyLimit   int64
	action         BudgetAction
	provider       string
	keyPrefix      string
	lastDayReset   time.Time
	lastMonthReset time.Time
	now            func() time.Time
	store          BudgetStore
	logger         *zap.Logger
}

// NewBudgetTracker creates a tracker. A zero limit means unlimited.
// keyPrefix namespaces the persisted counters, e.g. "pathwise:".
func NewBudgetTracker(
	provider, keyPrefix string, dailyLimit, monthlyLimit int64,
	action BudgetAction, logger *zap.Logger,
) *BudgetTracker {
	b := &BudgetTracker{
		dailyLimit:   dailyLimit,
		monthlyLimit: monthlyLimit,
		action:       action,
		provider:     provider,
		keyPrefix:    keyPrefix,
		now:          time.Now,
		logger:       logger,
	}
	b.markReset(b.utcNow())
	return b
}

// WithClock replaces the time source. Counters are re-anchored to the new clock.
func (b *BudgetTracker) WithClock(now func() time.Time) *BudgetTracker {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.now = now
	b.markReset(b.utcNow())
	return b
}

// WithStore attaches a persistence store and loads the current counters from it.
func (b *BudgetTracker) WithStore(ctx context.Context, store BudgetStore) *BudgetTracker {
	b.store = store
	b.loadFromStore(ctx)
	return b
}

func (b *BudgetTracker) loadFromStore(ctx context.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.utcNow()

	if val, err := b.store.Get(ctx, b.dailyKey(now)); err == nil {
		b.dailyUsed = val
	} else {
		b.logger.Warn("Failed to load daily budget from store", zap.Error(err))
	}

	if val, err := b.store.Get(ctx, b.monthlyKey(now)); err == nil {
		b.monthlyUsed = val
	} else {
		b.logger.Warn("Failed to load monthly budget from store", zap.Error(err))
	}

	b.logger.Info("Generation budget loaded",
		zap.String("provider", b.provider),
		zap.Int64("daily_used", b.dailyUsed),
		zap.Int64("monthly_used", b.monthlyUsed),
	)
}

func (b *BudgetTracker) dailyKey(t time.Time) string {
	return fmt.Sprintf("%sbudget:%s:daily:%s", b.keyPrefix, b.provider, t.Format("2006-01-02"))
}

func (b *BudgetTracker) monthlyKey(t time.Time) string {
	return fmt.Sprintf("%sbudget:%s:monthly:%s", b.keyPrefix, b.provider, t.Format("2006-01"))
}

// Check verifies the budget allows a new generation.
func (b *BudgetTracker) Check(_ context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.resetIfNeeded()

	dailyExceeded := b.dailyLimit > 0 && b.dailyUsed >= b.dailyLimit
	monthlyExceeded := b.monthlyLimit > 0 && b.monthlyUsed >= b.monthlyLimit
	if !dailyExceeded && !monthlyExceeded {
		return nil
	}

	if b.action == BudgetActionReject {
		return domain.ErrBudgetExceeded
	}

	b.logger.Warn("Token budget exceeded",
		zap.String("provider", b.provider),
		zap.Int64("daily_used", b.dailyUsed),
		zap.Int64("daily_limit", b.dailyLimit),
		zap.Int64("monthly_used", b.monthlyUsed),
		zap.Int64("monthly_limit", b.monthlyLimit),
	)
	return nil
}

// Record adds consumed tokens to both counters, then persists them if a store is attached.
func (b *BudgetTracker) Record(tokens int64) {
	b.mu.Lock()
	b.resetIfNeeded()
	b.dailyUsed += tokens
	b.monthlyUsed += tokens
	store := b.store
	now := b.utcNow()
	dailyKey := b.dailyKey(now)
	monthlyKey := b.monthlyKey(now)
	b.mu.Unlock()

	if store == nil {
		return
	}

	// detached from the request: a cancelled client must not lose the count
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := store.IncrBy(ctx, dailyKey, tokens); err != nil {
		b.logger.Warn("Failed to persist daily budget", zap.String("key", dailyKey), zap.Error(err))
	}
	if err := store.IncrBy(ctx, monthlyKey, tokens); err != nil {
		b.logger.Warn("Failed to persist monthly budget", zap.String("key", monthlyKey), zap.Error(err))
	}
}

// RemainingDaily returns tokens left today (-1 if unlimited).
func (b *BudgetTracker) RemainingDaily() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.resetIfNeeded()
	return remaining(b.dailyLimit, b.dailyUsed)
}

// RemainingMonthly returns tokens left this month (-1 if unlimited).
func (b *BudgetTracker) RemainingMonthly() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.resetIfNeeded()
	return remaining(b.monthlyLimit, b.monthlyUsed)
}

// DailyLimit returns the daily token cap.
func (b *BudgetTracker) DailyLimit() int64 { return b.dailyLimit }

// MonthlyLimit returns the monthly token cap.
func (b *BudgetTracker) MonthlyLimit() int64 { return b.monthlyLimit }

// DailyUsed returns tokens consumed today.
func (b *BudgetTracker) DailyUsed() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.resetIfNeeded()
	return b.dailyUsed
}

// MonthlyUsed returns tokens consumed this month.
func (b *BudgetTracker) MonthlyUsed() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.resetIfNeeded()
	return b.monthlyUsed
}

// Provider returns the provider name the counters belong to.
func (b *BudgetTracker) Provider() string { return b.provider }

// Now returns the tracker's current UTC time.
func (b *BudgetTracker) Now() time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.utcNow()
}

func (b *BudgetTracker) utcNow() time.Time {
	return b.now().UTC()
}

func (b *BudgetTracker) markReset(now time.Time) {
	b.lastDayReset = truncateToDay(now)
	b.lastMonthReset = truncateToMonth(now)
}

// resetIfNeeded zeroes counters when the day or month rolls over.
func (b *BudgetTracker) resetIfNeeded() {
	now := b.utcNow()
	today := truncateToDay(now)
	thisMonth := truncateToMonth(now)

	if today.After(b.lastDayReset) {
		b.dailyUsed = 0
		b.lastDayReset = today
	}
	if thisMonth.After(b.lastMonthReset) {
		b.monthlyUsed = 0
		b.lastMonthReset = thisMonth
	}
}

func remaining(limit, used int64) int64 {
	if limit == 0 {
		return -1
	}
	if used >= limit {
		return 0
	}
	return limit - used
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func truncateToMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
