package pathwise

import (
	"context"
	"fmt"
	"time"

	"github.com/pathwise-edu/pathwise/internal/domain"
	domusage "github.com/pathwise-edu/pathwise/internal/domain/usage"
)

// UsagePeriod is the aggregation granularity for usage reports.
type UsagePeriod string

// UsagePeriod constants.
const (
	PeriodDay   UsagePeriod = "day"
	PeriodMonth UsagePeriod = "month"
)

// UsageReport contains AI token budget state for a time period.
type UsageReport struct {
	Period      UsagePeriod
	Provider    string
	PeriodStart time.Time
	PeriodEnd   time.Time
	Budget      BudgetStatus
}

// BudgetStatus tracks token quota state. TokensRemaining is -1 when unlimited.
type BudgetStatus struct {
	TokensLimit     int64
	TokensUsed      int64
	TokensRemaining int64
	IsExhausted     bool
	ResetsAt        time.Time
}

// Usage returns the token budget report for the given period.
func (c *Client) Usage(ctx context.Context, period UsagePeriod) (_ UsageReport, err error) {
	start := time.Now()
	defer func() { c.obs.observe("usage", start, err) }()

	p, err := domusage.ParsePeriod(string(period))
	if err != nil {
		return UsageReport{}, fmt.Errorf("usage: %w", domain.NewValidation(err.Error()))
	}

	report := c.usageSvc.GetReport(ctx, p)
	b := report.Budget()

	return UsageReport{
		Period:      UsagePeriod(report.Period()),
		Provider:    report.Provider(),
		PeriodStart: time.UnixMilli(report.PeriodStart()).UTC(),
		PeriodEnd:   time.UnixMilli(report.PeriodEnd()).UTC(),
		Budget: BudgetStatus{
			TokensLimit:     b.TokensLimit,
			TokensUsed:      b.TokensUsed,
			TokensRemaining: b.TokensRemaining,
			IsExhausted:     b.Exhausted,
			ResetsAt:        time.UnixMilli(b.ResetsAt).UTC(),
		},
	}, nil
}
