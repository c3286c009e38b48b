package usage

import "fmt"

// Period is the aggregation granularity.
type Period string

// Aggregation period constants.
const (
	PeriodDay   Period = "day"
	PeriodMonth Period = "month"
)

// ParsePeriod validates a period name. Empty means month.
func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case "":
		return PeriodMonth, nil
	case PeriodDay, PeriodMonth:
		return Period(s), nil
	}
	return "", fmt.Errorf("unknown period %q (want day or month)", s)
}

// Budget is an AI token budget snapshot. Limit 0 means unlimited.
type Budget struct {
	TokensLimit     int64
	TokensUsed      int64
	TokensRemaining int64 // -1 when unlimited
	Exhausted       bool
	ResetsAt        int64 // unix millis
}

// Report is the AI generation usage report for a time period.
type Report struct {
	period      Period
	periodStart int64
	periodEnd   int64
	provider    string
	budget      Budget
}

// NewReport creates a usage report.
func NewReport(period Period, start, end int64, provider string, b Budget) Report {
	return Report{
		period:      period,
		periodStart: start,
		periodEnd:   end,
		provider:    provider,
		budget:      b,
	}
}

// Period returns the aggregation granularity.
func (r *Report) Period() Period { return r.period }

// PeriodStart returns the period start timestamp (unix millis).
func (r *Report) PeriodStart() int64 { return r.periodStart }

// PeriodEnd returns the period end timestamp (unix millis).
func (r *Report) PeriodEnd() int64 { return r.periodEnd }

// Provider returns the AI provider name.
func (r *Report) Provider() string { return r.provider }

// Budget returns the budget snapshot.
func (r *Report) Budget() Budget { return r.budget }
