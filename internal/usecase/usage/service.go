package usage

import (
	"context"
	"time"

	domusage "github.com/pathwise-edu/pathwise/internal/domain/usage"
)

// Service reports AI generation usage against the token budget.
type Service struct {
	br BudgetReader
}

// New creates a Service. br can be nil when generation is not configured.
func New(br BudgetReader) *Service {
	return &Service{br: br}
}

// GetReport builds a usage report for the given period.
func (s *Service) GetReport(_ context.Context, period domusage.Period) domusage.Report {
	now := time.Now().UTC()
	if s.br != nil {
		now = s.br.Now()
	}

	var start, end time.Time
	var limit, used, remaining int64
	remaining = -1

	switch period {
	case domusage.PeriodDay:
		start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		end = start.AddDate(0, 0, 1)
		if s.br != nil {
			limit, used, remaining = s.br.DailyLimit(), s.br.DailyUsed(), s.br.RemainingDaily()
		}
	default:
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		end = start.AddDate(0, 1, 0)
		period = domusage.PeriodMonth
		if s.br != nil {
			limit, used, remaining = s.br.MonthlyLimit(), s.br.MonthlyUsed(), s.br.RemainingMonthly()
		}
	}

	provider := ""
	if s.br != nil {
		provider = s.br.Provider()
	}

	b := domusage.Budget{
		TokensLimit:     limit,
		TokensUsed:      used,
		TokensRemaining: remaining,
		Exhausted:       limit > 0 && remaining == 0,
		ResetsAt:        end.UnixMilli(),
	}
	return domusage.NewReport(period, start.UnixMilli(), end.UnixMilli(), provider, b)
}
