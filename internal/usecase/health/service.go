package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure. The API keeps serving without cache or AI.
	Degraded Status = "degraded"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
	// CheckDisabled marks a component that is not configured.
	CheckDisabled CheckResult = "disabled"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	store     StorePinger
	generator GeneratorChecker
}

// New creates a Service. Both dependencies can be nil.
func New(store StorePinger, generator GeneratorChecker) *Service {
	return &Service{store: store, generator: generator}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := map[string]CheckResult{
		"cache": CheckDisabled,
		"ai":    CheckDisabled,
	}

	if s.store != nil {
		checks["cache"] = result(s.store.Ping(ctx))
	}
	if s.generator != nil {
		checks["ai"] = result(s.generator.HealthCheck(ctx))
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}

	return Report{Status: status, Checks: checks}
}

func result(err error) CheckResult {
	if err != nil {
		return CheckError
	}
	return CheckOK
}
