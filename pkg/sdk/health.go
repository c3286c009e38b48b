package pathwise

import "context"

// HealthStatus represents the aggregated system health.
type HealthStatus struct {
	Status string            // "ok" or "degraded"
	Checks map[string]string // component → "ok"/"error"/"disabled"
}

// Health checks the cache store. The AI backend is reported as disabled:
// probing it would spend tokens on every call.
func (c *Client) Health(ctx context.Context) HealthStatus {
	report := c.healthSvc.Check(ctx)
	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	return HealthStatus{
		Status: string(report.Status),
		Checks: checks,
	}
}
