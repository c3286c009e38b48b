package health

import "context"

// StorePinger checks cache store availability.
type StorePinger interface {
	Ping(ctx context.Context) error
}

// GeneratorChecker checks AI provider availability.
type GeneratorChecker interface {
	HealthCheck(ctx context.Context) error
}
