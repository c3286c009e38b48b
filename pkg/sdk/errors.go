package pathwise

import "github.com/pathwise-edu/pathwise/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrValidation     = domain.ErrValidation
	ErrNotFound       = domain.ErrNotFound
	ErrProviderError  = domain.ErrProviderError
	ErrNotConfigured  = domain.ErrNotConfigured
	ErrBudgetExceeded = domain.ErrBudgetExceeded
)
