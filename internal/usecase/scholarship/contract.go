package scholarship

import (
	"context"

	"github.com/pathwise-edu/pathwise/internal/domain/scholarship"
)

// Catalog is the read-only scholarship source.
type Catalog interface {
	All() []scholarship.Record
	Get(id string) (scholarship.Record, bool)
}

// Advisor writes personalized advice over the best matches.
type Advisor interface {
	Enabled() bool
	ScholarshipAdvice(ctx context.Context, p scholarship.Profile, matches []scholarship.Match) (string, error)
}
