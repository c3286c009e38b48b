package search

import (
	"context"
	"time"

	"github.com/pathwise-edu/pathwise/internal/domain/resource"
)

// Provider is a content source that never fails: errors surface as an
// empty result.
type Provider interface {
	Name() string
	Search(ctx context.Context, topic, language string, maxResults int) []resource.Item
}

// Cache stores merged results by query fingerprint.
type Cache interface {
	GetJSON(ctx context.Context, key string, dst any) bool
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) bool
}
