package media

import (
	"context"
	"time"
)

// Cache stores downloaded documents.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) bool
}
