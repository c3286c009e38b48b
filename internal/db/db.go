package db

import (
	"context"
	"time"
)

// Store is the key-value facade shared by the cache and the token budget.
type Store interface {
	Pinger
	KVStore
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// KVStore provides simple key-value operations.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	IncrBy(ctx context.Context, key string, val int64) error
	Expire(ctx context.Context, key string, ttl time.Duration, nx bool) error
}
