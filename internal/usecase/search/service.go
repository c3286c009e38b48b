// Package search fans a query out to content providers and merges the
// answers into one deduplicated, interleaved list.
package search

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/sourcegraph/conc/iter"
	"go.uber.org/zap"

	"github.com/pathwise-edu/pathwise/internal/domain/query"
	"github.com/pathwise-edu/pathwise/internal/domain/resource"
	"github.com/pathwise-edu/pathwise/internal/logger"
)

// Result is a merged search answer.
type Result struct {
	Items     []resource.Item
	FromCache bool
}

// Service orchestrates one family of providers (text or video).
type Service struct {
	kind      string
	providers []Provider
	cache     Cache
	ttl       time.Duration
	shuffle   func(n int, swap func(i, j int))
	logger    *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithShuffle replaces the provider-order shuffle (tests pin the order).
func WithShuffle(fn func(n int, swap func(i, j int))) Option {
	return func(s *Service) { s.shuffle = fn }
}

// New creates a search service. kind prefixes cache keys ("text", "video").
// cache may be nil.
func New(kind string, providers []Provider, cache Cache, ttl time.Duration, l *zap.Logger, opts ...Option) *Service {
	s := &Service{
		kind:      kind,
		providers: providers,
		cache:     cache,
		ttl:       ttl,
		shuffle:   rand.Shuffle,
		logger:    l,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Search returns the cached answer for q, or orchestrates the providers and
// caches a non-empty answer.
func (s *Service) Search(ctx context.Context, q query.Query) (Result, error) {
	key := q.Fingerprint(s.kind)
	log := logger.FromContextOr(ctx, s.logger)

	if s.cache != nil {
		var cached []resource.Item
		if s.cache.GetJSON(ctx, key, &cached) {
			log.Debug("Search served from cache", zap.String("kind", s.kind), zap.Int("results", len(cached)))
			return Result{Items: cached, FromCache: true}, nil
		}
	}

	items := s.Orchestrate(ctx, q)
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	if len(items) > 0 && s.cache != nil {
		s.cache.SetJSON(ctx, key, items, s.ttl)
	}
	return Result{Items: items}, nil
}

// Orchestrate queries every provider concurrently, waits for all of them
// and merges the answers round-robin up to q.MaxResults().
func (s *Service) Orchestrate(ctx context.Context, q query.Query) []resource.Item {
	start := time.Now()

	mapper := iter.Mapper[Provider, []resource.Item]{MaxGoroutines: len(s.providers)}
	lists := mapper.Map(s.providers, func(p *Provider) []resource.Item {
		return (*p).Search(ctx, q.Topic(), q.Language(), q.MaxResults())
	})

	merged := mergeRoundRobin(lists, q.MaxResults(), s.shuffle)

	fields := make([]zap.Field, 0, len(s.providers)+3)
	fields = append(fields,
		zap.String("kind", s.kind),
		zap.Int("results", len(merged)),
		zap.Duration("duration", time.Since(start)),
	)
	for i, p := range s.providers {
		fields = append(fields, zap.Int(p.Name(), len(lists[i])))
	}
	logger.FromContextOr(ctx, s.logger).Info("Search orchestrated", fields...)

	return merged
}
