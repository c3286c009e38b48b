package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrValidation signals a malformed or incomplete request.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrRateLimited signals a rate limit hit.
	ErrRateLimited = errors.New("rate limited")
	// ErrProviderError signals an upstream provider failure.
	ErrProviderError = errors.New("provider error")
	// ErrNotConfigured signals that an optional integration has no credentials.
	ErrNotConfigured = errors.New("not configured")
	// ErrBudgetExceeded signals an exhausted AI token budget.
	ErrBudgetExceeded = errors.New("token budget exceeded")
)

// RateLimitError wraps ErrRateLimited with a retry hint.
type RateLimitError struct {
	Endpoint   string
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s for %s: retry after %s", ErrRateLimited.Error(), e.Endpoint, e.RetryAfter)
}

func (e *RateLimitError) Unwrap() error { return ErrRateLimited }

// NewRateLimited creates a rate limit error for the endpoint.
func NewRateLimited(endpoint string, retryAfter time.Duration) error {
	return &RateLimitError{Endpoint: endpoint, RetryAfter: retryAfter}
}

// NewValidation wraps ErrValidation with a client-facing detail.
func NewValidation(detail string) error {
	return fmt.Errorf("%s: %w", detail, ErrValidation)
}
