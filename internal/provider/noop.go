package provider

import (
	"context"

	"github.com/pathwise-edu/pathwise/internal/domain/resource"
)

// Noop stands in for a provider that has no credentials configured.
type Noop struct {
	name string
}

// NewNoop creates a provider that always returns nothing.
func NewNoop(name string) *Noop {
	return &Noop{name: name}
}

// Name returns the provider name.
func (n *Noop) Name() string { return n.name }

// Search returns an empty result.
func (n *Noop) Search(context.Context, string, string, int) []resource.Item {
	return nil
}
