package engine

import "github.com/okian/legend/internal/domain/catalog"

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithCatalog overrides the attribute catalog.
func WithCatalog(c *catalog.Catalog) Option {
	return func(e *Engine) {
		if c != nil {
			e.catalog = c
		}
	}
}

// WithExplicitListThreshold sets the candidate count at or below which the
// engine lists the remaining names instead of searching for a split.
func WithExplicitListThreshold(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.listThreshold = n
		}
	}
}
