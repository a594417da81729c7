// Package source contains the per-provider adapters that fetch and normalize
// articles, plus the registry the fetcher resolves them from.
package source

import (
	"context"
	"fmt"

	"morningbyte/internal/config"
	"morningbyte/internal/domain"
)

// Source is a single provider strategy (Hacker News, Reddit, etc.). Fetch
// performs whatever network calls the provider needs and returns normalized
// articles. Ordinary failures (HTTP errors, timeouts, malformed payloads) for
// an individual sub-request must collapse to an empty result for that
// sub-request, never an error for the whole call.
type Source interface {
	Name() string
	Fetch(ctx context.Context, cfg config.SourceConfig) ([]domain.Article, error)
}

// Registry keeps a mapping from source names to their implementations. It is
// a plain value constructed at startup and passed into the fetcher, so tests
// can inject fakes.
type Registry struct {
	sources map[string]Source
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{sources: map[string]Source{}}
}

// Register adds or replaces a source implementation.
func (r *Registry) Register(src Source) {
	if r.sources == nil {
		r.sources = map[string]Source{}
	}
	r.sources[src.Name()] = src
}

// Resolve returns a source by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Source, error) {
	if src, ok := r.sources[name]; ok {
		return src, nil
	}
	return nil, fmt.Errorf("source %s is not registered", name)
}
