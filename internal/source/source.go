package source

import (
	"fmt"
	"sort"

	"MovieCatalog/internal/ports"
)

// Factory builds a fetcher on demand. Construction may fail, e.g. when the
// header file a live fetcher needs is missing.
type Factory func() (ports.Fetcher, error)

// Registry keeps a mapping from source kinds to fetcher factories.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: map[string]Factory{}}
}

// Register adds or replaces a factory.
func (r *Registry) Register(kind string, factory Factory) {
	if r.factories == nil {
		r.factories = map[string]Factory{}
	}
	r.factories[kind] = factory
}

// Resolve builds the fetcher registered under kind.
func (r *Registry) Resolve(kind string) (ports.Fetcher, error) {
	factory, ok := r.factories[kind]
	if !ok {
		return nil, fmt.Errorf("source %q is not registered (known: %v)", kind, r.Kinds())
	}
	return factory()
}

// Kinds lists registered source kinds in sorted order.
func (r *Registry) Kinds() []string {
	kinds := make([]string, 0, len(r.factories))
	for k := range r.factories {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}
