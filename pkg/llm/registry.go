package llm

import (
	"fmt"
	"strings"

	"yagami/pkg/yagami"
)

// Registry resolves configured generators by stable provider key.
//
// The generator map is copied on construction and remains immutable
// afterward, so Resolve is concurrency-safe for parallel workers.
type Registry struct {
	generators map[string]yagami.Generator
}

// NewRegistry constructs one immutable generator registry.
func NewRegistry(generators map[string]yagami.Generator) (*Registry, error) {
	if len(generators) == 0 {
		return nil, fmt.Errorf("new generator registry: empty generators")
	}

	cloned := make(map[string]yagami.Generator, len(generators))
	for key, generator := range generators {
		trimmedKey := strings.TrimSpace(key)
		if trimmedKey == "" {
			return nil, fmt.Errorf("new generator registry: empty generator key")
		}
		if generator == nil {
			return nil, fmt.Errorf("new generator registry: generator %s is nil", trimmedKey)
		}
		if _, exists := cloned[trimmedKey]; exists {
			return nil, fmt.Errorf("new generator registry: duplicate generator key %s", trimmedKey)
		}
		cloned[trimmedKey] = generator
	}

	return &Registry{generators: cloned}, nil
}

// Resolve returns one configured generator by key.
func (r *Registry) Resolve(provider string) (yagami.Generator, error) {
	if r == nil {
		return nil, fmt.Errorf("resolve generator: nil registry")
	}

	trimmed := strings.TrimSpace(provider)
	if trimmed == "" {
		return nil, fmt.Errorf("resolve generator: empty provider key")
	}

	resolved, exists := r.generators[trimmed]
	if !exists {
		return nil, fmt.Errorf("resolve generator: provider %s is not configured", trimmed)
	}

	return resolved, nil
}

var _ yagami.GeneratorRegistry = (*Registry)(nil)
