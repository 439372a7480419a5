package services

import (
	"fmt"
	"sync"

	"github.com/alcove-dev/alcove/internal/core/domain"
	"github.com/alcove-dev/alcove/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.PluginRegistry = (*Registry)(nil)

// Registry is a fixed registry of plugins keyed by name.
// New sources are added by registering a new implementation at startup,
// not by runtime introspection.
type Registry struct {
	mu      sync.RWMutex
	plugins map[string]driven.Plugin
	order   []string
}

// NewRegistry creates an empty plugin registry.
func NewRegistry() *Registry {
	return &Registry{plugins: make(map[string]driven.Plugin)}
}

// Register adds a plugin. Registering a duplicate name replaces the
// earlier entry but keeps its position.
func (r *Registry) Register(p driven.Plugin) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := p.Name()
	if _, exists := r.plugins[name]; !exists {
		r.order = append(r.order, name)
	}
	r.plugins[name] = p
}

// Get returns the plugin with the given name.
func (r *Registry) Get(name string) (driven.Plugin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.plugins[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownPlugin, name)
	}
	return p, nil
}

// All returns every registered plugin in registration order.
func (r *Registry) All() []driven.Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]driven.Plugin, 0, len(r.order))
	for _, name := range r.order {
		all = append(all, r.plugins[name])
	}
	return all
}
