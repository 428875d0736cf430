package theme

import (
	"sort"
	"sync"
)

// Registry holds named themes.
type Registry struct {
	mu     sync.RWMutex
	themes map[string]*Theme
}

// NewRegistry returns a registry containing DefaultLight and DefaultDark.
func NewRegistry() *Registry {
	r := &Registry{themes: make(map[string]*Theme)}
	r.Register(DefaultLight())
	r.Register(DefaultDark())
	return r
}

// Register adds t under t.Name, replacing any theme with the same name.
func (r *Registry) Register(t *Theme) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.themes[t.Name] = t
}

// Get returns the theme registered under name.
func (r *Registry) Get(name string) (*Theme, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.themes[name]
	return t, ok
}

// Names returns the registered theme names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.themes))
	for name := range r.themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var (
	registryMu      sync.Mutex
	defaultRegistry *Registry
)

// InitRegistry installs a fresh process-wide theme registry and returns it.
func InitRegistry() *Registry {
	registryMu.Lock()
	defer registryMu.Unlock()
	defaultRegistry = NewRegistry()
	return defaultRegistry
}

// ResetRegistry discards the process-wide theme registry.
func ResetRegistry() {
	registryMu.Lock()
	defer registryMu.Unlock()
	defaultRegistry = nil
}

// DefaultRegistry returns the process-wide theme registry, initializing it
// on first use.
func DefaultRegistry() *Registry {
	registryMu.Lock()
	defer registryMu.Unlock()
	if defaultRegistry == nil {
		defaultRegistry = NewRegistry()
	}
	return defaultRegistry
}
