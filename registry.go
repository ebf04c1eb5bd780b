package artefact

import (
	"fmt"
	"sort"
	"sync"
)

// Registry manages the closed set of provider drivers.
//
// Lookup by provider tag falls through to the OpenAI-compatible driver for
// unknown tags; an unrecognized provider name selects the default wire
// format rather than failing.
//
// Registry is safe for concurrent use.
type Registry struct {
	drivers map[string]Driver
	mu      sync.RWMutex
}

// NewRegistry creates an empty driver registry.
func NewRegistry() *Registry {
	return &Registry{
		drivers: make(map[string]Driver),
	}
}

// Register registers a driver under its own name.
//
// Returns an error if the driver is nil, unnamed, or already registered.
func (r *Registry) Register(d Driver) error {
	if d == nil {
		return fmt.Errorf("driver cannot be nil")
	}

	name := d.Name()
	if name == "" {
		return fmt.Errorf("driver name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.drivers[name]; exists {
		return fmt.Errorf("driver %q already registered", name)
	}

	r.drivers[name] = d
	return nil
}

// Get returns the driver for a provider tag.
//
// Unknown tags resolve to the driver registered under "openai" (the
// OpenAI-compatible default branch). Returns an error only when neither the
// named driver nor the default exists.
func (r *Registry) Get(name string) (Driver, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if d, exists := r.drivers[name]; exists {
		return d, nil
	}
	if d, exists := r.drivers[ProviderOpenAI]; exists {
		return d, nil
	}
	return nil, fmt.Errorf("no driver for provider %q and no default registered", name)
}

// List returns the registered provider tags in sorted order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.drivers))
	for name := range r.drivers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
