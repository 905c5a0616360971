// Package platform tracks optional device and environment capabilities
// the portal can lean on, such as reverse geocoding for worker
// locations. A capability that is not configured stays registered in an
// explicit unavailable state instead of disappearing.
package platform

import (
	"context"
	"sync"
)

// Capability is an optional platform integration
type Capability interface {
	// Name identifies the capability
	Name() string
	// Available reports whether the capability can be used right now
	Available() bool
	// HealthCheck verifies the capability end to end
	HealthCheck(ctx context.Context) error
}

// Registry manages platform capabilities
type Registry struct {
	mu           sync.RWMutex
	capabilities map[string]Capability
}

// NewRegistry creates an empty capability registry
func NewRegistry() *Registry {
	return &Registry{
		capabilities: make(map[string]Capability),
	}
}

// Register adds a capability to the registry
func (r *Registry) Register(c Capability) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.capabilities[c.Name()] = c
}

// Get retrieves a capability by name
func (r *Registry) Get(name string) Capability {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.capabilities[name]
}

// List returns the availability of every registered capability
func (r *Registry) List() map[string]bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[string]bool, len(r.capabilities))
	for name, c := range r.capabilities {
		result[name] = c.Available()
	}
	return result
}

// HealthCheckAll checks health of all available capabilities
func (r *Registry) HealthCheckAll(ctx context.Context) map[string]error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	results := make(map[string]error)
	for name, c := range r.capabilities {
		if !c.Available() {
			continue
		}
		results[name] = c.HealthCheck(ctx)
	}
	return results
}
