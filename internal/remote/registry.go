package remote

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	ErrBackendNotFound      = errors.New("backend not found")
	ErrBackendAlreadyExists = errors.New("backend already registered")
)

// Registry manages all registered control backends
type Registry struct {
	mu       sync.RWMutex
	backends map[string]Remote
}

// NewRegistry creates a new backend registry
func NewRegistry() *Registry {
	return &Registry{
		backends: make(map[string]Remote),
	}
}

// Register adds a backend to the registry
func (r *Registry) Register(backend Remote) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := backend.Name()
	if _, exists := r.backends[name]; exists {
		return fmt.Errorf("%w: %s", ErrBackendAlreadyExists, name)
	}

	r.backends[name] = backend
	return nil
}

// Get retrieves a backend by name
func (r *Registry) Get(name string) (Remote, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	backend, exists := r.backends[name]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrBackendNotFound, name)
	}

	return backend, nil
}

// List returns all registered backend names, sorted
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.backends))
	for name := range r.backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CloseAll closes every registered backend, returning the first error.
func (r *Registry) CloseAll() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var firstErr error
	for name, backend := range r.backends {
		if err := backend.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to close backend %s: %w", name, err)
		}
	}
	return firstErr
}
