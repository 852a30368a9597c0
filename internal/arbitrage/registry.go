package arbitrage

import (
	"fmt"
	"sort"
	"sync"
)

// Registry holds named pairings for selection by config.
type Registry struct {
	pairings map[string]Pairing
	mu       sync.RWMutex
}

// NewRegistry returns an empty registry. Call Register to add pairings.
func NewRegistry() *Registry {
	return &Registry{pairings: make(map[string]Pairing)}
}

// DefaultRegistry returns a registry holding CheapestBuy and Pairwise.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(CheapestBuy{})
	r.Register(Pairwise{})
	return r
}

// Register adds p under p.Name(), replacing any previous entry.
func (r *Registry) Register(p Pairing) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pairings[p.Name()] = p
}

// Get returns the pairing by name, or an error if not found.
func (r *Registry) Get(name string) (Pairing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.pairings[name]
	if !ok {
		return nil, fmt.Errorf("arbitrage pairing %q not found", name)
	}
	return p, nil
}

// List returns all registered pairing names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.pairings))
	for n := range r.pairings {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
