package asset

import (
	"fmt"
	"sync"
)

// Registry is a thread-safe cache of assets keyed by contract address.
// The catalog repopulates it once per load; lookups never hit the network.
type Registry struct {
	byAddress map[string]*Asset
	bySymbol  map[string][]*Asset
	ordered   []*Asset // directory order, preserved for default selection
	mu        sync.RWMutex
}

// NewRegistry creates a new empty asset registry.
func NewRegistry() *Registry {
	return &Registry{
		byAddress: make(map[string]*Asset),
		bySymbol:  make(map[string][]*Asset),
	}
}

// Register adds an asset to the registry.
// Panics if an asset with the same address is already registered.
func (r *Registry) Register(a *Asset) {
	if a == nil {
		panic("asset: cannot register nil asset")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byAddress[a.Address()]; exists {
		panic(fmt.Sprintf("asset: %s already registered", a.Address()))
	}

	r.byAddress[a.Address()] = a
	r.bySymbol[a.Symbol()] = append(r.bySymbol[a.Symbol()], a)
	r.ordered = append(r.ordered, a)
}

// Replace swaps the registry contents for a freshly loaded list.
func (r *Registry) Replace(assets []*Asset) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.byAddress = make(map[string]*Asset, len(assets))
	r.bySymbol = make(map[string][]*Asset)
	r.ordered = make([]*Asset, 0, len(assets))

	for _, a := range assets {
		if a == nil {
			continue
		}
		if _, exists := r.byAddress[a.Address()]; exists {
			continue // directory duplicates are dropped, first entry wins
		}
		r.byAddress[a.Address()] = a
		r.bySymbol[a.Symbol()] = append(r.bySymbol[a.Symbol()], a)
		r.ordered = append(r.ordered, a)
	}
}

// Get retrieves an asset by its contract address.
func (r *Registry) Get(address string) (*Asset, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.byAddress[address]
	return a, ok
}

// GetBySymbol retrieves all assets with the given symbol.
// Returns nil if no assets found.
func (r *Registry) GetBySymbol(symbol string) []*Asset {
	r.mu.RLock()
	defer r.mu.RUnlock()

	assets := r.bySymbol[symbol]
	if len(assets) == 0 {
		return nil
	}

	result := make([]*Asset, len(assets))
	copy(result, assets)
	return result
}

// Native retrieves the native coin, if the loaded list contains one.
func (r *Registry) Native() (*Asset, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, a := range r.ordered {
		if a.IsNative() {
			return a, true
		}
	}
	return nil, false
}

// All returns all registered assets in directory order.
func (r *Registry) All() []*Asset {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*Asset, len(r.ordered))
	copy(result, r.ordered)
	return result
}

// Count returns the number of registered assets.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byAddress)
}

// Has returns true if an asset with the given address is registered.
func (r *Registry) Has(address string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byAddress[address]
	return ok
}
