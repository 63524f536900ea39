package cart

import (
	"sync"
	"time"
)

type entry struct {
	cart     *Cart
	lastUsed time.Time
}

// Registry hands out one cart per browser tab
type Registry struct {
	mu    sync.Mutex
	carts map[string]*entry
	now   func() time.Time
}

func NewRegistry() *Registry {
	return &Registry{carts: make(map[string]*entry), now: time.Now}
}

// Get returns the tab's cart, creating it on first use
func (r *Registry) Get(tabID string) *Cart {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.carts[tabID]
	if !ok {
		e = &entry{cart: New()}
		r.carts[tabID] = e
	}
	e.lastUsed = r.now()
	return e.cart
}

// Drop forgets the tab's cart, e.g. on logout
func (r *Registry) Drop(tabID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.carts, tabID)
}

// Sweep forgets carts untouched for longer than maxIdle
func (r *Registry) Sweep(maxIdle time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-maxIdle)
	removed := 0
	for id, e := range r.carts {
		if e.lastUsed.Before(cutoff) {
			delete(r.carts, id)
			removed++
		}
	}
	return removed
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.carts)
}
