package session

import (
	"context"
	"sync"
)

// MemoryBinder holds a single bound principal in memory. Suitable for tests
// and single-user command line tools; HTTP deployments use a cookie-backed
// binder instead.
type MemoryBinder struct {
	mu        sync.RWMutex
	principal Principal
	bound     bool
}

// NewMemoryBinder creates a new in-memory session binder
func NewMemoryBinder() *MemoryBinder {
	return &MemoryBinder{}
}

// Bind stores the principal as the current session
func (b *MemoryBinder) Bind(ctx context.Context, principal Principal) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.principal = principal
	b.bound = true
	return nil
}

// Current returns the bound principal, if any
func (b *MemoryBinder) Current(ctx context.Context) (Principal, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.bound {
		return Principal{}, false
	}
	return b.principal, true
}

// Clear removes the bound principal
func (b *MemoryBinder) Clear(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.principal = Principal{}
	b.bound = false
	return nil
}
