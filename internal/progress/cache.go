package progress

import (
	"context"
	"sync"
)

// MemoryViewCache keeps view confirmations in process. Writes merge into the
// stored set, so an entry once true stays true.
type MemoryViewCache struct {
	mu    sync.Mutex
	views map[uint]map[string]bool
}

// NewMemoryViewCache builds an empty cache.
func NewMemoryViewCache() *MemoryViewCache {
	return &MemoryViewCache{views: make(map[uint]map[string]bool)}
}

// Get returns a copy of the user's confirmed views.
func (c *MemoryViewCache) Get(_ context.Context, userID uint) (map[string]bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	stored := c.views[userID]
	views := make(map[string]bool, len(stored))
	for key := range stored {
		views[key] = true
	}
	return views, nil
}

// Set merges positive confirmations into the user's entry.
func (c *MemoryViewCache) Set(_ context.Context, userID uint, views map[string]bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	stored, ok := c.views[userID]
	if !ok {
		stored = make(map[string]bool, len(views))
		c.views[userID] = stored
	}
	for key, seen := range views {
		if seen {
			stored[key] = true
		}
	}
	return nil
}
