package store

import (
	"sync"

	"github.com/notewire/notewire/processing"
)

// Cache maps bubble identities to finished transcription results.
// Entries are written only on success; failures leave no trace so a
// retry always reaches the providers.
type Cache interface {
	// Get returns the cached result for a bubble. The boolean is false
	// when absent.
	Get(bubbleID string) (*processing.Result, bool, error)
	// Put stores a result for a bubble.
	Put(bubbleID string, result *processing.Result) error
}

// MemoryCache is an in-memory Cache.
type MemoryCache struct {
	mu      sync.RWMutex
	results map[string]processing.Result
}

// NewMemoryCache creates an empty in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{results: make(map[string]processing.Result)}
}

func (c *MemoryCache) Get(bubbleID string) (*processing.Result, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.results[bubbleID]
	if !ok {
		return nil, false, nil
	}
	copied := r
	return &copied, true, nil
}

func (c *MemoryCache) Put(bubbleID string, result *processing.Result) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results[bubbleID] = *result
	return nil
}
