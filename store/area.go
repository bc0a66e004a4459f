package store

import "sync"

// Area names used by the settings layer.
const (
	AreaSync  = "sync"
	AreaLocal = "local"
)

// Area is a flat key-value storage area.
type Area interface {
	// Get returns the value for key. The boolean is false when absent.
	Get(key string) (string, bool, error)
	// Set stores the value for key.
	Set(key, value string) error
	// Delete removes the key. Deleting an absent key is not an error.
	Delete(key string) error
	// All returns a snapshot of every key-value pair.
	All() (map[string]string, error)
}

// MemoryArea is an in-memory Area, used for the session-scoped state
// and in tests.
type MemoryArea struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryArea creates an empty in-memory area.
func NewMemoryArea() *MemoryArea {
	return &MemoryArea{values: make(map[string]string)}
}

func (a *MemoryArea) Get(key string) (string, bool, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	v, ok := a.values[key]
	return v, ok, nil
}

func (a *MemoryArea) Set(key, value string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.values[key] = value
	return nil
}

func (a *MemoryArea) Delete(key string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.values, key)
	return nil
}

func (a *MemoryArea) All() (map[string]string, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	snapshot := make(map[string]string, len(a.values))
	for k, v := range a.values {
		snapshot[k] = v
	}
	return snapshot, nil
}
