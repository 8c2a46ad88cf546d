package persist

import "sync"

// ProgramCache stores compiled migration programs keyed by expression
// strings.
type ProgramCache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}

// MemoryProgramCache is a ProgramCache backed by a sync.Map.
type MemoryProgramCache struct {
	programs sync.Map
}

// NewMemoryProgramCache constructs an empty cache.
func NewMemoryProgramCache() *MemoryProgramCache {
	return &MemoryProgramCache{}
}

// Get implements ProgramCache.
func (c *MemoryProgramCache) Get(key string) (any, bool) {
	return c.programs.Load(key)
}

// Set implements ProgramCache.
func (c *MemoryProgramCache) Set(key string, value any) {
	c.programs.Store(key, value)
}
