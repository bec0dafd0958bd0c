package engine

import (
	"sync"
)

// Cache memoizes query results keyed by query, table version and
// parameters. It holds at most limit entries and drops the oldest first.
type Cache struct {
	mu      sync.RWMutex
	max     int
	entries map[string]any
	order   []string
}

func NewCache(limit int) *Cache {
	if limit < 1 {
		limit = 1
	}
	return &Cache{max: limit, entries: make(map[string]any)}
}

func (c *Cache) Get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.entries[key]
	return v, ok
}

func (c *Cache) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; ok {
		c.entries[key] = value
		return
	}
	for len(c.order) >= c.max {
		delete(c.entries, c.order[0])
		c.order = c.order[1:]
	}
	c.entries[key] = value
	c.order = append(c.order, key)
}

// Invalidate drops every entry.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]any)
	c.order = nil
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
