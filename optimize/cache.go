package optimize

import "sync"

// Cache is a bounded get-or-compute cache with FIFO eviction: when the cache
// is full, the oldest-inserted entry is evicted first. Eviction is insertion
// order, not recency order; a hit does not refresh an entry's position.
//
// Cache is safe for concurrent use. The compute callback runs under the
// cache lock, so concurrent callers of the same key compute once.
type Cache struct {
	mu       sync.Mutex
	capacity int
	entries  map[string]any
	order    []string // insertion order, oldest first
	hits     int64
	misses   int64
}

// NewCache creates a cache bounded to capacity entries (minimum 1).
func NewCache(capacity int) *Cache {
	if capacity < 1 {
		capacity = 1
	}
	return &Cache{
		capacity: capacity,
		entries:  make(map[string]any, capacity),
	}
}

// GetOrCompute returns the cached value for key, computing and inserting it
// on a miss. A compute error is returned as-is and nothing is cached.
func (c *Cache) GetOrCompute(key string, compute func() (any, error)) (any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if v, ok := c.entries[key]; ok {
		c.hits++
		return v, nil
	}

	v, err := compute()
	if err != nil {
		return nil, err
	}
	c.misses++

	if len(c.entries) >= c.capacity {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
	c.entries[key] = v
	c.order = append(c.order, key)
	return v, nil
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Hits returns the number of cache hits.
func (c *Cache) Hits() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits
}

// Misses returns the number of computed (missed) lookups.
func (c *Cache) Misses() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.misses
}
