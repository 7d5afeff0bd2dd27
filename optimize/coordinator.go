package optimize

import (
	"sync"
	"time"

	"github.com/utkarsh5026/scanboost/batch"
	"github.com/utkarsh5026/scanboost/connpool"
)

// Feature flag names. Each is independently toggleable; unknown names are
// rejected.
const (
	FlagHTTPConnectionPool  = "http_connection_pool"
	FlagThreadPool          = "thread_pool"
	FlagQueryCache          = "query_cache"
	FlagMemoryOptimization  = "memory_optimization"
	FlagNetworkOptimization = "network_optimization"
	FlagCodeOptimization    = "code_optimization"
)

var flagNames = []string{
	FlagHTTPConnectionPool,
	FlagThreadPool,
	FlagQueryCache,
	FlagMemoryOptimization,
	FlagNetworkOptimization,
	FlagCodeOptimization,
}

// Stats is a read-only snapshot of the optimization layer, reportable to
// logs or a CLI.
type Stats struct {
	Flags       map[string]bool
	Endpoints   map[string]connpool.PoolStats
	CacheHits   int64
	CacheMisses int64
	CacheSize   int
	// Uptime is the elapsed time since the first flag was enabled; zero if
	// nothing has been enabled yet.
	Uptime time.Duration
	// MultiThread reports whether a multi-worker batch is currently running.
	MultiThread bool
}

// Coordinator owns the optimization primitives and the flag and config
// registries that toggle them. Construct one at process startup and share
// it; it is safe for concurrent use.
type Coordinator struct {
	mu        sync.Mutex
	flags     map[string]bool
	config    map[string]any
	cache     *Cache
	enabledAt time.Time

	registry *connpool.Registry
	runner   *batch.Runner
}

// CoordinatorOption is a functional option for configuring a Coordinator.
type CoordinatorOption func(*Coordinator)

// WithRegistry supplies an existing connection pool registry.
func WithRegistry(r *connpool.Registry) CoordinatorOption {
	return func(c *Coordinator) {
		if r != nil {
			c.registry = r
		}
	}
}

// WithRunner supplies an existing batch runner.
func WithRunner(r *batch.Runner) CoordinatorOption {
	return func(c *Coordinator) {
		if r != nil {
			c.runner = r
		}
	}
}

// NewCoordinator creates a coordinator with every flag off and default
// configuration. A registry and runner are created unless supplied.
func NewCoordinator(opts ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		flags:  make(map[string]bool, len(flagNames)),
		config: defaultConfig(),
	}
	for _, name := range flagNames {
		c.flags[name] = false
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.registry == nil {
		c.registry = connpool.NewRegistry()
	}
	if c.runner == nil {
		c.runner = batch.NewRunner()
	}
	return c
}

// Registry returns the coordinator's connection pool registry.
func (c *Coordinator) Registry() *connpool.Registry { return c.registry }

// Runner returns the coordinator's batch runner.
func (c *Coordinator) Runner() *batch.Runner { return c.runner }

// SetFlag enables or disables one named optimization. It returns false for
// unknown names, leaving everything unchanged.
func (c *Coordinator) SetFlag(name string, on bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, known := c.flags[name]; !known {
		return false
	}
	c.flags[name] = on

	if on && c.enabledAt.IsZero() {
		c.enabledAt = time.Now()
	}

	switch name {
	case FlagHTTPConnectionPool:
		if on {
			c.registry.SetMaxPerHost(c.config[KeyMaxConnsPerHost].(int))
		}
	case FlagThreadPool:
		if on {
			c.runner.SetMaxWorkers(c.config[KeyThreadPoolSize].(int))
		}
	case FlagQueryCache:
		if on && c.cache == nil {
			c.cache = NewCache(c.config[KeyQueryCacheSize].(int))
		}
	}
	return true
}

// IsEnabled reports whether the named optimization is on. Unknown names
// report false.
func (c *Coordinator) IsEnabled(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.flags[name]
}

// EnableAll turns on every optimization. It reports whether all flags were
// applied.
func (c *Coordinator) EnableAll() bool {
	ok := true
	for _, name := range flagNames {
		if !c.SetFlag(name, true) {
			ok = false
		}
	}
	return ok
}

// DisableAll turns off every optimization, clears the connection pool
// registry, and discards the query cache.
func (c *Coordinator) DisableAll() {
	c.mu.Lock()
	for _, name := range flagNames {
		c.flags[name] = false
	}
	c.cache = nil
	c.mu.Unlock()

	c.registry.Clear(connpool.Filter{})
}

// SetConfig sets one configuration value. It returns false for unknown keys
// or wrongly typed values, leaving everything unchanged.
func (c *Coordinator) SetConfig(key string, value any) bool {
	normalized, ok := validConfig(key, value)
	if !ok {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.config[key] = normalized

	// Runtime config changes apply to the live components when the matching
	// optimization is already on.
	switch key {
	case KeyMaxConnsPerHost:
		if c.flags[FlagHTTPConnectionPool] {
			c.registry.SetMaxPerHost(normalized.(int))
		}
	case KeyThreadPoolSize:
		if c.flags[FlagThreadPool] {
			c.runner.SetMaxWorkers(normalized.(int))
		}
	}
	return true
}

// Flags returns a copy of the flag states.
func (c *Coordinator) Flags() map[string]bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]bool, len(c.flags))
	for k, v := range c.flags {
		out[k] = v
	}
	return out
}

// Config returns a copy of the configuration values.
func (c *Coordinator) Config() map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]any, len(c.config))
	for k, v := range c.config {
		out[k] = v
	}
	return out
}

// QueryCache returns the cache when the query_cache optimization is on,
// nil otherwise.
func (c *Coordinator) QueryCache() *Cache {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.flags[FlagQueryCache] {
		return nil
	}
	return c.cache
}

// Stats snapshots the optimization layer's runtime statistics.
func (c *Coordinator) Stats() Stats {
	c.mu.Lock()
	flags := make(map[string]bool, len(c.flags))
	for k, v := range c.flags {
		flags[k] = v
	}
	cache := c.cache
	enabledAt := c.enabledAt
	c.mu.Unlock()

	s := Stats{
		Flags:       flags,
		Endpoints:   c.registry.Stats(),
		MultiThread: c.runner.MultiThreadActive(),
	}
	if cache != nil {
		s.CacheHits = cache.Hits()
		s.CacheMisses = cache.Misses()
		s.CacheSize = cache.Len()
	}
	if !enabledAt.IsZero() {
		s.Uptime = time.Since(enabledAt)
	}
	return s
}
