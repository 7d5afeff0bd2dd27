package connpool

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
)

// Endpoint identifies one connection pool. Equality is structural; the tuple
// is the exclusive pool identity.
type Endpoint struct {
	Host   string
	Port   int
	Secure bool
}

// Addr returns the host:port dial address.
func (e Endpoint) Addr() string {
	return fmt.Sprintf("%s:%d", e.Host, e.Port)
}

// Label renders the endpoint as a URL-style label for stats and logs.
func (e Endpoint) Label() string {
	scheme := "http"
	if e.Secure {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s:%d", scheme, e.Host, e.Port)
}

// DialFunc creates a new connection for an endpoint.
type DialFunc func(Endpoint) (*PooledConn, error)

// Filter selects pools for Clear. Zero-value fields match anything: an empty
// Host matches every host, a zero Port every port, and a nil Secure either
// transport.
type Filter struct {
	Host   string
	Port   int
	Secure *bool
}

func (f Filter) matches(ep Endpoint) bool {
	if f.Host != "" && f.Host != ep.Host {
		return false
	}
	if f.Port != 0 && f.Port != ep.Port {
		return false
	}
	if f.Secure != nil && *f.Secure != ep.Secure {
		return false
	}
	return true
}

// Registry owns one connection pool per endpoint key. Pools are created
// lazily and never removed; Clear only empties their idle sets.
//
// The registry mutex guards the endpoint map alone and is never held across
// a full acquire or release, so two different endpoints never contend. Each
// pool serializes its own idle set and counters with its own lock.
//
// A Registry is an explicitly constructed object with a single-instance
// lifecycle owned by process startup; it is not package-global state.
type Registry struct {
	mu    sync.Mutex
	pools map[Endpoint]*hostPool

	maxPerHost atomic.Int64
	dial       DialFunc
	logger     *slog.Logger
}

// DefaultMaxPerHost is the per-endpoint capacity unless overridden.
const DefaultMaxPerHost = 10

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	cfg := &config{
		maxPerHost: DefaultMaxPerHost,
		dial:       Dial,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	r := &Registry{
		pools:  make(map[Endpoint]*hostPool),
		dial:   cfg.dial,
		logger: cfg.logger,
	}
	r.maxPerHost.Store(int64(cfg.maxPerHost))
	return r
}

// getOrCreate resolves the pool for a key, constructing it on first use.
// The existence check and the insert happen inside one critical section so
// no caller can observe a half-constructed pool or create a duplicate.
func (r *Registry) getOrCreate(ep Endpoint) *hostPool {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.pools[ep]
	if !ok {
		p = newHostPool(ep)
		r.pools[ep] = p
	}
	return p
}

// Acquire returns a validated connection for the endpoint, creating one if
// the pool is under capacity. It returns ErrExhausted when capacity is
// reached and a wrapped dial error when connection creation fails.
func (r *Registry) Acquire(ep Endpoint) (*PooledConn, error) {
	pc, err := r.getOrCreate(ep).acquire(r.MaxPerHost(), r.dial)
	if err != nil && !errors.Is(err, ErrExhausted) {
		r.logger.Debug("connection creation failed", "endpoint", ep.Label(), "err", err)
	}
	return pc, err
}

// Release hands a checked-out connection back to its pool. With reuse=false
// the connection is closed and never reappears in a subsequent acquire.
func (r *Registry) Release(ep Endpoint, pc *PooledConn, reuse bool) {
	r.getOrCreate(ep).release(pc, reuse, r.MaxPerHost())
}

// Clear closes the idle connections of every pool the filter matches. The
// zero Filter matches every pool.
func (r *Registry) Clear(f Filter) {
	r.mu.Lock()
	var matched []*hostPool
	for ep, p := range r.pools {
		if f.matches(ep) {
			matched = append(matched, p)
		}
	}
	r.mu.Unlock()

	for _, p := range matched {
		p.closeAll()
	}
}

// Stats snapshots every pool's counters, keyed by endpoint label.
func (r *Registry) Stats() map[string]PoolStats {
	r.mu.Lock()
	defer r.mu.Unlock()

	stats := make(map[string]PoolStats, len(r.pools))
	for ep, p := range r.pools {
		stats[ep.Label()] = p.snapshot()
	}
	return stats
}

// MaxPerHost returns the current per-endpoint capacity.
func (r *Registry) MaxPerHost() int {
	return int(r.maxPerHost.Load())
}

// SetMaxPerHost changes the shared per-endpoint capacity. The new value is
// read on the next acquire; already-open connections are unaffected.
func (r *Registry) SetMaxPerHost(n int) {
	if n > 0 {
		r.maxPerHost.Store(int64(n))
	}
}
