package optimize

import (
	"errors"

	"github.com/utkarsh5026/scanboost/connpool"
)

// ConnectionProvider is the strategy the request layer is constructed with.
// It is selected once, at construction time; components never swap another
// component's entry points at runtime.
//
// Connections returned by Acquire carry the request traffic directly.
type ConnectionProvider interface {
	Acquire(ep connpool.Endpoint) (*connpool.PooledConn, error)
	Release(ep connpool.Endpoint, pc *connpool.PooledConn, reuse bool)
}

// PooledProvider acquires connections through a registry. On exhaustion it
// degrades gracefully to a fresh unpooled connection rather than failing;
// releasing that connection feeds it into the pool like any other.
type PooledProvider struct {
	registry *connpool.Registry
	dial     connpool.DialFunc
}

// NewPooledProvider builds a provider backed by the registry. A nil dial
// falls back to connpool.Dial for the exhaustion path.
func NewPooledProvider(registry *connpool.Registry, dial connpool.DialFunc) *PooledProvider {
	if dial == nil {
		dial = connpool.Dial
	}
	return &PooledProvider{registry: registry, dial: dial}
}

func (p *PooledProvider) Acquire(ep connpool.Endpoint) (*connpool.PooledConn, error) {
	pc, err := p.registry.Acquire(ep)
	if errors.Is(err, connpool.ErrExhausted) {
		return p.dial(ep)
	}
	return pc, err
}

func (p *PooledProvider) Release(ep connpool.Endpoint, pc *connpool.PooledConn, reuse bool) {
	p.registry.Release(ep, pc, reuse)
}

// DirectProvider dials a fresh connection per request and closes it on
// release. It is the strategy used when connection pooling is off.
type DirectProvider struct {
	dial connpool.DialFunc
}

// NewDirectProvider builds an unpooled provider. A nil dial falls back to
// connpool.Dial.
func NewDirectProvider(dial connpool.DialFunc) *DirectProvider {
	if dial == nil {
		dial = connpool.Dial
	}
	return &DirectProvider{dial: dial}
}

func (p *DirectProvider) Acquire(ep connpool.Endpoint) (*connpool.PooledConn, error) {
	return p.dial(ep)
}

func (p *DirectProvider) Release(_ connpool.Endpoint, pc *connpool.PooledConn, _ bool) {
	if pc != nil {
		_ = pc.Close()
	}
}

// Provider returns the connection strategy matching the current flag state:
// pooled when http_connection_pool is on, direct otherwise.
func (c *Coordinator) Provider() ConnectionProvider {
	if c.IsEnabled(FlagHTTPConnectionPool) {
		return NewPooledProvider(c.registry, nil)
	}
	return NewDirectProvider(nil)
}
