package connpool

import (
	"errors"
	"fmt"
	"sync"
)

// ErrExhausted is returned by acquire when the pool has reached capacity and
// no idle connection is available. It signals a condition, not a failure:
// callers should fall back to an unpooled connection or retry later.
var ErrExhausted = errors.New("connection pool exhausted")

// PoolStats is a point-in-time snapshot of one endpoint's counters.
// Active counts idle connections only; checked-out connections are not
// included.
type PoolStats struct {
	Created int64
	Reused  int64
	Failed  int64
	Active  int64
}

// hostPool holds the idle connections and counters for one endpoint.
// The idle slice is a LIFO stack: the most recently released connection is
// reused first, which keeps hot connections warm and lets cold ones age out.
// All fields are guarded by mu.
type hostPool struct {
	ep Endpoint

	mu      sync.Mutex
	idle    []*PooledConn
	created int64
	reused  int64
	failed  int64
}

func newHostPool(ep Endpoint) *hostPool {
	return &hostPool{ep: ep}
}

// acquire pops idle connections until one passes the liveness probe,
// creating a fresh connection if the pool is under capacity. It returns
// ErrExhausted when capacity is reached, and the wrapped dial error when
// connection creation itself fails.
func (p *hostPool) acquire(capacity int, dial DialFunc) (*PooledConn, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for len(p.idle) > 0 {
		pc := p.idle[len(p.idle)-1]
		p.idle = p.idle[:len(p.idle)-1]

		if pc.alive() {
			p.reused++
			pc.touch()
			return pc, nil
		}
		p.failed++
		_ = pc.Close()
	}

	if int(p.created)+len(p.idle) >= capacity {
		return nil, ErrExhausted
	}

	pc, err := dial(p.ep)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", p.ep.Label(), err)
	}
	p.created++
	return pc, nil
}

// release returns a checked-out connection to the idle set. Connections
// marked non-reusable or failing the liveness probe are closed instead, as
// are surplus connections when the pool is already at capacity.
func (p *hostPool) release(pc *PooledConn, reuse bool, capacity int) {
	if pc == nil {
		return
	}
	if !reuse {
		_ = pc.Close()
		return
	}
	if !pc.alive() {
		p.mu.Lock()
		p.failed++
		p.mu.Unlock()
		_ = pc.Close()
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.idle) < capacity {
		pc.touch()
		p.idle = append(p.idle, pc)
		return
	}
	_ = pc.Close()
}

// closeAll closes every idle connection and empties the idle set. Checked-out
// connections are unaffected; releasing one later simply repopulates the pool.
func (p *hostPool) closeAll() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, pc := range p.idle {
		_ = pc.Close()
	}
	p.idle = nil
}

func (p *hostPool) snapshot() PoolStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return PoolStats{
		Created: p.created,
		Reused:  p.reused,
		Failed:  p.failed,
		Active:  int64(len(p.idle)),
	}
}
