package connpool

import (
	"errors"
	"net"
	"sync"
	"sync/atomic"
	"testing"
)

// pipeDialer returns a DialFunc backed by net.Pipe plus a counter of how
// many connections it created.
func pipeDialer(t *testing.T) (DialFunc, *atomic.Int32) {
	t.Helper()
	var dials atomic.Int32
	dial := func(_ Endpoint) (*PooledConn, error) {
		dials.Add(1)
		c1, c2 := net.Pipe()
		t.Cleanup(func() {
			_ = c1.Close()
			_ = c2.Close()
		})
		return NewPooledConn(c1), nil
	}
	return dial, &dials
}

func testEndpoint() Endpoint {
	return Endpoint{Host: "a.com", Port: 80}
}

func TestRegistry_AcquireCreatesThenReuses(t *testing.T) {
	dial, dials := pipeDialer(t)
	reg := NewRegistry(WithDialer(dial), WithMaxPerHost(4))
	ep := testEndpoint()

	pc, err := reg.Acquire(ep)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if dials.Load() != 1 {
		t.Fatalf("expected 1 dial, got %d", dials.Load())
	}

	reg.Release(ep, pc, true)

	again, err := reg.Acquire(ep)
	if err != nil {
		t.Fatalf("second acquire: %v", err)
	}
	if again != pc {
		t.Error("expected the released connection to be reused")
	}
	if dials.Load() != 1 {
		t.Errorf("expected no extra dial on reuse, got %d", dials.Load())
	}

	stats := reg.Stats()[ep.Label()]
	if stats.Created != 1 || stats.Reused != 1 {
		t.Errorf("expected created=1 reused=1, got %+v", stats)
	}
}

func TestRegistry_ReuseIsLIFO(t *testing.T) {
	dial, _ := pipeDialer(t)
	reg := NewRegistry(WithDialer(dial), WithMaxPerHost(4))
	ep := testEndpoint()

	first, _ := reg.Acquire(ep)
	second, _ := reg.Acquire(ep)

	reg.Release(ep, first, true)
	reg.Release(ep, second, true)

	got, _ := reg.Acquire(ep)
	if got != second {
		t.Error("expected the most recently released connection first")
	}
	got, _ = reg.Acquire(ep)
	if got != first {
		t.Error("expected the older connection second")
	}
}

func TestRegistry_ReleaseWithoutReuseCloses(t *testing.T) {
	dial, dials := pipeDialer(t)
	reg := NewRegistry(WithDialer(dial), WithMaxPerHost(4))
	ep := testEndpoint()

	pc, _ := reg.Acquire(ep)
	reg.Release(ep, pc, false)

	if !pc.IsClosed() {
		t.Error("expected connection to be closed on reuse=false")
	}

	again, err := reg.Acquire(ep)
	if err != nil {
		t.Fatalf("acquire after discard: %v", err)
	}
	if again == pc {
		t.Error("discarded connection must never reappear")
	}
	if dials.Load() != 2 {
		t.Errorf("expected a fresh dial, got %d dials", dials.Load())
	}
}

func TestRegistry_AcquireDiscardsDeadIdle(t *testing.T) {
	dial, dials := pipeDialer(t)
	reg := NewRegistry(WithDialer(dial), WithMaxPerHost(4))
	ep := testEndpoint()

	pc, _ := reg.Acquire(ep)
	reg.Release(ep, pc, true)

	// Kill the idle connection behind the pool's back.
	_ = pc.Close()

	again, err := reg.Acquire(ep)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if again == pc {
		t.Error("dead idle connection must not be handed out")
	}
	if dials.Load() != 2 {
		t.Errorf("expected replacement dial, got %d", dials.Load())
	}

	stats := reg.Stats()[ep.Label()]
	if stats.Failed != 1 {
		t.Errorf("expected failed=1, got %+v", stats)
	}
}

func TestRegistry_ConcurrentAcquireRespectsCapacity(t *testing.T) {
	const capacity = 4
	const callers = 16

	dial, dials := pipeDialer(t)
	reg := NewRegistry(WithDialer(dial), WithMaxPerHost(capacity))
	ep := testEndpoint()

	var exhausted atomic.Int32
	var acquired atomic.Int32
	var wg sync.WaitGroup

	for range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := reg.Acquire(ep)
			switch {
			case errors.Is(err, ErrExhausted):
				exhausted.Add(1)
			case err == nil:
				acquired.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if acquired.Load() != capacity {
		t.Errorf("expected %d acquired, got %d", capacity, acquired.Load())
	}
	if exhausted.Load() != callers-capacity {
		t.Errorf("expected %d exhausted, got %d", callers-capacity, exhausted.Load())
	}
	if dials.Load() != capacity {
		t.Errorf("expected exactly %d created, got %d", capacity, dials.Load())
	}
}

func TestRegistry_DialErrorIsNotExhaustion(t *testing.T) {
	dialErr := errors.New("connection refused")
	reg := NewRegistry(WithDialer(func(_ Endpoint) (*PooledConn, error) {
		return nil, dialErr
	}))

	_, err := reg.Acquire(testEndpoint())
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if errors.Is(err, ErrExhausted) {
		t.Error("dial failure must not surface as exhaustion")
	}
	if !errors.Is(err, dialErr) {
		t.Errorf("expected wrapped dial error, got %v", err)
	}
}

func TestRegistry_ReleaseToFullPoolClosesSurplus(t *testing.T) {
	dial, _ := pipeDialer(t)
	reg := NewRegistry(WithDialer(dial), WithMaxPerHost(2))
	ep := testEndpoint()

	first, _ := reg.Acquire(ep)
	second, _ := reg.Acquire(ep)

	reg.SetMaxPerHost(1)
	reg.Release(ep, first, true)
	reg.Release(ep, second, true)

	if first.IsClosed() {
		t.Error("first release should have been pooled")
	}
	if !second.IsClosed() {
		t.Error("surplus release should have been closed")
	}
	if active := reg.Stats()[ep.Label()].Active; active != 1 {
		t.Errorf("expected 1 idle connection, got %d", active)
	}
}

func TestRegistry_SetMaxPerHostTakesEffectOnNextAcquire(t *testing.T) {
	dial, _ := pipeDialer(t)
	reg := NewRegistry(WithDialer(dial), WithMaxPerHost(1))
	ep := testEndpoint()

	if _, err := reg.Acquire(ep); err != nil {
		t.Fatalf("first acquire: %v", err)
	}
	if _, err := reg.Acquire(ep); !errors.Is(err, ErrExhausted) {
		t.Fatalf("expected exhaustion at capacity 1, got %v", err)
	}

	reg.SetMaxPerHost(2)
	if _, err := reg.Acquire(ep); err != nil {
		t.Errorf("expected raised capacity to allow creation, got %v", err)
	}
}
