// Package connpool provides a keyed connection pool that amortizes TCP/TLS
// handshake cost across repeated requests to the same host.
//
// The primary type is Registry, which owns one pool per endpoint key
// (host, port, secure). Pools are created lazily and hand out validated
// connections in LIFO order, so the most recently released connection is
// reused first and cold connections age out implicitly.
//
// # Basic Usage
//
//	reg := connpool.NewRegistry(connpool.WithMaxPerHost(10))
//	ep := connpool.Endpoint{Host: "example.com", Port: 443, Secure: true}
//
//	conn, err := reg.Acquire(ep)
//	if errors.Is(err, connpool.ErrExhausted) {
//	    // no pooled connection available right now; dial directly instead
//	}
//	defer reg.Release(ep, conn, true)
//
// Exhaustion is a condition, not an error: ErrExhausted means the pool has
// reached capacity and the caller should degrade to an unpooled connection.
// Connection-creation failures, by contrast, are surfaced as wrapped dial
// errors.
//
// Each pool validates idle connections with a non-blocking liveness probe
// before handing them out; connections that fail the probe are discarded and
// counted, never returned. The per-host capacity is a single shared value
// that can be changed at runtime and takes effect on the next acquire.
package connpool
