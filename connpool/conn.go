package connpool

import (
	"crypto/tls"
	"fmt"
	"net"
	"sync/atomic"
	"time"

	"github.com/utkarsh5026/scanboost/internal/sockprobe"
)

// Transport timeouts are fixed ceilings: exceeding one surfaces as a
// connection-creation or I/O failure, never as pool exhaustion.
const (
	ConnectTimeout = 10 * time.Second
	SendTimeout    = 15 * time.Second
	RecvTimeout    = 30 * time.Second
)

// PooledConn wraps one live transport connection. It carries the active
// connection (TLS-wrapped for secure endpoints) together with the raw TCP
// descriptor used for liveness probing, plus creation and last-used
// timestamps.
//
// Ownership is exclusive: a connection is either idle inside a pool, checked
// out by one caller, or closed. It is never shared between two idle sets.
type PooledConn struct {
	conn      net.Conn     // active connection carrying traffic
	raw       *net.TCPConn // probe target; the descriptor conn is built on
	createdAt time.Time
	lastUsed  time.Time
	closed    atomic.Bool
}

// NewPooledConn wraps an existing connection so it can live in a pool.
// If conn is a *net.TCPConn it also becomes the probe target; otherwise the
// liveness probe degrades to the closed-state check.
func NewPooledConn(conn net.Conn) *PooledConn {
	raw, _ := conn.(*net.TCPConn)
	now := time.Now()
	return &PooledConn{
		conn:      conn,
		raw:       raw,
		createdAt: now,
		lastUsed:  now,
	}
}

// Dial establishes a new connection to the endpoint. It applies the fixed
// connect timeout, tunes the socket for request/response traffic, and wraps
// secure endpoints with TLS. Certificate verification is skipped: a scanner
// probes arbitrary hosts and their certificates are not the subject.
func Dial(ep Endpoint) (*PooledConn, error) {
	d := net.Dialer{Timeout: ConnectTimeout}
	conn, err := d.Dial("tcp", ep.Addr())
	if err != nil {
		return nil, err
	}

	tcp, ok := conn.(*net.TCPConn)
	if !ok {
		conn.Close()
		return nil, fmt.Errorf("unexpected connection type %T", conn)
	}
	tuneSocket(tcp)

	active := net.Conn(tcp)
	if ep.Secure {
		tlsConn := tls.Client(tcp, &tls.Config{
			ServerName:         ep.Host,
			InsecureSkipVerify: true,
		})
		_ = tlsConn.SetDeadline(time.Now().Add(ConnectTimeout))
		if err := tlsConn.Handshake(); err != nil {
			tlsConn.Close()
			return nil, fmt.Errorf("tls handshake: %w", err)
		}
		_ = tlsConn.SetDeadline(time.Time{})
		active = tlsConn
	}

	now := time.Now()
	return &PooledConn{
		conn:      active,
		raw:       tcp,
		createdAt: now,
		lastUsed:  now,
	}, nil
}

// tuneSocket applies best-effort socket options; failures are ignored.
func tuneSocket(tcp *net.TCPConn) {
	_ = tcp.SetNoDelay(true)
	_ = tcp.SetKeepAlive(true)
	_ = tcp.SetKeepAlivePeriod(30 * time.Second)
}

// Conn returns the active connection for direct use.
func (pc *PooledConn) Conn() net.Conn {
	return pc.conn
}

// Read reads from the connection under the fixed receive timeout.
func (pc *PooledConn) Read(p []byte) (int, error) {
	if err := pc.conn.SetReadDeadline(time.Now().Add(RecvTimeout)); err != nil {
		return 0, err
	}
	return pc.conn.Read(p)
}

// Write writes to the connection under the fixed send timeout.
func (pc *PooledConn) Write(p []byte) (int, error) {
	if err := pc.conn.SetWriteDeadline(time.Now().Add(SendTimeout)); err != nil {
		return 0, err
	}
	return pc.conn.Write(p)
}

// Close closes the underlying connection. Closing twice is a no-op.
func (pc *PooledConn) Close() error {
	if !pc.closed.CompareAndSwap(false, true) {
		return nil
	}
	return pc.conn.Close()
}

// IsClosed reports whether the connection has been closed.
func (pc *PooledConn) IsClosed() bool {
	return pc.closed.Load()
}

// CreatedAt returns when the connection was established.
func (pc *PooledConn) CreatedAt() time.Time {
	return pc.createdAt
}

// LastUsed returns when the connection last entered or left a pool.
func (pc *PooledConn) LastUsed() time.Time {
	return pc.lastUsed
}

func (pc *PooledConn) touch() {
	pc.lastUsed = time.Now()
}

// alive is the liveness probe. A connection is invalid if it has been
// closed or if the non-blocking readiness check reports an error condition
// on the descriptor. A probe that cannot run counts as invalid.
func (pc *PooledConn) alive() bool {
	if pc.closed.Load() {
		return false
	}
	if pc.raw == nil {
		// No descriptor to inspect; the closed check above is all we have.
		return true
	}
	return !sockprobe.Broken(pc.raw)
}
