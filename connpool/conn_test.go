package connpool

import (
	"net"
	"testing"
)

func TestDial_RealTCP(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			defer conn.Close()
		}
	}()

	port := ln.Addr().(*net.TCPAddr).Port
	pc, err := Dial(Endpoint{Host: "127.0.0.1", Port: port})
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer pc.Close()

	if !pc.alive() {
		t.Error("freshly dialed connection should pass the liveness probe")
	}
	if pc.Conn() == nil {
		t.Error("expected an active connection")
	}
	if pc.CreatedAt().IsZero() || pc.LastUsed().IsZero() {
		t.Error("expected creation and last-used timestamps")
	}
}

func TestDial_ConnectionRefused(t *testing.T) {
	// Reserve a port and close the listener so nothing is listening there.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()

	if _, err := Dial(Endpoint{Host: "127.0.0.1", Port: port}); err == nil {
		t.Error("expected dial error for a closed port")
	}
}

func TestPooledConn_CloseIsIdempotent(t *testing.T) {
	c1, c2 := net.Pipe()
	defer c2.Close()

	pc := NewPooledConn(c1)
	if err := pc.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := pc.Close(); err != nil {
		t.Errorf("second close should be a no-op, got %v", err)
	}
	if !pc.IsClosed() {
		t.Error("expected IsClosed after Close")
	}
	if pc.alive() {
		t.Error("closed connection must fail the liveness probe")
	}
}

func TestPooledConn_ReadWrite(t *testing.T) {
	c1, c2 := net.Pipe()
	pc := NewPooledConn(c1)
	defer pc.Close()
	defer c2.Close()

	go func() {
		buf := make([]byte, 4)
		if _, err := c2.Read(buf); err != nil {
			return
		}
		_, _ = c2.Write(buf)
	}()

	if _, err := pc.Write([]byte("ping")); err != nil {
		t.Fatalf("write: %v", err)
	}
	buf := make([]byte, 4)
	n, err := pc.Read(buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(buf[:n]) != "ping" {
		t.Errorf("expected echo, got %q", buf[:n])
	}
}
