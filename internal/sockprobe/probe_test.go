package sockprobe

import (
	"net"
	"runtime"
	"testing"
)

func tcpPair(t *testing.T) (*net.TCPConn, net.Conn) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	accepted := make(chan net.Conn, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		accepted <- conn
	}()

	client, err := net.Dial("tcp", ln.Addr().String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	server := <-accepted
	t.Cleanup(func() {
		_ = client.Close()
		_ = server.Close()
	})

	return client.(*net.TCPConn), server
}

func TestBroken_HealthyConnection(t *testing.T) {
	client, _ := tcpPair(t)
	if Broken(client) {
		t.Error("healthy connection reported broken")
	}
}

func TestBroken_ClosedDescriptor(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("probe degrades to a no-op on windows")
	}

	client, _ := tcpPair(t)
	_ = client.Close()

	if !Broken(client) {
		t.Error("closed descriptor must report broken")
	}
}
