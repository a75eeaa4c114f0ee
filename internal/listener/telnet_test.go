package listener

import (
	"context"
	"io"
	"net"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pixil98/go-testutil"
)

func freePort(t *testing.T) uint16 {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	_ = ln.Close()
	return uint16(port)
}

func TestTelnetListener_StartWaitsForSessions(t *testing.T) {
	port := freePort(t)

	var accepted, saved atomic.Bool
	accept := func(ctx context.Context, _ io.ReadWriter) {
		accepted.Store(true)
		<-ctx.Done()
		// Stands in for the session's last-room save.
		time.Sleep(200 * time.Millisecond)
		saved.Store(true)
	}

	l := NewTelnetListener(port, accept)
	ctx, cancel := context.WithCancel(context.Background())
	started := make(chan error, 1)
	go func() { started <- l.Start(ctx) }()

	var client net.Conn
	deadline := time.Now().Add(5 * time.Second)
	for {
		c, err := net.Dial("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(int(port))))
		if err == nil {
			client = c
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("dial: %v", err)
		}
		time.Sleep(10 * time.Millisecond)
	}
	defer func() { _ = client.Close() }()

	for !accepted.Load() {
		if time.Now().After(deadline) {
			t.Fatal("connection was never handed off")
		}
		time.Sleep(5 * time.Millisecond)
	}

	cancel()
	select {
	case err := <-started:
		if err != nil {
			t.Errorf("start: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("start did not return after cancel")
	}
	testutil.AssertEqual(t, "session finished before start returned", saved.Load(), true)
}
