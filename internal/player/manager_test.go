package player

import (
	"context"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pixil98/go-testutil"
)

type testClient struct {
	t    *testing.T
	conn net.Conn

	mu   sync.Mutex
	out  strings.Builder
	seen int

	ended chan error
}

// connect runs a session for one end of a pipe and returns the other end.
func connect(t *testing.T, ctx context.Context, mgr *SessionManager) *testClient {
	t.Helper()

	server, client := net.Pipe()
	c := &testClient{t: t, conn: client, ended: make(chan error, 1)}

	go func() {
		err := mgr.RunSession(ctx, server)
		_ = server.Close()
		c.ended <- err
	}()

	go func() {
		buf := make([]byte, 1024)
		for {
			n, err := client.Read(buf)
			c.mu.Lock()
			c.out.Write(buf[:n])
			c.mu.Unlock()
			if err != nil {
				return
			}
		}
	}()

	t.Cleanup(func() { _ = client.Close() })
	c.waitFor(promptChoose)
	return c
}

func (c *testClient) send(line string) {
	c.t.Helper()
	if _, err := c.conn.Write([]byte(line + "\r\n")); err != nil {
		c.t.Fatalf("writing %q: %v", line, err)
	}
}

// waitFor blocks until substr shows up in output not yet consumed, and
// consumes everything up to and including it.
func (c *testClient) waitFor(substr string) {
	c.t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		c.mu.Lock()
		rest := c.out.String()[c.seen:]
		if i := strings.Index(rest, substr); i >= 0 {
			c.seen += i + len(substr)
			c.mu.Unlock()
			return
		}
		c.mu.Unlock()
		time.Sleep(2 * time.Millisecond)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t.Fatalf("timed out waiting for %q; unread output: %q", substr, c.out.String()[c.seen:])
}

func (c *testClient) all() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.out.String()
}

func (c *testClient) waitEnded() error {
	c.t.Helper()
	select {
	case err := <-c.ended:
		return err
	case <-time.After(5 * time.Second):
		c.t.Fatal("session did not end")
		return nil
	}
}

func (c *testClient) signup(name string) {
	c.t.Helper()
	c.send("signup")
	c.waitFor("Choose username: ")
	c.send(name)
	c.waitFor("Choose password: ")
	c.send("pw")
	c.waitFor(promptActive)
}

func TestSessionManager_TwoPlayerScenario(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	a := connect(t, ctx, env.mgr)
	b := connect(t, ctx, env.mgr)
	c := connect(t, ctx, env.mgr)

	a.signup("alice")
	b.signup("bob")
	c.signup("carol")

	c.send("quit")
	c.waitFor("Goodbye! Your progress has been saved.")
	if err := c.waitEnded(); err != nil {
		t.Fatalf("carol's session: %v", err)
	}

	a.send("say hi")
	a.waitFor("[Room] you: hi")
	b.waitFor("[Room] alice: hi")

	a.send("w")
	a.waitFor("No exit w.")
	room, _ := env.world.LocationOf("alice")
	testutil.AssertEqual(t, "alice did not move", room, "alamo-plaza")
	testutil.AssertEqual(t, "roster", len(env.world.Roster("alamo-plaza")), 2)

	a.send("quit")
	a.waitFor("Goodbye! Your progress has been saved.")
	if err := a.waitEnded(); err != nil {
		t.Fatalf("alice's session: %v", err)
	}
	b.waitFor("alice disappears.")

	b.send("who")
	b.waitFor("Online players:\n  bob\n")

	testutil.AssertEqual(t, "carol never heard alice", strings.Contains(c.all(), "alice: hi"), false)
	testutil.AssertEqual(t, "one save per quit", env.gateway.saves.Load(), int32(2))
}

func TestSessionManager_DisconnectSavesOnce(t *testing.T) {
	env := newTestEnv(t)
	a := connect(t, context.Background(), env.mgr)
	a.signup("alice")
	a.send("e")
	a.waitFor("River Walk North")

	_ = a.conn.Close()
	if err := a.waitEnded(); err != nil {
		t.Fatalf("session: %v", err)
	}

	testutil.AssertEqual(t, "saves", env.gateway.saves.Load(), int32(1))
	testutil.AssertEqual(t, "online", len(env.world.Online()), 0)
	testutil.AssertEqual(t, "sessions", env.mgr.Count(), 0)

	u, _ := env.gateway.FindUser(context.Background(), "alice")
	testutil.AssertEqual(t, "saved room", u.LastRoom, "river-walk-north")
}

func TestSessionManager_LineTooLong(t *testing.T) {
	env := newTestEnv(t, WithMaxLineLength(32))
	a := connect(t, context.Background(), env.mgr)
	a.signup("alice")

	a.send("say " + strings.Repeat("z", 100))
	a.waitFor("Input line too long.")

	a.send("where")
	a.waitFor("You are in: The Alamo Plaza")
}

func TestSessionManager_IdleTimeout(t *testing.T) {
	env := newTestEnv(t, WithIdleTimeout(20*time.Millisecond))
	a := connect(t, context.Background(), env.mgr)
	a.signup("alice")

	time.Sleep(50 * time.Millisecond)
	if err := env.mgr.Tick(context.Background()); err != nil {
		t.Fatalf("tick: %v", err)
	}

	a.waitFor("Disconnected for inactivity.")
	if err := a.waitEnded(); err != nil {
		t.Fatalf("session: %v", err)
	}
	testutil.AssertEqual(t, "saves", env.gateway.saves.Load(), int32(1))
}

func TestSessionManager_TickWithoutTimeoutKeepsSessions(t *testing.T) {
	env := newTestEnv(t)
	a := connect(t, context.Background(), env.mgr)
	a.signup("alice")

	if err := env.mgr.Tick(context.Background()); err != nil {
		t.Fatalf("tick: %v", err)
	}
	a.send("where")
	a.waitFor("You are in:")
	testutil.AssertEqual(t, "sessions", env.mgr.Count(), 1)
}

func TestSessionManager_StartKicksEveryoneOnShutdown(t *testing.T) {
	env := newTestEnv(t)

	a := connect(t, context.Background(), env.mgr)
	b := connect(t, context.Background(), env.mgr)
	a.signup("alice")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- env.mgr.Start(ctx) }()
	cancel()

	a.waitFor("Server shutting down.")
	b.waitFor("Server shutting down.")
	if err := a.waitEnded(); err != nil {
		t.Fatalf("alice's session: %v", err)
	}
	if err := b.waitEnded(); err != nil {
		t.Fatalf("guest session: %v", err)
	}
	if err := <-done; err != nil {
		t.Fatalf("start: %v", err)
	}

	testutil.AssertEqual(t, "saves", env.gateway.saves.Load(), int32(1))
	testutil.AssertEqual(t, "online", len(env.world.Online()), 0)
}
