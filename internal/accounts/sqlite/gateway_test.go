package sqlite

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/pixil98/go-testutil"
	"github.com/pixil98/samud/internal/accounts"
	"golang.org/x/crypto/bcrypt"
)

func openTempGateway(t *testing.T, path string) *Gateway {
	t.Helper()
	g, err := Open(path, WithHashCost(bcrypt.MinCost))
	if err != nil {
		t.Fatalf("open gateway: %v", err)
	}
	t.Cleanup(func() { _ = g.Close() })
	return g
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open(" "); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestGatewayCloseNilSafe(t *testing.T) {
	var g *Gateway
	if err := g.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestGateway_CreateFindVerify(t *testing.T) {
	ctx := context.Background()
	g := openTempGateway(t, filepath.Join(t.TempDir(), "samud.db"))

	u, err := g.FindUser(ctx, "alice")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if u != nil {
		t.Fatalf("expected no user, got %+v", u)
	}

	if _, err := g.CreateUser(ctx, "Alice", "secret"); err != nil {
		t.Fatalf("create: %v", err)
	}

	u, err = g.FindUser(ctx, "alice")
	if err != nil || u == nil {
		t.Fatalf("find: %v, %v", u, err)
	}
	testutil.AssertEqual(t, "display name", u.Name, "Alice")
	testutil.AssertEqual(t, "last room", u.LastRoom, "")
	testutil.AssertEqual(t, "correct password", g.VerifyCredential(u, "secret"), true)
	testutil.AssertEqual(t, "wrong password", g.VerifyCredential(u, "nope"), false)
}

func TestGateway_DuplicateUsername(t *testing.T) {
	ctx := context.Background()
	g := openTempGateway(t, filepath.Join(t.TempDir(), "samud.db"))

	if _, err := g.CreateUser(ctx, "alice", "one"); err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err := g.CreateUser(ctx, "ALICE", "two")
	if !errors.Is(err, accounts.ErrDuplicateUsername) {
		t.Fatalf("error = %v, expected ErrDuplicateUsername", err)
	}
}

func TestGateway_SaveLastRoomSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "samud.db")

	g := openTempGateway(t, path)
	if _, err := g.CreateUser(ctx, "bob", "pw"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := g.SaveLastRoom(ctx, "Bob", "southtown"); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := g.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened := openTempGateway(t, path)
	u, err := reopened.FindUser(ctx, "bob")
	if err != nil || u == nil {
		t.Fatalf("find: %v, %v", u, err)
	}
	testutil.AssertEqual(t, "last room", u.LastRoom, "southtown")
}

func TestGateway_SaveLastRoomUnknownUser(t *testing.T) {
	g := openTempGateway(t, filepath.Join(t.TempDir(), "samud.db"))

	err := g.SaveLastRoom(context.Background(), "ghost", "tower")
	if !errors.Is(err, accounts.ErrUserNotFound) {
		t.Errorf("error = %v, expected ErrUserNotFound", err)
	}
}

func TestOpen_AppliesPragmas(t *testing.T) {
	g := openTempGateway(t, filepath.Join(t.TempDir(), "samud.db"))

	var mode string
	if err := g.db.QueryRow(`PRAGMA journal_mode`).Scan(&mode); err != nil {
		t.Fatalf("journal_mode: %v", err)
	}
	var timeout int
	if err := g.db.QueryRow(`PRAGMA busy_timeout`).Scan(&timeout); err != nil {
		t.Fatalf("busy_timeout: %v", err)
	}

	testutil.AssertEqual(t, "journal mode", mode, "wal")
	testutil.AssertEqual(t, "busy timeout", timeout, 5000)
}

func TestGateway_ConcurrentSaves(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "samud.db")

	// Two handles on one file, as when sessions close during shutdown while
	// another process still holds the database.
	first := openTempGateway(t, path)
	second := openTempGateway(t, path)

	const players = 40
	for i := 0; i < players; i++ {
		if _, err := first.CreateUser(ctx, fmt.Sprintf("player%d", i), "pw"); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	for round := 0; round < 5; round++ {
		var wg sync.WaitGroup
		errs := make(chan error, players)
		for i := 0; i < players; i++ {
			g := first
			if i%2 == 1 {
				g = second
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				errs <- g.SaveLastRoom(ctx, fmt.Sprintf("player%d", i), fmt.Sprintf("room-%d", round))
			}()
		}
		wg.Wait()
		close(errs)

		for err := range errs {
			if err != nil {
				t.Fatalf("round %d: %v", round, err)
			}
		}
	}

	for i := 0; i < players; i++ {
		u, err := second.FindUser(ctx, fmt.Sprintf("player%d", i))
		if err != nil || u == nil {
			t.Fatalf("find: %v, %v", u, err)
		}
		testutil.AssertEqual(t, "last room", u.LastRoom, "room-4")
	}
}
