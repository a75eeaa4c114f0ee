package accounts

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/pixil98/go-testutil"
	"golang.org/x/crypto/bcrypt"
)

func newTestGateway(t *testing.T, dir string) *FileGateway {
	t.Helper()
	g, err := NewFileGateway(dir, WithHashCost(bcrypt.MinCost))
	if err != nil {
		t.Fatalf("opening gateway: %v", err)
	}
	return g
}

func TestFileGateway_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	g := newTestGateway(t, t.TempDir())

	u, err := g.FindUser(ctx, "alice")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if u != nil {
		t.Fatalf("expected no user, got %+v", u)
	}

	created, err := g.CreateUser(ctx, "Alice", "secret")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Password == "secret" {
		t.Error("password stored in plaintext")
	}

	found, err := g.FindUser(ctx, "ALICE")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	testutil.AssertEqual(t, "name", found.Name, "Alice")
	testutil.AssertEqual(t, "correct password", g.VerifyCredential(found, "secret"), true)
	testutil.AssertEqual(t, "wrong password", g.VerifyCredential(found, "Secret"), false)
	testutil.AssertEqual(t, "nil user", g.VerifyCredential(nil, "secret"), false)
}

func TestFileGateway_DuplicateUsername(t *testing.T) {
	ctx := context.Background()
	g := newTestGateway(t, t.TempDir())

	if _, err := g.CreateUser(ctx, "alice", "one"); err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err := g.CreateUser(ctx, "Alice", "two")
	if !errors.Is(err, ErrDuplicateUsername) {
		t.Fatalf("error = %v, expected ErrDuplicateUsername", err)
	}

	u, _ := g.FindUser(ctx, "alice")
	testutil.AssertEqual(t, "original password kept", g.VerifyCredential(u, "one"), true)
}

func TestFileGateway_SaveLastRoomSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	g := newTestGateway(t, dir)
	if _, err := g.CreateUser(ctx, "bob", "pw"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := g.SaveLastRoom(ctx, "bob", "the-pearl"); err != nil {
		t.Fatalf("save: %v", err)
	}

	reopened := newTestGateway(t, dir)
	u, err := reopened.FindUser(ctx, "Bob")
	if err != nil || u == nil {
		t.Fatalf("find after reopen: %v, %v", u, err)
	}
	testutil.AssertEqual(t, "last room", u.LastRoom, "the-pearl")
	testutil.AssertEqual(t, "password still valid", reopened.VerifyCredential(u, "pw"), true)
}

func TestFileGateway_SaveLastRoomUnknownUser(t *testing.T) {
	g := newTestGateway(t, t.TempDir())

	err := g.SaveLastRoom(context.Background(), "ghost", "tower")
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("error = %v, expected ErrUserNotFound", err)
	}
}

func TestNewFileGateway_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "accounts")
	newTestGateway(t, dir)

	info, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	testutil.AssertEqual(t, "is dir", info.IsDir(), true)
}

func TestValidateHashCost(t *testing.T) {
	tests := map[string]struct {
		cost   int
		expErr bool
	}{
		"default":  {cost: 0},
		"minimum":  {cost: bcrypt.MinCost},
		"too low":  {cost: 1, expErr: true},
		"too high": {cost: 99, expErr: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			err := ValidateHashCost(tt.cost)
			if tt.expErr {
				testutil.AssertErrorContains(t, err, "hash_cost must be between")
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
