package accounts

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/pixil98/samud/internal/game"
	"github.com/pixil98/samud/internal/storage"
)

// FileGateway stores one JSON asset per user in a directory.
type FileGateway struct {
	store  storage.Storer[*User]
	hasher Hasher

	// Serialises read-modify-write of a record.
	mu sync.Mutex
}

type FileGatewayOpt func(*FileGateway)

// WithHashCost sets the bcrypt cost used for new passwords.
func WithHashCost(cost int) FileGatewayOpt {
	return func(g *FileGateway) {
		g.hasher.Cost = cost
	}
}

// NewFileGateway opens path, creating the directory if needed.
func NewFileGateway(path string, opts ...FileGatewayOpt) (*FileGateway, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("creating account directory: %w", err)
	}

	store, err := storage.NewFileStore[*User](path)
	if err != nil {
		return nil, fmt.Errorf("loading accounts: %w", err)
	}

	g := &FileGateway{store: store}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

func (g *FileGateway) FindUser(ctx context.Context, name string) (*User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	u := g.store.Get(recordId(name))
	if u == nil {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (g *FileGateway) CreateUser(ctx context.Context, name, password string) (*User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	hashed, err := g.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	u := &User{
		Name:      name,
		Password:  hashed,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = g.store.Create(recordId(name), u)
	if errors.Is(err, storage.ErrExists) {
		return nil, ErrDuplicateUsername
	}
	if err != nil {
		return nil, fmt.Errorf("saving user: %w", err)
	}

	cp := *u
	return &cp, nil
}

func (g *FileGateway) VerifyCredential(u *User, supplied string) bool {
	if u == nil {
		return false
	}
	return g.hasher.Check(u.Password, supplied)
}

func (g *FileGateway) SaveLastRoom(ctx context.Context, name, roomId string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	id := recordId(name)
	u := g.store.Get(id)
	if u == nil {
		return ErrUserNotFound
	}

	// Records handed out by FindUser are copies, but the cached one is
	// shared with the store, so replace it rather than mutate it.
	updated := *u
	updated.LastRoom = roomId
	updated.UpdatedAt = time.Now().UTC()

	if err := g.store.Save(id, &updated); err != nil {
		return fmt.Errorf("saving user: %w", err)
	}
	return nil
}

// recordId is the file name for a user. Usernames are alphanumeric, so
// the folded key is always a valid asset id.
func recordId(name string) string {
	return game.Key(name)
}
