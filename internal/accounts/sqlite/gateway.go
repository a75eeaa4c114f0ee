// Package sqlite stores accounts in a single SQLite database file.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/pixil98/samud/internal/accounts"
	"github.com/pixil98/samud/internal/game"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

//go:embed schema.sql
var schema string

// Gateway implements accounts.Gateway over SQLite.
type Gateway struct {
	db     *sql.DB
	hasher accounts.Hasher
}

type GatewayOpt func(*Gateway)

// WithHashCost sets the bcrypt cost used for new passwords.
func WithHashCost(cost int) GatewayOpt {
	return func(g *Gateway) {
		g.hasher.Cost = cost
	}
}

// Open opens the database at path and applies the schema.
func Open(path string, opts ...GatewayOpt) (*Gateway, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// One writer at a time; sessions closing together queue here instead of
	// failing with SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	g := &Gateway{db: db}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Close releases the database handle.
func (g *Gateway) Close() error {
	if g == nil || g.db == nil {
		return nil
	}
	return g.db.Close()
}

func (g *Gateway) FindUser(ctx context.Context, name string) (*accounts.User, error) {
	row := g.db.QueryRowContext(ctx,
		`SELECT name, password_hash, last_room, created_at, updated_at FROM users WHERE name_key = ?`,
		game.Key(name))

	var u accounts.User
	var created, updated int64
	err := row.Scan(&u.Name, &u.Password, &u.LastRoom, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}

	u.CreatedAt = fromMillis(created)
	u.UpdatedAt = fromMillis(updated)
	return &u, nil
}

func (g *Gateway) CreateUser(ctx context.Context, name, password string) (*accounts.User, error) {
	hashed, err := g.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	_, err = g.db.ExecContext(ctx,
		`INSERT INTO users (name_key, name, password_hash, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		game.Key(name), name, hashed, toMillis(now), toMillis(now))
	if isUniqueViolation(err) {
		return nil, accounts.ErrDuplicateUsername
	}
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}

	return &accounts.User{
		Name:      name,
		Password:  hashed,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (g *Gateway) VerifyCredential(u *accounts.User, supplied string) bool {
	if u == nil {
		return false
	}
	return g.hasher.Check(u.Password, supplied)
}

func (g *Gateway) SaveLastRoom(ctx context.Context, name, roomId string) error {
	res, err := g.db.ExecContext(ctx,
		`UPDATE users SET last_room = ?, updated_at = ? WHERE name_key = ?`,
		roomId, toMillis(time.Now()), game.Key(name))
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if n == 0 {
		return accounts.ErrUserNotFound
	}
	return nil
}

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(v int64) time.Time {
	return time.UnixMilli(v).UTC()
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	switch sqliteErr.Code() {
	case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
		return true
	}
	return false
}
