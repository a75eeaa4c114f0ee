package player

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/pixil98/samud/internal/accounts"
	"github.com/pixil98/samud/internal/commands"
	"github.com/pixil98/samud/internal/game"
	"github.com/pixil98/samud/internal/messaging"
)

// SessionManager creates a Session per connection and keeps track of the
// live ones.
type SessionManager struct {
	world     *game.WorldState
	gateway   accounts.Gateway
	handler   *commands.Handler
	router    *messaging.Router
	transport messaging.Transport

	outboxSize    int
	maxLineLength int
	idleTimeout   time.Duration

	mu       sync.Mutex
	sessions map[string]*Session
}

type SessionManagerOpt func(*SessionManager)

func WithOutboxSize(n int) SessionManagerOpt {
	return func(m *SessionManager) {
		m.outboxSize = n
	}
}

func WithMaxLineLength(n int) SessionManagerOpt {
	return func(m *SessionManager) {
		m.maxLineLength = n
	}
}

// WithIdleTimeout disconnects sessions that send nothing for d. Zero
// disables the check.
func WithIdleTimeout(d time.Duration) SessionManagerOpt {
	return func(m *SessionManager) {
		m.idleTimeout = d
	}
}

func NewSessionManager(world *game.WorldState, gateway accounts.Gateway, handler *commands.Handler, router *messaging.Router, transport messaging.Transport, opts ...SessionManagerOpt) *SessionManager {
	m := &SessionManager{
		world:         world,
		gateway:       gateway,
		handler:       handler,
		router:        router,
		transport:     transport,
		outboxSize:    defaultOutboxSize,
		maxLineLength: defaultMaxLineLength,
		sessions:      map[string]*Session{},
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Start waits for shutdown and then disconnects every session.
func (m *SessionManager) Start(ctx context.Context) error {
	<-ctx.Done()

	for _, s := range m.snapshot() {
		s.Kick("Server shutting down.")
	}
	return nil
}

// Tick disconnects idle sessions.
func (m *SessionManager) Tick(ctx context.Context) error {
	if m.idleTimeout <= 0 {
		return nil
	}

	now := time.Now()
	for _, s := range m.snapshot() {
		if s.idleFor(now) > m.idleTimeout {
			slog.InfoContext(ctx, "disconnecting idle session", "session", s.Id(), "player", s.Name())
			s.Kick("Disconnected for inactivity.")
		}
	}
	return nil
}

// RunSession serves one connection until it ends.
func (m *SessionManager) RunSession(ctx context.Context, conn io.ReadWriter) error {
	s := newSession(m)

	m.mu.Lock()
	m.sessions[s.id] = s
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		delete(m.sessions, s.id)
		m.mu.Unlock()
	}()

	slog.InfoContext(ctx, "session started", "session", s.id)
	err := s.run(ctx, conn)
	slog.InfoContext(ctx, "session ended", "session", s.id, "player", s.Name())

	return err
}

// Count returns the number of live sessions.
func (m *SessionManager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *SessionManager) snapshot() []*Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	return out
}
