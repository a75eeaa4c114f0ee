package player

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/pixil98/samud/internal/commands"
	"github.com/pixil98/samud/internal/display"
	"github.com/pixil98/samud/internal/messaging"
)

// State is where a session is in its lifecycle.
type State int

const (
	StateConnecting State = iota
	StateAuthenticating
	StateActive
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateAuthenticating:
		return "authenticating"
	case StateActive:
		return "active"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

// How long a closing session waits for queued output to reach the client.
const flushTimeout = 2 * time.Second

const (
	promptChoose = "login or signup: "
	promptActive = "> "
)

var welcomeBanner = display.Banner(
	"                 Welcome to SAMud",
	"           San Antonio Multi-User Dungeon",
	"",
	"Explore the Alamo City's landmarks and chat with",
	"fellow adventurers in this text-based adventure!",
	"",
	"Type 'login' or 'signup' to begin",
)

// Session is one connected client. Its state machine runs on a single
// goroutine; only Kick and Close may be called from elsewhere.
type Session struct {
	id  string
	mgr *SessionManager

	outbox *Outbox

	mu          sync.Mutex
	state       State
	name        string
	auth        authState
	unsubscribe func()

	lastInput atomic.Int64

	kicked     chan struct{}
	kickOnce   sync.Once
	kickReason atomic.Value
	closeOnce  sync.Once
}

func newSession(mgr *SessionManager) *Session {
	s := &Session{
		id:     uuid.NewString(),
		mgr:    mgr,
		outbox: NewOutbox(mgr.outboxSize),
		state:  StateConnecting,
		kicked: make(chan struct{}),
	}
	s.touch()
	return s
}

func (s *Session) Id() string {
	return s.id
}

// Name returns the account name, or "" before login.
func (s *Session) Name() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.name
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Active() bool {
	return s.State() == StateActive
}

func (s *Session) Send(line string) {
	s.outbox.Enqueue(line)
}

func (s *Session) touch() {
	s.lastInput.Store(time.Now().UnixNano())
}

func (s *Session) idleFor(now time.Time) time.Duration {
	return now.Sub(time.Unix(0, s.lastInput.Load()))
}

// Kick asks the session goroutine to close the session, telling the client
// why first.
func (s *Session) Kick(reason string) {
	s.kickOnce.Do(func() {
		s.kickReason.Store(reason)
		close(s.kicked)
	})
}

type inputEvent struct {
	line string
	err  error
}

// run drives the session until the client leaves, is kicked, or ctx ends.
func (s *Session) run(ctx context.Context, conn io.ReadWriter) error {
	stopped := make(chan struct{})
	defer close(stopped)

	var writeErr error
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		writeErr = s.outbox.Drain(conn)
	}()

	input := make(chan inputEvent)
	go func() {
		lr := newLineReader(conn, s.mgr.maxLineLength)
		for {
			line, err := lr.ReadLine()
			select {
			case input <- inputEvent{line: line, err: err}:
			case <-stopped:
				return
			}
			if err != nil && !errors.Is(err, ErrLineTooLong) {
				return
			}
		}
	}()

	s.Send(welcomeBanner)
	s.outbox.Prompt(promptChoose)

	err := s.loop(ctx, input, writerDone)

	s.Close(ctx)

	select {
	case <-writerDone:
		// A client that hung up mid-write is not a session failure.
		if writeErr != nil {
			slog.DebugContext(ctx, "writing to client", "session", s.id, "error", writeErr)
		}
	case <-time.After(flushTimeout):
		slog.WarnContext(ctx, "timed out flushing session output", "session", s.id)
	}

	return err
}

func (s *Session) loop(ctx context.Context, input <-chan inputEvent, writerDone <-chan struct{}) error {
	for {
		select {
		case <-ctx.Done():
			s.Send("Server shutting down.")
			return nil

		case <-s.kicked:
			if reason, _ := s.kickReason.Load().(string); reason != "" {
				s.Send(reason)
			}
			return nil

		case <-writerDone:
			return nil

		case ev := <-input:
			if errors.Is(ev.err, ErrLineTooLong) {
				s.Send("Input line too long.")
				s.prompt()
				continue
			}
			if errors.Is(ev.err, io.EOF) {
				return nil
			}
			if ev.err != nil {
				return fmt.Errorf("reading from client: %w", ev.err)
			}

			s.touch()
			err := s.HandleLine(ctx, ev.line)
			if errors.Is(err, commands.ErrQuit) {
				return nil
			}
			if err != nil {
				return err
			}
			s.prompt()
		}
	}
}

func (s *Session) prompt() {
	if s.Active() {
		s.outbox.Prompt(promptActive)
		return
	}
	s.outbox.Prompt(s.authPrompt())
}

// HandleLine runs one line of input through the state machine. It returns
// commands.ErrQuit when the client asked to leave and any other error when
// the session cannot continue.
func (s *Session) HandleLine(ctx context.Context, line string) error {
	switch s.State() {
	case StateConnecting, StateAuthenticating:
		return s.handleAuth(ctx, line)
	case StateActive:
		return s.exec(ctx, line)
	}
	return fmt.Errorf("session %s is closed", s.id)
}

// exec parses and runs a command, reporting user errors to the client.
func (s *Session) exec(ctx context.Context, line string) error {
	if strings.TrimSpace(line) == "" {
		return nil
	}

	cmd, err := commands.Parse(line)
	if err == nil {
		err = s.mgr.handler.Exec(ctx, s, cmd)
	}

	var userErr *commands.UserError
	if errors.As(err, &userErr) {
		s.Send(userErr.Message)
		return nil
	}
	return err
}

// Close leaves the world and saves the player's room. It is safe to call
// more than once and from more than one goroutine; only the first call
// does anything.
func (s *Session) Close(ctx context.Context) {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		wasActive := s.state == StateActive
		name := s.name
		unsubscribe := s.unsubscribe
		s.state = StateClosed
		s.unsubscribe = nil
		s.mu.Unlock()

		if wasActive {
			s.leaveWorld(ctx, name, unsubscribe)
		}

		if n := s.outbox.Dropped(); n > 0 {
			slog.WarnContext(ctx, "session dropped output", "session", s.id, "player", name, "dropped", n)
		}
		s.outbox.Close()
	})
}

func (s *Session) leaveWorld(ctx context.Context, name string, unsubscribe func()) {
	room, ok := s.mgr.world.Unregister(name)
	if unsubscribe != nil {
		unsubscribe()
	}
	if !ok {
		return
	}

	s.mgr.router.Room(ctx, messaging.Message{
		Scope: messaging.ScopeSystem,
		From:  name,
		Room:  room,
		Body:  fmt.Sprintf("%s disappears.", name),
	})

	// The save must outlive a cancelled server context.
	err := s.mgr.gateway.SaveLastRoom(context.WithoutCancel(ctx), name, room)
	if err != nil {
		slog.ErrorContext(ctx, "saving last room", "player", name, "room", room, "error", err)
	}

	slog.InfoContext(ctx, "player logged out", "session", s.id, "player", name, "room", room)
}
