package player

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pixil98/samud/internal/accounts"
	"github.com/pixil98/samud/internal/commands"
	"github.com/pixil98/samud/internal/game"
	"github.com/pixil98/samud/internal/messaging"
)

const (
	minUsernameLength = 3
	maxUsernameLength = 20
)

type authStep int

const (
	stepChoose authStep = iota
	stepUsername
	stepPassword
)

type authState struct {
	step     authStep
	mode     commands.Verb
	username string
}

func (s *Session) authPrompt() string {
	s.mu.Lock()
	a := s.auth
	s.mu.Unlock()

	switch {
	case a.step == stepUsername && a.mode == commands.VerbSignup:
		return "Choose username: "
	case a.step == stepUsername:
		return "Username: "
	case a.step == stepPassword && a.mode == commands.VerbSignup:
		return "Choose password: "
	case a.step == stepPassword:
		return "Password: "
	}
	return promptChoose
}

func (s *Session) setAuth(a authState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.auth = a
	if s.state == StateConnecting && a.step != stepChoose {
		s.state = StateAuthenticating
	}
}

// failAuth reports msg and goes back to the login or signup choice.
func (s *Session) failAuth(msg string) error {
	s.Send(msg)
	s.setAuth(authState{})
	return nil
}

func (s *Session) handleAuth(ctx context.Context, line string) error {
	s.mu.Lock()
	a := s.auth
	s.mu.Unlock()

	switch a.step {
	case stepUsername:
		return s.readUsername(a, strings.TrimSpace(line))
	case stepPassword:
		return s.readPassword(ctx, a, line)
	}

	cmd, err := commands.Parse(line)
	if err == nil && (cmd.Verb == commands.VerbLogin || cmd.Verb == commands.VerbSignup) {
		s.setAuth(authState{step: stepUsername, mode: cmd.Verb})
		return nil
	}

	if strings.TrimSpace(line) == "" {
		return nil
	}
	return s.exec(ctx, line)
}

func (s *Session) readUsername(a authState, name string) error {
	if a.mode == commands.VerbSignup {
		if msg := checkUsername(name); msg != "" {
			return s.failAuth(msg)
		}
	} else if name == "" {
		return s.failAuth("Invalid username or password.")
	}

	a.step = stepPassword
	a.username = name
	s.setAuth(a)
	return nil
}

func (s *Session) readPassword(ctx context.Context, a authState, password string) error {
	gw := s.mgr.gateway

	if a.mode == commands.VerbSignup {
		if password == "" {
			return s.failAuth("Password cannot be empty.")
		}

		u, err := gw.CreateUser(ctx, a.username, password)
		if errors.Is(err, accounts.ErrDuplicateUsername) {
			return s.failAuth("Username already exists. Please choose another.")
		}
		if err != nil {
			slog.ErrorContext(ctx, "creating account", "player", a.username, "error", err)
			return s.failAuth("Could not create your account. Please try again.")
		}

		slog.InfoContext(ctx, "account created", "session", s.id, "player", u.Name)
		return s.enterWorld(ctx, u, fmt.Sprintf("Account created! Welcome to San Antonio, %s!", u.Name))
	}

	u, err := gw.FindUser(ctx, a.username)
	if err != nil {
		slog.ErrorContext(ctx, "looking up account", "player", a.username, "error", err)
		return s.failAuth("Could not log you in. Please try again.")
	}
	if u == nil || !gw.VerifyCredential(u, password) {
		return s.failAuth("Invalid username or password.")
	}

	return s.enterWorld(ctx, u, fmt.Sprintf("Welcome back, %s!", u.Name))
}

// enterWorld registers the player at their saved room, or the start room
// if they have none or it no longer exists.
func (s *Session) enterWorld(ctx context.Context, u *accounts.User, greeting string) error {
	world := s.mgr.world
	graph := world.Graph()

	room := u.LastRoom
	if !graph.Has(room) {
		room = graph.StartRoom()
	}

	// Subscribe before registering so nothing addressed to the player can
	// be published ahead of the subscription.
	sink := &ownedSink{world: world, name: u.Name, out: s.outbox}
	unsubscribe, err := s.mgr.transport.Subscribe(ctx, u.Name, sink)
	if err != nil {
		slog.ErrorContext(ctx, "subscribing session", "player", u.Name, "error", err)
		return s.failAuth("Could not log you in. Please try again.")
	}

	err = world.Register(u.Name, room, sink)
	if err != nil {
		unsubscribe()
	}
	if errors.Is(err, game.ErrAlreadyOnline) {
		return s.failAuth("That account is already online.")
	}
	if err != nil {
		return fmt.Errorf("registering %s: %w", u.Name, err)
	}

	s.mu.Lock()
	s.state = StateActive
	s.name = u.Name
	s.auth = authState{}
	s.unsubscribe = unsubscribe
	s.mu.Unlock()

	slog.InfoContext(ctx, "player logged in", "session", s.id, "player", u.Name, "room", room)

	s.Send(greeting)
	s.mgr.router.Room(ctx, messaging.Message{
		Scope: messaging.ScopeSystem,
		From:  u.Name,
		Room:  room,
		Body:  fmt.Sprintf("%s appears.", u.Name),
	})

	return s.mgr.handler.Show(s, room)
}

// ownedSink passes lines to out only while it is the sink registered for
// name. A subscription opened for a login that then loses to a session
// already online sees that session's lines; they are dropped here.
type ownedSink struct {
	world *game.WorldState
	name  string
	out   game.Sink
}

func (o *ownedSink) Enqueue(line string) bool {
	if registered, ok := o.world.Sink(o.name); !ok || registered != game.Sink(o) {
		return false
	}
	return o.out.Enqueue(line)
}

// checkUsername returns why name cannot be used for a new account, or ""
// if it can.
func checkUsername(name string) string {
	if len(name) < minUsernameLength || len(name) > maxUsernameLength {
		return fmt.Sprintf("Username must be %d-%d characters long.", minUsernameLength, maxUsernameLength)
	}
	for _, r := range name {
		if !isAlnum(r) {
			return "Username must contain only letters and numbers."
		}
	}
	if commands.IsReserved(name) {
		return "That name is reserved. Please choose another."
	}
	return ""
}

// Account names become file names, so only ASCII is allowed.
func isAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}
