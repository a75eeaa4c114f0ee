package commands

import (
	"context"
	"fmt"

	"github.com/pixil98/samud/internal/game"
	"github.com/pixil98/samud/internal/messaging"
)

// Actor is the session a command runs on behalf of.
type Actor interface {
	Name() string
	Active() bool
	// Send queues a line for the actor only.
	Send(line string)
}

// CommandFunc runs one verb.
type CommandFunc func(ctx context.Context, actor Actor, args string) error

type verbEntry struct {
	needsActive bool
	usage       string
	summary     string
	fn          CommandFunc
}

type Handler struct {
	world  *game.WorldState
	router *messaging.Router
	verbs  map[Verb]verbEntry
}

func NewHandler(world *game.WorldState, router *messaging.Router) *Handler {
	h := &Handler{
		world:  world,
		router: router,
	}

	h.verbs = map[Verb]verbEntry{
		VerbLook:   {needsActive: true, usage: "look", summary: "Show room description, exits, and players", fn: h.look},
		VerbSay:    {needsActive: true, usage: "say <message>", summary: "Talk to players in your current room", fn: h.say},
		VerbShout:  {needsActive: true, usage: "shout <message>", summary: "Send message to all players globally", fn: h.shout},
		VerbMove:   {needsActive: true, usage: "move <direction>", summary: "Move in a direction (n/s/e/w)", fn: h.move},
		VerbWho:    {needsActive: true, usage: "who", summary: "List all online players", fn: h.who},
		VerbWhere:  {needsActive: true, usage: "where", summary: "Show your current location", fn: h.where},
		VerbHelp:   {usage: "help", summary: "Show this help message", fn: h.help},
		VerbQuit:   {usage: "quit", summary: "Save and disconnect", fn: h.quit},
		VerbLogin:  {usage: "login", summary: "Log in to an existing account", fn: h.alreadyLoggedIn},
		VerbSignup: {usage: "signup", summary: "Create a new account", fn: h.alreadyLoggedIn},
	}

	return h
}

// Exec runs cmd for actor. A *UserError is meant for the player; ErrQuit
// asks the caller to close the session; anything else is a system failure.
func (h *Handler) Exec(ctx context.Context, actor Actor, cmd Command) error {
	entry, ok := h.verbs[cmd.Verb]
	if !ok {
		return unknownCommand()
	}

	if entry.needsActive && !actor.Active() {
		return NewUserError(msgNotLoggedIn)
	}

	return entry.fn(ctx, actor, cmd.Args)
}

// location returns the actor's room or a system error if the registry has
// no record of them.
func (h *Handler) location(actor Actor) (string, error) {
	room, ok := h.world.LocationOf(actor.Name())
	if !ok {
		return "", fmt.Errorf("%s: %w", actor.Name(), game.ErrPlayerNotFound)
	}
	return room, nil
}

func (h *Handler) alreadyLoggedIn(context.Context, Actor, string) error {
	return NewUserError("You are already logged in.")
}
