package commands

import (
	"context"
	"time"

	"github.com/pixil98/samud/internal/messaging"
)

func (h *Handler) say(ctx context.Context, actor Actor, args string) error {
	if args == "" {
		return NewUserError("Say what?")
	}

	room, err := h.location(actor)
	if err != nil {
		return err
	}

	h.router.Room(ctx, messaging.Message{
		Scope: messaging.ScopeRoom,
		From:  actor.Name(),
		Room:  room,
		Body:  args,
		Time:  time.Now(),
	})
	return nil
}

func (h *Handler) shout(ctx context.Context, actor Actor, args string) error {
	if args == "" {
		return NewUserError("Shout what?")
	}

	h.router.Global(ctx, messaging.Message{
		Scope: messaging.ScopeGlobal,
		From:  actor.Name(),
		Body:  args,
		Time:  time.Now(),
	})
	return nil
}
