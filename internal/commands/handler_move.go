package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/pixil98/samud/internal/game"
	"github.com/pixil98/samud/internal/messaging"
)

func (h *Handler) move(ctx context.Context, actor Actor, args string) error {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		return NewUserError("Move which direction?")
	}
	dir := strings.ToLower(fields[0])

	from, err := h.location(actor)
	if err != nil {
		return err
	}

	to, ok := h.world.Graph().ResolveExit(from, dir)
	if !ok {
		return NewUserError(fmt.Sprintf("No exit %s.", dir))
	}

	if err := h.world.Move(actor.Name(), from, to); err != nil {
		return fmt.Errorf("moving %s: %w", actor.Name(), err)
	}

	h.router.Room(ctx, messaging.Message{
		Scope: messaging.ScopeSystem,
		From:  actor.Name(),
		Room:  from,
		Body:  fmt.Sprintf("%s leaves %s.", actor.Name(), game.NormalizeDirection(dir)),
	})
	h.router.Room(ctx, messaging.Message{
		Scope: messaging.ScopeSystem,
		From:  actor.Name(),
		Room:  to,
		Body:  fmt.Sprintf("%s arrives.", actor.Name()),
	})

	return h.Show(actor, to)
}
