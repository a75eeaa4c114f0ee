package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/pixil98/samud/internal/display"
)

func (h *Handler) look(_ context.Context, actor Actor, _ string) error {
	room, err := h.location(actor)
	if err != nil {
		return err
	}

	return h.Show(actor, room)
}

// Show sends the description of roomId to actor.
func (h *Handler) Show(actor Actor, roomId string) error {
	view, ok := h.world.Describe(roomId)
	if !ok {
		return fmt.Errorf("describing room %q: not in graph", roomId)
	}

	var sb strings.Builder
	sb.WriteString(view.Name)
	sb.WriteString("\n")
	if view.Description != "" {
		sb.WriteString(display.Wrap(view.Description))
		sb.WriteString("\n")
	}
	if len(view.Exits) > 0 {
		fmt.Fprintf(&sb, "Exits: %s\n", strings.Join(view.Exits, ", "))
	}
	if len(view.Occupants) > 0 {
		fmt.Fprintf(&sb, "Players here: %s", strings.Join(view.Occupants, ", "))
	}

	actor.Send(strings.TrimRight(sb.String(), "\n"))
	return nil
}
