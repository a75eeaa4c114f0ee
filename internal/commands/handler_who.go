package commands

import (
	"context"
	"fmt"
	"strings"
)

func (h *Handler) who(_ context.Context, actor Actor, _ string) error {
	online := h.world.Online()
	if len(online) == 0 {
		actor.Send("No players are currently online.")
		return nil
	}

	lines := make([]string, 0, len(online)+1)
	lines = append(lines, "Online players:")
	for _, name := range online {
		lines = append(lines, "  "+name)
	}
	actor.Send(strings.Join(lines, "\n"))
	return nil
}

func (h *Handler) where(_ context.Context, actor Actor, _ string) error {
	roomId, err := h.location(actor)
	if err != nil {
		return err
	}

	room := h.world.Graph().Room(roomId)
	if room == nil {
		return fmt.Errorf("room %q not in graph", roomId)
	}

	actor.Send(fmt.Sprintf("You are in: %s", room.Name))
	return nil
}
