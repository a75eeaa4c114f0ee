package commands

import (
	"context"
	"fmt"
	"strings"
)

func (h *Handler) help(_ context.Context, actor Actor, _ string) error {
	lines := []string{"Available commands:"}
	for _, v := range Verbs {
		if actor.Active() && (v == VerbLogin || v == VerbSignup) {
			continue
		}
		e := h.verbs[v]
		lines = append(lines, fmt.Sprintf("  %-17s - %s", e.usage, e.summary))
	}
	if actor.Active() {
		lines = append(lines, fmt.Sprintf("  %-17s - %s", "n, s, e, w", "Short movement commands"))
	}

	actor.Send(strings.Join(lines, "\n"))
	return nil
}
