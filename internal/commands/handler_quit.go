package commands

import "context"

// quit only says goodbye; the session saves and unregisters on close.
func (h *Handler) quit(_ context.Context, actor Actor, _ string) error {
	if actor.Active() {
		actor.Send("Goodbye! Your progress has been saved.")
	} else {
		actor.Send("Goodbye!")
	}
	return ErrQuit
}
