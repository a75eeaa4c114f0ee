package messaging

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/pixil98/samud/internal/game"
)

// Publisher hands a rendered line to one player.
type Publisher interface {
	Publish(ctx context.Context, name string, line string) error
}

// Transport is a Publisher that sessions attach their queue to while they
// are active.
type Transport interface {
	Publisher
	Subscribe(ctx context.Context, name string, sink game.Sink) (unsubscribe func(), err error)
}

// Router fans messages out to the right audience.
type Router struct {
	world   *game.WorldState
	pub     Publisher
	formats compiledFormats
}

func NewRouter(world *game.WorldState, pub Publisher, formats Formats) (*Router, error) {
	compiled, err := formats.compile()
	if err != nil {
		return nil, err
	}

	return &Router{
		world:   world,
		pub:     pub,
		formats: compiled,
	}, nil
}

// Room delivers msg to everyone currently in msg.Room.
func (r *Router) Room(ctx context.Context, msg Message) int {
	return r.Deliver(ctx, msg, r.world.Roster(msg.Room))
}

// Global delivers msg to everyone online.
func (r *Router) Global(ctx context.Context, msg Message) int {
	return r.Deliver(ctx, msg, r.world.Online())
}

// Deliver renders msg for each name in audience and publishes it. System
// notices skip their subject. Recipients that went offline are skipped.
// It returns how many lines were handed off.
func (r *Router) Deliver(ctx context.Context, msg Message, audience []string) int {
	if msg.Time.IsZero() {
		msg.Time = time.Now()
	}
	fromKey := game.Key(msg.From)

	sent := 0
	for _, name := range audience {
		self := msg.From != "" && game.Key(name) == fromKey
		if self && msg.Scope == ScopeSystem {
			continue
		}

		line, err := r.formats.render(msg, self)
		if err != nil {
			slog.ErrorContext(ctx, "rendering message", "scope", msg.Scope.String(), "error", err)
			return sent
		}

		err = r.pub.Publish(ctx, name, line)
		if errors.Is(err, ErrRecipientGone) {
			continue
		}
		if err != nil {
			slog.WarnContext(ctx, "publishing message", "recipient", name, "error", err)
			continue
		}
		sent++
	}

	return sent
}
