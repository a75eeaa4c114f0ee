package messaging

import (
	"context"

	"github.com/pixil98/samud/internal/game"
)

// DirectPublisher enqueues straight onto the recipient's registered sink.
type DirectPublisher struct {
	world *game.WorldState
}

func NewDirectPublisher(world *game.WorldState) *DirectPublisher {
	return &DirectPublisher{world: world}
}

func (p *DirectPublisher) Publish(_ context.Context, name string, line string) error {
	sink, ok := p.world.Sink(name)
	if !ok {
		return ErrRecipientGone
	}
	// A full queue counts the drop itself.
	sink.Enqueue(line)
	return nil
}

// Subscribe is a no-op; the registry already holds the sink.
func (p *DirectPublisher) Subscribe(context.Context, string, game.Sink) (func(), error) {
	return func() {}, nil
}
