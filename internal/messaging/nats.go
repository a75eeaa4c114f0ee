package messaging

import (
	"context"
	"fmt"

	"github.com/pixil98/samud/internal/game"
)

// NatsPublisher routes each line through a per-player NATS subject.
type NatsPublisher struct {
	server *NatsServer
}

func NewNatsPublisher(server *NatsServer) *NatsPublisher {
	return &NatsPublisher{server: server}
}

func subject(name string) string {
	return fmt.Sprintf("player-%s", game.Key(name))
}

// Publish does not know whether anyone is listening; a line for an
// offline player is simply never received.
func (p *NatsPublisher) Publish(_ context.Context, name string, line string) error {
	return p.server.Publish(subject(name), []byte(line))
}

func (p *NatsPublisher) Subscribe(ctx context.Context, name string, sink game.Sink) (func(), error) {
	return p.server.Subscribe(ctx, subject(name), func(data []byte) {
		sink.Enqueue(string(data))
	})
}
