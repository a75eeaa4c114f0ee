package command

import (
	"fmt"
	"time"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/samud/internal/accounts"
	"github.com/pixil98/samud/internal/commands"
	"github.com/pixil98/samud/internal/game"
	"github.com/pixil98/samud/internal/messaging"
	"github.com/pixil98/samud/internal/player"
)

type PlayerManagerConfig struct {
	StartRoom     string `json:"start_room"`
	OutboxSize    int    `json:"outbox_size"`
	MaxLineLength int    `json:"max_line_length"`
	IdleTimeout   string `json:"idle_timeout"`
}

func (c *PlayerManagerConfig) validate() error {
	el := errors.NewErrorList()

	if c.StartRoom == "" {
		el.Add(fmt.Errorf("start_room is required"))
	}
	if c.OutboxSize < 0 {
		el.Add(fmt.Errorf("outbox_size must not be negative"))
	}
	if c.MaxLineLength < 0 {
		el.Add(fmt.Errorf("max_line_length must not be negative"))
	}
	if c.IdleTimeout != "" {
		if _, err := time.ParseDuration(c.IdleTimeout); err != nil {
			el.Add(fmt.Errorf("parsing idle_timeout: %w", err))
		}
	}

	return el.Err()
}

func (c *PlayerManagerConfig) BuildSessionManager(
	world *game.WorldState,
	gateway accounts.Gateway,
	handler *commands.Handler,
	router *messaging.Router,
	transport messaging.Transport,
) (*player.SessionManager, error) {
	opts := []player.SessionManagerOpt{
		player.WithOutboxSize(c.OutboxSize),
		player.WithMaxLineLength(c.MaxLineLength),
	}

	if c.IdleTimeout != "" {
		d, err := time.ParseDuration(c.IdleTimeout)
		if err != nil {
			return nil, fmt.Errorf("parsing idle_timeout: %w", err)
		}
		opts = append(opts, player.WithIdleTimeout(d))
	}

	return player.NewSessionManager(world, gateway, handler, router, transport, opts...), nil
}
