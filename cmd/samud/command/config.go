package command

import (
	"fmt"
	"time"

	"github.com/pixil98/go-errors"
)

const defaultTickInterval = time.Second

type Config struct {
	TickInterval  string              `json:"tick_interval"`
	Listeners     []ListenerConfig    `json:"listeners"`
	Storage       StorageConfig       `json:"storage"`
	Nats          NatsConfig          `json:"nats"`
	Broadcast     BroadcastConfig     `json:"broadcast"`
	PlayerManager PlayerManagerConfig `json:"player_manager"`
}

func (c *Config) Validate() error {
	el := errors.NewErrorList()

	if c.TickInterval != "" {
		d, err := time.ParseDuration(c.TickInterval)
		if err != nil {
			el.Add(fmt.Errorf("parsing tick_interval: %w", err))
		} else if d < 10*time.Millisecond {
			el.Add(fmt.Errorf("tick_interval must be at least 10ms"))
		}
	}

	for i := range c.Listeners {
		if err := c.Listeners[i].validate(); err != nil {
			el.Add(fmt.Errorf("listener %d: %w", i, err))
		}
	}

	el.Add(c.Storage.validate())
	el.Add(c.Nats.validate())
	el.Add(c.Broadcast.validate())
	el.Add(c.PlayerManager.validate())

	return el.Err()
}

func (c *Config) tickInterval() time.Duration {
	if c.TickInterval == "" {
		return defaultTickInterval
	}
	// Checked by Validate.
	d, _ := time.ParseDuration(c.TickInterval)
	return d
}

// listeners returns the configured listeners, or a single tcp listener on
// the default port.
func (c *Config) listeners() []ListenerConfig {
	if len(c.Listeners) == 0 {
		return []ListenerConfig{{Protocol: ListenerTypeTCP}}
	}
	return c.Listeners
}
