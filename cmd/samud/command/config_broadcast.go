package command

import (
	"fmt"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/samud/internal/messaging"
)

type TransportType int

const (
	TransportDirect TransportType = iota
	TransportNats
)

func (tt *TransportType) UnmarshalText(text []byte) error {
	switch string(text) {
	case "", "direct":
		*tt = TransportDirect
	case "nats":
		*tt = TransportNats
	default:
		return fmt.Errorf("unknown broadcast transport: %s", text)
	}
	return nil
}

type BroadcastConfig struct {
	Transport TransportType     `json:"transport"`
	Formats   messaging.Formats `json:"formats"`
}

func (c *BroadcastConfig) validate() error {
	el := errors.NewErrorList()

	if err := c.Formats.Validate(); err != nil {
		el.Add(fmt.Errorf("broadcast formats: %w", err))
	}

	return el.Err()
}
