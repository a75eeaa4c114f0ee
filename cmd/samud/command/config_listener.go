package command

import (
	"fmt"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-service"
	"github.com/pixil98/samud/internal/listener"
)

const defaultPort = 2323

type ListenerType int

const (
	ListenerTypeTCP ListenerType = iota
	ListenerTypeTelnet
)

func (lt *ListenerType) UnmarshalText(text []byte) error {
	switch string(text) {
	case "tcp":
		*lt = ListenerTypeTCP
	case "telnet":
		*lt = ListenerTypeTelnet
	default:
		return fmt.Errorf("unknown listener type: %s", text)
	}
	return nil
}

type ListenerConfig struct {
	Protocol ListenerType `json:"protocol"`
	// Zero means the default port.
	Port uint16 `json:"port"`
}

func (cl *ListenerConfig) validate() error {
	el := errors.NewErrorList()

	if cl.Protocol != ListenerTypeTCP && cl.Protocol != ListenerTypeTelnet {
		el.Add(fmt.Errorf("unknown listener type: %d", cl.Protocol))
	}

	return el.Err()
}

func (cl *ListenerConfig) port() uint16 {
	if cl.Port == 0 {
		return defaultPort
	}
	return cl.Port
}

func (cl *ListenerConfig) BuildListener(cm *listener.ConnectionManager) (service.Worker, error) {
	switch cl.Protocol {
	case ListenerTypeTCP:
		return listener.NewTcpListener(cl.port(), cm.AcceptConnection), nil
	case ListenerTypeTelnet:
		return listener.NewTelnetListener(cl.port(), cm.AcceptConnection), nil
	default:
		return nil, fmt.Errorf("unknown listener type: %v", cl.Protocol)
	}
}
