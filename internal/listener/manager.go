package listener

import (
	"context"
	"io"
	"log/slog"

	"github.com/pixil98/samud/internal/player"
)

// ConnectionManager hands each accepted connection to the session manager.
type ConnectionManager struct {
	sm *player.SessionManager
}

func NewConnectionManager(sm *player.SessionManager) *ConnectionManager {
	return &ConnectionManager{
		sm: sm,
	}
}

func (m *ConnectionManager) AcceptConnection(ctx context.Context, conn io.ReadWriter) {
	if err := m.sm.RunSession(ctx, conn); err != nil {
		slog.WarnContext(ctx, "player session", "error", err)
	}
}
