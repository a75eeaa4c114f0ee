package listener

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"syscall"

	"github.com/iammegalith/telnet"
)

// TelnetListener serves telnet clients, which get option negotiation
// handled for them.
type TelnetListener struct {
	port   uint16
	accept AcceptFunc
}

func NewTelnetListener(port uint16, accept AcceptFunc) *TelnetListener {
	return &TelnetListener{
		port:   port,
		accept: accept,
	}
}

func (l *TelnetListener) Start(ctx context.Context) error {
	// Connections outlive ctx until the handler cancels them.
	connCtx, cancelConns := context.WithCancel(context.WithoutCancel(ctx))

	handler := &telnetHandler{
		accept:      l.accept,
		connCtx:     connCtx,
		cancelConns: cancelConns,
	}

	svr := telnet.NewServer(fmt.Sprintf(":%d", l.port), handler)

	// done signals that Start is returning (either success or failure)
	done := make(chan struct{})
	defer close(done)

	go func() {
		select {
		case <-ctx.Done():
			svr.Stop()
		case <-done:
		}
	}()

	slog.InfoContext(ctx, "listening for telnet", "port", l.port)

	err := svr.ListenAndServe()
	// Sessions save on close; do not return until they have.
	handler.Stop()
	if err != nil {
		if errors.Is(err, syscall.EADDRINUSE) {
			return fmt.Errorf("port %d is already in use (another server running?)", l.port)
		}
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("serving telnet on port %d: %w", l.port, err)
	}

	return nil
}

type telnetHandler struct {
	wg          sync.WaitGroup
	accept      AcceptFunc
	connCtx     context.Context
	cancelConns context.CancelFunc
}

func (h *telnetHandler) HandleTelnet(conn *telnet.Connection) {
	h.wg.Add(1)
	defer h.wg.Done()

	defer func() {
		if err := conn.Close(); err != nil {
			slog.DebugContext(h.connCtx, "closing telnet connection", "error", err)
		}
	}()

	h.accept(h.connCtx, newCRLFReadWriter(conn))
}

func (h *telnetHandler) Stop() {
	h.cancelConns()
	h.wg.Wait()
}
