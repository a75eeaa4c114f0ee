package listener

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"syscall"
)

// AcceptFunc serves one connection and returns when it is finished.
type AcceptFunc func(ctx context.Context, conn io.ReadWriter)

// TcpListener serves plain newline-delimited TCP.
type TcpListener struct {
	port   uint16
	accept AcceptFunc
}

func NewTcpListener(port uint16, accept AcceptFunc) *TcpListener {
	return &TcpListener{
		port:   port,
		accept: accept,
	}
}

func (l *TcpListener) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", l.port))
	if err != nil {
		if errors.Is(err, syscall.EADDRINUSE) {
			return fmt.Errorf("port %d is already in use (another server running?)", l.port)
		}
		return fmt.Errorf("listening on port %d: %w", l.port, err)
	}

	slog.InfoContext(ctx, "listening for tcp", "port", l.port)
	return l.Serve(ctx, ln)
}

// Serve accepts on ln until ctx is cancelled, then closes every open
// connection and waits for their handlers to return.
func (l *TcpListener) Serve(ctx context.Context, ln net.Listener) error {
	connCtx, cancelConns := context.WithCancel(context.WithoutCancel(ctx))
	defer cancelConns()
	var wg sync.WaitGroup

	stop := context.AfterFunc(ctx, func() {
		_ = ln.Close()
	})
	defer stop()

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				cancelConns()
				wg.Wait()
				return nil
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				cancelConns()
				wg.Wait()
				return fmt.Errorf("listener closed: %w", err)
			}
			slog.ErrorContext(ctx, "accepting tcp connection", "error", err)
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			l.handleConnection(connCtx, conn)
		}()
	}
}

func (l *TcpListener) handleConnection(ctx context.Context, conn net.Conn) {
	remote := conn.RemoteAddr().String()
	slog.InfoContext(ctx, "tcp connection established", "remote", remote)

	// The session watches ctx itself and flushes before returning, so the
	// socket is only closed afterwards.
	defer func() {
		if err := conn.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			slog.WarnContext(ctx, "closing tcp connection", "remote", remote, "error", err)
		}
		slog.InfoContext(ctx, "tcp connection closed", "remote", remote)
	}()

	l.accept(ctx, newCRLFReadWriter(conn))
}
