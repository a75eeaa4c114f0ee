package command

import (
	"context"
	"fmt"
	"io"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-service"
	"github.com/pixil98/samud/internal/commands"
	"github.com/pixil98/samud/internal/game"
	"github.com/pixil98/samud/internal/listener"
	"github.com/pixil98/samud/internal/messaging"
)

func BuildWorkers(config interface{}) (service.WorkerList, error) {
	cfg, ok := config.(*Config)
	if !ok {
		return nil, fmt.Errorf("unable to cast config")
	}

	graph, err := cfg.Storage.BuildRoomGraph(cfg.PlayerManager.StartRoom)
	if err != nil {
		return nil, err
	}
	world := game.NewWorldState(graph)

	gateway, err := cfg.Storage.Accounts.BuildGateway()
	if err != nil {
		return nil, fmt.Errorf("opening accounts: %w", err)
	}

	workers := service.WorkerList{}

	var transport messaging.Transport
	var ready <-chan struct{}
	switch cfg.Broadcast.Transport {
	case TransportNats:
		ns, err := cfg.Nats.buildNatsServer()
		if err != nil {
			return nil, fmt.Errorf("creating nats server: %w", err)
		}
		workers["nats"] = ns
		transport = messaging.NewNatsPublisher(ns)
		ready = ns.Ready()
	default:
		transport = messaging.NewDirectPublisher(world)
	}

	router, err := messaging.NewRouter(world, transport, cfg.Broadcast.Formats)
	if err != nil {
		return nil, fmt.Errorf("creating router: %w", err)
	}

	handler := commands.NewHandler(world, router)

	sessions, err := cfg.PlayerManager.BuildSessionManager(world, gateway, handler, router, transport)
	if err != nil {
		return nil, fmt.Errorf("creating session manager: %w", err)
	}
	cm := listener.NewConnectionManager(sessions)

	listeners := service.WorkerList{}
	for i, l := range cfg.listeners() {
		w, err := l.BuildListener(cm)
		if err != nil {
			return nil, fmt.Errorf("creating listener %d: %w", i, err)
		}
		if ready != nil {
			w = &afterReady{ready: ready, worker: w}
		}
		listeners[fmt.Sprintf("listener-%d", i)] = w
	}

	driver := game.NewMudDriver([]game.Ticker{sessions}, game.WithTickLength(cfg.tickInterval()))

	// Listeners return only once their sessions have closed and saved, so
	// the account store can be closed after them.
	var listenerWorker service.Worker = &listeners
	if closer, ok := gateway.(io.Closer); ok {
		listenerWorker = &closeAfter{worker: listenerWorker, closer: closer}
	}

	workers["driver"] = driver
	workers["sessions"] = sessions
	workers["listeners"] = listenerWorker

	return workers, nil
}

// afterReady holds a worker back until ready is closed, so no client can
// log in before the message bus accepts subscriptions.
type afterReady struct {
	ready  <-chan struct{}
	worker service.Worker
}

func (w *afterReady) Start(ctx context.Context) error {
	select {
	case <-w.ready:
	case <-ctx.Done():
		return nil
	}
	return w.worker.Start(ctx)
}

// closeAfter runs worker and then releases closer.
type closeAfter struct {
	worker service.Worker
	closer io.Closer
}

func (w *closeAfter) Start(ctx context.Context) error {
	el := errors.NewErrorList()
	el.Add(w.worker.Start(ctx))
	if err := w.closer.Close(); err != nil {
		el.Add(fmt.Errorf("closing account store: %w", err))
	}
	return el.Err()
}
