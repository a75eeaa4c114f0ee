package game

import (
	"context"
	"log/slog"
	"time"
)

const (
	DefaultTickLength = time.Second * 2
)

// Ticker is periodic housekeeping run by the driver.
type Ticker interface {
	Tick(context.Context) error
}

// MudDriver runs its tickers on a fixed interval until the context ends.
type MudDriver struct {
	tickLength time.Duration
	tickers    []Ticker
}

type MudDriverOpt func(*MudDriver)

// WithTickLength sets the interval between ticks.
func WithTickLength(d time.Duration) MudDriverOpt {
	return func(m *MudDriver) {
		if d > 0 {
			m.tickLength = d
		}
	}
}

func NewMudDriver(tickers []Ticker, opts ...MudDriverOpt) *MudDriver {
	d := &MudDriver{
		tickLength: DefaultTickLength,
		tickers:    tickers,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

func (d *MudDriver) Start(ctx context.Context) error {
	ticker := time.NewTicker(d.tickLength)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			d.Tick(ctx)
		}
	}
}

// Tick runs every ticker once. A failing ticker is logged and does not
// stop the others or the driver.
func (d *MudDriver) Tick(ctx context.Context) {
	for _, t := range d.tickers {
		if err := t.Tick(ctx); err != nil {
			slog.ErrorContext(ctx, "tick failed", "error", err)
		}
	}
}
