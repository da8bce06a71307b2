// Package runner runs the event-driven background handlers for the
// lifetime of a command.
package runner

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vmunix/culler/internal/events"
	"github.com/vmunix/culler/internal/handlers"
)

// Config for the background handlers.
type Config struct {
	TrashRetention time.Duration // 0 keeps staged deletions forever
}

// Runner manages the event-driven components.
type Runner struct {
	bus    *events.Bus
	trash  handlers.TrashEmptier
	config Config
	logger *slog.Logger
}

// NewRunner creates a new runner.
func NewRunner(bus *events.Bus, trash handlers.TrashEmptier, cfg Config, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		bus:    bus,
		trash:  trash,
		config: cfg,
		logger: logger,
	}
}

func (r *Runner) handlers() []handlers.Handler {
	return []handlers.Handler{
		handlers.NewTrashHandler(r.bus, r.trash, handlers.TrashConfig{
			Retention: r.config.TrashRetention,
		}, r.logger.With("handler", "trash")),
	}
}

// Run starts all handlers and blocks until the context is canceled, the bus
// is closed or a handler fails. Cancellation is a clean shutdown.
func (r *Runner) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	for _, h := range r.handlers() {
		g.Go(func() error {
			r.logger.Debug("handler starting", "handler", h.Name())
			err := h.Start(ctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}

	return g.Wait()
}
