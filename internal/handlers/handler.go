// Package handlers reacts to review events in the background.
package handlers

import (
	"context"
	"log/slog"

	"github.com/vmunix/culler/internal/events"
)

// Handler is a background worker driven by bus events.
type Handler interface {
	// Start blocks until ctx is cancelled or the bus closes.
	Start(ctx context.Context) error
	Name() string
}

// BaseHandler carries the bus and a logger tagged with the handler name.
type BaseHandler struct {
	name   string
	bus    *events.Bus
	logger *slog.Logger
}

// NewBaseHandler creates a base handler named name.
func NewBaseHandler(bus *events.Bus, name string, logger *slog.Logger) *BaseHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &BaseHandler{
		name:   name,
		bus:    bus,
		logger: logger.With("handler", name),
	}
}

// Name returns the handler name.
func (h *BaseHandler) Name() string { return h.name }

// Bus returns the event bus.
func (h *BaseHandler) Bus() *events.Bus { return h.bus }

// Logger returns the handler's logger.
func (h *BaseHandler) Logger() *slog.Logger { return h.logger }
