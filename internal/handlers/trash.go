// internal/handlers/trash.go
package handlers

import (
	"context"
	"log/slog"
	"time"

	"github.com/vmunix/culler/internal/events"
	"github.com/vmunix/culler/internal/library"
)

// TrashConfig configures the trash handler.
type TrashConfig struct {
	Retention time.Duration    // staged batches older than this are removed; 0 keeps them
	Now       func() time.Time // nil = time.Now
}

// TrashEmptier permanently removes staged deletion batches.
type TrashEmptier interface {
	EmptyTrash(cutoff time.Time) ([]library.TrashBatch, error)
}

// TrashHandler expires staged deletions once they outlive the retention
// period. It sweeps on start and after every committed deletion.
type TrashHandler struct {
	*BaseHandler
	trash  TrashEmptier
	config TrashConfig
}

// NewTrashHandler creates a new trash handler.
func NewTrashHandler(bus *events.Bus, trash TrashEmptier, config TrashConfig, logger *slog.Logger) *TrashHandler {
	if config.Now == nil {
		config.Now = time.Now
	}
	return &TrashHandler{
		BaseHandler: NewBaseHandler(bus, "trash", logger),
		trash:       trash,
		config:      config,
	}
}

// Start begins processing events.
func (h *TrashHandler) Start(ctx context.Context) error {
	committed := h.Bus().Subscribe(events.EventDeletionCommitted, 100)

	// Batches left over from earlier runs.
	_, _ = h.Sweep(ctx)

	for {
		select {
		case e := <-committed:
			if e == nil {
				return nil // Channel closed
			}
			_, _ = h.Sweep(ctx)
		case <-ctx.Done():
			h.Bus().Unsubscribe(committed)
			return ctx.Err()
		}
	}
}

// Sweep removes batches past the retention period and reports them with a
// trash.emptied event.
func (h *TrashHandler) Sweep(ctx context.Context) ([]library.TrashBatch, error) {
	if h.config.Retention <= 0 {
		h.Logger().Debug("trash retention disabled, skipping sweep")
		return nil, nil
	}

	return h.EmptyBefore(ctx, h.config.Now().Add(-h.config.Retention))
}

// EmptyBefore removes every batch staged before cutoff regardless of the
// retention setting.
func (h *TrashHandler) EmptyBefore(ctx context.Context, cutoff time.Time) ([]library.TrashBatch, error) {
	removed, err := h.trash.EmptyTrash(cutoff)
	if err != nil {
		h.Logger().Error("trash sweep failed", "cutoff", cutoff, "error", err)
	}
	if len(removed) == 0 {
		return removed, err
	}

	e := &events.TrashEmptied{
		BaseEvent: events.NewBaseEvent(events.EventTrashEmptied, events.EntityLibrary, "trash"),
		Batches:   len(removed),
	}
	for _, b := range removed {
		e.Files += b.Files
		e.Bytes += b.Bytes
	}
	if pubErr := h.Bus().Publish(ctx, e); pubErr != nil {
		h.Logger().Error("failed to publish TrashEmptied event", "error", pubErr)
	}

	h.Logger().Info("trash swept", "batches", e.Batches, "files", e.Files, "bytes", e.Bytes)
	return removed, err
}
