// Package reconcile commits pending deletions to the library and prunes
// deleted assets from in-memory views.
package reconcile

import (
	"context"
	"log/slog"
	"slices"

	"github.com/vmunix/culler/internal/events"
)

// Deleter removes assets from the library as one batch.
type Deleter interface {
	DeleteAssets(ctx context.Context, ids []string) error
}

// DeletionError reports a rejected batch deletion. Nothing was removed and
// the same batch may be committed again.
type DeletionError struct {
	Reason string
	Err    error
}

func (e *DeletionError) Error() string {
	return "deletion failed: " + e.Reason
}

func (e *DeletionError) Unwrap() error {
	return e.Err
}

// Reconciler commits deletions through a Deleter.
type Reconciler struct {
	lib Deleter
	bus events.Publisher
	log *slog.Logger
}

// New creates a reconciler. bus may be nil.
func New(lib Deleter, bus events.Publisher, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{
		lib: lib,
		bus: bus,
		log: logger.With("component", "reconcile"),
	}
}

// Commit deletes ids in a single library call and returns how many were
// deleted. An empty list succeeds without touching the library. On failure
// the error is a *DeletionError.
func (r *Reconciler) Commit(ctx context.Context, sessionID string, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	ids = slices.Clone(ids)

	if err := r.lib.DeleteAssets(ctx, ids); err != nil {
		r.log.Warn("deletion failed", "session_id", sessionID, "count", len(ids), "error", err)
		r.publish(ctx, &events.DeletionFailed{
			BaseEvent: events.NewBaseEvent(events.EventDeletionFailed, events.EntitySession, sessionID),
			AssetIDs:  ids,
			Reason:    err.Error(),
		})
		return 0, &DeletionError{Reason: err.Error(), Err: err}
	}

	r.log.Info("deletion committed", "session_id", sessionID, "count", len(ids))
	r.publish(ctx, &events.DeletionCommitted{
		BaseEvent: events.NewBaseEvent(events.EventDeletionCommitted, events.EntitySession, sessionID),
		AssetIDs:  ids,
		Count:     len(ids),
	})
	return len(ids), nil
}

func (r *Reconciler) publish(ctx context.Context, e events.Event) {
	if r.bus == nil {
		return
	}
	if err := r.bus.Publish(ctx, e); err != nil {
		r.log.Error("publish event", "type", e.EventType(), "error", err)
	}
}

// Prune returns items without the ones whose identity is in deleted,
// preserving order. The input slice is not modified.
func Prune[T any](items []T, id func(T) string, deleted []string) []T {
	if len(deleted) == 0 {
		return slices.Clone(items)
	}
	gone := make(map[string]struct{}, len(deleted))
	for _, d := range deleted {
		gone[d] = struct{}{}
	}
	out := make([]T, 0, len(items))
	for _, it := range items {
		if _, ok := gone[id(it)]; !ok {
			out = append(out, it)
		}
	}
	return out
}
