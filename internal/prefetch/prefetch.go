// Package prefetch keeps decoded previews ready slightly ahead of a review
// cursor. Loads are keyed by batch position, bounded in number, and each can
// be cancelled on its own; completions are handed to a Sink that decides
// whether they are still current.
package prefetch

import (
	"context"
	"image"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/vmunix/culler/internal/library"
)

const (
	// HeadLimit is how many leading batch positions are loaded eagerly.
	HeadLimit = 10
	// WindowSize is how many positions past the cursor are kept warm.
	WindowSize = 10
	// MaxInFlight bounds concurrently running loads.
	MaxInFlight = 10
	// DefaultPreviewSize is the edge of the box previews are scaled to cover.
	DefaultPreviewSize = 800
)

// Loader decodes a preview for an asset. A nil image with a nil error means
// the asset has no preview.
type Loader interface {
	LoadPreview(ctx context.Context, a library.Asset, size int) (image.Image, error)
}

// Request asks for the preview of the asset at a batch position.
type Request struct {
	Position int
	Asset    library.Asset
}

// Completion is a finished load, tagged with the session state it was
// requested against.
type Completion struct {
	Epoch    uint64
	BatchLen int
	Position int
	AssetID  string
	Preview  image.Image
}

// Sink receives completions. It returns false when the completion no longer
// matches its state and was dropped.
type Sink interface {
	ApplyPreview(c Completion) bool
}

type handle struct {
	token  uint64
	cancel context.CancelFunc
}

// Cache runs position-keyed preview loads.
type Cache struct {
	loader Loader
	sink   Sink
	size   int
	sem    *semaphore.Weighted
	log    *slog.Logger

	mu       sync.Mutex
	inflight map[int]handle
	token    uint64
	wg       sync.WaitGroup
}

// New creates a cache loading previews of the given size through loader and
// delivering them to sink. size <= 0 uses DefaultPreviewSize.
func New(loader Loader, sink Sink, size int, logger *slog.Logger) *Cache {
	if size <= 0 {
		size = DefaultPreviewSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		loader:   loader,
		sink:     sink,
		size:     size,
		sem:      semaphore.NewWeighted(MaxInFlight),
		log:      logger.With("component", "prefetch"),
		inflight: make(map[int]handle),
	}
}

// SetSink replaces the completion sink. Intended for wiring before the first
// load is started.
func (c *Cache) SetSink(sink Sink) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sink = sink
}

// WindowRange returns the half-open range of batch positions to keep warm
// for cursor: (cursor, cursor+WindowSize], clipped to the batch.
func WindowRange(cursor, batchLen int) (lo, hi int) {
	lo = cursor + 1
	hi = min(lo+WindowSize, batchLen)
	if lo > hi {
		lo = hi
	}
	return lo, hi
}

// LoadBatch loads previews for assets concurrently and blocks until every
// load finishes. Failed loads leave a nil entry. The only error is ctx's.
func (c *Cache) LoadBatch(ctx context.Context, assets []library.Asset) ([]image.Image, error) {
	previews := make([]image.Image, len(assets))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(MaxInFlight)
	for i, a := range assets {
		g.Go(func() error {
			img, err := c.loader.LoadPreview(gctx, a, c.size)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				c.log.Warn("preview load failed", "asset_id", a.ID, "error", err)
				return nil
			}
			previews[i] = img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return previews, err
	}
	return previews, nil
}

// Preload restarts the load for every request: any load already running for
// the same position is cancelled and its result discarded.
func (c *Cache) Preload(epoch uint64, batchLen int, reqs []Request) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, r := range reqs {
		if h, ok := c.inflight[r.Position]; ok {
			h.cancel()
		}
		c.startLocked(epoch, batchLen, r)
	}
}

// LoadSingle starts a load for one position unless one is already running.
func (c *Cache) LoadSingle(epoch uint64, batchLen int, r Request) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.inflight[r.Position]; ok {
		return
	}
	c.startLocked(epoch, batchLen, r)
}

// CancelAll cancels every outstanding load.
func (c *Cache) CancelAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for pos, h := range c.inflight {
		h.cancel()
		delete(c.inflight, pos)
	}
}

// InFlight reports whether a load is running for position.
func (c *Cache) InFlight(position int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.inflight[position]
	return ok
}

// Pending returns the number of running loads.
func (c *Cache) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.inflight)
}

// Wait blocks until every started load has returned.
func (c *Cache) Wait() {
	c.wg.Wait()
}

func (c *Cache) startLocked(epoch uint64, batchLen int, r Request) {
	ctx, cancel := context.WithCancel(context.Background())
	c.token++
	h := handle{token: c.token, cancel: cancel}
	c.inflight[r.Position] = h
	sink := c.sink

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer cancel()
		img := c.load(ctx, r)

		c.mu.Lock()
		current, ok := c.inflight[r.Position]
		superseded := !ok || current.token != h.token
		if !superseded {
			delete(c.inflight, r.Position)
		}
		c.mu.Unlock()

		if superseded || ctx.Err() != nil || img == nil {
			c.log.Debug("preview dropped", "position", r.Position, "asset_id", r.Asset.ID)
			return
		}
		applied := sink.ApplyPreview(Completion{
			Epoch:    epoch,
			BatchLen: batchLen,
			Position: r.Position,
			AssetID:  r.Asset.ID,
			Preview:  img,
		})
		if !applied {
			c.log.Debug("stale preview ignored", "position", r.Position, "asset_id", r.Asset.ID)
		}
	}()
}

func (c *Cache) load(ctx context.Context, r Request) image.Image {
	if err := c.sem.Acquire(ctx, 1); err != nil {
		return nil
	}
	defer c.sem.Release(1)

	img, err := c.loader.LoadPreview(ctx, r.Asset, c.size)
	if err != nil {
		if ctx.Err() == nil {
			c.log.Warn("preview load failed", "position", r.Position, "asset_id", r.Asset.ID, "error", err)
		}
		return nil
	}
	return img
}
