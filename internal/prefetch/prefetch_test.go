package prefetch

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vmunix/culler/internal/library"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// gateLoader blocks loads for gated asset IDs until the gate is closed.
// With ignoreCancel set a blocked load keeps waiting after cancellation and
// still returns an image, like an uninterruptible decode.
type gateLoader struct {
	mu           sync.Mutex
	gates        map[string]chan struct{}
	calls        map[string]int
	fail         map[string]bool
	ignoreCancel bool

	active    atomic.Int32
	maxActive atomic.Int32
}

func newGateLoader() *gateLoader {
	return &gateLoader{
		gates: make(map[string]chan struct{}),
		calls: make(map[string]int),
		fail:  make(map[string]bool),
	}
}

func (l *gateLoader) gate(id string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	ch := make(chan struct{})
	l.gates[id] = ch
	return ch
}

func (l *gateLoader) callCount(id string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls[id]
}

func (l *gateLoader) LoadPreview(ctx context.Context, a library.Asset, size int) (image.Image, error) {
	l.mu.Lock()
	l.calls[a.ID]++
	gate := l.gates[a.ID]
	fail := l.fail[a.ID]
	l.mu.Unlock()

	n := l.active.Add(1)
	defer l.active.Add(-1)
	for {
		m := l.maxActive.Load()
		if n <= m || l.maxActive.CompareAndSwap(m, n) {
			break
		}
	}

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			if !l.ignoreCancel {
				return nil, ctx.Err()
			}
			<-gate
		}
	}
	if fail {
		return nil, errors.New("decode failed")
	}
	return image.NewGray(image.Rect(0, 0, size, size)), nil
}

type recordingSink struct {
	mu     sync.Mutex
	got    []Completion
	accept func(Completion) bool
}

func (s *recordingSink) ApplyPreview(c Completion) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.accept != nil && !s.accept(c) {
		return false
	}
	s.got = append(s.got, c)
	return true
}

func (s *recordingSink) completions() []Completion {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Completion(nil), s.got...)
}

func asset(i int) library.Asset {
	return library.Asset{ID: fmt.Sprintf("a%d", i), Kind: library.KindImage}
}

func requests(lo, hi int) []Request {
	var reqs []Request
	for i := lo; i < hi; i++ {
		reqs = append(reqs, Request{Position: i, Asset: asset(i)})
	}
	return reqs
}

func TestWindowRange(t *testing.T) {
	tests := []struct {
		cursor, batchLen int
		lo, hi           int
	}{
		{0, 20, 1, 11},
		{5, 20, 6, 16},
		{12, 20, 13, 20},
		{19, 20, 20, 20},
		{20, 20, 20, 20},
		{0, 1, 1, 1},
	}
	for _, tt := range tests {
		lo, hi := WindowRange(tt.cursor, tt.batchLen)
		assert.Equal(t, tt.lo, lo, "cursor=%d len=%d", tt.cursor, tt.batchLen)
		assert.Equal(t, tt.hi, hi, "cursor=%d len=%d", tt.cursor, tt.batchLen)
	}
}

func TestCache_LoadBatch(t *testing.T) {
	loader := newGateLoader()
	loader.fail["a2"] = true
	c := New(loader, &recordingSink{}, 64, testLogger())

	assets := []library.Asset{asset(0), asset(1), asset(2), asset(3)}
	previews, err := c.LoadBatch(context.Background(), assets)
	require.NoError(t, err)
	require.Len(t, previews, 4)
	assert.NotNil(t, previews[0])
	assert.NotNil(t, previews[1])
	assert.Nil(t, previews[2], "failed load leaves a gap")
	assert.NotNil(t, previews[3])
	assert.Equal(t, 64, previews[0].Bounds().Dx())
}

func TestCache_LoadBatch_Canceled(t *testing.T) {
	loader := newGateLoader()
	loader.gate("a0")
	c := New(loader, &recordingSink{}, 0, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.LoadBatch(ctx, []library.Asset{asset(0)})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCache_PreloadDelivers(t *testing.T) {
	sink := &recordingSink{}
	c := New(newGateLoader(), sink, 0, testLogger())

	c.Preload(3, 20, requests(1, 11))
	c.Wait()

	got := sink.completions()
	require.Len(t, got, 10)
	positions := make(map[int]bool)
	for _, comp := range got {
		assert.Equal(t, uint64(3), comp.Epoch)
		assert.Equal(t, 20, comp.BatchLen)
		assert.Equal(t, fmt.Sprintf("a%d", comp.Position), comp.AssetID)
		assert.Equal(t, DefaultPreviewSize, comp.Preview.Bounds().Dx())
		positions[comp.Position] = true
	}
	assert.Len(t, positions, 10)
	assert.Zero(t, c.Pending())
}

func TestCache_PreloadSupersedesPosition(t *testing.T) {
	loader := newGateLoader()
	loader.ignoreCancel = true
	gate := loader.gate("a1")
	sink := &recordingSink{}
	c := New(loader, sink, 0, testLogger())

	c.Preload(1, 20, requests(1, 2))
	require.Eventually(t, func() bool { return loader.callCount("a1") == 1 }, time.Second, time.Millisecond)

	// Restart position 1 with a different asset; the first load must not land.
	c.Preload(1, 20, []Request{{Position: 1, Asset: asset(99)}})
	close(gate)
	c.Wait()

	got := sink.completions()
	require.Len(t, got, 1)
	assert.Equal(t, "a99", got[0].AssetID)
}

func TestCache_LoadSingleSkipsInFlight(t *testing.T) {
	loader := newGateLoader()
	gate := loader.gate("a4")
	sink := &recordingSink{}
	c := New(loader, sink, 0, testLogger())

	c.LoadSingle(1, 10, Request{Position: 4, Asset: asset(4)})
	require.Eventually(t, func() bool { return loader.callCount("a4") == 1 }, time.Second, time.Millisecond)
	assert.True(t, c.InFlight(4))

	c.LoadSingle(1, 10, Request{Position: 4, Asset: asset(4)})
	close(gate)
	c.Wait()

	assert.Equal(t, 1, loader.callCount("a4"))
	assert.Len(t, sink.completions(), 1)
	assert.False(t, c.InFlight(4))
}

func TestCache_CancelAllDropsResults(t *testing.T) {
	loader := newGateLoader()
	loader.ignoreCancel = true
	var gates []chan struct{}
	for i := 1; i <= 5; i++ {
		gates = append(gates, loader.gate(fmt.Sprintf("a%d", i)))
	}
	sink := &recordingSink{}
	c := New(loader, sink, 0, testLogger())

	c.Preload(1, 20, requests(1, 6))
	require.Eventually(t, func() bool { return loader.active.Load() == 5 }, time.Second, time.Millisecond)

	c.CancelAll()
	assert.Zero(t, c.Pending())
	for _, g := range gates {
		close(g)
	}
	c.Wait()

	assert.Empty(t, sink.completions())
}

func TestCache_SinkRejectsStale(t *testing.T) {
	sink := &recordingSink{accept: func(c Completion) bool { return c.Epoch == 2 }}
	c := New(newGateLoader(), sink, 0, testLogger())

	c.Preload(1, 20, requests(1, 4))
	c.Preload(2, 20, requests(5, 7))
	c.Wait()

	got := sink.completions()
	require.Len(t, got, 2)
	for _, comp := range got {
		assert.Equal(t, uint64(2), comp.Epoch)
	}
}

func TestCache_BoundsInFlight(t *testing.T) {
	loader := newGateLoader()
	release := make(chan struct{})
	for i := 0; i < 25; i++ {
		id := fmt.Sprintf("a%d", i)
		loader.gates[id] = release
	}
	c := New(loader, &recordingSink{}, 0, testLogger())

	c.Preload(1, 100, requests(0, 25))
	require.Eventually(t, func() bool { return loader.active.Load() == MaxInFlight }, time.Second, time.Millisecond)
	// Give queued loads a chance to (wrongly) start.
	time.Sleep(20 * time.Millisecond)
	assert.LessOrEqual(t, loader.maxActive.Load(), int32(MaxInFlight))

	close(release)
	c.Wait()
	assert.LessOrEqual(t, loader.maxActive.Load(), int32(MaxInFlight))
}

func TestCache_FailedLoadIsDropped(t *testing.T) {
	loader := newGateLoader()
	loader.fail["a1"] = true
	sink := &recordingSink{}
	c := New(loader, sink, 0, testLogger())

	c.LoadSingle(1, 5, Request{Position: 1, Asset: asset(1)})
	c.Wait()

	assert.Empty(t, sink.completions())
	assert.False(t, c.InFlight(1))
}
