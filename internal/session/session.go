// Package session drives one triage pass over a media library: load a
// candidate set, review a batch one item at a time, and commit the items
// marked for deletion.
package session

//go:generate mockgen -source=session.go -destination=mocks/library.go -package=mocks

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"math/rand/v2"
	"net/url"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vmunix/culler/internal/classify"
	"github.com/vmunix/culler/internal/events"
	"github.com/vmunix/culler/internal/library"
	"github.com/vmunix/culler/internal/prefetch"
	"github.com/vmunix/culler/internal/reconcile"
)

// Library is the media library a session reviews.
type Library interface {
	// FetchAssets returns assets matching f, newest first.
	FetchAssets(ctx context.Context, f library.Filter) ([]library.Asset, error)
	// LoadPreview decodes a preview scaled to cover size×size.
	// A nil image without error means the asset has no preview.
	LoadPreview(ctx context.Context, a library.Asset, size int) (image.Image, error)
	// ResolvePlayableURL returns a playable location for a video, or nil.
	ResolvePlayableURL(ctx context.Context, a library.Asset) (*url.URL, error)
	// DeleteAssets removes assets as one batch.
	DeleteAssets(ctx context.Context, ids []string) error
}

// Options configures a Session. The zero value is usable.
type Options struct {
	Bus         events.Publisher // may be nil
	PreviewSize int              // 0 = prefetch.DefaultPreviewSize
	Rand        *rand.Rand       // random mode source; nil = global source
	Now         func() time.Time // nil = time.Now
	Logger      *slog.Logger
}

// Session is the review state machine. All methods are safe for concurrent
// use; mutations are serialized and preview completions are applied under
// the same lock.
type Session struct {
	lib        Library
	cache      *prefetch.Cache
	reconciler *reconcile.Reconciler
	bus        events.Publisher
	rng        *rand.Rand
	now        func() time.Time
	log        *slog.Logger

	mu         sync.Mutex
	id         string
	state      State
	result     Result
	mode       classify.Mode
	loaded     bool
	candidates []library.Asset
	batch      []Item
	cursor     int
	epoch      uint64 // bumped whenever the batch is replaced or cleared
	deleted    int
	err        error
	headCancel context.CancelFunc // cancels the head load of StartReview
}

// New creates an idle session over lib.
func New(lib Library, opts Options) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	s := &Session{
		lib:   lib,
		bus:   opts.Bus,
		rng:   opts.Rand,
		now:   now,
		log:   logger.With("component", "session"),
		id:    uuid.NewString(),
		state: StateIdle,
	}
	s.cache = prefetch.New(lib, s, opts.PreviewSize, logger)
	s.reconciler = reconcile.New(lib, opts.Bus, logger)
	return s
}

func (s *Session) transitionLocked(to State) error {
	if !s.state.CanTransitionTo(to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidState, s.state, to)
	}
	s.log.Debug("state transition", "session_id", s.id, "from", s.state, "to", to)
	s.state = to
	return nil
}

// clearBatchLocked drops the review batch and every in-flight load for it.
func (s *Session) clearBatchLocked() {
	s.cache.CancelAll()
	if s.headCancel != nil {
		s.headCancel()
		s.headCancel = nil
	}
	s.epoch++
	s.batch = nil
	s.cursor = 0
	s.result = ResultNone
	s.deleted = 0
	s.err = nil
}

func (s *Session) shuffleLocked() {
	swap := func(i, j int) { s.candidates[i], s.candidates[j] = s.candidates[j], s.candidates[i] }
	if s.rng != nil {
		s.rng.Shuffle(len(s.candidates), swap)
		return
	}
	rand.Shuffle(len(s.candidates), swap)
}

// Load fetches the library, classifies it with mode and keeps the result as
// the candidate set. An empty candidate set is not an error. Library errors,
// such as library.ErrPermissionDenied, are returned unchanged and leave the
// session as it was.
func (s *Session) Load(ctx context.Context, mode classify.Mode) error {
	if !mode.IsValid() {
		return fmt.Errorf("%w %q", classify.ErrUnknownMode, mode)
	}

	s.mu.Lock()
	switch s.state {
	case StateIdle, StateAwaitingBatchSize, StateComplete, StateFailed:
	default:
		state := s.state
		s.mu.Unlock()
		return fmt.Errorf("%w: load in %s", ErrInvalidState, state)
	}
	now := s.now()
	s.mu.Unlock()

	assets, err := s.lib.FetchAssets(ctx, classify.Window(mode, now))
	if err != nil {
		return err
	}

	s.mu.Lock()
	candidates := classify.Classify(assets, mode, now, s.rng)
	if err := s.transitionLocked(StateAwaitingBatchSize); err != nil {
		s.mu.Unlock()
		return err
	}
	s.clearBatchLocked()
	s.candidates = candidates
	s.mode = mode
	s.loaded = true
	id := s.id
	s.mu.Unlock()

	s.log.Info("candidates loaded", "session_id", id, "mode", mode, "fetched", len(assets), "candidates", len(candidates))
	s.publish(ctx, &events.CandidatesLoaded{
		BaseEvent: events.NewBaseEvent(events.EventCandidatesLoaded, events.EntitySession, id),
		Mode:      string(mode),
		Count:     len(candidates),
	})
	return nil
}

// StartReview takes the first n candidates as the review batch, loads the
// leading previews before returning, and positions the cursor on the first
// item. n must be in [1, len(candidates)].
func (s *Session) StartReview(ctx context.Context, n int) error {
	s.mu.Lock()
	if s.state != StateAwaitingBatchSize {
		state := s.state
		s.mu.Unlock()
		return fmt.Errorf("%w: start review in %s", ErrInvalidState, state)
	}
	if n < 1 || n > len(s.candidates) {
		total := len(s.candidates)
		s.mu.Unlock()
		return fmt.Errorf("%w: %d not in [1, %d]", ErrInvalidBatchSize, n, total)
	}
	if err := s.transitionLocked(StateLoading); err != nil {
		s.mu.Unlock()
		return err
	}
	s.clearBatchLocked()
	s.id = uuid.NewString()
	s.batch = make([]Item, n)
	for i, a := range s.candidates[:n] {
		s.batch[i] = Item{Asset: a}
	}
	epoch := s.epoch
	head := make([]library.Asset, min(n, prefetch.HeadLimit))
	for i := range head {
		head[i] = s.batch[i].Asset
	}
	id, mode := s.id, s.mode
	headCtx, cancel := context.WithCancel(ctx)
	s.headCancel = cancel
	s.mu.Unlock()

	// The head load is the one deliberate wait; the lock is not held.
	previews, err := s.cache.LoadBatch(headCtx, head)
	cancel()

	s.mu.Lock()
	if s.epoch != epoch {
		s.mu.Unlock()
		return ErrSessionReset
	}
	s.headCancel = nil
	if err != nil {
		_ = s.transitionLocked(StateAwaitingBatchSize)
		s.clearBatchLocked()
		s.mu.Unlock()
		return fmt.Errorf("load previews: %w", err)
	}
	for i, img := range previews {
		s.batch[i].Preview = img
	}
	s.cursor = 0
	if err := s.transitionLocked(StateReviewing); err != nil {
		s.mu.Unlock()
		return err
	}
	s.preloadLocked()
	s.mu.Unlock()

	s.log.Info("review started", "session_id", id, "mode", mode, "batch_size", n)
	s.publish(ctx, &events.ReviewStarted{
		BaseEvent: events.NewBaseEvent(events.EventReviewStarted, events.EntitySession, id),
		Mode:      string(mode),
		BatchSize: n,
	})
	return nil
}

// preloadLocked warms the window ahead of the cursor and the cursor itself.
func (s *Session) preloadLocked() {
	lo, hi := prefetch.WindowRange(s.cursor, len(s.batch))
	var reqs []prefetch.Request
	for pos := lo; pos < hi; pos++ {
		if s.batch[pos].Preview == nil {
			reqs = append(reqs, prefetch.Request{Position: pos, Asset: s.batch[pos].Asset})
		}
	}
	if len(reqs) > 0 {
		s.cache.Preload(s.epoch, len(s.batch), reqs)
	}
	if s.cursor < len(s.batch) && s.batch[s.cursor].Preview == nil {
		s.cache.LoadSingle(s.epoch, len(s.batch), prefetch.Request{Position: s.cursor, Asset: s.batch[s.cursor].Asset})
	}
}

// Decide records the decision for the current item and advances the cursor.
// accept=true marks the item for deletion; false keeps it. After the last
// item the session moves to ReviewingResults.
func (s *Session) Decide(accept bool) error {
	s.mu.Lock()
	if s.state != StateReviewing {
		state := s.state
		s.mu.Unlock()
		return fmt.Errorf("%w: decide in %s", ErrInvalidState, state)
	}
	if s.cursor >= len(s.batch) {
		s.mu.Unlock()
		return ErrNoCurrentItem
	}
	pos := s.cursor
	s.batch[pos].MarkedForDeletion = accept
	assetID := s.batch[pos].ID()
	s.cursor++

	if s.cursor == len(s.batch) {
		s.result = ResultEmpty
		if s.pendingCountLocked() > 0 {
			s.result = ResultPending
		}
		if err := s.transitionLocked(StateReviewingResults); err != nil {
			s.mu.Unlock()
			return err
		}
	} else {
		s.preloadLocked()
	}
	id := s.id
	s.mu.Unlock()

	s.publish(context.Background(), &events.ItemDecided{
		BaseEvent: events.NewBaseEvent(events.EventItemDecided, events.EntitySession, id),
		AssetID:   assetID,
		Position:  pos,
		Marked:    accept,
	})
	return nil
}

// Unmark withdraws the deletion mark of the item with the given asset ID.
// Allowed while reviewing, on the results screen, and after a failed commit.
func (s *Session) Unmark(id string) error {
	s.mu.Lock()
	switch s.state {
	case StateReviewing, StateReviewingResults, StateFailed:
	default:
		state := s.state
		s.mu.Unlock()
		return fmt.Errorf("%w: unmark in %s", ErrInvalidState, state)
	}
	idx := slices.IndexFunc(s.batch, func(it Item) bool { return it.ID() == id })
	if idx < 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	s.batch[idx].MarkedForDeletion = false
	if s.state == StateReviewingResults && s.pendingCountLocked() == 0 {
		s.result = ResultEmpty
	}
	sessionID := s.id
	s.mu.Unlock()

	s.publish(context.Background(), &events.ItemUnmarked{
		BaseEvent: events.NewBaseEvent(events.EventItemUnmarked, events.EntitySession, sessionID),
		AssetID:   id,
	})
	return nil
}

// Reset abandons the current batch from any state: outstanding loads are
// cancelled and decisions cleared. The candidate set is kept, reshuffled
// when the mode is random.
func (s *Session) Reset() {
	s.mu.Lock()
	s.clearBatchLocked()
	reshuffled := false
	if s.mode == classify.ModeRandom && len(s.candidates) > 1 {
		s.shuffleLocked()
		reshuffled = true
	}
	to := StateIdle
	if s.loaded {
		to = StateAwaitingBatchSize
	}
	if s.state != to {
		_ = s.transitionLocked(to)
	}
	id := s.id
	s.mu.Unlock()

	s.publish(context.Background(), &events.SessionReset{
		BaseEvent:  events.NewBaseEvent(events.EventSessionReset, events.EntitySession, id),
		Reshuffled: reshuffled,
	})
}

// Commit deletes every marked item in one library call. On success the
// deleted assets are pruned from the batch and the candidate set and the
// session is Complete. On failure the session is Failed, nothing is pruned
// and the error is a *reconcile.DeletionError; Commit may be retried.
func (s *Session) Commit(ctx context.Context) (int, error) {
	s.mu.Lock()
	if s.state != StateReviewingResults && s.state != StateFailed {
		state := s.state
		s.mu.Unlock()
		return 0, fmt.Errorf("%w: commit in %s", ErrInvalidState, state)
	}
	var ids []string
	for _, it := range s.batch {
		if it.MarkedForDeletion {
			ids = append(ids, it.ID())
		}
	}
	if err := s.transitionLocked(StateCommitting); err != nil {
		s.mu.Unlock()
		return 0, err
	}
	s.err = nil
	id := s.id
	s.mu.Unlock()

	n, err := s.reconciler.Commit(ctx, id, ids)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		if s.state == StateCommitting {
			_ = s.transitionLocked(StateFailed)
			s.err = err
		}
		return 0, err
	}
	// The library no longer has these assets, even if the session was
	// reset while the call was running.
	s.candidates = reconcile.Prune(s.candidates, assetID, ids)
	if s.state != StateCommitting {
		// The batch and cursor belong to whatever review followed the reset.
		return n, nil
	}
	s.batch = reconcile.Prune(s.batch, itemID, ids)
	s.cursor = len(s.batch)
	s.deleted = n
	s.result = ResultEmpty
	_ = s.transitionLocked(StateComplete)
	return n, nil
}

// ApplyPreview stores a finished preview load if it still belongs to the
// current batch. It is called by the prefetch cache.
func (s *Session) ApplyPreview(c prefetch.Completion) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.Epoch != s.epoch || c.BatchLen != len(s.batch) {
		return false
	}
	if c.Position < 0 || c.Position >= len(s.batch) || s.batch[c.Position].ID() != c.AssetID {
		return false
	}
	s.batch[c.Position].Preview = c.Preview
	return true
}

func (s *Session) pendingCountLocked() int {
	n := 0
	for _, it := range s.batch {
		if it.MarkedForDeletion {
			n++
		}
	}
	return n
}

func (s *Session) publish(ctx context.Context, e events.Event) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(ctx, e); err != nil {
		s.log.Error("publish event", "type", e.EventType(), "error", err)
	}
}

// Current returns the item under the cursor.
func (s *Session) Current() (Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateReviewing || s.cursor >= len(s.batch) {
		return Item{}, false
	}
	return s.batch[s.cursor], true
}

// Cursor returns the batch position of the next undecided item.
func (s *Session) Cursor() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

// Batch returns a copy of the review batch.
func (s *Session) Batch() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.batch)
}

// Pending returns the items marked for deletion, in batch order.
func (s *Session) Pending() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Item
	for _, it := range s.batch {
		if it.MarkedForDeletion {
			out = append(out, it)
		}
	}
	return out
}

// Candidates returns a copy of the full candidate set.
func (s *Session) Candidates() []library.Asset {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.candidates)
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Result reports whether a finished review has pending deletions.
func (s *Session) Result() Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

func (s *Session) IsLoading() bool    { return s.State() == StateLoading }
func (s *Session) IsCommitting() bool { return s.State() == StateCommitting }
func (s *Session) IsComplete() bool   { return s.State() == StateComplete }
func (s *Session) IsFailed() bool     { return s.State() == StateFailed }

// Err returns the error of the last failed commit.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Deleted returns how many assets the last successful commit removed.
func (s *Session) Deleted() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleted
}

// ID identifies the current review in logs and events.
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// Mode returns the filter mode of the loaded candidate set.
func (s *Session) Mode() classify.Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// PlayableURL resolves the current item's video location. It returns nil
// for images and when there is no current item.
func (s *Session) PlayableURL(ctx context.Context) (*url.URL, error) {
	it, ok := s.Current()
	if !ok || !it.Asset.IsVideo() {
		return nil, nil
	}
	return s.lib.ResolvePlayableURL(ctx, it.Asset)
}

// Close cancels outstanding loads and waits for them to return.
func (s *Session) Close() {
	s.mu.Lock()
	if s.headCancel != nil {
		s.headCancel()
		s.headCancel = nil
	}
	s.mu.Unlock()
	s.cache.CancelAll()
	s.cache.Wait()
}
