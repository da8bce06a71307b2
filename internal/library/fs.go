package library

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"golang.org/x/image/draw"
)

// TrashDir is the directory under the library root that receives deleted
// files. The scanner skips it like any other dot-directory.
const TrashDir = ".culler-trash"

// FSLibrary serves catalogued assets from a directory on disk.
type FSLibrary struct {
	root  string
	store *Store
	purge bool // remove staged files instead of keeping them in TrashDir
	log   *slog.Logger
}

// FSOption configures an FSLibrary.
type FSOption func(*FSLibrary)

// WithPurge makes deletions permanent instead of moving files to TrashDir.
func WithPurge(purge bool) FSOption {
	return func(l *FSLibrary) { l.purge = purge }
}

// NewFSLibrary creates a library rooted at root backed by store.
func NewFSLibrary(root string, store *Store, log *slog.Logger, opts ...FSOption) *FSLibrary {
	if log == nil {
		log = slog.Default()
	}
	l := &FSLibrary{root: root, store: store, log: log}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Root returns the library root directory.
func (l *FSLibrary) Root() string { return l.root }

// checkAccess gates every call on the root being readable.
func (l *FSLibrary) checkAccess() error {
	f, err := os.Open(l.root)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return fmt.Errorf("open %s: %w", l.root, ErrPermissionDenied)
		}
		return fmt.Errorf("open %s: %w", l.root, err)
	}
	return f.Close()
}

// FetchAssets returns catalogued images and videos matching f, newest first.
func (l *FSLibrary) FetchAssets(ctx context.Context, f Filter) ([]Asset, error) {
	if err := l.checkAccess(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(f.Kinds) == 0 {
		f.Kinds = []Kind{KindImage, KindVideo}
	}
	assets, _, err := l.store.List(f)
	if err != nil {
		return nil, err
	}
	return assets, nil
}

// LoadPreview decodes an image and scales it down so it covers a size×size
// box. Videos have no decoded preview; the result is nil without error.
func (l *FSLibrary) LoadPreview(ctx context.Context, a Asset, size int) (image.Image, error) {
	if a.IsVideo() {
		return nil, nil
	}
	f, err := os.Open(a.Path)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return nil, fmt.Errorf("open %s: %w", a.ID, ErrPermissionDenied)
		}
		return nil, fmt.Errorf("open %s: %w", a.ID, err)
	}
	defer func() { _ = f.Close() }()

	src, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", a.ID, err)
	}
	// Decoding is not interruptible; drop the work if the caller gave up.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return scaleToCover(src, size), nil
}

// scaleToCover shrinks src so its shorter side equals size. Images already
// within the box are returned unchanged.
func scaleToCover(src image.Image, size int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if size <= 0 || w == 0 || h == 0 || (w <= size || h <= size) {
		return src
	}
	scale := max(float64(size)/float64(w), float64(size)/float64(h))
	dw, dh := int(float64(w)*scale+0.5), int(float64(h)*scale+0.5)
	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}

// ResolvePlayableURL returns a file URL for a video asset, or nil for images
// and videos whose file has gone missing.
func (l *FSLibrary) ResolvePlayableURL(_ context.Context, a Asset) (*url.URL, error) {
	if !a.IsVideo() {
		return nil, nil
	}
	abs, err := filepath.Abs(a.Path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", a.ID, err)
	}
	if _, err := os.Stat(abs); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("stat %s: %w", a.ID, err)
	}
	return &url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}, nil
}

type staged struct {
	from, to string
}

// DeleteAssets removes assets as one batch. Files are first moved into a
// per-batch trash directory; if any move fails every staged file is moved
// back and nothing is removed from the catalog.
func (l *FSLibrary) DeleteAssets(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := l.checkAccess(); err != nil {
		return err
	}

	assets := make([]Asset, 0, len(ids))
	for _, id := range ids {
		a, err := l.store.Get(id)
		if err != nil {
			return err
		}
		assets = append(assets, a)
	}

	batchDir := filepath.Join(l.root, TrashDir, strconv.FormatInt(time.Now().UnixNano(), 10))
	var moved []staged
	rollback := func() {
		for i := len(moved) - 1; i >= 0; i-- {
			if err := os.Rename(moved[i].to, moved[i].from); err != nil {
				l.log.Error("restore staged file failed", "path", moved[i].from, "error", err)
			}
		}
	}

	for _, a := range assets {
		if err := ctx.Err(); err != nil {
			rollback()
			return err
		}
		to := filepath.Join(batchDir, filepath.FromSlash(a.ID))
		if err := os.MkdirAll(filepath.Dir(to), 0o755); err != nil {
			rollback()
			return fmt.Errorf("stage %s: %w", a.ID, mapFSError(err))
		}
		if err := os.Rename(a.Path, to); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				// Already gone from disk; only the catalog row remains.
				continue
			}
			rollback()
			return fmt.Errorf("stage %s: %w", a.ID, mapFSError(err))
		}
		moved = append(moved, staged{from: a.Path, to: to})
	}

	tx, err := l.store.Begin()
	if err != nil {
		rollback()
		return err
	}
	if _, err := tx.Delete(ids); err != nil {
		_ = tx.Rollback()
		rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		rollback()
		return fmt.Errorf("commit delete: %w", err)
	}

	if l.purge {
		if err := os.RemoveAll(batchDir); err != nil {
			l.log.Warn("purge trash failed", "dir", batchDir, "error", err)
		}
	}
	l.log.Info("assets deleted", "count", len(ids), "purged", l.purge)
	return nil
}

func mapFSError(err error) error {
	if errors.Is(err, fs.ErrPermission) {
		return ErrPermissionDenied
	}
	return err
}
