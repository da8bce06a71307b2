package library

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register decoder
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bep/imagemeta"
	_ "golang.org/x/image/webp" // register decoder
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var imageExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true, ".heic": true,
}

var videoExts = map[string]bool{
	".mov": true, ".mp4": true, ".m4v": true, ".avi": true, ".mkv": true, ".3gp": true,
}

// exifDateLayout is the EXIF DateTimeOriginal format. EXIF carries no zone;
// values are read in the local zone.
const exifDateLayout = "2006:01:02 15:04:05"

// KindForPath classifies a file by extension.
// Returns ErrUnsupportedMedia for anything that is not an image or video.
func KindForPath(path string) (Kind, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case imageExts[ext]:
		return KindImage, nil
	case videoExts[ext]:
		return KindVideo, nil
	default:
		return "", ErrUnsupportedMedia
	}
}

// AssetID derives the stable identity of a file: its path relative to the
// library root, slash-separated and NFC-normalized so the same file scanned
// from a decomposing filesystem keeps its ID.
func AssetID(root, path string) (string, error) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return "", fmt.Errorf("relative path: %w", err)
	}
	id, _, err := transform.String(norm.NFC, filepath.ToSlash(rel))
	if err != nil {
		return "", fmt.Errorf("normalize path: %w", err)
	}
	return id, nil
}

// ScanResult summarizes one pass over the library root.
type ScanResult struct {
	Root    string
	Scanned int   // assets upserted
	Skipped int   // files that were not media or could not be probed
	Pruned  int64 // catalog rows whose files disappeared
}

// Scanner walks a library root and keeps the catalog in sync with it.
type Scanner struct {
	store *Store
	log   *slog.Logger
}

// NewScanner creates a scanner writing to store.
func NewScanner(store *Store, log *slog.Logger) *Scanner {
	if log == nil {
		log = slog.Default()
	}
	return &Scanner{store: store, log: log}
}

// Scan walks root, upserts every image and video it finds, and prunes rows
// for files that no longer exist.
func (s *Scanner) Scan(ctx context.Context, root string) (*ScanResult, error) {
	if _, err := os.ReadDir(root); err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return nil, fmt.Errorf("read %s: %w", root, ErrPermissionDenied)
		}
		return nil, fmt.Errorf("read %s: %w", root, err)
	}

	start := time.Now()
	result := &ScanResult{Root: root}

	tx, err := s.store.Begin()
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrPermission) {
				s.log.Warn("skipping unreadable path", "path", path)
				result.Skipped++
				return nil
			}
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}

		a, err := probe(root, path, d)
		if err != nil {
			if !errors.Is(err, ErrUnsupportedMedia) {
				s.log.Debug("probe failed", "path", path, "error", err)
			}
			result.Skipped++
			return nil
		}
		if err := tx.Upsert(&a); err != nil {
			return err
		}
		result.Scanned++
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit scan: %w", err)
	}

	pruned, err := s.store.Prune(start)
	if err != nil {
		return nil, err
	}
	result.Pruned = pruned

	s.log.Info("library scanned", "root", root, "scanned", result.Scanned,
		"skipped", result.Skipped, "pruned", result.Pruned, "duration_ms", time.Since(start).Milliseconds())
	return result, nil
}

func probe(root, path string, d fs.DirEntry) (Asset, error) {
	kind, err := KindForPath(path)
	if err != nil {
		return Asset{}, err
	}
	info, err := d.Info()
	if err != nil {
		return Asset{}, fmt.Errorf("stat: %w", err)
	}
	id, err := AssetID(root, path)
	if err != nil {
		return Asset{}, err
	}

	a := Asset{
		ID:        id,
		Kind:      kind,
		Path:      path,
		CreatedAt: info.ModTime(),
		SizeBytes: info.Size(),
	}
	if kind == KindImage {
		readImageMeta(&a)
	}
	return a, nil
}

// readImageMeta fills dimensions and capture time from EXIF where present,
// falling back to the decoder header for dimensions. Failures leave the
// mtime-based defaults in place.
func readImageMeta(a *Asset) {
	f, err := os.Open(a.Path)
	if err != nil {
		return
	}
	defer func() { _ = f.Close() }()

	if format, ok := metaFormats[strings.ToLower(filepath.Ext(a.Path))]; ok {
		decodeEXIF(f, format, a)
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return
		}
	}
	if a.Width > 0 && a.Height > 0 {
		return
	}
	if cfg, _, err := image.DecodeConfig(f); err == nil {
		a.Width, a.Height = cfg.Width, cfg.Height
	}
}

var metaFormats = map[string]imagemeta.ImageFormat{
	".jpg":  imagemeta.JPEG,
	".jpeg": imagemeta.JPEG,
	".png":  imagemeta.PNG,
	".webp": imagemeta.WebP,
}

func decodeEXIF(r io.ReadSeeker, format imagemeta.ImageFormat, a *Asset) {
	_, _ = imagemeta.Decode(imagemeta.Options{
		R:           r,
		ImageFormat: format,
		Sources:     imagemeta.EXIF,
		ShouldHandleTag: func(ti imagemeta.TagInfo) bool {
			switch ti.Tag {
			case "DateTimeOriginal", "PixelXDimension", "PixelYDimension":
				return true
			}
			return false
		},
		HandleTag: func(ti imagemeta.TagInfo) error {
			switch ti.Tag {
			case "DateTimeOriginal":
				if t, err := time.ParseInLocation(exifDateLayout, strings.TrimSpace(fmt.Sprint(ti.Value)), time.Local); err == nil {
					a.CreatedAt = t
				}
			case "PixelXDimension":
				a.Width = toInt(ti.Value)
			case "PixelYDimension":
				a.Height = toInt(ti.Value)
			}
			return nil
		},
	})
}

func toInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case uint16:
		return int(n)
	case uint32:
		return int(n)
	case int32:
		return int(n)
	case uint64:
		return int(n)
	default:
		return 0
	}
}
