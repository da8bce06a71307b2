package library

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"
)

// ErrPathOutsideTrash is returned when a removal target is not inside the
// trash directory.
var ErrPathOutsideTrash = errors.New("path outside trash directory")

// TrashBatch is one deletion batch staged under TrashDir.
type TrashBatch struct {
	Dir       string
	DeletedAt time.Time
	Files     int
	Bytes     int64
}

func (l *FSLibrary) trashRoot() string {
	return filepath.Join(l.root, TrashDir)
}

// TrashBatches lists staged deletion batches, oldest first. Directories
// that were not created by DeleteAssets are ignored.
func (l *FSLibrary) TrashBatches() ([]TrashBatch, error) {
	entries, err := os.ReadDir(l.trashRoot())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read trash: %w", mapFSError(err))
	}

	var batches []TrashBatch
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		ns, err := strconv.ParseInt(e.Name(), 10, 64)
		if err != nil {
			continue
		}
		b := TrashBatch{Dir: filepath.Join(l.trashRoot(), e.Name()), DeletedAt: time.Unix(0, ns)}
		_ = filepath.WalkDir(b.Dir, func(_ string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return nil
			}
			if info, err := d.Info(); err == nil {
				b.Files++
				b.Bytes += info.Size()
			}
			return nil
		})
		batches = append(batches, b)
	}
	slices.SortFunc(batches, func(a, b TrashBatch) int { return a.DeletedAt.Compare(b.DeletedAt) })
	return batches, nil
}

// EmptyTrash permanently removes batches staged before cutoff and returns
// the batches removed.
func (l *FSLibrary) EmptyTrash(cutoff time.Time) ([]TrashBatch, error) {
	batches, err := l.TrashBatches()
	if err != nil {
		return nil, err
	}

	var removed []TrashBatch
	for _, b := range batches {
		if !b.DeletedAt.Before(cutoff) {
			break
		}
		if err := l.removeUnderTrash(b.Dir); err != nil {
			return removed, fmt.Errorf("empty trash %s: %w", filepath.Base(b.Dir), err)
		}
		removed = append(removed, b)
	}
	if len(removed) > 0 {
		l.log.Info("trash emptied", "batches", len(removed), "cutoff", cutoff)
	}
	return removed, nil
}

// removeUnderTrash deletes path after checking it resolves inside the trash
// directory.
func (l *FSLibrary) removeUnderTrash(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	absRoot, err := filepath.Abs(l.trashRoot())
	if err != nil {
		return err
	}

	cleanPath := filepath.Clean(absPath)
	cleanRoot := filepath.Clean(absRoot)
	// The separator keeps ".culler-trash-other" from matching.
	if !strings.HasPrefix(cleanPath, cleanRoot+string(filepath.Separator)) {
		l.log.Warn("refusing to delete path outside trash", "path", path, "trash", cleanRoot)
		return ErrPathOutsideTrash
	}

	if err := os.RemoveAll(cleanPath); err != nil {
		return mapFSError(err)
	}
	return nil
}
