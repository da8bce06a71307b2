package library

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stageBatch(t *testing.T, root string, at time.Time, files ...string) string {
	t.Helper()
	dir := filepath.Join(root, TrashDir, strconv.FormatInt(at.UnixNano(), 10))
	for _, f := range files {
		path := filepath.Join(dir, f)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte("12345"), 0644))
	}
	return dir
}

func TestFSLibrary_TrashBatches(t *testing.T) {
	root := t.TempDir()
	lib := NewFSLibrary(root, nil, testLogger())

	batches, err := lib.TrashBatches()
	require.NoError(t, err)
	assert.Empty(t, batches, "missing trash dir is not an error")

	now := time.Now()
	stageBatch(t, root, now, "c.png")
	stageBatch(t, root, now.Add(-48*time.Hour), "a.png", "sub/b.png")
	require.NoError(t, os.MkdirAll(filepath.Join(root, TrashDir, "not-a-batch"), 0755))

	batches, err = lib.TrashBatches()
	require.NoError(t, err)
	require.Len(t, batches, 2)
	assert.Equal(t, 2, batches[0].Files, "oldest first")
	assert.Equal(t, int64(10), batches[0].Bytes)
	assert.Equal(t, 1, batches[1].Files)
}

func TestFSLibrary_EmptyTrash(t *testing.T) {
	root := t.TempDir()
	lib := NewFSLibrary(root, nil, testLogger())

	now := time.Now()
	old := stageBatch(t, root, now.Add(-40*24*time.Hour), "a.png")
	recent := stageBatch(t, root, now.Add(-time.Hour), "b.png")

	removed, err := lib.EmptyTrash(now.Add(-30 * 24 * time.Hour))
	require.NoError(t, err)
	require.Len(t, removed, 1)
	assert.Equal(t, old, removed[0].Dir)

	_, err = os.Stat(old)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(recent)
	assert.NoError(t, err)

	removed, err = lib.EmptyTrash(now)
	require.NoError(t, err)
	assert.Len(t, removed, 1)
}

func TestFSLibrary_RemoveUnderTrash_RefusesOutside(t *testing.T) {
	root := t.TempDir()
	lib := NewFSLibrary(root, nil, testLogger())

	keep := filepath.Join(root, "keep.png")
	require.NoError(t, os.WriteFile(keep, []byte("x"), 0644))

	tests := []string{
		keep,
		filepath.Join(root, TrashDir),
		filepath.Join(root, TrashDir+"-other", "x"),
		filepath.Join(root, TrashDir, "..", "keep.png"),
	}
	for _, path := range tests {
		assert.ErrorIs(t, lib.removeUnderTrash(path), ErrPathOutsideTrash, path)
	}
	_, err := os.Stat(keep)
	assert.NoError(t, err)
}
