package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vmunix/culler/internal/library"
)

func scanned(t *testing.T, user string) *testEnv {
	t.Helper()
	env := setupEnv(t, user)
	_, err := env.run(t, "", "scan")
	require.NoError(t, err)
	return env
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func TestReviewCmd_DeletesMarked(t *testing.T) {
	env := scanned(t, `name = "Ana"`)

	// Batch is newest first: a.png, b.png.
	out, err := env.run(t, "d\nk\nc\n", "review", "--mode", "mediaOnly", "--count", "2")
	require.NoError(t, err)

	assert.Contains(t, out, "Hi Ana! 3 candidates for PHOTO_ONLY.")
	assert.Contains(t, out, "[1/2] image  a.png")
	assert.Contains(t, out, "[2/2] image  b.png")
	assert.Contains(t, out, "1 item(s) marked for deletion")
	assert.Contains(t, out, "Deleted 1 item(s).")

	assert.False(t, exists(filepath.Join(env.root, "a.png")))
	assert.True(t, exists(filepath.Join(env.root, "b.png")))
	trashed, _ := filepath.Glob(filepath.Join(env.root, library.TrashDir, "*", "a.png"))
	assert.Len(t, trashed, 1)

	out, err = env.run(t, "", "classify", "--mode", "mediaOnly")
	require.NoError(t, err)
	assert.Contains(t, out, "2 of 2 items")
}

func TestReviewCmd_UnmarkBeforeConfirm(t *testing.T) {
	env := scanned(t, "")

	out, err := env.run(t, "d\nd\n1\nc\n", "review", "--mode", "mediaOnly", "--count", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "2 item(s) marked for deletion")
	assert.Contains(t, out, "1 item(s) marked for deletion")
	assert.Contains(t, out, "Deleted 1 item(s).")

	assert.True(t, exists(filepath.Join(env.root, "a.png")))
	assert.False(t, exists(filepath.Join(env.root, "b.png")))
}

func TestReviewCmd_UnmarkEverything(t *testing.T) {
	env := scanned(t, "")

	out, err := env.run(t, "d\nk\n1\n", "review", "--mode", "mediaOnly", "--count", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Nothing marked for deletion.")
	assert.True(t, exists(filepath.Join(env.root, "a.png")))
}

func TestReviewCmd_QuitDeletesNothing(t *testing.T) {
	env := scanned(t, "")

	out, err := env.run(t, "d\nq\n", "review", "--mode", "mediaOnly", "--count", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "Nothing was deleted.")
	for _, name := range []string{"a.png", "b.png", "c.png"} {
		assert.True(t, exists(filepath.Join(env.root, name)), name)
	}
}

func TestReviewCmd_ResetStartsOver(t *testing.T) {
	env := scanned(t, "")

	out, err := env.run(t, "d\nr\nk\nk\n", "review", "--mode", "recentBatch", "--count", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Starting over.")
	assert.Contains(t, out, "Nothing marked for deletion.")
	assert.True(t, exists(filepath.Join(env.root, "a.png")))
}

func TestReviewCmd_AsksForBatchSize(t *testing.T) {
	env := scanned(t, "")

	out, err := env.run(t, "9\nabc\n1\nk\n", "review", "--mode", "mediaOnly")
	require.NoError(t, err)
	assert.Contains(t, out, "How many items to review? [3]: ")
	assert.Contains(t, out, "Enter a number between 1 and 3.")
	assert.Contains(t, out, "[1/1]")
}

func TestReviewCmd_EndOfInput(t *testing.T) {
	env := scanned(t, "")

	out, err := env.run(t, "", "review", "--mode", "mediaOnly", "--count", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Nothing was deleted.")
}

func TestReviewCmd_NoCandidates(t *testing.T) {
	env := scanned(t, `name = "Ana"`)

	out, err := env.run(t, "", "review", "--mode", "screenshots")
	require.NoError(t, err)
	assert.Contains(t, out, "Hi Ana! Nothing to review for SCREENSHOT_FILTER.")
}

func TestReviewCmd_Spanish(t *testing.T) {
	env := scanned(t, `language = "es"`)

	out, err := env.run(t, "d\nc\n", "review", "--mode", "mediaOnly", "--count", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "¡Hola usuario! 3 candidatos para PHOTO_ONLY.")
	assert.Contains(t, out, "Se borraron 1 elemento(s).")
}

func TestHistoryCmd(t *testing.T) {
	env := scanned(t, "")

	_, err := env.run(t, "d\nc\n", "review", "--mode", "mediaOnly", "--count", "1")
	require.NoError(t, err)

	out, err := env.run(t, "", "history", "-n", "50")
	require.NoError(t, err)
	assert.Contains(t, out, "library.scanned")
	assert.Contains(t, out, "review.started")
	assert.Contains(t, out, "item.decided")
	assert.Contains(t, out, "deletion.committed")

	out, err = env.run(t, "", "history", "--session", "no-such-session")
	require.NoError(t, err)
	assert.Contains(t, out, "No events")
}
