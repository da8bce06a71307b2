package runner

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vmunix/culler/internal/events"
	"github.com/vmunix/culler/internal/library"
)

func TestRunner_StartsAndStops(t *testing.T) {
	bus := events.NewBus(nil, nil)
	defer bus.Close()

	runner := NewRunner(bus, library.NewFSLibrary(t.TempDir(), nil, nil), Config{}, nil)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- runner.Run(ctx)
	}()

	// Give handlers time to start
	time.Sleep(50 * time.Millisecond)

	// Cancel and wait for clean shutdown
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err, "cancellation is a clean shutdown")
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for runner to stop")
	}
}

func TestNewRunner_DefaultLogger(t *testing.T) {
	// Should not panic with nil logger
	runner := NewRunner(events.NewBus(nil, nil), nil, Config{}, nil)
	require.NotNil(t, runner)
	require.NotNil(t, runner.logger)
}

func TestRunner_ExpiresTrash(t *testing.T) {
	root := t.TempDir()
	old := filepath.Join(root, library.TrashDir, strconv.FormatInt(time.Now().Add(-72*time.Hour).UnixNano(), 10))
	require.NoError(t, os.MkdirAll(old, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(old, "a.png"), []byte("x"), 0644))

	bus := events.NewBus(nil, nil)
	defer bus.Close()
	emptied := bus.Subscribe(events.EventTrashEmptied, 1)

	runner := NewRunner(bus, library.NewFSLibrary(root, nil, nil), Config{TrashRetention: 24 * time.Hour}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = runner.Run(ctx) }()

	select {
	case e := <-emptied:
		assert.Equal(t, 1, e.(*events.TrashEmptied).Files)
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for TrashEmptied event")
	}
	_, err := os.Stat(old)
	assert.True(t, os.IsNotExist(err))
}
