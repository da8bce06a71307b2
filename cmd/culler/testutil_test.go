package main

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// testEnv is a library directory with a config file pointing at it.
type testEnv struct {
	root       string
	configPath string
}

// setupEnv writes three photos, newest first: a.png, b.png, c.png.
func setupEnv(t *testing.T, user string) *testEnv {
	t.Helper()
	tmp := t.TempDir()
	root := filepath.Join(tmp, "photos")
	require.NoError(t, os.MkdirAll(root, 0755))

	now := time.Now()
	for i, name := range []string{"a.png", "b.png", "c.png"} {
		path := filepath.Join(root, name)
		writePNG(t, path, 40, 30)
		mtime := now.Add(-time.Duration(i+1) * time.Hour)
		require.NoError(t, os.Chtimes(path, mtime, mtime))
	}

	cfgPath := filepath.Join(tmp, "config.toml")
	content := fmt.Sprintf(`
[library]
root = %q

[database]
path = %q

[log]
level = "error"

[user]
%s
`, root, filepath.Join(tmp, "data", "culler.db"), user)
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0644))

	return &testEnv{root: root, configPath: cfgPath}
}

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	require.NoError(t, png.Encode(f, image.NewRGBA(image.Rect(0, 0, w, h))))
}

// run executes the CLI with stdin and returns its stdout.
func (e *testEnv) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	return execute(t, stdin, append([]string{"--config", e.configPath}, args...)...)
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}
