package runner

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/observing-components/pkg/util"
)

func newTestWatcher(t *testing.T) *Watcher {
	t.Helper()
	opts := DefaultWatchOptions()
	opts.Debounce = 20 * time.Millisecond
	w, err := NewWatcher(newTestRunner(t), opts, util.NewDiscardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Stop() })
	return w
}

func TestWatcherRewritesChangedFile(t *testing.T) {
	root := writeTree(t, map[string]string{"src/keep.txt": ""})
	w := newTestWatcher(t)

	var mu sync.Mutex
	var reports []FileReport
	w.OnResult = func(r FileReport, err error) {
		mu.Lock()
		defer mu.Unlock()
		if err == nil {
			reports = append(reports, r)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, root) }()

	require.Eventually(t, func() bool { return w.GetStats().IsRunning }, 2*time.Second, 10*time.Millisecond)

	path := filepath.Join(root, "src", "Card.jsx")
	require.NoError(t, os.WriteFile(path, []byte("const Card = () => <div/>;\n"), 0o644))

	want := importLine + "const Card = observer(() => <div/>);\n"
	require.Eventually(t, func() bool {
		data, err := os.ReadFile(path)
		return err == nil && string(data) == want
	}, 5*time.Second, 20*time.Millisecond)

	// Events caused by the watcher's own write settle without another run.
	time.Sleep(200 * time.Millisecond)
	mu.Lock()
	var changed int
	for _, r := range reports {
		if r.Status == StatusChanged {
			changed++
		}
	}
	mu.Unlock()
	assert.Equal(t, 1, changed)
	assert.Equal(t, want, readFile(t, path))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
	assert.False(t, w.GetStats().IsRunning)
}

func TestWatcherWatchesNewDirectories(t *testing.T) {
	root := t.TempDir()
	w := newTestWatcher(t)
	require.NoError(t, w.Start(root))

	dir := filepath.Join(root, "feature")
	require.NoError(t, os.Mkdir(dir, 0o755))

	// The directory watch is added asynchronously; keep touching the file
	// until the watcher sees it.
	path := filepath.Join(dir, "Panel.jsx")
	want := importLine + "const Panel = observer(() => <section/>);\n"
	require.Eventually(t, func() bool {
		data, err := os.ReadFile(path)
		if err == nil && string(data) == want {
			return true
		}
		if err != nil || string(data) != want {
			_ = os.WriteFile(path, []byte("const Panel = () => <section/>;\n"), 0o644)
		}
		return false
	}, 5*time.Second, 100*time.Millisecond)
}

func TestWatcherSuppressesOwnWrites(t *testing.T) {
	w := newTestWatcher(t)

	content := []byte("import { observer } from \"mobx-react-lite\";\n")
	assert.False(t, w.isOwnWrite("/p/A.jsx", content))

	w.remember("/p/A.jsx", content)
	assert.True(t, w.isOwnWrite("/p/A.jsx", content))
	assert.False(t, w.isOwnWrite("/p/A.jsx", []byte("edited")), "user edits are processed")
	assert.False(t, w.isOwnWrite("/p/B.jsx", content))
	assert.Equal(t, 1, w.GetStats().Remembered)
}

func TestWatcherSelects(t *testing.T) {
	w := newTestWatcher(t)
	w.root = "/repo"

	assert.True(t, w.selects("/repo/src/App.jsx"))
	assert.False(t, w.selects("/repo/src/App.css"))
	assert.False(t, w.selects("/repo/node_modules/x/App.jsx"))
	assert.False(t, w.selects("/repo/dist/App.js"))
	assert.False(t, w.selects("/repo/src/.App.jsx.123.tmp"))

	assert.True(t, w.ignoreDir("/repo/build"))
	assert.True(t, w.ignoreDir("/repo/packages/a/node_modules"))
	assert.False(t, w.ignoreDir("/repo/src"))
}

func TestWatcherLifecycle(t *testing.T) {
	w := newTestWatcher(t)
	root := t.TempDir()

	require.NoError(t, w.Start(root))
	assert.Error(t, w.Start(root), "second start fails")
	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop(), "stop is idempotent")
	assert.Error(t, w.Start(root), "start after stop fails")
}

func TestNewWatcherRejectsInvalidPatterns(t *testing.T) {
	opts := DefaultWatchOptions()
	opts.Options.Include = []string{"[oops"}
	_, err := NewWatcher(newTestRunner(t), opts, nil)
	assert.Error(t, err)
}
