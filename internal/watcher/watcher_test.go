package watcher_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/catalog/internal/pubsub"
	"github.com/zjrosen/catalog/internal/templates"
	"github.com/zjrosen/catalog/internal/watcher"
)

func startWatcher(t *testing.T, dirs ...string) (*watcher.Watcher, <-chan pubsub.Event[[]string]) {
	t.Helper()
	w, err := watcher.New(watcher.Config{
		Dirs:        dirs,
		DebounceDur: 50 * time.Millisecond,
		Relevant:    templates.IsTemplateFile,
	})
	require.NoError(t, err, "failed to create watcher")
	t.Cleanup(func() { _ = w.Stop() })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	ch := w.Broker().Subscribe(ctx, pubsub.TemplatesChangedEvent)

	_, err = w.Start()
	require.NoError(t, err, "failed to start watcher")
	return w, ch
}

func TestWatcher_DebounceMultipleWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "http.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0644))

	_, ch := startWatcher(t, dir)

	// Rapid writes should coalesce into a single notification
	for i := 0; i < 10; i++ {
		require.NoError(t, os.WriteFile(path, []byte(fmt.Sprintf(`{"n":%d}`, i)), 0644))
		time.Sleep(10 * time.Millisecond)
	}

	select {
	case ev := <-ch:
		assert.Equal(t, pubsub.TemplatesChangedEvent, ev.Type)
		assert.Equal(t, []string{path}, ev.Payload)
	case <-time.After(500 * time.Millisecond):
		t.Fatal("expected notification but got timeout")
	}

	select {
	case <-ch:
		t.Fatal("unexpected second notification")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestWatcher_IgnoresIrrelevantFiles(t *testing.T) {
	dir := t.TempDir()
	_, ch := startWatcher(t, dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("notes"), 0644))

	select {
	case <-ch:
		t.Fatal("unexpected notification for irrelevant file")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcher_DetectsRemoval(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tasks.yaml")
	require.NoError(t, os.WriteFile(path, []byte("[]"), 0644))

	_, ch := startWatcher(t, dir)
	require.NoError(t, os.Remove(path))

	select {
	case ev := <-ch:
		assert.Contains(t, ev.Payload, path)
	case <-time.After(500 * time.Millisecond):
		t.Fatal("expected notification for removed template")
	}
}

func TestWatcher_SkipsMissingDirectories(t *testing.T) {
	dir := t.TempDir()
	w, err := watcher.New(watcher.DefaultConfig([]string{filepath.Join(dir, "missing"), dir}))
	require.NoError(t, err)
	defer func() { _ = w.Stop() }()

	watched, err := w.Start()
	require.NoError(t, err)
	assert.Equal(t, 1, watched)
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	w, err := watcher.New(watcher.DefaultConfig(nil))
	require.NoError(t, err)
	_, err = w.Start()
	require.NoError(t, err)

	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())
}
