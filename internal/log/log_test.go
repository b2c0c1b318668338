package log

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/catalog/internal/pubsub"
)

func TestLog_FormatsFields(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf, LevelDebug)
	t.Cleanup(Reset)

	Warn(CatTemplates, "skipping file", "path", "a.json", "orphan")

	out := buf.String()
	require.Contains(t, out, "[WARN] [templates] skipping file")
	require.Contains(t, out, "path=a.json")
	require.Contains(t, out, "orphan=<missing>")
}

func TestLog_QuotesValues(t *testing.T) {
	line := format(time.Date(2026, 10, 18, 10, 45, 0, 0, time.UTC), LevelInfo, CatHost, "applied",
		[]any{"name", "REST Connector", "empty", "", "id", "acme.rest"})
	require.Equal(t,
		"2026-10-18T10:45:00 [INFO] [host] applied name=\"REST Connector\" empty=\"\" id=acme.rest\n", line)
}

func TestLog_InitFileCleanup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debug.log")
	cleanup, err := Init(path)
	require.NoError(t, err)

	Info(CatConfig, "hello")
	cleanup()
	Info(CatConfig, "after cleanup")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "[INFO] [config] hello")
	require.NotContains(t, string(data), "after cleanup")
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("Warn")
	require.NoError(t, err)
	require.Equal(t, LevelWarn, level)

	_, err = ParseLevel("verbose")
	require.ErrorContains(t, err, "unknown log level")
}

func TestLog_SetMinLevel(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf, LevelDebug)
	t.Cleanup(Reset)

	SetMinLevel(LevelError)
	Warn(CatWatcher, "quiet")
	Error(CatWatcher, "loud")
	require.NotContains(t, buf.String(), "quiet")
	require.Contains(t, buf.String(), "loud")
}

func TestLevel_String(t *testing.T) {
	require.Equal(t, "WARN", LevelWarn.String())
	require.Equal(t, "UNKNOWN", Level(9).String())
}

func TestLog_RespectsMinLevel(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf, LevelWarn)
	t.Cleanup(Reset)

	Debug(CatCatalog, "hidden")
	Info(CatCatalog, "hidden too")
	ErrorErr(CatCatalog, "shown", nil)

	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), "error=<nil>")
}

func TestLog_DisabledWritesNothing(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf, LevelDebug)
	t.Cleanup(Reset)

	SetEnabled(false)
	Error(CatHost, "nope")
	require.Empty(t, buf.String())
}

func TestLog_NilLoggerIsSafe(t *testing.T) {
	Reset()
	Info(CatUI, "no logger")
	require.Nil(t, NewListener(context.Background()))
}

func TestLog_PublishesEntries(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf, LevelDebug)
	t.Cleanup(Reset)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	listener := NewListener(ctx)
	require.NotNil(t, listener)

	Info(CatHost, "applied template", "element", "Task_1")

	done := make(chan any, 1)
	go func() { done <- listener.Listen()() }()

	select {
	case msg := <-done:
		event, ok := msg.(pubsub.Event[string])
		require.True(t, ok)
		require.Contains(t, event.Payload, "element=Task_1")
	case <-time.After(time.Second):
		require.Fail(t, "no log event published")
	}
}
