// Package log provides structured file logging for the catalog.
// Logging is off until Init is called (the --debug flag or CATALOG_DEBUG).
// Every entry is also published on a pubsub broker so the TUI can tail it.
package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zjrosen/catalog/internal/pubsub"
)

// Level represents log severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = [...]string{"DEBUG", "INFO", "WARN", "ERROR"}

func (l Level) String() string {
	if l < LevelDebug || l > LevelError {
		return "UNKNOWN"
	}
	return levelNames[l]
}

// ParseLevel converts a level name such as "warn" to a Level.
func ParseLevel(name string) (Level, error) {
	for i, n := range levelNames {
		if strings.EqualFold(n, name) {
			return Level(i), nil
		}
	}
	return LevelDebug, fmt.Errorf("unknown log level %q (want debug, info, warn or error)", name)
}

// Category groups related log messages.
type Category string

const (
	CatConfig    Category = "config"    // Configuration loading/saving
	CatTemplates Category = "templates" // Template discovery and parsing
	CatWatcher   Category = "watcher"   // Template directory watcher
	CatUI        Category = "ui"        // UI component updates
	CatHost      Category = "host"      // Host actions, events and workspace
	CatCatalog   Category = "catalog"   // Catalog store transitions
	CatCache     Category = "cache"     // Cache operations
	CatTrace     Category = "trace"     // Tracing provider
)

const timeLayout = "2006-01-02T15:04:05"

// Logger writes formatted entries to w and republishes them.
type Logger struct {
	mu       sync.Mutex
	w        io.Writer
	enabled  bool
	minLevel Level
	broker   *pubsub.Broker[string]
}

func newLogger(w io.Writer, minLevel Level) *Logger {
	return &Logger{w: w, enabled: true, minLevel: minLevel, broker: pubsub.NewBroker[string]()}
}

var current atomic.Pointer[Logger]

// Init starts logging to path, appending to an existing file. The returned
// cleanup closes the file and disables logging.
func Init(path string) (func(), error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644) //nolint:gosec // G304: path is the user-chosen debug log
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	l := newLogger(f, LevelDebug)
	current.Store(l)
	return func() {
		current.CompareAndSwap(l, nil)
		l.broker.Close()
		_ = f.Close()
	}, nil
}

// InitWriter routes log output to w. Used by tests.
func InitWriter(w io.Writer, minLevel Level) {
	current.Store(newLogger(w, minLevel))
}

// Reset disables logging.
func Reset() {
	current.Store(nil)
}

// SetEnabled toggles logging on/off.
func SetEnabled(enabled bool) {
	if l := current.Load(); l != nil {
		l.mu.Lock()
		l.enabled = enabled
		l.mu.Unlock()
	}
}

// SetMinLevel sets the minimum log level.
func SetMinLevel(level Level) {
	if l := current.Load(); l != nil {
		l.mu.Lock()
		l.minLevel = level
		l.mu.Unlock()
	}
}

// Debug logs at debug level.
func Debug(cat Category, msg string, fields ...any) { write(LevelDebug, cat, msg, fields) }

// Info logs at info level.
func Info(cat Category, msg string, fields ...any) { write(LevelInfo, cat, msg, fields) }

// Warn logs at warning level.
func Warn(cat Category, msg string, fields ...any) { write(LevelWarn, cat, msg, fields) }

// Error logs at error level.
func Error(cat Category, msg string, fields ...any) { write(LevelError, cat, msg, fields) }

// ErrorErr logs at error level with err attached as the "error" field.
func ErrorErr(cat Category, msg string, err error, fields ...any) {
	value := "<nil>"
	if err != nil {
		value = err.Error()
	}
	write(LevelError, cat, msg, append(fields, "error", value))
}

func write(level Level, cat Category, msg string, fields []any) {
	l := current.Load()
	if l == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.enabled || level < l.minLevel {
		return
	}

	entry := format(time.Now(), level, cat, msg, fields)
	if l.w != nil {
		_, _ = io.WriteString(l.w, entry)
	}
	l.broker.Publish(pubsub.LogEntryEvent, entry)
}

// format renders one line:
//
//	2026-10-18T10:45:00 [WARN] [templates] skipping file path=a.json name="Old name"
func format(at time.Time, level Level, cat Category, msg string, fields []any) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s [%s] [%s] %s", at.Format(timeLayout), level, cat, msg)
	for i := 0; i < len(fields); i += 2 {
		if i+1 == len(fields) {
			fmt.Fprintf(&b, " %v=<missing>", fields[i])
			break
		}
		fmt.Fprintf(&b, " %v=%s", fields[i], fieldValue(fields[i+1]))
	}
	b.WriteByte('\n')
	return b.String()
}

func fieldValue(v any) string {
	s := fmt.Sprint(v)
	if s == "" || strings.ContainsAny(s, " \t\n\"=") {
		return strconv.Quote(s)
	}
	return s
}

// LogEvent is a pubsub event containing a log entry.
type LogEvent = pubsub.Event[string]

// LogListener wraps a continuous listener for log events.
type LogListener = pubsub.ContinuousListener[string]

// NewListener subscribes to log entries until ctx is done. It returns nil
// when logging is off.
func NewListener(ctx context.Context) *LogListener {
	l := current.Load()
	if l == nil {
		return nil
	}
	return pubsub.NewContinuousListener(ctx, l.broker, pubsub.LogEntryEvent)
}
