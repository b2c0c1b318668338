// Package watcher watches template directories and publishes debounced
// change notifications.
package watcher

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/zjrosen/catalog/internal/log"
	"github.com/zjrosen/catalog/internal/pubsub"
)

// Watcher monitors template directories and publishes a
// pubsub.TemplatesChangedEvent carrying the changed file paths.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	dirs      []string
	debounce  time.Duration
	relevant  func(name string) bool
	broker    *pubsub.Broker[[]string]
	done      chan struct{}
	stopOnce  sync.Once
}

// Config holds watcher configuration options.
type Config struct {
	Dirs        []string
	DebounceDur time.Duration
	// Relevant filters event paths. Nil accepts every file.
	Relevant func(name string) bool
}

// DefaultConfig returns sensible defaults for the watcher.
func DefaultConfig(dirs []string) Config {
	return Config{
		Dirs:        dirs,
		DebounceDur: 300 * time.Millisecond,
	}
}

// New creates a new template directory watcher.
func New(cfg Config) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}

	relevant := cfg.Relevant
	if relevant == nil {
		relevant = func(string) bool { return true }
	}

	return &Watcher{
		fsWatcher: fsw,
		dirs:      cfg.Dirs,
		debounce:  cfg.DebounceDur,
		relevant:  relevant,
		broker:    pubsub.NewBroker[[]string](),
		done:      make(chan struct{}),
	}, nil
}

// Broker returns the broker change notifications are published on.
func (w *Watcher) Broker() *pubsub.Broker[[]string] {
	return w.broker
}

// Start begins watching every configured directory that exists. It returns
// the number of directories watched.
func (w *Watcher) Start() (int, error) {
	watched := 0
	for _, dir := range w.dirs {
		if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
			log.Debug(log.CatWatcher, "Skipping missing template directory", "dir", dir)
			continue
		}
		if err := w.fsWatcher.Add(dir); err != nil {
			return watched, fmt.Errorf("watching directory %s: %w", dir, err)
		}
		watched++
	}

	go w.loop()

	log.Info(log.CatWatcher, "Watching template directories", "count", watched)
	return watched, nil
}

// Stop terminates the watcher and releases resources.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)
		err = w.fsWatcher.Close()
		log.Debug(log.CatWatcher, "Watcher stopped",
			"subscribers", w.broker.SubscriberCount(), "dropped", w.broker.Dropped())
		w.broker.Close()
	})
	return err
}

// loop processes file system events with debouncing.
func (w *Watcher) loop() {
	var (
		timer   *time.Timer
		pending = make(map[string]struct{})
	)

	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if !w.isRelevantEvent(event) {
				continue
			}
			pending[event.Name] = struct{}{}

			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}

		case <-func() <-chan time.Time {
			if timer != nil {
				return timer.C
			}
			return nil
		}():
			if len(pending) > 0 {
				paths := make([]string, 0, len(pending))
				for p := range pending {
					paths = append(paths, p)
				}
				sort.Strings(paths)
				pending = make(map[string]struct{})

				log.Debug(log.CatWatcher, "Template files changed", "paths", len(paths))
				w.broker.Publish(pubsub.TemplatesChangedEvent, paths)
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			log.ErrorErr(log.CatWatcher, "Watcher error", err)

		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

// isRelevantEvent checks if the event should trigger a reload.
func (w *Watcher) isRelevantEvent(event fsnotify.Event) bool {
	// Renames and removals matter too: a deleted template must disappear.
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	return w.relevant(filepath.Base(event.Name))
}
