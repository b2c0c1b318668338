// Package pubsub provides the event plumbing shared by the catalog and its host:
// an asynchronous typed broker for background producers (log, watcher) and a
// synchronous named-event bus for host notifications.
package pubsub

import (
	"context"
	"slices"
	"time"
)

// EventType names a broker topic.
type EventType string

const (
	// LogEntryEvent carries one formatted log line.
	LogEntryEvent EventType = "log.entry"
	// TemplatesChangedEvent carries the sorted template files that changed
	// since the previous event.
	TemplatesChangedEvent EventType = "templates.changed"
)

// Event is one published payload.
type Event[T any] struct {
	Type      EventType
	Payload   T
	Timestamp time.Time
}

// Subscriber is the receiving half of a Broker.
type Subscriber[T any] interface {
	Subscribe(ctx context.Context, types ...EventType) <-chan Event[T]
}

// Publisher is the sending half of a Broker.
type Publisher[T any] interface {
	Publish(eventType EventType, payload T)
}

// MergeFunc folds a later payload into an earlier one.
type MergeFunc[T any] func(earlier, later T) T

// MergePaths unions two changed-path lists, keeping the result sorted and
// free of duplicates.
func MergePaths(earlier, later []string) []string {
	out := make([]string, 0, len(earlier)+len(later))
	out = append(out, earlier...)
	out = append(out, later...)
	slices.Sort(out)
	return slices.Compact(out)
}
