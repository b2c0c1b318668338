package pubsub

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
)

// listen waits for the next event on ch. The returned message is nil once
// ctx is done or ch is closed, which ends the listen loop.
func listen[T any](ctx context.Context, ch <-chan Event[T], merge MergeFunc[T]) tea.Cmd {
	return func() tea.Msg {
		var event Event[T]
		select {
		case <-ctx.Done():
			return nil
		case e, ok := <-ch:
			if !ok {
				return nil
			}
			event = e
		}
		if merge == nil {
			return event
		}
		// Fold whatever queued up while the UI was busy into one message.
		for {
			select {
			case e, ok := <-ch:
				if !ok {
					return event
				}
				if e.Type != event.Type {
					return event
				}
				event.Payload = merge(event.Payload, e.Payload)
				event.Timestamp = e.Timestamp
			default:
				return event
			}
		}
	}
}

// ContinuousListener keeps one broker subscription alive across Update
// calls. Call Listen again after handling each event.
type ContinuousListener[T any] struct {
	ctx   context.Context
	ch    <-chan Event[T]
	merge MergeFunc[T]
}

// NewContinuousListener subscribes to broker for types until ctx is done.
func NewContinuousListener[T any](ctx context.Context, broker *Broker[T], types ...EventType) *ContinuousListener[T] {
	return &ContinuousListener[T]{ctx: ctx, ch: broker.Subscribe(ctx, types...)}
}

// Coalesce makes Listen merge queued events of the same type with merge.
// Events of another type are dropped from the burst, so only coalesce
// listeners that subscribe to a single type.
func (l *ContinuousListener[T]) Coalesce(merge MergeFunc[T]) *ContinuousListener[T] {
	l.merge = merge
	return l
}

// Listen returns a cmd that delivers the next event as a tea.Msg.
func (l *ContinuousListener[T]) Listen() tea.Cmd {
	return listen(l.ctx, l.ch, l.merge)
}
