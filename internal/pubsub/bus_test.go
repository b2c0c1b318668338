package pubsub

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBus_EmitInSubscriptionOrder(t *testing.T) {
	bus := NewBus()
	var calls []string

	bus.Subscribe("app.activeTabChanged", func(payload any) { calls = append(calls, "first:"+payload.(string)) })
	bus.Subscribe("app.activeTabChanged", func(payload any) { calls = append(calls, "second:"+payload.(string)) })
	bus.Subscribe("other", func(any) { calls = append(calls, "other") })

	n := bus.Emit("app.activeTabChanged", "tab-1")

	require.Equal(t, 2, n)
	require.Equal(t, []string{"first:tab-1", "second:tab-1"}, calls)
}

func TestBus_CancelRemovesHandler(t *testing.T) {
	bus := NewBus()
	count := 0

	sub := bus.Subscribe("evt", func(any) { count++ })
	require.NotEmpty(t, sub.ID())
	require.Equal(t, 1, bus.HandlerCount("evt"))

	bus.Emit("evt", nil)
	sub.Cancel()
	sub.Cancel()
	bus.Emit("evt", nil)

	require.Equal(t, 1, count, "cancelled handler must not fire")
	require.Equal(t, 0, bus.HandlerCount("evt"))
}

func TestBus_CancelKeepsOtherHandlers(t *testing.T) {
	bus := NewBus()
	var fired []string

	a := bus.Subscribe("evt", func(any) { fired = append(fired, "a") })
	bus.Subscribe("evt", func(any) { fired = append(fired, "b") })

	a.Cancel()
	bus.Emit("evt", nil)

	require.Equal(t, []string{"b"}, fired)
}

func TestBus_EmitWithoutHandlers(t *testing.T) {
	require.Equal(t, 0, NewBus().Emit("nobody", 1))
}
