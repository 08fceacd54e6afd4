package event

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBusDeliversToEverySubscriber(t *testing.T) {
	t.Parallel()

	bus := NewBus()
	first, unsubscribeFirst := bus.Subscribe()
	second, unsubscribeSecond := bus.Subscribe()
	defer unsubscribeSecond()

	bus.Publish(New(TypeCartUpdated, map[string]int{"count": 1}))

	require.Equal(t, TypeCartUpdated, (<-first).Type)
	require.Equal(t, TypeCartUpdated, (<-second).Type)

	unsubscribeFirst()
	unsubscribeFirst()
	_, open := <-first
	require.False(t, open)

	bus.Publish(New(TypeCartCleared, nil))
	require.Equal(t, TypeCartCleared, (<-second).Type)
}

func TestBusDropsWhenSubscriberIsFull(t *testing.T) {
	t.Parallel()

	bus := NewBus()
	ch, unsubscribe := bus.Subscribe()
	defer unsubscribe()

	for i := 0; i < subscriberBuffer+5; i++ {
		bus.Publish(New(TypeInventoryUpdated, i))
	}

	require.Len(t, ch, subscriberBuffer)
}

func TestNewEvent(t *testing.T) {
	t.Parallel()

	e := New(TypeSweetAdded, 7)
	require.NotEmpty(t, e.ID)
	require.NotEmpty(t, e.Timestamp)
	require.Equal(t, 7, e.Payload)
}
