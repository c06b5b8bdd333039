package main

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

// TestBus_PublishOrder ensures subscribers are called in registration order
// and only for their own topic.
func TestBus_PublishOrder(t *testing.T) {
	bus := NewBus()
	var calls []string
	bus.Subscribe(TopicCartChanged, func() { calls = append(calls, "a") })
	bus.Subscribe(TopicCartChanged, func() { calls = append(calls, "b") })
	bus.Subscribe(TopicFavoritesChanged, func() { calls = append(calls, "fav") })

	bus.Publish(TopicCartChanged)
	assert.Equal(t, []string{"a", "b"}, calls)

	bus.Publish(TopicFavoritesChanged)
	assert.Equal(t, []string{"a", "b", "fav"}, calls)
}

// TestBus_PublishWithoutSubscribers ensures publishing on an unknown topic is a no-op.
func TestBus_PublishWithoutSubscribers(t *testing.T) {
	bus := NewBus()
	assert.NotPanics(t, func() { bus.Publish("unknown") })
	assert.Equal(t, 0, bus.Subscribers("unknown"))
}

// TestBus_Unsubscribe ensures the returned function removes only its handler
// and can safely be called twice.
func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus()
	var a, b int
	unsubA := bus.Subscribe(TopicCartChanged, func() { a++ })
	bus.Subscribe(TopicCartChanged, func() { b++ })
	assert.Equal(t, 2, bus.Subscribers(TopicCartChanged))

	unsubA()
	unsubA()
	bus.Publish(TopicCartChanged)
	assert.Equal(t, 0, a)
	assert.Equal(t, 1, b)
	assert.Equal(t, 1, bus.Subscribers(TopicCartChanged))
}

// TestBus_SubscribeFromHandler ensures handlers can mutate subscriptions
// while a publication is running.
func TestBus_SubscribeFromHandler(t *testing.T) {
	bus := NewBus()
	var unsubscribe func()
	var late int
	unsubscribe = bus.Subscribe(TopicCartChanged, func() {
		unsubscribe()
		bus.Subscribe(TopicCartChanged, func() { late++ })
	})

	bus.Publish(TopicCartChanged)
	assert.Equal(t, 0, late)
	bus.Publish(TopicCartChanged)
	assert.Equal(t, 1, late)
}

// TestBus_ConcurrentUse ensures the bus can be shared across goroutines.
func TestBus_ConcurrentUse(t *testing.T) {
	defer goleak.VerifyNone(t)
	bus := NewBus()
	var mu sync.Mutex
	received := 0
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unsubscribe := bus.Subscribe(TopicFavoritesChanged, func() {
				mu.Lock()
				received++
				mu.Unlock()
			})
			bus.Publish(TopicFavoritesChanged)
			unsubscribe()
		}()
	}
	wg.Wait()
	assert.Equal(t, 0, bus.Subscribers(TopicFavoritesChanged))
	assert.GreaterOrEqual(t, received, 20)
}
