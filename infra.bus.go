package main

import (
	"sync"
)

// Notification topics.
const (
	TopicCartChanged      = "cart-changed"
	TopicFavoritesChanged = "favorites-changed"
)

var _ Notifier = (*Bus)(nil) // ensure Bus implements Notifier.

// Notifier is a topic based signal broadcaster. Signals carry no payload,
// so every subscriber must re-read the state it cares about.
type Notifier interface {
	Publish(topic string)
	Subscribe(topic string, handler func()) (unsubscribe func())
}

type subscriber struct {
	id      uint64
	handler func()
}

// Bus is a synchronous in-process Notifier. It is safe for concurrent use.
type Bus struct {
	mu     sync.RWMutex
	nextID uint64
	topics map[string][]subscriber
}

// NewBus returns a ready to use Bus.
func NewBus() *Bus {
	return &Bus{topics: make(map[string][]subscriber)}
}

// Publish calls every subscriber of topic in registration order and returns
// once all of them did. Handlers run outside of the bus lock, so they can
// subscribe or unsubscribe without deadlock.
func (b *Bus) Publish(topic string) {
	b.mu.RLock()
	subs := make([]subscriber, len(b.topics[topic]))
	copy(subs, b.topics[topic])
	b.mu.RUnlock()

	for _, s := range subs {
		s.handler()
	}
}

// Subscribe registers handler on topic. The returned function removes it
// and can be called more than once.
func (b *Bus) Subscribe(topic string, handler func()) func() {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.topics[topic] = append(b.topics[topic], subscriber{id: id, handler: handler})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.remove(topic, id)
		})
	}
}

// Subscribers returns the number of handlers registered on topic.
func (b *Bus) Subscribers(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.topics[topic])
}

func (b *Bus) remove(topic string, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.topics[topic]
	for i, s := range subs {
		if s.id == id {
			b.topics[topic] = append(subs[:i:i], subs[i+1:]...)
			break
		}
	}
	if len(b.topics[topic]) == 0 {
		delete(b.topics, topic)
	}
}
