// Package events provides the in-process publish/subscribe bus that connects
// dashboard components without ambient globals.
package events

import (
	"sync"
)

// Topic identifies a class of dashboard events.
type Topic string

const (
	// TopicWindowResize fires when the viewport size changes.
	TopicWindowResize Topic = "window.resize"
	// TopicDragResize is the "drag resize finished" signal emitted by the layout manager
	// on every drag tick and once more on drag end.
	TopicDragResize Topic = "layout.drag-resize"
	// TopicContainerMutated fires when the chart container's attributes or children change.
	TopicContainerMutated Topic = "container.mutated"
	// TopicLanguageChanged is broadcast after every locale switch.
	TopicLanguageChanged Topic = "language.changed"
	// TopicSelectionChanged is raised by the selection state after pair or timeframe changes.
	TopicSelectionChanged Topic = "selection.changed"
)

// Handler receives the payload published on a topic.
type Handler func(payload any)

type subscription struct {
	id uint64
	fn Handler
}

// Bus dispatches published payloads to subscribers synchronously, in
// subscription order, on the publisher's goroutine.
type Bus struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[Topic][]subscription
}

// NewBus creates an empty Bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[Topic][]subscription)}
}

// Subscribe registers fn for topic and returns a function that removes it.
// The returned function may be called more than once.
func (b *Bus) Subscribe(topic Topic, fn Handler) func() {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs[topic] = append(b.subs[topic], subscription{id: id, fn: fn})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(topic, id) })
	}
}

func (b *Bus) remove(topic Topic, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subs[topic]
	for i, s := range subs {
		if s.id == id {
			b.subs[topic] = append(subs[:i:i], subs[i+1:]...)
			break
		}
	}
	if len(b.subs[topic]) == 0 {
		delete(b.subs, topic)
	}
}

// Publish delivers payload to every current subscriber of topic.
// Handlers registered or removed during dispatch take effect on the next Publish.
func (b *Bus) Publish(topic Topic, payload any) {
	b.mu.RLock()
	subs := make([]subscription, len(b.subs[topic]))
	copy(subs, b.subs[topic])
	b.mu.RUnlock()

	for _, s := range subs {
		s.fn(payload)
	}
}

// Subscribers returns the number of handlers registered for topic.
func (b *Bus) Subscribers(topic Topic) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[topic])
}
