// Package live provides change notification and continuously refreshed
// snapshot feeds over the store.
package live

import (
	"sync"

	"github.com/google/uuid"
)

// Topic names a group of tables whose changes are announced together.
type Topic string

const (
	TopicOrders    Topic = "orders"
	TopicRetailers Topic = "retailers"
)

// Broker fans out change signals to listeners. Signals carry no payload;
// listeners re-read the store.
type Broker struct {
	mu        sync.RWMutex
	listeners map[Topic]map[uuid.UUID]chan struct{}
}

// NewBroker constructs an empty broker.
func NewBroker() *Broker {
	return &Broker{listeners: make(map[Topic]map[uuid.UUID]chan struct{})}
}

// Publish signals every listener of topic. It never blocks: a listener that
// has not consumed its previous signal keeps a single pending one.
func (b *Broker) Publish(topic Topic) {
	if b == nil {
		return
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.listeners[topic] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Listen registers a listener for topics and returns its signal channel and
// a function that unregisters it.
func (b *Broker) Listen(topics ...Topic) (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)
	if b == nil {
		return ch, func() {}
	}
	id := uuid.New()
	b.mu.Lock()
	for _, t := range topics {
		if b.listeners[t] == nil {
			b.listeners[t] = make(map[uuid.UUID]chan struct{})
		}
		b.listeners[t][id] = ch
	}
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			for _, t := range topics {
				delete(b.listeners[t], id)
				if len(b.listeners[t]) == 0 {
					delete(b.listeners, t)
				}
			}
		})
	}
}

// Listeners reports the number of registrations for topic.
func (b *Broker) Listeners(topic Topic) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners[topic])
}
