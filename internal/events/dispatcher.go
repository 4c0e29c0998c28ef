package events

import (
	"context"
	"sync"
)

// Handler handles a published change event.
type Handler func(context.Context, ChangeEvent)

// Publisher publishes change events.
type Publisher interface {
	Publish(ctx context.Context, event ChangeEvent) error
}

// Dispatcher allows change publication and filtered subscription.
type Dispatcher interface {
	Publisher
	// Subscribe registers handler for events matching filter and returns a function
	// that removes the registration.
	Subscribe(filter Filter, handler Handler) (unsubscribe func())
}

type subscription struct {
	filter  Filter
	handler Handler
}

// inMemoryDispatcher is a simple synchronous dispatcher.
type inMemoryDispatcher struct {
	mu        sync.RWMutex
	nextID    uint64
	listeners map[uint64]subscription
}

// NewInMemoryDispatcher creates a dispatcher instance.
func NewInMemoryDispatcher() Dispatcher {
	return &inMemoryDispatcher{
		listeners: make(map[uint64]subscription),
	}
}

// Publish synchronously invokes matching handlers. Handlers must not block.
func (d *inMemoryDispatcher) Publish(ctx context.Context, event ChangeEvent) error {
	d.mu.RLock()
	handlers := make([]Handler, 0, len(d.listeners))
	for _, sub := range d.listeners {
		if sub.filter.Matches(event) {
			handlers = append(handlers, sub.handler)
		}
	}
	d.mu.RUnlock()

	for _, handler := range handlers {
		handler(ctx, event)
	}
	return nil
}

// Subscribe registers a handler for events matching filter.
func (d *inMemoryDispatcher) Subscribe(filter Filter, handler Handler) func() {
	d.mu.Lock()
	id := d.nextID
	d.nextID++
	d.listeners[id] = subscription{filter: filter, handler: handler}
	d.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			d.mu.Lock()
			delete(d.listeners, id)
			d.mu.Unlock()
		})
	}
}
