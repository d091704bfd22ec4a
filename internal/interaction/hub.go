package interaction

import (
	"slices"
	"sync"
)

// Hub is an in-process EventSource. Emit calls every registered handler
// synchronously, in registration order.
type Hub struct {
	mu       sync.Mutex
	next     int
	handlers []registration
}

type registration struct {
	id int
	h  Handler
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{}
}

// Listen registers h.
func (b *Hub) Listen(h Handler) (remove func()) {
	b.mu.Lock()
	id := b.next
	b.next++
	b.handlers = append(b.handlers, registration{id: id, h: h})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			b.handlers = slices.DeleteFunc(b.handlers, func(r registration) bool { return r.id == id })
		})
	}
}

// Emit delivers ev to the handlers registered at the time of the call.
func (b *Hub) Emit(ev Event) {
	b.mu.Lock()
	handlers := slices.Clone(b.handlers)
	b.mu.Unlock()

	for _, r := range handlers {
		r.h(ev)
	}
}

// Len returns the number of registered handlers.
func (b *Hub) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.handlers)
}
