package handlers

import (
	"sync"

	"luckydraw/internal/services"
)

// subscriberBuffer is how many events a slow SSE client may lag behind
// before further events are dropped for it.
const subscriberBuffer = 64

// Hub fans engine events out to connected event-stream clients.
type Hub struct {
	mu   sync.Mutex
	subs map[chan services.Event]struct{}
}

// NewHub creates a Hub with no subscribers.
func NewHub() *Hub {
	return &Hub{subs: make(map[chan services.Event]struct{})}
}

// Publish delivers ev to every subscriber without blocking. It is the
// engine listener, so it must return quickly.
func (h *Hub) Publish(ev services.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Subscribe registers a new client. The returned func unsubscribes it.
func (h *Hub) Subscribe() (<-chan services.Event, func()) {
	ch := make(chan services.Event, subscriberBuffer)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	return ch, func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if _, ok := h.subs[ch]; ok {
			delete(h.subs, ch)
			close(ch)
		}
	}
}
