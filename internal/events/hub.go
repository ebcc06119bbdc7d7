// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package events carries the "categories changed" notification from the
// category service to every interested consumer: the tree cache, the S3
// snapshot publisher, SSE clients and, through Redis, other processes.
package events

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Name is the event name clients listen for.
const Name = "categoriesUpdated"

// Kind says what kind of mutation produced an event.
type Kind string

const (
	KindCreated   Kind = "created"
	KindUpdated   Kind = "updated"
	KindDeleted   Kind = "deleted"
	KindReordered Kind = "reordered"
	KindReloaded  Kind = "reloaded"
)

// Event is a typed change notification. IDs lists the affected categories;
// Origin identifies the process that produced it.
type Event struct {
	Kind   Kind      `json:"kind"`
	IDs    []string  `json:"ids"`
	At     time.Time `json:"at"`
	Origin string    `json:"origin,omitempty"`
}

// New returns an event of the given kind stamped with the current time.
func New(kind Kind, ids ...string) Event {
	return Event{Kind: kind, IDs: ids, At: time.Now().UTC()}
}

// Publisher is implemented by anything that accepts change events.
type Publisher interface {
	Publish(ctx context.Context, e Event)
}

// Hub fans events out to subscribers. Publish never blocks: a subscriber
// whose buffer is full misses that event and the drop is logged.
type Hub struct {
	mu     sync.RWMutex
	subs   map[int]chan Event
	nextID int
	closed bool
	origin string
	logger *slog.Logger
}

// NewHub creates a hub with a fresh origin id.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		subs:   make(map[int]chan Event),
		origin: uuid.NewString(),
		logger: logger,
	}
}

// Origin returns the id stamped on events published from this process.
func (h *Hub) Origin() string {
	return h.origin
}

// Publish delivers e to every current subscriber.
func (h *Hub) Publish(_ context.Context, e Event) {
	if e.Origin == "" {
		e.Origin = h.origin
	}
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return
	}
	for id, ch := range h.subs {
		select {
		case ch <- e:
		default:
			h.logger.Warn("event subscriber is full, dropping event",
				"subscriber", id,
				"kind", e.Kind,
			)
		}
	}
	h.logger.Debug("event published", "kind", e.Kind, "ids", e.IDs, "subscribers", len(h.subs))
}

// Subscribe registers a subscriber with the given buffer size. The returned
// function unsubscribes and closes the channel; calling it twice is safe.
func (h *Hub) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan Event, buffer)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	id := h.nextID
	h.nextID++
	h.subs[id] = ch
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if sub, ok := h.subs[id]; ok {
				delete(h.subs, id)
				close(sub)
			}
		})
	}
}

// Subscribers returns the number of live subscriptions.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Close unsubscribes everyone. Later publishes are ignored.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
	}
}
