package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"wecamp/internal/events"
)

// Subscriber is the part of events.Hub the stream handler needs.
type Subscriber interface {
	Subscribe(buffer int) (<-chan events.Event, func())
}

// Stream serves GET /api/events as Server-Sent Events. Every category
// change is sent as a "categoriesUpdated" event carrying the typed
// payload; idle connections get a comment line every heartbeat.
type Stream struct {
	hub       Subscriber
	heartbeat time.Duration
}

// NewStream creates the SSE handler. A zero heartbeat defaults to 25s.
func NewStream(hub Subscriber, heartbeat time.Duration) *Stream {
	if heartbeat <= 0 {
		heartbeat = 25 * time.Second
	}
	return &Stream{hub: hub, heartbeat: heartbeat}
}

func (s *Stream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	// The server's WriteTimeout would cut long-lived streams.
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	sub, cancel := s.hub.Subscribe(16)
	defer cancel()

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	ticker := time.NewTicker(s.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case e, ok := <-sub:
			if !ok {
				return
			}
			data, err := json.Marshal(e)
			if err != nil {
				slog.Error("encode event failed", "error", err)
				continue
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", events.Name, data); err != nil {
				return
			}
			flusher.Flush()
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
