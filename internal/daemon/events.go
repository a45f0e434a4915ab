package daemon

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/felixgeelhaar/codeclip/internal/progress"
	"github.com/felixgeelhaar/codeclip/internal/storage"
)

// Event is one server-sent event
type Event struct {
	Type string `json:"type"` // completion, change
	Data any    `json:"data"`
}

// Hub fans events out to SSE subscribers. It implements progress.Notifier
// so completions recorded through the daemon reach open streams.
type Hub struct {
	mu   sync.Mutex
	subs map[chan Event]struct{}
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{subs: make(map[chan Event]struct{})}
}

// Subscribe registers a subscriber. The returned cancel func must be called
// to release it.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 16)

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

// Publish delivers ev to every subscriber, dropping it for subscribers whose
// buffer is full.
func (h *Hub) Publish(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- ev:
		default:
			slog.Debug("dropping event for slow subscriber", "type", ev.Type)
		}
	}
}

// Subscribers returns the number of open subscriptions
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

func (h *Hub) Name() string { return "sse" }

// Notify publishes a completion event
func (h *Hub) Notify(_ context.Context, ev progress.Event) error {
	h.Publish(Event{Type: "completion", Data: ev})
	return nil
}

// forwardChanges publishes a change event for every slot key reported by w
// until ctx is done.
func (h *Hub) forwardChanges(ctx context.Context, w storage.Watcher) error {
	changes, err := w.Watch(ctx)
	if err != nil {
		return err
	}
	go func() {
		for key := range changes {
			h.Publish(Event{Type: "change", Data: map[string]string{"key": key}})
		}
	}()
	return nil
}

const keepAliveInterval = 30 * time.Second

// handleEvents streams hub events to the client as SSE until it disconnects
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.jsonError(w, http.StatusInternalServerError, "streaming not supported", nil)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	// streams outlive the server's write timeout
	if err := http.NewResponseController(w).SetWriteDeadline(time.Time{}); err != nil {
		slog.Debug("could not clear write deadline", "error", err)
	}

	events, cancel := s.hub.Subscribe()
	defer cancel()

	fmt.Fprintf(w, "event: ready\ndata: {}\n\n")
	flusher.Flush()

	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			fmt.Fprint(w, ": keep-alive\n\n")
			flusher.Flush()
		case ev, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(ev.Data)
			if err != nil {
				slog.Warn("failed to encode event", "type", ev.Type, "error", err)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, data)
			flusher.Flush()
		}
	}
}
