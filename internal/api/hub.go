package api

import (
	"encoding/json"
	"log/slog"
	"strconv"
	"sync"

	"github.com/dgallion1/papertrail/internal/session"
)

// record is one event as sent on the stream.
type record struct {
	ID   uint64
	Kind string
	Data []byte
}

// Hub fans session events out to stream clients and keeps the most recent
// ones so a reconnecting client can catch up from Last-Event-ID.
type Hub struct {
	mu      sync.Mutex
	clients map[chan record]struct{}
	buf     []record
	size    int
	next    uint64
	log     *slog.Logger
}

// NewHub creates a hub remembering size events.
func NewHub(size int, log *slog.Logger) *Hub {
	if size <= 0 {
		size = 256
	}
	return &Hub{
		clients: make(map[chan record]struct{}),
		size:    size,
		log:     log,
	}
}

// Publish sends a session event. It never blocks: a client too slow to keep
// up misses events and recovers them on reconnect.
func (h *Hub) Publish(e session.Event) {
	h.Send(string(e.Kind), e)
}

// Send sends v, JSON encoded, as an event of the given kind.
func (h *Hub) Send(kind string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		h.log.Error("encode event failed", "kind", kind, "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.next++
	rec := record{ID: h.next, Kind: kind, Data: data}
	if len(h.buf) == h.size {
		copy(h.buf, h.buf[1:])
		h.buf = h.buf[:h.size-1]
	}
	h.buf = append(h.buf, rec)

	for ch := range h.clients {
		select {
		case ch <- rec:
		default:
			h.log.Warn("event stream client lagging, dropped event", "id", rec.ID)
		}
	}
}

// subscribe registers a client and returns the buffered events after
// lastID. Registration and replay happen under one lock so nothing is
// missed or sent twice.
func (h *Hub) subscribe(lastID string) (chan record, []record, func()) {
	ch := make(chan record, 64)

	h.mu.Lock()
	h.clients[ch] = struct{}{}
	var missed []record
	if id, err := strconv.ParseUint(lastID, 10, 64); err == nil {
		for _, rec := range h.buf {
			if rec.ID > id {
				missed = append(missed, rec)
			}
		}
	}
	h.mu.Unlock()

	return ch, missed, func() {
		h.mu.Lock()
		delete(h.clients, ch)
		h.mu.Unlock()
	}
}

// Clients returns the number of connected stream clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}
