package session

import (
	"log/slog"
	"sync"

	"github.com/dgallion1/papertrail/internal/outline"
	"github.com/dgallion1/papertrail/internal/render"
	"github.com/dgallion1/papertrail/internal/scrollsync"
)

// Kind names a session change.
type Kind string

const (
	TextChanged     Kind = "text_changed"
	EditorText      Kind = "editor_text"
	FileOpened      Kind = "file_opened"
	FileSaved       Kind = "file_saved"
	DocumentCleared Kind = "document_cleared"
	ModeChanged     Kind = "mode_changed"
	ThemeChanged    Kind = "theme_changed"
	OutlineChanged  Kind = "outline_changed"
	PreviewRendered Kind = "preview_rendered"
	StatusChanged   Kind = "status_changed"
	TitleChanged    Kind = "title_changed"
	ScrollApplied   Kind = "scroll_applied"
	TreeChanged     Kind = "tree_changed"
)

// Event describes one change. Only the fields relevant to Kind are set.
type Event struct {
	Kind     Kind              `json:"kind"`
	Path     string            `json:"path,omitempty"`
	Text     *string           `json:"text,omitempty"`
	Mode     *Mode             `json:"mode,omitempty"`
	Theme    render.Theme      `json:"theme,omitempty"`
	Status   string            `json:"status,omitempty"`
	Title    string            `json:"title,omitempty"`
	Headings []outline.Heading `json:"headings,omitempty"`
	Moves    []scrollsync.Move `json:"moves,omitempty"`
	Version  uint64            `json:"version,omitempty"`
}

// Handler receives events.
type Handler func(Event)

// Bus delivers events synchronously to subscribers in subscription order.
// An event published from inside a handler is queued and delivered after
// the current event has reached every subscriber. A panicking handler is
// logged and skipped; delivery continues with the next one.
type Bus struct {
	// Log receives recovered handler panics. May be nil.
	Log *slog.Logger

	mu       sync.Mutex
	handlers []*Handler
	queue    []Event
	draining bool
}

// Subscribe adds h and returns a func that removes it.
func (b *Bus) Subscribe(h Handler) func() {
	hp := &h
	b.mu.Lock()
	b.handlers = append(b.handlers, hp)
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, cur := range b.handlers {
			if cur == hp {
				b.handlers = append(b.handlers[:i:i], b.handlers[i+1:]...)
				return
			}
		}
	}
}

// Publish delivers e, or queues it when called from a handler.
func (b *Bus) Publish(e Event) {
	b.mu.Lock()
	b.queue = append(b.queue, e)
	if b.draining {
		b.mu.Unlock()
		return
	}
	b.draining = true
	b.mu.Unlock()

	for {
		b.mu.Lock()
		if len(b.queue) == 0 {
			b.draining = false
			b.mu.Unlock()
			return
		}
		next := b.queue[0]
		b.queue = b.queue[1:]
		handlers := append([]*Handler(nil), b.handlers...)
		b.mu.Unlock()

		for _, h := range handlers {
			b.deliver(*h, next)
		}
	}
}

func (b *Bus) deliver(h Handler, e Event) {
	defer func() {
		if r := recover(); r != nil && b.Log != nil {
			b.Log.Error("event handler panicked", "kind", e.Kind, "panic", r)
		}
	}()
	h(e)
}
