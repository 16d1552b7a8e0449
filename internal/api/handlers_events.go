package api

import (
	"fmt"
	"net/http"
	"time"
)

// keepAlive is the interval between comment lines on an idle stream.
const keepAlive = 15 * time.Second

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	rc := http.NewResponseController(w)
	// The stream outlives the server's write timeout.
	rc.SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	ch, missed, unsubscribe := s.hub.subscribe(r.Header.Get("Last-Event-ID"))
	defer unsubscribe()

	fmt.Fprint(w, ": connected\n\n")
	for _, rec := range missed {
		writeRecord(w, rec)
	}
	if err := rc.Flush(); err != nil {
		s.log.Error("event stream unsupported", "error", err)
		return
	}
	if len(missed) > 0 {
		s.log.Info("replayed events", "count", len(missed))
	}

	ticker := time.NewTicker(keepAlive)
	defer ticker.Stop()
	for {
		select {
		case rec := <-ch:
			if err := writeRecord(w, rec); err != nil {
				return
			}
			rc.Flush()
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": keepalive\n\n"); err != nil {
				return
			}
			rc.Flush()
		case <-r.Context().Done():
			return
		}
	}
}

func writeRecord(w http.ResponseWriter, rec record) error {
	_, err := fmt.Fprintf(w, "id: %d\nevent: %s\ndata: %s\n\n", rec.ID, rec.Kind, rec.Data)
	return err
}
