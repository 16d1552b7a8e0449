package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/papertrail/internal/scrollsync"
	"github.com/dgallion1/papertrail/internal/session"
)

func (s *Server) handleScroll(w http.ResponseWriter, r *http.Request) {
	s.scrollReport(w, r, (*session.Session).Scroll)
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	s.scrollReport(w, r, (*session.Session).Ready)
}

// scrollReport decodes a surface's geometry, passes it to apply and
// returns the moves the host must perform on the other surfaces.
func (s *Server) scrollReport(w http.ResponseWriter, r *http.Request, apply func(*session.Session, scrollsync.SurfaceID, session.Report) []scrollsync.Move) {
	id, err := scrollsync.ParseSurfaceID(chi.URLParam(r, "surface"))
	if err != nil {
		jsonError(w, err.Error(), http.StatusNotFound)
		return
	}
	var rep session.Report
	if !decodeJSON(w, r, smallBody, &rep) {
		return
	}
	var moves []scrollsync.Move
	var ratio float64
	if s.do(w, r, func() {
		moves = apply(s.sess, id, rep)
		ratio = s.sess.Ratio()
	}) {
		writeJSON(w, http.StatusOK, map[string]any{
			"moves": nonNilMoves(moves),
			"ratio": ratio,
		})
	}
}
