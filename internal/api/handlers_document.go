package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/papertrail/internal/outline"
	"github.com/dgallion1/papertrail/internal/render"
	"github.com/dgallion1/papertrail/internal/scrollsync"
	"github.com/dgallion1/papertrail/internal/session"
)

// smallBody caps JSON bodies that carry no note text.
const smallBody = 64 << 10

// documentState is everything a host needs to redraw its chrome.
type documentState struct {
	Document       session.Document `json:"document"`
	Title          string           `json:"title"`
	Status         string           `json:"status"`
	Theme          render.Theme     `json:"theme"`
	Selected       string           `json:"selected,omitempty"`
	PreviewVersion uint64           `json:"preview_version"`
	RenderPending  bool             `json:"render_pending"`
	Ratio          float64          `json:"ratio"`
	CurrentHeading int              `json:"current_heading"`
}

// state must run on the session loop.
func (s *Server) state() documentState {
	_, version := s.sess.Preview()
	return documentState{
		Document:       s.sess.Document(),
		Title:          s.sess.Title(),
		Status:         s.sess.Status(),
		Theme:          s.sess.Theme(),
		Selected:       s.sess.Selected(),
		PreviewVersion: version,
		RenderPending:  s.sess.RenderPending(),
		Ratio:          s.sess.Ratio(),
		CurrentHeading: s.sess.CurrentHeading(),
	}
}

// respond writes the session state, or err with the resulting status text.
func (s *Server) respond(w http.ResponseWriter, st documentState, err error) {
	if err != nil {
		writeJSON(w, errorStatus(err), map[string]any{
			"error": err.Error(),
			"state": st,
		})
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	var st documentState
	if s.do(w, r, func() { st = s.state() }) {
		writeJSON(w, http.StatusOK, st)
	}
}

func (s *Server) handleSetText(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if !decodeJSON(w, r, s.cfg.MaxUploadBytes, &req) {
		return
	}
	var st documentState
	if s.do(w, r, func() {
		s.sess.SetText(req.Text)
		st = s.state()
	}) {
		writeJSON(w, http.StatusOK, st)
	}
}

type pathRequest struct {
	Path string `json:"path"`
}

func (s *Server) handleOpen(w http.ResponseWriter, r *http.Request) {
	var req pathRequest
	if !decodeJSON(w, r, smallBody, &req) {
		return
	}
	var st documentState
	var err error
	if s.do(w, r, func() {
		err = s.sess.Open(req.Path)
		st = s.state()
	}) {
		s.respond(w, st, err)
	}
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	var st documentState
	var err error
	if s.do(w, r, func() {
		err = s.sess.Save()
		st = s.state()
	}) {
		s.respond(w, st, err)
	}
}

func (s *Server) handleSaveAs(w http.ResponseWriter, r *http.Request) {
	var req pathRequest
	if !decodeJSON(w, r, smallBody, &req) {
		return
	}
	var st documentState
	var err error
	if s.do(w, r, func() {
		err = s.sess.SaveAs(req.Path)
		st = s.state()
	}) {
		s.respond(w, st, err)
	}
}

func (s *Server) handleNewNote(w http.ResponseWriter, r *http.Request) {
	var st documentState
	var err error
	if s.do(w, r, func() {
		err = s.sess.NewNote()
		st = s.state()
	}) {
		s.respond(w, st, err)
	}
}

func (s *Server) handleSetMode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Mode string `json:"mode"`
	}
	if !decodeJSON(w, r, smallBody, &req) {
		return
	}
	mode, err := session.ParseMode(req.Mode)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	var st documentState
	if s.do(w, r, func() {
		s.sess.SetMode(mode)
		st = s.state()
	}) {
		writeJSON(w, http.StatusOK, st)
	}
}

func (s *Server) handleToggleTheme(w http.ResponseWriter, r *http.Request) {
	var st documentState
	if s.do(w, r, func() {
		s.sess.ToggleTheme()
		st = s.state()
	}) {
		writeJSON(w, http.StatusOK, st)
	}
}

func (s *Server) handleOutline(w http.ResponseWriter, r *http.Request) {
	var headings []outline.Heading
	current := -1
	if s.do(w, r, func() {
		headings = s.sess.Headings()
		current = s.sess.CurrentHeading()
	}) {
		writeJSON(w, http.StatusOK, map[string]any{
			"headings": headings,
			"current":  current,
		})
	}
}

func (s *Server) handleJump(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		jsonError(w, "invalid heading index", http.StatusBadRequest)
		return
	}
	var moves []scrollsync.Move
	if s.do(w, r, func() { moves, err = s.sess.JumpToHeading(index) }) {
		if err != nil {
			jsonError(w, err.Error(), errorStatus(err))
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"moves": nonNilMoves(moves)})
	}
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	var p render.Preview
	var version uint64
	if !s.do(w, r, func() { p, version = s.sess.Preview() }) {
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Preview-Version", strconv.FormatUint(version, 10))
	w.Header().Set("X-Preview-Theme", string(p.Theme))
	w.Write([]byte(p.HTML))
}

func nonNilMoves(m []scrollsync.Move) []scrollsync.Move {
	if m == nil {
		return []scrollsync.Move{}
	}
	return m
}
