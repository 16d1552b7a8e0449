package api

import (
	"net/http"

	"github.com/dgallion1/papertrail/internal/notes"
)

func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	var (
		nodes    []*notes.Node
		root     string
		selected string
		err      error
	)
	if !s.do(w, r, func() {
		nodes, err = s.sess.Tree()
		root = s.sess.Root()
		selected = s.sess.Selected()
	}) {
		return
	}
	if err != nil {
		s.log.Error("list notes failed", "error", err)
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if nodes == nil {
		nodes = []*notes.Node{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"root":     root,
		"nodes":    nodes,
		"selected": selected,
	})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		jsonError(w, "path is required", http.StatusBadRequest)
		return
	}
	var st documentState
	var err error
	if s.do(w, r, func() {
		err = s.sess.Delete(path)
		st = s.state()
	}) {
		s.respond(w, st, err)
	}
}

func (s *Server) handleNewFolder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Parent string `json:"parent"`
	}
	if !decodeJSON(w, r, smallBody, &req) {
		return
	}
	var dir string
	var err error
	if !s.do(w, r, func() { dir, err = s.sess.NewFolder(req.Parent) }) {
		return
	}
	if err != nil {
		jsonError(w, err.Error(), errorStatus(err))
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"path": dir})
}

func (s *Server) handleSetRoot(w http.ResponseWriter, r *http.Request) {
	var req pathRequest
	if !decodeJSON(w, r, smallBody, &req) {
		return
	}
	var st documentState
	var err error
	if s.do(w, r, func() {
		err = s.sess.SetRoot(req.Path)
		st = s.state()
	}) {
		s.respond(w, st, err)
	}
}

func (s *Server) handleRefreshTree(w http.ResponseWriter, r *http.Request) {
	var st documentState
	if s.do(w, r, func() {
		s.sess.RefreshTree()
		st = s.state()
	}) {
		writeJSON(w, http.StatusOK, st)
	}
}
