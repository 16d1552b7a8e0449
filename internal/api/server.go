package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/dgallion1/papertrail/internal/config"
	"github.com/dgallion1/papertrail/internal/dispatch"
	"github.com/dgallion1/papertrail/internal/notes"
	"github.com/dgallion1/papertrail/internal/pipeline"
	"github.com/dgallion1/papertrail/internal/render"
	"github.com/dgallion1/papertrail/internal/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Loop runs funcs on the goroutine that owns the session.
type Loop interface {
	Do(ctx context.Context, fn func()) error
}

// Server is the HTTP API server for papertrail.
type Server struct {
	router       chi.Router
	sess         *session.Session
	loop         Loop
	orchestrator *pipeline.Orchestrator
	cache        *render.Cache
	hub          *Hub
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server. sess is only touched
// through loop.
func NewServer(sess *session.Session, loop Loop, orch *pipeline.Orchestrator, cache *render.Cache, hub *Hub, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		sess:         sess,
		loop:         loop,
		orchestrator: orch,
		cache:        cache,
		hub:          hub,
		log:          log,
		cfg:          cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Get("/api/document", s.handleGetDocument)
		r.Put("/api/document/text", s.handleSetText)
		r.Post("/api/document/open", s.handleOpen)
		r.Post("/api/document/save", s.handleSave)
		r.Post("/api/document/save-as", s.handleSaveAs)
		r.Post("/api/document/new", s.handleNewNote)
		r.Post("/api/document/mode", s.handleSetMode)
		r.Post("/api/theme/toggle", s.handleToggleTheme)

		r.Get("/api/outline", s.handleOutline)
		r.Post("/api/outline/{index}/jump", s.handleJump)
		r.Get("/preview", s.handlePreview)

		r.Get("/api/tree", s.handleTree)
		r.Delete("/api/tree", s.handleDelete)
		r.Post("/api/tree/folders", s.handleNewFolder)
		r.Post("/api/tree/root", s.handleSetRoot)
		r.Post("/api/tree/refresh", s.handleRefreshTree)

		r.Post("/api/scroll/{surface}", s.handleScroll)
		r.Post("/api/scroll/{surface}/ready", s.handleReady)

		r.Post("/api/import", s.handleImport)
		r.Get("/api/import/{jobID}/status", s.handleImportStatus)

		r.Get("/api/stats", s.handleStats)
		r.Get("/events", s.handleEvents)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":        "ok",
		"queue_depth":   s.orchestrator.QueueDepth(),
		"event_clients": s.hub.Clients(),
	})
}

// do runs fn on the session loop. It writes an error response and returns
// false when the loop is unavailable.
func (s *Server) do(w http.ResponseWriter, r *http.Request, fn func()) bool {
	err := s.loop.Do(r.Context(), fn)
	if err == nil {
		return true
	}
	if errors.Is(err, dispatch.ErrStopped) {
		jsonError(w, "shutting down", http.StatusServiceUnavailable)
	} else {
		jsonError(w, err.Error(), http.StatusRequestTimeout)
	}
	return false
}

// decodeJSON reads a small JSON request body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, limit int64, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

// errorStatus maps session and store errors to HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, notes.ErrNotFound), errors.Is(err, session.ErrNoHeading):
		return http.StatusNotFound
	case errors.Is(err, notes.ErrUnsupportedType):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, notes.ErrOutsideRoot), errors.Is(err, notes.ErrDeleteRoot),
		errors.Is(err, session.ErrPathRequired), errors.Is(err, session.ErrNothingToSave):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}
