package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dgallion1/papertrail/internal/api"
	"github.com/dgallion1/papertrail/internal/config"
	"github.com/dgallion1/papertrail/internal/dispatch"
	"github.com/dgallion1/papertrail/internal/importer"
	"github.com/dgallion1/papertrail/internal/notes"
	"github.com/dgallion1/papertrail/internal/pipeline"
	"github.com/dgallion1/papertrail/internal/render"
	"github.com/dgallion1/papertrail/internal/session"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Settings and notes root.
	appData := cfg.AppData()
	settings, err := appData.LoadSettings()
	if err != nil {
		log.Warn("settings unavailable, using defaults", "dir", appData.Dir, "error", err)
	}
	root := settings.MarkdownRootPath
	if cfg.NotesRoot != "" {
		root = cfg.NotesRoot
	}
	store := notes.NewStore(root)
	if err := store.EnsureRoot(); err != nil {
		log.Error("cannot create notes root", "root", root, "error", err)
		os.Exit(1)
	}

	// Rendering.
	dark, light := render.LoadStylesheets(os.DirFS(cfg.StylesDir))
	renderer := render.New(log, render.DefaultConfigs(dark, light)...)
	cache := render.NewCache(renderer, cfg.RenderCacheTTL, uint64(cfg.RenderCacheSize))
	go cache.Start()
	defer cache.Stop()

	// The dispatch loop owns the session.
	loop := dispatch.New(cfg.EventBuffer, log)
	loop.Start(ctx)

	watch := &rootWatch{enabled: cfg.WatchRoot, log: log}
	sess := session.New(session.Options{
		Store:    store,
		Renderer: cache,
		Log:      log,
		Template: appData.LoadTemplate,
		RootChanged: func(newRoot string) error {
			go watch.restart(ctx, newRoot, loop)
			return appData.SaveSettings(config.Settings{MarkdownRootPath: newRoot})
		},
		Post:     loop.Post,
		Debounce: cfg.PreviewDebounce,
	})

	hub := api.NewHub(cfg.EventBuffer, log)
	sess.Subscribe(hub.Publish)
	watch.onChange = func(c notes.Change) { applyChange(sess, c) }
	watch.restart(ctx, store.Root(), loop)

	// Import pipeline.
	orch := pipeline.NewOrchestrator(pipeline.Options{
		Workers:   cfg.WorkerCount,
		QueueSize: cfg.MaxQueueSize,
		JobTTL:    cfg.JobTTL,
		Importer:  importer.Options{PDFFallbackPdftotext: cfg.PDFFallbackPdftotext},
	}, store, log)
	orch.OnComplete(func(snap pipeline.JobSnapshot) {
		hub.Send("import_finished", snap)
		if snap.Status == pipeline.StatusCompleted {
			if abs, err := store.Resolve(snap.NotePath); err == nil {
				loop.Post(func() { sess.FileCreated(abs) })
			}
		}
	})
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(sess, loop, orch, cache, hub, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		orch.Stop()
		watch.close()
		loop.Do(shutdownCtx, sess.Close)
		loop.Stop()
	}()

	log.Info("starting papertrail", "port", cfg.Port, "notes_root", store.Root(), "data_dir", appData.Dir)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	<-stopped
}

// applyChange forwards a filesystem change to the session. It runs on the
// dispatch loop.
func applyChange(sess *session.Session, c notes.Change) {
	switch c.Kind {
	case notes.Created:
		sess.FileCreated(c.Path)
	case notes.Removed:
		sess.FileRemoved(c.Path)
	case notes.Modified:
		sess.FileModified(c.Path)
	}
}

// rootWatch keeps one watcher on the current notes root.
type rootWatch struct {
	enabled  bool
	log      *slog.Logger
	onChange func(notes.Change)

	mu      sync.Mutex
	watcher *notes.Watcher
}

// restart replaces the watcher with one on root. Changes are posted to loop.
// It must not run on the loop: closing a watcher waits for its goroutine,
// which may be blocked posting.
func (rw *rootWatch) restart(ctx context.Context, root string, loop *dispatch.Loop) {
	if !rw.enabled {
		return
	}
	rw.mu.Lock()
	defer rw.mu.Unlock()
	if rw.watcher != nil {
		rw.watcher.Close()
		rw.watcher = nil
	}
	w, err := notes.Watch(ctx, root, rw.log, func(c notes.Change) {
		loop.Post(func() { rw.onChange(c) })
	})
	if err != nil {
		rw.log.Warn("notes watcher unavailable", "root", root, "error", err)
		return
	}
	rw.watcher = w
	rw.log.Info("watching notes root", "root", root)
}

func (rw *rootWatch) close() {
	rw.mu.Lock()
	defer rw.mu.Unlock()
	if rw.watcher != nil {
		rw.watcher.Close()
		rw.watcher = nil
	}
}
