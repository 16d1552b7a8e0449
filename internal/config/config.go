package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// AppName names the per-user data directory.
const AppName = "PaperTrail"

type Config struct {
	Port string

	// Per-user data: settings.json and the note template live here.
	DataDir string
	// NotesRoot overrides the root folder stored in settings.json.
	NotesRoot string

	// Theme stylesheets
	StylesDir string

	// Auth
	APIKey string

	// Preview
	PreviewDebounce time.Duration
	RenderCacheTTL  time.Duration
	RenderCacheSize int

	// Event stream replay buffer
	EventBuffer int

	// Import worker pool
	WorkerCount  int
	MaxQueueSize int

	// Upload limits
	MaxUploadBytes int64

	// Import job state
	JobTTL time.Duration

	// PDF
	PDFFallbackPdftotext bool

	// Watch the notes root for external changes.
	WatchRoot bool
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		DataDir:   envOr("PAPERTRAIL_DATA_DIR", defaultDataDir()),
		NotesRoot: os.Getenv("NOTES_ROOT"),

		StylesDir: envOr("STYLES_DIR", "styles"),

		APIKey: os.Getenv("PAPERTRAIL_API_KEY"),

		PreviewDebounce: envDuration("PREVIEW_DEBOUNCE", 250*time.Millisecond),
		RenderCacheTTL:  envDuration("RENDER_CACHE_TTL", 10*time.Minute),
		RenderCacheSize: envInt("RENDER_CACHE_SIZE", 64),

		EventBuffer: envInt("EVENT_BUFFER", 256),

		WorkerCount:  envInt("WORKER_COUNT", 2),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 50),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),

		WatchRoot: envBool("WATCH_ROOT", true),
	}

	if cfg.PreviewDebounce <= 0 {
		cfg.PreviewDebounce = 250 * time.Millisecond
	}
	if cfg.RenderCacheTTL <= 0 {
		cfg.RenderCacheTTL = 10 * time.Minute
	}
	if cfg.RenderCacheSize <= 0 {
		cfg.RenderCacheSize = 64
	}
	if cfg.EventBuffer <= 0 {
		cfg.EventBuffer = 256
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 2
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 50
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}

	return cfg
}

func (c Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("PAPERTRAIL_DATA_DIR is required: no user config directory available")
	}
	port, err := strconv.Atoi(c.Port)
	if err != nil || port <= 0 || port > 65535 {
		return fmt.Errorf("PORT must be a TCP port number, got %q", c.Port)
	}
	return nil
}

// AppData returns the settings location described by c.
func (c Config) AppData() AppData {
	return AppData{Dir: c.DataDir}
}

func defaultDataDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, AppName)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
