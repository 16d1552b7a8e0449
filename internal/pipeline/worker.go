package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"github.com/dgallion1/papertrail/internal/importer"
	"github.com/dgallion1/papertrail/internal/notes"
)

// maxNameRunes caps the length of generated note names.
const maxNameRunes = 100

// Worker converts one uploaded document into a note.
type Worker struct {
	store *notes.Store
	dedup *Dedup
	log   *slog.Logger
	opts  importer.Options
}

// NewWorker creates a worker writing into store. Workers sharing dedup skip
// content any of them imported recently.
func NewWorker(store *notes.Store, dedup *Dedup, log *slog.Logger, opts importer.Options) *Worker {
	return &Worker{store: store, dedup: dedup, log: log, opts: opts}
}

// Process runs the import for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename)
	defer job.releaseData()

	if err := ctx.Err(); err != nil {
		w.fail(job, "queued", err)
		return
	}

	// Phase 1: parse and convert.
	job.SetStatus(StatusParsing, "parsing")
	res, err := importer.Convert(job.FileData(), job.Filename, job.Title, w.opts)
	if err != nil {
		log.Error("convert failed", "error", err)
		w.fail(job, "parsing", err)
		return
	}

	job.SetStatus(StatusConverting, "converting")
	hash := ContentHashHex([]byte(res.Markdown))

	if err := ctx.Err(); err != nil {
		w.fail(job, "converting", err)
		return
	}

	// Phase 2: write the note unless the same content was imported
	// recently and that note still exists.
	abs, dup, err := w.dedup.claim(hash, w.store.Exists, func() (string, error) {
		job.SetStatus(StatusWriting, "writing")
		return w.store.CreateUnique(job.Folder, NoteName(res.Title), res.Markdown)
	})
	if err != nil {
		log.Error("write failed", "error", err)
		w.fail(job, "writing", err)
		return
	}
	if dup {
		log.Info("duplicate import, skipping", "existing", abs)
		job.SetResult(w.store.Rel(abs), hash, 0)
		job.SetStatus(StatusDupSkipped, "dedup")
		return
	}

	job.SetResult(w.store.Rel(abs), hash, len(res.Markdown))
	job.SetStatus(StatusCompleted, "done")
	log.Info("import complete", "note", abs, "bytes_in", job.BytesIn, "bytes_out", len(res.Markdown))
}

func (w *Worker) fail(job *Job, phase string, err error) {
	job.AddError(fmt.Sprintf("%s: %s", phase, err))
	job.SetStatus(StatusFailed, phase)
}

// NoteName turns a document title into a safe file name without extension.
func NoteName(title string) string {
	var sb strings.Builder
	n := 0
	for _, r := range strings.TrimSpace(title) {
		if n == maxNameRunes {
			break
		}
		switch {
		case unicode.IsSpace(r):
			sb.WriteRune(' ')
		case strings.ContainsRune(`<>:"/\|?*`, r), unicode.IsControl(r):
			sb.WriteRune('_')
		default:
			sb.WriteRune(r)
		}
		n++
	}
	name := strings.Trim(sb.String(), " .")
	if name == "" {
		return "Imported"
	}
	return name
}
