package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dgallion1/papertrail/internal/importer"
	"github.com/dgallion1/papertrail/internal/notes"
	"github.com/dgallion1/papertrail/internal/stats"
)

var (
	ErrQueueFull = errors.New("import queue is full")
	ErrStopped   = errors.New("import pipeline stopped")
)

// Options sizes the import pipeline.
type Options struct {
	Workers   int
	QueueSize int
	JobTTL    time.Duration
	// RecentTTL is how long an import's content hash is remembered for
	// duplicate detection.
	RecentTTL time.Duration
	Importer  importer.Options
}

func (o *Options) applyDefaults() {
	if o.Workers <= 0 {
		o.Workers = 2
	}
	if o.QueueSize <= 0 {
		o.QueueSize = 50
	}
	if o.JobTTL <= 0 {
		o.JobTTL = time.Hour
	}
	if o.RecentTTL <= 0 {
		o.RecentTTL = o.JobTTL
	}
}

// Orchestrator runs import jobs on a fixed pool of workers.
type Orchestrator struct {
	jobs   *JobStore
	queue  chan *Job
	dedup  *Dedup
	store  *notes.Store
	log    *slog.Logger
	opts   Options

	onComplete func(JobSnapshot)

	latency    *stats.Window
	completed  atomic.Uint64
	failed     atomic.Uint64
	duplicates atomic.Uint64

	mu      sync.RWMutex
	stopped bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewOrchestrator creates the pipeline. Call Start before submitting.
func NewOrchestrator(opts Options, store *notes.Store, log *slog.Logger) *Orchestrator {
	opts.applyDefaults()
	return &Orchestrator{
		jobs:    NewJobStore(opts.JobTTL),
		queue:   make(chan *Job, opts.QueueSize),
		dedup:   NewDedup(opts.RecentTTL),
		store:   store,
		log:     log,
		opts:    opts,
		latency: stats.NewWindow(opts.JobTTL),
	}
}

// OnComplete registers fn to be called after each job finishes, on the
// worker goroutine. It must be set before Start.
func (o *Orchestrator) OnComplete(fn func(JobSnapshot)) {
	o.onComplete = fn
}

// Start launches worker goroutines.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for range o.opts.Workers {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			w := NewWorker(o.store, o.dedup, o.log, o.opts.Importer)
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					start := time.Now()
					w.Process(workerCtx, job)
					o.latency.Since(start)
					snap := job.Snapshot()
					o.count(snap.Status)
					if o.onComplete != nil {
						o.onComplete(snap)
					}
				}
			}
		}()
	}

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		o.dedup.Start()
	}()

	// Start job store cleanup.
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				o.jobs.Cleanup()
			}
		}
	}()
}

// Stop shuts down the pipeline and waits for running jobs.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	if o.stopped {
		o.mu.Unlock()
		return
	}
	o.stopped = true
	close(o.queue)
	o.mu.Unlock()

	if o.cancel != nil {
		o.cancel()
		o.dedup.Stop()
	}
	o.wg.Wait()
}

// Submit queues a new job for processing.
func (o *Orchestrator) Submit(job *Job) error {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.stopped {
		return ErrStopped
	}
	o.jobs.Put(job)
	select {
	case o.queue <- job:
		return nil
	default:
		job.AddError("queue_full")
		job.SetStatus(StatusFailed, "queued")
		job.releaseData()
		return fmt.Errorf("%w (%d)", ErrQueueFull, o.opts.QueueSize)
	}
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

// Stats summarizes finished imports.
type Stats struct {
	QueueDepth int            `json:"queue_depth"`
	Tracked    int            `json:"tracked_jobs"`
	Completed  uint64         `json:"completed"`
	Failed     uint64         `json:"failed"`
	Duplicates uint64         `json:"duplicates"`
	Durations  stats.Snapshot `json:"durations"`
}

// Stats returns counters since start and recent import durations.
func (o *Orchestrator) Stats() Stats {
	return Stats{
		QueueDepth: o.QueueDepth(),
		Tracked:    o.jobs.Len(),
		Completed:  o.completed.Load(),
		Failed:     o.failed.Load(),
		Duplicates: o.duplicates.Load(),
		Durations:  o.latency.Snapshot(),
	}
}

func (o *Orchestrator) count(status JobStatus) {
	switch status {
	case StatusCompleted:
		o.completed.Add(1)
	case StatusFailed:
		o.failed.Add(1)
	case StatusDupSkipped:
		o.duplicates.Add(1)
	}
}
