package pipeline

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/dgallion1/papertrail/internal/notes"
)

func newTestOrchestrator(t *testing.T, opts Options) (*Orchestrator, *notes.Store) {
	t.Helper()
	store := notes.NewStore(filepath.Join(t.TempDir(), "notes"))
	if err := store.EnsureRoot(); err != nil {
		t.Fatal(err)
	}
	return NewOrchestrator(opts, store, testLogger()), store
}

func TestOrchestrator_RunsJobsAndReportsCompletion(t *testing.T) {
	o, store := newTestOrchestrator(t, Options{Workers: 2, QueueSize: 4})
	done := make(chan JobSnapshot, 4)
	o.OnComplete(func(s JobSnapshot) { done <- s })
	o.Start(context.Background())
	defer o.Stop()

	job := NewJob("hello.txt", "", "", []byte("hello there"))
	if err := o.Submit(job); err != nil {
		t.Fatal(err)
	}

	select {
	case snap := <-done:
		if snap.ID != job.ID {
			t.Errorf("expected job %s, got %s", job.ID, snap.ID)
		}
		if snap.Status != StatusCompleted {
			t.Fatalf("expected completed, got %q (errors %v)", snap.Status, snap.Errors)
		}
		if !store.Exists(snap.NotePath) {
			t.Errorf("expected note %q on disk", snap.NotePath)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for job")
	}

	if st := o.Stats(); st.Completed != 1 || st.Durations.Count != 1 {
		t.Errorf("expected one completed import in stats, got %+v", st)
	}
	if o.GetJob(job.ID) != job {
		t.Error("expected job tracked by ID")
	}
}

func TestOrchestrator_QueueFull(t *testing.T) {
	// Not started, so nothing drains the queue.
	o, _ := newTestOrchestrator(t, Options{Workers: 1, QueueSize: 1})
	if err := o.Submit(NewJob("a.txt", "", "", []byte("a"))); err != nil {
		t.Fatal(err)
	}
	if o.QueueDepth() != 1 {
		t.Errorf("expected queue depth 1, got %d", o.QueueDepth())
	}

	job := NewJob("b.txt", "", "", []byte("b"))
	err := o.Submit(job)
	if !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
	snap := job.Snapshot()
	if snap.Status != StatusFailed {
		t.Errorf("expected failed, got %q", snap.Status)
	}
	if o.GetJob(job.ID) == nil {
		t.Error("expected rejected job still reported")
	}
}

func TestOrchestrator_SubmitAfterStop(t *testing.T) {
	o, _ := newTestOrchestrator(t, Options{})
	o.Start(context.Background())
	o.Stop()
	o.Stop()
	if err := o.Submit(NewJob("a.txt", "", "", []byte("a"))); !errors.Is(err, ErrStopped) {
		t.Errorf("expected ErrStopped, got %v", err)
	}
}

func TestOptions_Defaults(t *testing.T) {
	opts := Options{Workers: -1, JobTTL: 0}
	opts.applyDefaults()
	if opts.Workers != 2 || opts.QueueSize != 50 {
		t.Errorf("expected default pool 2/50, got %d/%d", opts.Workers, opts.QueueSize)
	}
	if opts.JobTTL != time.Hour || opts.RecentTTL != time.Hour {
		t.Errorf("expected one hour TTLs, got %v/%v", opts.JobTTL, opts.RecentTTL)
	}
}
