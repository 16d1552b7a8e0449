package pipeline

import (
	"sort"
	"sync"
	"testing"
	"time"
)

func TestContentHashHex_Consistency(t *testing.T) {
	data := []byte("hello world")
	h1 := ContentHashHex(data)
	h2 := ContentHashHex(data)
	if h1 != h2 {
		t.Errorf("expected identical hashes, got %q and %q", h1, h2)
	}
	// SHA-256 of "hello world" is well-known.
	want := "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
	if h1 != want {
		t.Errorf("expected hash %q, got %q", want, h1)
	}
}

func TestContentHashHex_EmptyInput(t *testing.T) {
	h := ContentHashHex([]byte{})
	want := "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if h != want {
		t.Errorf("expected hash %q, got %q", want, h)
	}
}

func TestNewJob(t *testing.T) {
	job := NewJob("report.pdf", "Quarterly", "imports", []byte("abc"))
	if job.ID == "" {
		t.Fatal("expected job ID")
	}
	if job.Status != StatusQueued {
		t.Errorf("expected status %q, got %q", StatusQueued, job.Status)
	}
	if job.BytesIn != 3 {
		t.Errorf("expected 3 bytes in, got %d", job.BytesIn)
	}
	if string(job.FileData()) != "abc" {
		t.Errorf("expected file data kept, got %q", job.FileData())
	}
	job.releaseData()
	if job.FileData() != nil {
		t.Error("expected file data released")
	}
}

func TestJob_StateTransitions(t *testing.T) {
	job := NewJob("a.txt", "", "", nil)
	transitions := []struct {
		status JobStatus
		phase  string
	}{
		{StatusParsing, "parsing"},
		{StatusConverting, "converting"},
		{StatusWriting, "writing"},
		{StatusCompleted, "done"},
	}
	for _, tr := range transitions {
		before := job.UpdatedAt
		time.Sleep(time.Millisecond)
		job.SetStatus(tr.status, tr.phase)

		snap := job.Snapshot()
		if snap.Status != tr.status {
			t.Errorf("expected status %q, got %q", tr.status, snap.Status)
		}
		if snap.Phase != tr.phase {
			t.Errorf("expected phase %q, got %q", tr.phase, snap.Phase)
		}
		if !snap.UpdatedAt.After(before) {
			t.Errorf("expected UpdatedAt to advance after SetStatus(%q)", tr.status)
		}
	}
}

func TestJobStatus_Done(t *testing.T) {
	tests := map[JobStatus]bool{
		StatusQueued:     false,
		StatusParsing:    false,
		StatusConverting: false,
		StatusWriting:    false,
		StatusCompleted:  true,
		StatusFailed:     true,
		StatusDupSkipped: true,
	}
	for status, want := range tests {
		if got := status.Done(); got != want {
			t.Errorf("%s: expected %v, got %v", status, want, got)
		}
	}
}

func TestJob_SnapshotErrorsNeverNil(t *testing.T) {
	job := NewJob("a.txt", "", "", nil)
	if snap := job.Snapshot(); snap.Errors == nil {
		t.Error("expected non-nil errors slice")
	}
	job.AddError("boom")
	snap := job.Snapshot()
	job.AddError("later")
	if len(snap.Errors) != 1 || snap.Errors[0] != "boom" {
		t.Errorf("expected snapshot to hold [boom], got %v", snap.Errors)
	}
}

func TestJob_SetResult(t *testing.T) {
	job := NewJob("a.txt", "", "", nil)
	job.SetResult("notes/a.md", "hash", 42)
	snap := job.Snapshot()
	if snap.NotePath != "notes/a.md" || snap.ContentHash != "hash" || snap.BytesOut != 42 {
		t.Errorf("unexpected result fields: %+v", snap)
	}
}

func TestJob_ConcurrentUpdates(t *testing.T) {
	job := NewJob("a.txt", "", "", nil)
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			job.AddError("e")
		}()
		go func() {
			defer wg.Done()
			_ = job.Snapshot()
		}()
	}
	wg.Wait()
	if got := len(job.Snapshot().Errors); got != 50 {
		t.Errorf("expected 50 errors, got %d", got)
	}
}

func TestJobStore_PutGet(t *testing.T) {
	s := NewJobStore(time.Hour)
	job := NewJob("a.txt", "", "", nil)
	s.Put(job)
	if s.Get(job.ID) != job {
		t.Error("expected stored job")
	}
	if s.Get("missing") != nil {
		t.Error("expected nil for unknown ID")
	}
}

func TestJobStore_CleanupKeepsRunningJobs(t *testing.T) {
	s := NewJobStore(time.Millisecond)
	done := NewJob("done.txt", "", "", nil)
	done.SetStatus(StatusCompleted, "done")
	running := NewJob("running.txt", "", "", nil)
	running.SetStatus(StatusParsing, "parsing")
	s.Put(done)
	s.Put(running)

	time.Sleep(5 * time.Millisecond)
	s.Cleanup()

	if s.Get(done.ID) != nil {
		t.Error("expected finished job evicted")
	}
	if s.Get(running.ID) == nil {
		t.Error("expected running job kept")
	}
	if s.Len() != 1 {
		t.Errorf("expected 1 job left, got %d", s.Len())
	}
}

func TestGenerateULID_SortedAndUnique(t *testing.T) {
	ids := make([]string, 1000)
	seen := make(map[string]bool, len(ids))
	for i := range ids {
		ids[i] = generateULID()
		if len(ids[i]) != 26 {
			t.Fatalf("expected 26 characters, got %d (%q)", len(ids[i]), ids[i])
		}
		if seen[ids[i]] {
			t.Fatalf("duplicate ID %q", ids[i])
		}
		seen[ids[i]] = true
	}
	if !sort.StringsAreSorted(ids) {
		t.Error("expected IDs in creation order")
	}
}

func TestEncodeULID(t *testing.T) {
	var zero [16]byte
	if got := encodeULID(zero); got != "00000000000000000000000000" {
		t.Errorf("expected all zeros, got %q", got)
	}
	var max [16]byte
	for i := range max {
		max[i] = 0xff
	}
	if got := encodeULID(max); got != "7ZZZZZZZZZZZZZZZZZZZZZZZZZ" {
		t.Errorf("expected max ULID, got %q", got)
	}
}
