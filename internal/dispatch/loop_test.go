package dispatch

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"
)

func testLoop(t *testing.T) *Loop {
	t.Helper()
	l := New(8, slog.New(slog.NewTextHandler(io.Discard, nil)))
	l.Start(context.Background())
	t.Cleanup(l.Stop)
	return l
}

func TestLoop_DoRunsInOrder(t *testing.T) {
	l := testLoop(t)
	var order []int
	for i := range 5 {
		l.Post(func() { order = append(order, i) })
	}
	var got []int
	if err := l.Do(context.Background(), func() { got = append(got, order...) }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("expected 5 entries, got %d", len(got))
	}
	for i, v := range got {
		if v != i {
			t.Errorf("position %d: expected %d, got %d", i, i, v)
		}
	}
}

func TestLoop_RecoversPanics(t *testing.T) {
	l := testLoop(t)
	l.Post(func() { panic("boom") })
	ran := false
	if err := l.Do(context.Background(), func() { ran = true }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ran {
		t.Error("expected loop to keep running after a panic")
	}
}

func TestLoop_StoppedRejectsWork(t *testing.T) {
	l := New(1, slog.New(slog.NewTextHandler(io.Discard, nil)))
	l.Start(context.Background())
	l.Stop()

	if l.Post(func() {}) {
		t.Error("expected Post on stopped loop to return false")
	}
	if err := l.Do(context.Background(), func() {}); !errors.Is(err, ErrStopped) {
		t.Errorf("expected ErrStopped, got %v", err)
	}
}

func TestLoop_ContextCancelStops(t *testing.T) {
	l := New(1, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx, cancel := context.WithCancel(context.Background())
	l.Start(ctx)
	cancel()

	deadline := time.After(time.Second)
	for l.Post(func() {}) {
		select {
		case <-deadline:
			t.Fatal("expected loop to stop after context cancel")
		default:
			time.Sleep(time.Millisecond)
		}
	}
	l.Stop()
}

func TestLoop_DoHonorsCallerContext(t *testing.T) {
	l := testLoop(t)
	block := make(chan struct{})
	l.Post(func() { <-block })
	defer close(block)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := l.Do(ctx, func() {}); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}
