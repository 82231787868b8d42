package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestInMemoryQueue_BasicOperations(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}

	if err := q.Enqueue(ctx, Job{JobID: "j1", RunID: "r1", Title: "משחק:1"}); err != nil {
		t.Fatalf("expected enqueue to succeed: %v", err)
	}
	if l := q.Len(ctx); l != 1 {
		t.Errorf("expected length 1, got %d", l)
	}

	job := <-q.Dequeue(ctx)
	if job.Title != "משחק:1" || job.EnqueuedAt.IsZero() {
		t.Errorf("unexpected job %+v", job)
	}
	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}
}

func TestInMemoryQueue_Capacity(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := q.Enqueue(ctx, Job{Title: fmt.Sprint(i)}); err != nil {
			t.Fatalf("enqueue %d: %v", i, err)
		}
	}
	if err := q.Enqueue(ctx, Job{Title: "overflow"}); !errors.Is(err, ErrFull) {
		t.Errorf("expected ErrFull, got %v", err)
	}
	if q.Cap() != 2 {
		t.Errorf("expected capacity 2, got %d", q.Cap())
	}
}

func TestInMemoryQueue_EnqueueWait(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(1))
	ctx := context.Background()

	if err := q.EnqueueWait(ctx, Job{Title: "a"}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- q.EnqueueWait(ctx, Job{Title: "b"}) }()

	select {
	case err := <-done:
		t.Fatalf("expected enqueue to wait for room, got %v", err)
	case <-time.After(20 * time.Millisecond):
	}

	if j := <-q.Dequeue(ctx); j.Title != "a" {
		t.Errorf("expected a, got %q", j.Title)
	}
	if err := <-done; err != nil {
		t.Fatalf("expected waiting enqueue to succeed: %v", err)
	}
	if j := <-q.Dequeue(ctx); j.Title != "b" {
		t.Errorf("expected b, got %q", j.Title)
	}

	_ = q.Enqueue(ctx, Job{Title: "c"})
	tctx, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()
	if err := q.EnqueueWait(tctx, Job{Title: "d"}); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected context.DeadlineExceeded, got %v", err)
	}
}

func TestInMemoryQueue_Close(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(4))
	ctx := context.Background()

	_ = q.Enqueue(ctx, Job{Title: "a"})
	_ = q.Enqueue(ctx, Job{Title: "b"})
	if err := q.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := q.Close(); err != nil {
		t.Errorf("second close should be a no-op: %v", err)
	}
	if !q.IsClosed() {
		t.Error("expected queue to be closed")
	}
	if err := q.Enqueue(ctx, Job{Title: "c"}); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}

	var got []string
	for j := range q.Dequeue(ctx) {
		got = append(got, j.Title)
	}
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("queued jobs should drain in order after close, got %v", got)
	}
}

func TestInMemoryQueue_CancelledContext(t *testing.T) {
	q := NewInMemoryQueue()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := q.Enqueue(ctx, Job{Title: "x"}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestInMemoryQueue_ConcurrentEnqueueAndClose(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(1000))
	ctx := context.Background()

	var wg sync.WaitGroup
	for g := 0; g < 10; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				_ = q.Enqueue(ctx, Job{Title: fmt.Sprintf("%d-%d", g, i)})
			}
		}(g)
	}
	go func() { _ = q.Close() }()
	wg.Wait()

	n := 0
	for range q.Dequeue(ctx) {
		n++
	}
	if n > 500 {
		t.Errorf("dequeued more jobs than were enqueued: %d", n)
	}
}
