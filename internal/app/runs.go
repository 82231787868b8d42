package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	eventqueue "github.com/Maccabipedia/maccabipedia-mediawiki-bot/internal/adapters/mq/queue"
	"github.com/Maccabipedia/maccabipedia-mediawiki-bot/internal/domain/dedupe"
	"github.com/Maccabipedia/maccabipedia-mediawiki-bot/internal/domain/types"
	"github.com/Maccabipedia/maccabipedia-mediawiki-bot/pkg/logger"
	"github.com/Maccabipedia/maccabipedia-mediawiki-bot/pkg/metrics"
	"github.com/google/uuid"
)

// RunStatus is a snapshot of a batch run.
type RunStatus struct {
	ID         string                `json:"id"`
	Requested  int                   `json:"requested"`
	Queued     int                   `json:"queued"`
	Duplicates int                   `json:"duplicates"`
	Rejected   int                   `json:"rejected"`
	Processed  int                   `json:"processed"`
	Outcomes   map[types.Outcome]int `json:"outcomes"`
	Results    []types.PageResult    `json:"results,omitempty"`
	// RejectedTitles lists the pages the queue had no room for.
	RejectedTitles []string   `json:"rejected_titles,omitempty"`
	StartedAt      time.Time  `json:"started_at"`
	FinishedAt     *time.Time `json:"finished_at,omitempty"`
}

// Done reports whether every queued page has been handled.
func (r RunStatus) Done() bool {
	return r.FinishedAt != nil
}

type run struct {
	status RunStatus
	sealed bool
	done   chan struct{}
}

// runTracker collects worker outcomes per run.
type runTracker struct {
	mu   sync.Mutex
	runs map[string]*run
}

func newRunTracker() *runTracker {
	return &runTracker{runs: make(map[string]*run)}
}

func (t *runTracker) open(id string, requested int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.runs[id] = &run{
		status: RunStatus{
			ID:        id,
			Requested: requested,
			Outcomes:  make(map[types.Outcome]int),
			StartedAt: time.Now().UTC(),
		},
		done: make(chan struct{}),
	}
}

func (t *runTracker) update(id string, fn func(*RunStatus)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if r, ok := t.runs[id]; ok {
		fn(&r.status)
		t.finishLocked(r)
	}
}

// seal marks the end of enqueueing; the run finishes once all queued pages are processed.
func (t *runTracker) seal(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if r, ok := t.runs[id]; ok {
		r.sealed = true
		t.finishLocked(r)
	}
}

func (t *runTracker) finishLocked(r *run) {
	if !r.sealed || r.status.FinishedAt != nil || r.status.Processed < r.status.Queued {
		return
	}
	now := time.Now().UTC()
	r.status.FinishedAt = &now
	close(r.done)
}

// Record implements the worker recorder.
func (t *runTracker) Record(_ context.Context, job eventqueue.Job, res types.PageResult) {
	t.update(job.RunID, func(st *RunStatus) {
		st.Processed++
		st.Outcomes[res.Outcome]++
		st.Results = append(st.Results, res)
	})
}

func (t *runTracker) get(id string) (RunStatus, <-chan struct{}, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	r, ok := t.runs[id]
	if !ok {
		return RunStatus{}, nil, false
	}
	st := r.status
	st.Outcomes = make(map[types.Outcome]int, len(r.status.Outcomes))
	for k, v := range r.status.Outcomes {
		st.Outcomes[k] = v
	}
	st.Results = append([]types.PageResult(nil), r.status.Results...)
	st.RejectedTitles = append([]string(nil), r.status.RejectedTitles...)
	return st, r.done, true
}

func (t *runTracker) count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.runs)
}

// RunTotals sums the page counters of every run the service has seen.
type RunTotals struct {
	Runs       int                   `json:"runs"`
	Active     int                   `json:"active"`
	Queued     int                   `json:"queued"`
	Duplicates int                   `json:"duplicates"`
	Rejected   int                   `json:"rejected"`
	Processed  int                   `json:"processed"`
	Outcomes   map[types.Outcome]int `json:"outcomes"`
}

func (t *runTracker) totals() RunTotals {
	t.mu.Lock()
	defer t.mu.Unlock()
	tot := RunTotals{Runs: len(t.runs), Outcomes: make(map[types.Outcome]int)}
	for _, r := range t.runs {
		if r.status.FinishedAt == nil {
			tot.Active++
		}
		tot.Queued += r.status.Queued
		tot.Duplicates += r.status.Duplicates
		tot.Rejected += r.status.Rejected
		tot.Processed += r.status.Processed
		for k, v := range r.status.Outcomes {
			tot.Outcomes[k] += v
		}
	}
	return tot
}

// StartRun queues pages for sorting and returns immediately. With no titles,
// every page that transcludes the games template is queued. A title is queued at
// most once per run.
func (s *Service) StartRun(ctx context.Context, titles []string) (RunStatus, error) {
	s.mu.RLock()
	started := s.started
	s.mu.RUnlock()
	if !started {
		return RunStatus{}, ErrNotStarted
	}

	if len(titles) == 0 {
		var err error
		titles, err = s.store.ListReferring(ctx, s.gamesTemplate)
		if err != nil {
			return RunStatus{}, fmt.Errorf("listing pages using %q: %w", s.gamesTemplate, err)
		}
	}

	runID := uuid.NewString()
	s.runs.open(runID, len(titles))

	s.log().Info(ctx, "run started", logger.String("run_id", runID), logger.Int("pages", len(titles)))

	for _, title := range titles {
		if err := s.enqueue(ctx, runID, title); err != nil {
			if errors.Is(err, ErrBackpressure) {
				continue
			}
			s.runs.seal(runID)
			st, _, _ := s.runs.get(runID)
			return st, err
		}
	}

	s.runs.seal(runID)
	st, _, _ := s.runs.get(runID)
	if st.Rejected > 0 && st.Queued == 0 {
		return st, fmt.Errorf("%w: %d pages rejected", ErrBackpressure, st.Rejected)
	}
	return st, nil
}

func (s *Service) enqueue(ctx context.Context, runID, title string) error {
	key := dedupe.Key(runID, title)
	seen, err := s.deduper.SeenAndRecord(ctx, key)
	if err != nil {
		return err
	}
	if seen {
		metrics.RecordDedupeHit()
		s.runs.update(runID, func(st *RunStatus) { st.Duplicates++ })
		return nil
	}

	job := eventqueue.Job{JobID: uuid.NewString(), RunID: runID, Title: title}
	if s.waitForRoom {
		err = s.queue.EnqueueWait(ctx, job)
	} else {
		err = s.queue.Enqueue(ctx, job)
	}
	if err != nil {
		// Let a later run pick the page up.
		if uerr := s.deduper.Unrecord(ctx, key); uerr != nil {
			s.log().Warn(ctx, "dedupe unrecord failed",
				logger.String("title", title),
				logger.String("run_id", runID),
				logger.Error(uerr),
			)
		}
		s.runs.update(runID, func(st *RunStatus) {
			st.Rejected++
			st.RejectedTitles = append(st.RejectedTitles, title)
		})
		if errors.Is(err, eventqueue.ErrFull) {
			s.log().Warn(ctx, "queue full, page rejected", logger.String("title", title), logger.String("run_id", runID))
			return fmt.Errorf("%w: %w", ErrBackpressure, err)
		}
		return err
	}
	s.runs.update(runID, func(st *RunStatus) { st.Queued++ })
	return nil
}

// RunTotals returns page counters summed over every run.
func (s *Service) RunTotals() RunTotals {
	return s.runs.totals()
}

// Run returns the status of a batch run.
func (s *Service) Run(_ context.Context, id string) (RunStatus, error) {
	st, _, ok := s.runs.get(id)
	if !ok {
		return RunStatus{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return st, nil
}

// WaitRun blocks until the run has handled every queued page.
func (s *Service) WaitRun(ctx context.Context, id string) (RunStatus, error) {
	_, done, ok := s.runs.get(id)
	if !ok {
		return RunStatus{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	select {
	case <-done:
		return s.Run(ctx, id)
	case <-ctx.Done():
		return RunStatus{}, ctx.Err()
	}
}
