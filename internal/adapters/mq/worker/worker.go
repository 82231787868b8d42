// Package worker drains the page queue and sorts each page.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Maccabipedia/maccabipedia-mediawiki-bot/internal/adapters/mq/queue"
	"github.com/Maccabipedia/maccabipedia-mediawiki-bot/internal/domain/types"
	"github.com/Maccabipedia/maccabipedia-mediawiki-bot/pkg/logger"
	"github.com/Maccabipedia/maccabipedia-mediawiki-bot/pkg/metrics"
)

const poolShutdownTimeout = 30 * time.Second

// Sorter sorts the player events of one page.
type Sorter interface {
	SortPage(ctx context.Context, runID, title string) (types.PageResult, error)
}

// Recorder receives the outcome of every job.
type Recorder interface {
	Record(ctx context.Context, job queue.Job, res types.PageResult)
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Job
}

// InMemoryWorker processes jobs one at a time.
type InMemoryWorker struct {
	queue    Queue
	sorter   Sorter
	recorder Recorder
	name     string
	active   *atomic.Int64

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, sorter Sorter, recorder Recorder, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    q,
		sorter:   sorter,
		recorder: recorder,
		name:     "worker",
		active:   &atomic.Int64{},
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get().Named(w.name)
	}
	return w
}

// Run handles jobs until the queue is closed and drained, Stop is called, or
// ctx is cancelled.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			w.process(ctx, job)
		}
	}
}

// Stop signals the worker to return after its current job.
func (w *InMemoryWorker) Stop() {
	select {
	case <-w.shutdown:
	default:
		close(w.shutdown)
	}
}

// Done is closed once Run has returned.
func (w *InMemoryWorker) Done() <-chan struct{} {
	return w.done
}

// process never fails the loop: a broken page is logged, recorded and skipped.
func (w *InMemoryWorker) process(ctx context.Context, job queue.Job) {
	metrics.UpdateWorkerActiveCount(int(w.active.Add(1)))
	start := time.Now()
	defer func() {
		metrics.UpdateWorkerActiveCount(int(w.active.Add(-1)))
		metrics.RecordPageLatency(float64(time.Since(start).Milliseconds()))
	}()

	res, err := w.sorter.SortPage(ctx, job.RunID, job.Title)
	if err != nil {
		metrics.RecordErrorByComponent("worker", "sort_failed")
		w.logger.Error(ctx, "page skipped",
			logger.String("title", job.Title),
			logger.String("run_id", job.RunID),
			logger.Error(err),
		)
		res = types.PageResult{Title: job.Title, Outcome: types.OutcomeFailed, Reason: err.Error()}
	}
	if res.Title == "" {
		res.Title = job.Title
	}
	if w.recorder != nil {
		w.recorder.Record(ctx, job, res)
	}
}

// Pool manages multiple workers sharing one queue.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	logger  logger.Logger
	once    sync.Once
}

// NewPool creates a worker pool. A non-positive count means one worker per CPU.
func NewPool(workerCount int, q Queue, sorter Sorter, recorder Recorder, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}
	p := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
	}

	active := &atomic.Int64{}
	for i := 0; i < workerCount; i++ {
		wopts := append([]Option{WithName("worker-" + strconv.Itoa(i))}, opts...)
		p.workers[i] = NewInMemoryWorker(q, sorter, recorder, wopts...)
		p.workers[i].active = active
	}
	p.logger = p.workers[0].logger

	metrics.UpdateWorkerCount(workerCount)
	metrics.UpdateWorkerActiveCount(0)
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return len(p.workers)
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Drain closes the queue and waits until every queued job has been handled.
func (p *Pool) Drain(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}
	return p.wait(ctx)
}

// Stop makes every worker return after its current job, dropping queued jobs.
func (p *Pool) Stop(ctx context.Context) error {
	p.once.Do(func() {
		for _, w := range p.workers {
			w.Stop()
		}
	})
	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()
	return p.wait(shutdownCtx)
}

func (p *Pool) wait(ctx context.Context) error {
	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-ctx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
			return fmt.Errorf("%w: %w", ErrStopTimeout, ctx.Err())
		}
	}
	return nil
}
