// Package service wires the ordering engine to the wiki, the page queue and
// the workers, and implements the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	eventqueue "github.com/Maccabipedia/maccabipedia-mediawiki-bot/internal/adapters/mq/queue"
	workerpool "github.com/Maccabipedia/maccabipedia-mediawiki-bot/internal/adapters/mq/worker"
	"github.com/Maccabipedia/maccabipedia-mediawiki-bot/internal/adapters/repository"
	"github.com/Maccabipedia/maccabipedia-mediawiki-bot/internal/domain/codec"
	"github.com/Maccabipedia/maccabipedia-mediawiki-bot/internal/domain/dedupe"
	"github.com/Maccabipedia/maccabipedia-mediawiki-bot/internal/domain/model"
	"github.com/Maccabipedia/maccabipedia-mediawiki-bot/internal/domain/normalize"
	"github.com/Maccabipedia/maccabipedia-mediawiki-bot/internal/domain/ordering"
	"github.com/Maccabipedia/maccabipedia-mediawiki-bot/pkg/logger"
	"github.com/Maccabipedia/maccabipedia-mediawiki-bot/pkg/metrics"
)

// Service implements the API dependencies for the player-events bot.
type Service struct {
	mu sync.RWMutex

	// Core components
	store   repository.Store
	journal repository.Journal
	deduper dedupe.Deduper
	queue   *eventqueue.InMemoryQueue
	pool    *workerpool.Pool
	runs    *runTracker

	// Configuration
	workerCount   int
	queueSize     int
	dedupeSize    int
	gamesTemplate string
	gamesPrefix   string
	eventsParam   string
	editSummary   string
	save          bool
	showDiff      bool
	waitForRoom   bool

	started bool

	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:   runtime.NumCPU(),
		queueSize:     10_000,
		dedupeSize:    100_000,
		gamesTemplate: "קטלוג משחקים",
		gamesPrefix:   "משחק:",
		eventsParam:   "אירועי שחקנים",
		editSummary:   "MaccabiBot - Sort players events",
		showDiff:      true,
		journal:       repository.NopJournal{},
		runs:          newRunTracker(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		s.store = repository.NewMemoryStore()
	}
	return s
}

// Start initializes and starts the queue and the worker pool.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("sorter")
	}

	s.logger.Info(ctx, "starting player-events service...")

	if s.deduper == nil {
		s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	}
	s.queue = eventqueue.NewInMemoryQueue(eventqueue.WithCapacity(s.queueSize))
	s.pool = workerpool.NewPool(s.workerCount, s.queue, s, s.runs, workerpool.WithLogger(s.logger.Named("worker")))
	s.pool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "player-events service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Bool("save", s.save),
		logger.Bool("showDiff", s.showDiff),
	)
	return nil
}

// Stop shuts the workers down and releases the journal. Queued pages are dropped.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx := context.Background()
	s.logger.Info(ctx, "stopping player-events service...")

	if err := s.pool.Stop(ctx); err != nil {
		s.logger.Warn(ctx, "workers did not stop cleanly", logger.Error(err))
	}
	_ = s.queue.Close()
	if err := s.journal.Close(); err != nil {
		s.logger.Warn(ctx, "closing journal failed", logger.Error(err))
	}

	s.started = false
	s.logger.Info(ctx, "player-events service stopped")
}

// OrderEvents runs the ordering engine and records its cost.
func (s *Service) OrderEvents(_ context.Context, events []model.Event) [][]model.Event {
	start := time.Now()
	groups := ordering.Order(events)
	metrics.RecordOrderLatency(float64(time.Since(start).Microseconds()) / 1000)
	metrics.RecordEventsOrdered(len(events))
	return groups
}

// OrderRaw normalizes source tuples and orders them.
func (s *Service) OrderRaw(ctx context.Context, raws []normalize.RawEvent) ([][]model.Event, error) {
	events := make([]model.Event, 0, len(raws))
	for i, r := range raws {
		e, err := normalize.FromRaw(r)
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", i, err)
		}
		events = append(events, e)
	}
	return s.OrderEvents(ctx, events), nil
}

// ParseText parses a stored player-events field and orders it.
func (s *Service) ParseText(ctx context.Context, text string) ([][]model.Event, error) {
	events, err := codec.ParseBlock(text)
	if err != nil {
		metrics.RecordMalformedRecord()
		return nil, err
	}
	return s.OrderEvents(ctx, events), nil
}

// RenderField formats ordered groups as the value of the player-events field.
func (s *Service) RenderField(groups [][]model.Event) (string, error) {
	return codec.FieldValue(groups)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":       s.started,
		"workerCount":   s.workerCount,
		"queueSize":     s.queueSize,
		"dedupeSize":    s.dedupeSize,
		"save":          s.save,
		"showDiff":      s.showDiff,
		"gamesTemplate": s.gamesTemplate,
		"runs":          s.runs.count(),
	}

	if s.started {
		queueLen := s.queue.Len(ctx)
		stats["queueLength"] = queueLen
		stats["dedupeEntries"] = s.deduper.Size()
		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateWorkerCount(s.workerCount)
	}
	return stats
}
