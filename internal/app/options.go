package service

import (
	"github.com/Maccabipedia/maccabipedia-mediawiki-bot/internal/adapters/repository"
	"github.com/Maccabipedia/maccabipedia-mediawiki-bot/internal/domain/dedupe"
	"github.com/Maccabipedia/maccabipedia-mediawiki-bot/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the page queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the in-memory dedupe cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStore sets where pages are read from and written to.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithJournal sets where edits are journaled.
func WithJournal(j repository.Journal) Option {
	return func(s *Service) {
		if j != nil {
			s.journal = j
		}
	}
}

// WithDeduper replaces the in-memory deduper, e.g. with a shared Redis one.
func WithDeduper(d dedupe.Deduper) Option {
	return func(s *Service) {
		if d != nil {
			s.deduper = d
		}
	}
}

// WithGamesTemplate sets the template that holds the player events.
func WithGamesTemplate(name string) Option {
	return func(s *Service) {
		if name != "" {
			s.gamesTemplate = name
		}
	}
}

// WithGamesPrefix restricts sorting to titles starting with prefix. An empty
// prefix disables the check.
func WithGamesPrefix(prefix string) Option {
	return func(s *Service) {
		s.gamesPrefix = prefix
	}
}

// WithEventsParam sets the template parameter that holds the player events.
func WithEventsParam(name string) Option {
	return func(s *Service) {
		if name != "" {
			s.eventsParam = name
		}
	}
}

// WithEditSummary sets the summary attached to every edit.
func WithEditSummary(summary string) Option {
	return func(s *Service) {
		if summary != "" {
			s.editSummary = summary
		}
	}
}

// WithSave controls whether changed pages are written back.
func WithSave(save bool) Option {
	return func(s *Service) {
		s.save = save
	}
}

// WithShowDiff controls whether a diff of every changed field is produced.
func WithShowDiff(show bool) Option {
	return func(s *Service) {
		s.showDiff = show
	}
}

// WithWaitForRoom makes StartRun wait for queue space instead of rejecting
// pages when the queue is full. Batch runs use it so no page is dropped.
func WithWaitForRoom(wait bool) Option {
	return func(s *Service) {
		s.waitForRoom = wait
	}
}
