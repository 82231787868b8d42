// Package sortbot runs the player-events sorter as a batch job and builds the
// adapters both binaries share.
package sortbot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Maccabipedia/maccabipedia-mediawiki-bot/internal/adapters/fixtures"
	"github.com/Maccabipedia/maccabipedia-mediawiki-bot/internal/adapters/repository"
	service "github.com/Maccabipedia/maccabipedia-mediawiki-bot/internal/app"
	"github.com/Maccabipedia/maccabipedia-mediawiki-bot/internal/config"
	"github.com/Maccabipedia/maccabipedia-mediawiki-bot/internal/domain/types"
	"github.com/Maccabipedia/maccabipedia-mediawiki-bot/pkg/logger"
)

// Runner executes one sorting run.
type Runner struct {
	cfg   *Config
	out   io.Writer
	store repository.Store
}

// Option configures a Runner.
type Option func(*Runner)

// WithOutput sets where results are printed. Defaults to stdout.
func WithOutput(w io.Writer) Option {
	return func(r *Runner) {
		if w != nil {
			r.out = w
		}
	}
}

// WithStore replaces the wiki with another page store.
func WithStore(s repository.Store) Option {
	return func(r *Runner) { r.store = s }
}

// NewRunner creates a runner for cfg.
func NewRunner(cfg *Config, opts ...Option) *Runner {
	r := &Runner{cfg: cfg, out: os.Stdout}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run sorts the configured pages, or orders the fixture when one is given.
func (r *Runner) Run(ctx context.Context) (*Stats, error) {
	if r.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.Timeout)
		defer cancel()
	}
	if r.cfg.Fixture != "" {
		return r.runFixture(ctx)
	}
	return r.runPages(ctx)
}

func (r *Runner) runFixture(ctx context.Context) (*Stats, error) {
	stats := &Stats{StartTime: time.Now(), Requested: 1}

	m, err := fixtures.Load(r.cfg.Fixture)
	if err != nil {
		return nil, err
	}
	events, err := m.ModelEvents()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", r.cfg.Fixture, err)
	}

	svc := service.New()
	value, err := svc.RenderField(svc.OrderEvents(ctx, events))
	if err != nil {
		return nil, err
	}

	title := m.Title
	if title == "" {
		title = r.cfg.Fixture
	}
	fmt.Fprintf(r.out, "== %s ==\n%s\n", title, value)

	stats.DryRun = 1
	r.finish(ctx, stats)
	return stats, nil
}

func (r *Runner) runPages(ctx context.Context) (*Stats, error) {
	stats := &Stats{StartTime: time.Now(), Requested: len(r.cfg.Only)}
	log := logger.Get().Named("sortbot")

	cfg, err := config.LoadFrom(ctx, r.cfg.ConfigFile)
	if err != nil {
		return nil, err
	}
	if r.cfg.Save != nil {
		cfg.Save = *r.cfg.Save
	}
	if r.cfg.ShowDiff != nil {
		cfg.ShowDiff = *r.cfg.ShowDiff
	}
	if !r.cfg.Verbose {
		if err := logger.SetLevelString(cfg.LogLevel); err != nil {
			log.Warn(ctx, "invalid log_level; keeping info", logger.String("log_level", cfg.LogLevel))
		}
	}

	deps := &Deps{Store: r.store, Journal: repository.NopJournal{}}
	if r.store == nil {
		if deps, err = Connect(ctx, cfg, log); err != nil {
			return nil, err
		}
	}
	defer func() { _ = deps.Close() }()

	svc := NewService(cfg, deps, service.WithLogger(log), service.WithWaitForRoom(true))
	if err := svc.Start(ctx); err != nil {
		return nil, err
	}
	defer svc.Stop()

	log.Info(ctx, "starting player events sort",
		logger.String("wiki", cfg.WikiAPIURL),
		logger.Int("pages", len(r.cfg.Only)),
		logger.Bool("save", cfg.Save),
	)

	st, err := svc.StartRun(ctx, r.cfg.Only)
	if err != nil && !(errors.Is(err, service.ErrBackpressure) && st.ID != "") {
		return nil, err
	}
	final, err := svc.WaitRun(ctx, st.ID)
	if err != nil {
		return nil, fmt.Errorf("waiting for run %s: %w", st.ID, err)
	}

	stats.RunID = final.ID
	stats.Requested = final.Requested
	stats.Queued = final.Queued
	stats.Duplicates = final.Duplicates
	stats.Rejected = final.Rejected
	for _, title := range final.RejectedTitles {
		fmt.Fprintf(r.out, "%-9s %s: queue full\n", "rejected", title)
	}
	for _, res := range final.Results {
		r.printResult(res)
		switch res.Outcome {
		case types.OutcomeChanged:
			stats.Changed++
		case types.OutcomeUnchanged:
			stats.Unchanged++
		case types.OutcomeDryRun:
			stats.DryRun++
		case types.OutcomeSkipped:
			stats.Skipped++
		case types.OutcomeFailed:
			stats.Failed++
		}
	}
	r.finish(ctx, stats)

	if stats.Failed > 0 || stats.Rejected > 0 {
		return stats, fmt.Errorf("%w: %d failed, %d rejected of %d", ErrPagesFailed, stats.Failed, stats.Rejected, stats.Requested)
	}
	return stats, nil
}

func (r *Runner) printResult(res types.PageResult) {
	switch res.Outcome {
	case types.OutcomeSkipped, types.OutcomeFailed:
		fmt.Fprintf(r.out, "%-9s %s: %s\n", res.Outcome, res.Title, res.Reason)
	default:
		fmt.Fprintf(r.out, "%-9s %s (%d events)\n", res.Outcome, res.Title, res.Events)
	}
}

// finish stamps the end time and logs the final statistics.
func (r *Runner) finish(ctx context.Context, stats *Stats) {
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	logger.Get().Info(ctx, "final statistics",
		logger.String("runID", stats.RunID),
		logger.Int("requested", stats.Requested),
		logger.Int("queued", stats.Queued),
		logger.Int("duplicates", stats.Duplicates),
		logger.Int("rejected", stats.Rejected),
		logger.Int("changed", stats.Changed),
		logger.Int("unchanged", stats.Unchanged),
		logger.Int("dryRun", stats.DryRun),
		logger.Int("skipped", stats.Skipped),
		logger.Int("failed", stats.Failed),
		logger.Duration("duration", stats.Duration),
		logger.Float64("pagesPerSecond", stats.PagesPerSecond()),
	)
}
