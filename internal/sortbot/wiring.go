package sortbot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Maccabipedia/maccabipedia-mediawiki-bot/internal/adapters/mediawiki"
	"github.com/Maccabipedia/maccabipedia-mediawiki-bot/internal/adapters/repository"
	service "github.com/Maccabipedia/maccabipedia-mediawiki-bot/internal/app"
	"github.com/Maccabipedia/maccabipedia-mediawiki-bot/internal/config"
	"github.com/Maccabipedia/maccabipedia-mediawiki-bot/internal/domain/dedupe"
	"github.com/Maccabipedia/maccabipedia-mediawiki-bot/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// Deps are the adapters a service runs on.
type Deps struct {
	Store   repository.Store
	Journal repository.Journal
	Deduper dedupe.Deduper

	closers []func() error
}

// Connect opens the wiki client and the optional Redis deduper and Postgres
// journal named by cfg.
func Connect(ctx context.Context, cfg *config.Config, log logger.Logger) (*Deps, error) {
	d := &Deps{
		Store: mediawiki.New(cfg.WikiAPIURL,
			mediawiki.WithTimeout(time.Duration(cfg.WikiTimeoutMS)*time.Millisecond),
			mediawiki.WithUserAgent(cfg.WikiUserAgent),
			mediawiki.WithLogger(log.Named("mediawiki")),
		),
		Journal: repository.NopJournal{},
	}

	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("%w: redis_url: %w", config.ErrInvalidConfig, err)
		}
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("%w: %w", dedupe.ErrBackend, err)
		}
		d.Deduper = dedupe.NewRedisDeduper(client, dedupe.WithTTL(time.Duration(cfg.DedupeTTLSec)*time.Second))
		d.closers = append(d.closers, client.Close)
		log.Info(ctx, "using redis deduper", logger.String("addr", opts.Addr))
	}

	if cfg.PostgresDSN != "" {
		j, err := repository.NewPostgresJournal(ctx, cfg.PostgresDSN)
		if err != nil {
			_ = d.Close()
			return nil, err
		}
		d.Journal = j
		log.Info(ctx, "using postgres edit journal")
	}
	return d, nil
}

// Close releases connections opened by Connect. The journal is closed by the
// service that owns it.
func (d *Deps) Close() error {
	var errs []error
	for _, c := range d.closers {
		errs = append(errs, c())
	}
	d.closers = nil
	return errors.Join(errs...)
}

// NewService builds a service from the configuration and adapters.
func NewService(cfg *config.Config, d *Deps, opts ...service.Option) *service.Service {
	base := []service.Option{
		service.WithWorkerCount(cfg.WorkerCount),
		service.WithQueueSize(cfg.QueueSize),
		service.WithDedupeSize(cfg.DedupeSize),
		service.WithGamesTemplate(cfg.GamesTemplate),
		service.WithGamesPrefix(cfg.GamesPrefix),
		service.WithEventsParam(cfg.EventsParam),
		service.WithEditSummary(cfg.EditSummary),
		service.WithSave(cfg.Save),
		service.WithShowDiff(cfg.ShowDiff),
	}
	if d != nil {
		base = append(base,
			service.WithStore(d.Store),
			service.WithJournal(d.Journal),
		)
		if d.Deduper != nil {
			base = append(base, service.WithDeduper(d.Deduper))
		}
	}
	return service.New(append(base, opts...)...)
}
