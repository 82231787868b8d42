package service_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Maccabipedia/maccabipedia-mediawiki-bot/internal/adapters/repository"
	service "github.com/Maccabipedia/maccabipedia-mediawiki-bot/internal/app"
	"github.com/Maccabipedia/maccabipedia-mediawiki-bot/internal/domain/codec"
	"github.com/Maccabipedia/maccabipedia-mediawiki-bot/internal/domain/model"
	"github.com/Maccabipedia/maccabipedia-mediawiki-bot/internal/domain/normalize"
	"github.com/Maccabipedia/maccabipedia-mediawiki-bot/internal/domain/types"
	"github.com/Maccabipedia/maccabipedia-mediawiki-bot/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

const (
	unsortedField = "\nA::9::שער::30::מכבי\n,B::1::הרכב::0::מכבי\n,C::4::צהוב::50::יריבה\n"
	gameTitle     = "משחק:מכבי תל אביב נגד הפועל 1-0"
)

func gamePage(field string) string {
	return "'''משחק'''\n{{קטלוג משחקים\n|תאריך=2020-01-01\n|אירועי שחקנים=" + field + "|אצטדיון=בלומפילד\n}}\n[[קטגוריה:משחקים]]"
}

type memJournal struct {
	mu    sync.Mutex
	edits []repository.Edit
	err   error
}

func (j *memJournal) Record(_ context.Context, e repository.Edit) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.err != nil {
		return j.err
	}
	j.edits = append(j.edits, e)
	return nil
}

func (j *memJournal) Close() error { return nil }

func (j *memJournal) all() []repository.Edit {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]repository.Edit(nil), j.edits...)
}

func sortedField(ctx context.Context, svc *service.Service) string {
	groups, err := svc.ParseText(ctx, unsortedField)
	So(err, ShouldBeNil)
	v, err := svc.RenderField(groups)
	So(err, ShouldBeNil)
	return v
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then it reports dry-run defaults", func() {
			So(svc, ShouldNotBeNil)
			stats := svc.GetStats()
			So(stats["started"], ShouldEqual, false)
			So(stats["save"], ShouldEqual, false)
			So(stats["showDiff"], ShouldEqual, true)
			So(stats["gamesTemplate"], ShouldEqual, "קטלוג משחקים")
		})
	})

	Convey("Given a new service with custom options", t, func() {
		svc := service.New(
			service.WithWorkerCount(8),
			service.WithQueueSize(50_000),
			service.WithDedupeSize(25_000),
			service.WithSave(true),
		)

		Convey("Then the options are applied", func() {
			stats := svc.GetStats()
			So(stats["workerCount"], ShouldEqual, 8)
			So(stats["queueSize"], ShouldEqual, 50_000)
			So(stats["save"], ShouldEqual, true)
		})
	})
}

func TestService_StartStop(t *testing.T) {
	Convey("Given a new service", t, func() {
		svc := service.New(service.WithWorkerCount(2))
		ctx := context.Background()

		Convey("When it is started twice and stopped", func() {
			So(svc.Start(ctx), ShouldBeNil)
			So(svc.Start(ctx), ShouldBeNil)
			stats := svc.GetStats()
			svc.Stop()

			Convey("Then it reported a running queue and stops cleanly", func() {
				So(stats["started"], ShouldEqual, true)
				So(stats["queueLength"], ShouldEqual, 0)
				So(svc.GetStats()["started"], ShouldEqual, false)
			})
		})

		Convey("When a run is requested before start", func() {
			_, err := svc.StartRun(ctx, []string{gameTitle})

			Convey("Then it is refused", func() {
				So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			})
		})
	})
}

func TestService_OrderRaw(t *testing.T) {
	Convey("Given raw source events", t, func() {
		svc := service.New()
		seven := 7
		raws := []normalize.RawEvent{
			{Name: "A", Number: &seven, SinceKickoff: 30 * time.Minute, Kind: "GOAL_SCORE", GoalType: "HEADER", Subject: true},
			{Name: "B", SinceKickoff: 0, Kind: "LINE_UP", Subject: true},
		}

		Convey("When they are ordered", func() {
			groups, err := svc.OrderRaw(context.Background(), raws)

			Convey("Then the squad comes before goals", func() {
				So(err, ShouldBeNil)
				So(len(groups), ShouldEqual, 2)
				So(groups[0][0].Kind, ShouldEqual, model.KindLineup)
				So(groups[1][0].Modifier, ShouldEqual, model.ModifierHeader)
			})
		})

		Convey("When one kind is not known", func() {
			_, err := svc.OrderRaw(context.Background(), append(raws, normalize.RawEvent{Name: "X", Kind: "CORNER"}))

			Convey("Then the index of the bad event is reported", func() {
				So(errors.Is(err, normalize.ErrUnknownKind), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "event 2")
			})
		})
	})
}

func TestService_SortPage(t *testing.T) {
	ctx := context.Background()

	Convey("Given a game page with unsorted player events", t, func() {
		store := repository.NewMemoryStore(repository.WithPage(gameTitle, gamePage(unsortedField)))
		journal := &memJournal{}

		Convey("When sorting in dry-run mode", func() {
			svc := service.New(service.WithStore(store), service.WithJournal(journal))
			res, err := svc.SortPage(ctx, "run-1", gameTitle)

			Convey("Then the new value and diff are reported but nothing is saved", func() {
				So(err, ShouldBeNil)
				So(res.Outcome, ShouldEqual, types.OutcomeDryRun)
				So(res.Events, ShouldEqual, 3)
				So(res.Value, ShouldEqual, sortedField(ctx, svc))
				So(res.Diff, ShouldContainSubstring, "+++ sorted")
				So(store.Saves(), ShouldBeEmpty)
				So(len(journal.all()), ShouldEqual, 1)
				So(journal.all()[0].Saved, ShouldBeFalse)
			})
		})

		Convey("When sorting with saving enabled", func() {
			svc := service.New(service.WithStore(store), service.WithJournal(journal), service.WithSave(true), service.WithShowDiff(false))
			res, err := svc.SortPage(ctx, "run-1", gameTitle)

			Convey("Then only the player-events parameter is rewritten", func() {
				So(err, ShouldBeNil)
				So(res.Outcome, ShouldEqual, types.OutcomeChanged)
				So(res.Diff, ShouldBeEmpty)
				saves := store.Saves()
				So(len(saves), ShouldEqual, 1)
				So(saves[0].Text, ShouldEqual, gamePage(sortedField(ctx, svc)))
				So(journal.all()[0].Saved, ShouldBeTrue)
				So(journal.all()[0].OldHash, ShouldNotEqual, journal.all()[0].NewHash)
			})

			Convey("And sorting the page again leaves it unchanged", func() {
				res, err := svc.SortPage(ctx, "run-2", gameTitle)
				So(err, ShouldBeNil)
				So(res.Outcome, ShouldEqual, types.OutcomeUnchanged)
				So(len(store.Saves()), ShouldEqual, 1)
			})
		})

		Convey("When the journal fails", func() {
			journal.err = repository.ErrJournal
			svc := service.New(service.WithStore(store), service.WithJournal(journal), service.WithSave(true))
			res, err := svc.SortPage(ctx, "run-1", gameTitle)

			Convey("Then the page is still sorted", func() {
				So(err, ShouldBeNil)
				So(res.Outcome, ShouldEqual, types.OutcomeChanged)
			})
		})

		Convey("When reading its events without writing", func() {
			svc := service.New(service.WithStore(store))
			groups, err := svc.PageEvents(ctx, gameTitle)

			Convey("Then they come back ordered", func() {
				So(err, ShouldBeNil)
				So(groups[0][0].PlayerName, ShouldEqual, "B")
				So(store.Saves(), ShouldBeEmpty)
			})
		})
	})

	Convey("Given pages the sorter must leave alone", t, func() {
		store := repository.NewMemoryStore(repository.WithPages(map[string]string{
			"מכבי תל אביב":       gamePage(unsortedField),
			"משחק:ללא תבנית":     "just text",
			"משחק:ללא אירועים":   "{{קטלוג משחקים\n|תאריך=2020\n}}",
			"משחק:אירועים ריקים": gamePage("\n"),
			"משחק:רשומה שבורה":   gamePage("\nA::9::שער::30\n"),
		}))
		svc := service.New(service.WithStore(store), service.WithSave(true))

		Convey("Then non-game pages and empty fields are skipped", func() {
			for _, title := range []string{"מכבי תל אביב", "משחק:ללא תבנית", "משחק:ללא אירועים", "משחק:אירועים ריקים"} {
				res, err := svc.SortPage(ctx, "run", title)
				So(err, ShouldBeNil)
				So(res.Outcome, ShouldEqual, types.OutcomeSkipped)
				So(res.Reason, ShouldNotBeEmpty)
			}
			So(store.Saves(), ShouldBeEmpty)
		})

		Convey("Then a malformed record fails the page without saving", func() {
			_, err := svc.SortPage(ctx, "run", "משחק:רשומה שבורה")
			So(errors.Is(err, codec.ErrMalformedEventRecord), ShouldBeTrue)
			So(store.Saves(), ShouldBeEmpty)
		})

		Convey("Then a missing page fails with not found", func() {
			_, err := svc.SortPage(ctx, "run", "משחק:לא קיים")
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
		})
	})
}

func TestService_Runs(t *testing.T) {
	ctx := context.Background()

	Convey("Given a started service over a small wiki", t, func() {
		store := repository.NewMemoryStore(repository.WithPages(map[string]string{
			gameTitle:          gamePage(unsortedField),
			"משחק:שני":         gamePage(unsortedField),
			"משחק:רשומה שבורה": gamePage("\nA::9::שער::30\n"),
			"עמוד שאינו משחק":  "nothing here",
		}))
		svc := service.New(service.WithStore(store), service.WithSave(true), service.WithWorkerCount(2))
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When a run is started without titles", func() {
			st, err := svc.StartRun(ctx, nil)
			So(err, ShouldBeNil)

			waitCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			final, err := svc.WaitRun(waitCtx, st.ID)

			Convey("Then every page using the template is handled", func() {
				So(err, ShouldBeNil)
				So(final.Done(), ShouldBeTrue)
				So(final.Requested, ShouldEqual, 3)
				So(final.Queued, ShouldEqual, 3)
				So(final.Processed, ShouldEqual, 3)
				So(final.Outcomes[types.OutcomeChanged], ShouldEqual, 2)
				So(final.Outcomes[types.OutcomeFailed], ShouldEqual, 1)
				So(len(store.Saves()), ShouldEqual, 2)
			})
		})

		Convey("When a run names the same page twice", func() {
			st, err := svc.StartRun(ctx, []string{gameTitle, gameTitle})
			So(err, ShouldBeNil)

			waitCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			final, err := svc.WaitRun(waitCtx, st.ID)

			Convey("Then it is processed once", func() {
				So(err, ShouldBeNil)
				So(final.Queued, ShouldEqual, 1)
				So(final.Duplicates, ShouldEqual, 1)
				So(len(final.Results), ShouldEqual, 1)
				So(final.Results[0].Title, ShouldEqual, gameTitle)
			})
		})

		Convey("When an unknown run is looked up", func() {
			_, err := svc.Run(ctx, "nope")
			_, waitErr := svc.WaitRun(ctx, "nope")

			Convey("Then it is not found", func() {
				So(errors.Is(err, service.ErrRunNotFound), ShouldBeTrue)
				So(errors.Is(waitErr, service.ErrRunNotFound), ShouldBeTrue)
			})
		})
	})

	Convey("Given a service whose queue holds a single page and no time to drain", t, func() {
		store := repository.NewMemoryStore(repository.WithPages(map[string]string{
			gameTitle: gamePage(unsortedField),
		}))
		svc := service.New(service.WithStore(store), service.WithQueueSize(1), service.WithWorkerCount(1))
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When more pages are requested than fit", func() {
			titles := make([]string, 50)
			for i := range titles {
				titles[i] = gameTitle + strings.Repeat("!", i)
			}
			st, err := svc.StartRun(ctx, titles)

			Convey("Then the accounting adds up", func() {
				if err != nil {
					So(errors.Is(err, service.ErrBackpressure), ShouldBeTrue)
				}
				So(st.Queued+st.Rejected, ShouldEqual, 50)
				So(len(st.RejectedTitles), ShouldEqual, st.Rejected)
			})
		})
	})

	Convey("Given a service that waits for queue room", t, func() {
		store := repository.NewMemoryStore(repository.WithPages(map[string]string{
			gameTitle: gamePage(unsortedField),
		}))
		svc := service.New(service.WithStore(store), service.WithQueueSize(1), service.WithWorkerCount(1), service.WithWaitForRoom(true))
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When more pages are requested than fit", func() {
			titles := make([]string, 50)
			for i := range titles {
				titles[i] = gameTitle + strings.Repeat("!", i)
			}
			st, err := svc.StartRun(ctx, titles)
			So(err, ShouldBeNil)

			waitCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			final, err := svc.WaitRun(waitCtx, st.ID)

			Convey("Then every page is queued and handled", func() {
				So(err, ShouldBeNil)
				So(final.Queued, ShouldEqual, 50)
				So(final.Rejected, ShouldEqual, 0)
				So(final.RejectedTitles, ShouldBeEmpty)
				So(final.Processed, ShouldEqual, 50)
			})

			Convey("Then the totals cover the run", func() {
				tot := svc.RunTotals()
				So(tot.Runs, ShouldEqual, 1)
				So(tot.Active, ShouldEqual, 0)
				So(tot.Processed, ShouldEqual, 50)
				So(tot.Outcomes[types.OutcomeDryRun]+tot.Outcomes[types.OutcomeFailed], ShouldEqual, 50)
			})
		})
	})

	Convey("Given a full queue and a deduper that cannot forget", t, func() {
		release := make(chan struct{})
		store := &stallingStore{
			MemoryStore: repository.NewMemoryStore(repository.WithPages(map[string]string{gameTitle: gamePage(unsortedField)})),
			release:     release,
		}
		var logs lockedBuffer
		svc := service.New(
			service.WithStore(store),
			service.WithQueueSize(1),
			service.WithWorkerCount(1),
			service.WithDeduper(stuckDeduper{}),
			service.WithLogger(logger.New(logger.WithWriter(&logs))),
		)
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()
		defer close(release)

		Convey("When pages are rejected", func() {
			titles := []string{"משחק:1", "משחק:2", "משחק:3", "משחק:4", "משחק:5"}
			st, _ := svc.StartRun(ctx, titles)

			Convey("Then the rejections are still counted and the failed unrecord is logged", func() {
				So(st.Rejected, ShouldBeGreaterThanOrEqualTo, 3)
				So(st.Queued+st.Rejected, ShouldEqual, len(titles))
				So(len(st.RejectedTitles), ShouldEqual, st.Rejected)
				So(logs.String(), ShouldContainSubstring, "dedupe unrecord failed")
				So(logs.String(), ShouldContainSubstring, errUnrecord.Error())
			})
		})
	})
}

var errUnrecord = errors.New("cannot forget key")

// stuckDeduper never reports duplicates and fails to forget keys.
type stuckDeduper struct{}

func (stuckDeduper) SeenAndRecord(context.Context, string) (bool, error) { return false, nil }
func (stuckDeduper) Unrecord(context.Context, string) error              { return errUnrecord }
func (stuckDeduper) Size() int64                                         { return 0 }

// stallingStore holds every read until release is closed.
type stallingStore struct {
	*repository.MemoryStore
	release chan struct{}
}

func (s *stallingStore) Get(ctx context.Context, title string) (repository.Page, error) {
	select {
	case <-s.release:
	case <-ctx.Done():
		return repository.Page{}, ctx.Err()
	}
	return s.MemoryStore.Get(ctx, title)
}

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
