package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/Maccabipedia/maccabipedia-mediawiki-bot/internal/adapters/repository"
	app "github.com/Maccabipedia/maccabipedia-mediawiki-bot/internal/app"
	"github.com/Maccabipedia/maccabipedia-mediawiki-bot/internal/config"
	"github.com/Maccabipedia/maccabipedia-mediawiki-bot/internal/sortbot"
	"github.com/Maccabipedia/maccabipedia-mediawiki-bot/pkg/logger"
	"github.com/Maccabipedia/maccabipedia-mediawiki-bot/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		ctx := context.Background()

		convey.Convey("When configuration comes from the environment", func() {
			_ = os.Setenv("MPBOT_ADDR", ":8080")
			_ = os.Setenv("MPBOT_QUEUE_SIZE", "1000")
			_ = os.Setenv("MPBOT_WORKER_COUNT", "4")
			defer func() {
				_ = os.Unsetenv("MPBOT_ADDR")
				_ = os.Unsetenv("MPBOT_QUEUE_SIZE")
				_ = os.Unsetenv("MPBOT_WORKER_COUNT")
			}()

			convey.Convey("Then it is loaded over the defaults", func() {
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 1000)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 4)
				convey.So(cfg.Save, convey.ShouldBeFalse)
			})
		})

		convey.Convey("When the service is built from config", func() {
			cfg := config.New(ctx)
			cfg.WorkerCount = 2
			svc := sortbot.NewService(cfg, &sortbot.Deps{Store: repository.NewMemoryStore()})

			convey.Convey("Then it carries the configured settings", func() {
				stats := svc.GetStats()
				convey.So(stats["workerCount"], convey.ShouldEqual, 2)
				convey.So(stats["gamesTemplate"], convey.ShouldEqual, cfg.GamesTemplate)
				convey.So(stats["save"], convey.ShouldBeFalse)
			})
		})
	})
}

func TestRouter(t *testing.T) {
	convey.Convey("Given the router main serves", t, func() {
		ctx := context.Background()
		cfg := config.New(ctx)
		svc := app.New(app.WithStore(repository.NewMemoryStore()))
		h := newRouter(ctx, cfg, svc)

		for _, path := range []string{"/healthz", "/stats", "/api-docs", "/openapi.yaml"} {
			req := httptest.NewRequest(http.MethodGet, path, http.NoBody)
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
		}

		convey.Convey("Then the business API is mounted too", func() {
			req := httptest.NewRequest(http.MethodGet, "/v1/runs/unknown", http.NoBody)
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			convey.So(w.Code, convey.ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestMetricsUpdaters(t *testing.T) {
	convey.Convey("Given the metrics updaters", t, func() {
		convey.Convey("When system metrics are refreshed", func() {
			updateSystemMetrics()

			convey.Convey("Then the goroutine gauge is set", func() {
				n, err := testutil.GatherAndCount(metrics.GetRegistry(), "maccabipedia_events_bot_system_goroutine_count")
				convey.So(err, convey.ShouldBeNil)
				convey.So(n, convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When service metrics are refreshed for a started service", func() {
			svc := app.New(app.WithWorkerCount(3))
			convey.So(svc.Start(context.Background()), convey.ShouldBeNil)
			defer svc.Stop()

			convey.So(func() { updateServiceMetrics(svc) }, convey.ShouldNotPanic)
		})

		convey.Convey("When the updater loop is cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan struct{})
			go func() {
				startSystemMetricsUpdater(ctx)
				close(done)
			}()
			cancel()

			convey.Convey("Then it returns", func() {
				select {
				case <-done:
				case <-time.After(time.Second):
					t.Fatal("updater did not stop")
				}
			})
		})
	})
}
