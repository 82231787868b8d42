package config_test

import (
	"context"
	"errors"
	"testing"

	"github.com/Maccabipedia/maccabipedia-mediawiki-bot/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then it validates", func() {
			convey.So(cfg.Validate(), convey.ShouldBeNil)
			convey.So(cfg.WikiAPIURL, convey.ShouldEqual, "https://www.maccabipedia.co.il/api.php")
			convey.So(cfg.DedupeTTLSec, convey.ShouldEqual, 86_400)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given a config missing a required setting", t, func() {
		cases := map[string]func(*config.Config){
			"addr":           func(c *config.Config) { c.Addr = "" },
			"wiki_api_url":   func(c *config.Config) { c.WikiAPIURL = "" },
			"games_template": func(c *config.Config) { c.GamesTemplate = "" },
			"events_param":   func(c *config.Config) { c.EventsParam = " " },
			"queue_size":     func(c *config.Config) { c.QueueSize = 0 },
			"worker_count":   func(c *config.Config) { c.WorkerCount = -1 },
		}

		convey.Convey("Then Validate names it", func() {
			for key, breakIt := range cases {
				cfg := config.New(context.Background())
				breakIt(cfg)
				err := cfg.Validate()
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, key)
			}
		})
	})
}
