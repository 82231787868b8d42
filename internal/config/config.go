// Package config defines the bot configuration and its loading.
package config

import (
	"context"
	"runtime"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory page queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of page workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize bounds the in-memory per-run deduper.
	DedupeSize int `koanf:"dedupe_size"`

	// Wiki API access.
	WikiAPIURL    string `koanf:"wiki_api_url"`
	WikiUserAgent string `koanf:"wiki_user_agent"`
	WikiTimeoutMS int    `koanf:"wiki_timeout_ms"`

	// Where the player events live on a game page.
	GamesTemplate string `koanf:"games_template"`
	GamesPrefix   string `koanf:"games_prefix"`
	EventsParam   string `koanf:"events_param"`
	EditSummary   string `koanf:"edit_summary"`

	// Save writes changed pages back. When false the bot only reports.
	Save bool `koanf:"save"`

	// ShowDiff logs a line diff of every changed field.
	ShowDiff bool `koanf:"show_diff"`

	// RedisURL enables the shared deduper, e.g. redis://localhost:6379/0.
	RedisURL     string `koanf:"redis_url"`
	DedupeTTLSec int    `koanf:"dedupe_ttl_sec"`

	// PostgresDSN enables the edit journal.
	PostgresDSN string `koanf:"postgres_dsn"`

	// CORSOrigins lists origins allowed to call the API.
	CORSOrigins []string `koanf:"cors_origins"`
}

// New returns a Config populated with defaults.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:      "info",
		Addr:          ":9080",
		QueueSize:     10_000,
		WorkerCount:   runtime.NumCPU(),
		DedupeSize:    100_000,
		WikiAPIURL:    "https://www.maccabipedia.co.il/api.php",
		WikiUserAgent: "MaccabiBot/1.0 (https://www.maccabipedia.co.il)",
		WikiTimeoutMS: 30_000,
		GamesTemplate: "קטלוג משחקים",
		GamesPrefix:   "משחק:",
		EventsParam:   "אירועי שחקנים",
		EditSummary:   "MaccabiBot - Sort players events",
		Save:          false,
		ShowDiff:      true,
		DedupeTTLSec:  86_400,
		CORSOrigins:   []string{"*"},
	}
}
