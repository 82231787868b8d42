package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Maccabipedia/maccabipedia-mediawiki-bot/internal/sortbot"
	"github.com/Maccabipedia/maccabipedia-mediawiki-bot/pkg/logger"
)

const defaultTimeout = 2 * time.Hour

// titleList collects a repeatable -only flag.
type titleList []string

func (t *titleList) String() string { return strings.Join(*t, ", ") }

func (t *titleList) Set(v string) error {
	if v = strings.TrimSpace(v); v != "" {
		*t = append(*t, v)
	}
	return nil
}

func main() {
	var only titleList
	var (
		configFile = flag.String("config", "", "YAML config file")
		fixture    = flag.String("fixture", "", "Order a local match fixture and print the field")
		save       = flag.Bool("save", false, "Write changed pages back to the wiki")
		showDiff   = flag.Bool("show-diff", true, "Log a diff of every changed field")
		timeout    = flag.Duration("timeout", defaultTimeout, "Give up after this long")
		logFile    = flag.String("log", "", "Also write logs to this file")
		verbose    = flag.Bool("verbose", false, "Enable debug logging")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Var(&only, "only", "Sort only this page; repeat for several pages")
	flag.Parse()

	if *help {
		sortbot.ShowHelp(os.Stdout)
		return
	}

	closeLog, err := sortbot.SetupLogging(*logFile, *verbose)
	if err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
		_ = closeLog()
	}()

	cfg := &sortbot.Config{
		ConfigFile: *configFile,
		Only:       only,
		Fixture:    *fixture,
		Timeout:    *timeout,
		LogFile:    *logFile,
		Verbose:    *verbose,
	}
	// Flags only override the config file when given explicitly.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "save":
			cfg.Save = save
		case "show-diff":
			cfg.ShowDiff = showDiff
		}
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if _, err := sortbot.NewRunner(cfg).Run(ctx); err != nil {
		logger.Get().Error(ctx, "sort failed", logger.Error(err))
		stop()
		_ = logger.Sync()
		_ = closeLog()
		os.Exit(1)
	}
}
