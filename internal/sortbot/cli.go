package sortbot

import (
	"fmt"
	"io"
	"os"

	"github.com/Maccabipedia/maccabipedia-mediawiki-bot/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging initializes the global logger on stderr and, when logFile is
// set, on that file too. The returned func closes the file.
func SetupLogging(logFile string, verbose bool) (func() error, error) {
	closer := func() error { return nil }
	var w io.Writer = os.Stderr
	opts := []logger.Option{}

	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
		if err != nil {
			return closer, fmt.Errorf("failed to open log file: %w", err)
		}
		w = io.MultiWriter(os.Stderr, file)
		closer = file.Close
		opts = append(opts, logger.WithSyncer(file))
	}

	if err := logger.Init(append(opts, logger.WithWriter(w))...); err != nil {
		return closer, fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		_ = logger.SetLevelString("debug")
	}
	return closer, nil
}

// ShowHelp prints usage information for the sort-events tool.
func ShowHelp(w io.Writer) {
	_, _ = io.WriteString(w, `MaccabiPedia player events sorter
=================================

Sorts the "אירועי שחקנים" field of every game page on MaccabiPedia into its
display order. Runs are dry by default: nothing is written without -save.

Usage:
  sort-events [options]

Options:
  -config string
        YAML config file (env vars with the MPBOT_ prefix still win)
  -only string
        Sort only this page; repeat for several pages
  -fixture string
        Order a local YAML or JSON match fixture and print the field
  -save
        Write changed pages back to the wiki
  -show-diff
        Log a diff of every changed field (default true)
  -timeout duration
        Give up after this long (default 2h)
  -log string
        Also write logs to this file
  -verbose
        Enable debug logging
  -help
        Show this help message

Examples:
  # Preview what would change on every game page
  sort-events

  # Fix a single page
  sort-events -save -only "משחק:מכבי תל אביב נגד הפועל תל אביב 2-1"

  # Check a roster before it is uploaded
  sort-events -fixture testdata/match.yaml
`)
}
