package sortbot

import "time"

// Config holds the command line settings of a sorting run.
type Config struct {
	ConfigFile string        // YAML config file layered under MPBOT_ env vars
	Only       []string      // Titles to sort; empty means every game page
	Fixture    string        // Order a local fixture instead of touching the wiki
	Save       *bool         // Overrides the configured save flag when set
	ShowDiff   *bool         // Overrides the configured show_diff flag when set
	Timeout    time.Duration // Upper bound for the whole run
	LogFile    string        // Also write logs to this file
	Verbose    bool          // Debug logging
}

// Stats summarizes a finished run.
type Stats struct {
	RunID      string
	Requested  int
	Queued     int
	Duplicates int
	Rejected   int
	Changed    int
	Unchanged  int
	DryRun     int
	Skipped    int
	Failed     int
	StartTime  time.Time
	EndTime    time.Time
	Duration   time.Duration
}

// PagesPerSecond is the rate pages were handled at over the whole run.
func (s *Stats) PagesPerSecond() float64 {
	if s.Duration <= 0 {
		return 0
	}
	handled := s.Changed + s.Unchanged + s.DryRun + s.Skipped + s.Failed
	return float64(handled) / s.Duration.Seconds()
}
