package config

import (
	"time"

	"github.com/raoulx24/snaprotate/internal/schedule"
)

// DefaultSchedule keeps hourly snapshots for a day, two-hourly for a week,
// daily for a month, weekly for half a year, monthly for two years and
// half-yearly for five.
var DefaultSchedule = []schedule.RuleSpec{
	{Interval: "1h", Keep: "1D"},
	{Interval: "2h", Keep: "1W"},
	{Interval: "1D", Keep: "1M"},
	{Interval: "1W", Keep: "6M"},
	{Interval: "1M", Keep: "2Y"},
	{Interval: "6M", Keep: "5Y"},
}

func Default() *Config {
	return &Config{
		Store: StoreConfig{Root: "/data/Backup/Backups"},
		Sync: SyncConfig{
			Root: "/data/Backup/Sync",
			Watch: WatchConfig{
				Mode:           "auto",
				PollInterval:   30 * time.Second,
				DebounceWindow: 2 * time.Second,
			},
		},
		Retention: RetentionConfig{
			Schedule: append([]schedule.RuleSpec(nil), DefaultSchedule...),
		},
		Logging: LoggingConfig{Level: "info", Format: "text", Output: "stderr"},
		Metrics: MetricsConfig{Path: "/metrics"},
		Process: ProcessConfig{Nice: 10, IdleIO: true},
	}
}
