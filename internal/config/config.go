package config

import (
	"time"

	"github.com/raoulx24/snaprotate/internal/logging"
	"github.com/raoulx24/snaprotate/internal/schedule"
)

type Config struct {
	Store        StoreConfig     `yaml:"store" toml:"store"`
	Sync         SyncConfig      `yaml:"sync" toml:"sync"`
	Retention    RetentionConfig `yaml:"retention" toml:"retention"`
	Logging      LoggingConfig   `yaml:"logging" toml:"logging"`
	Metrics      MetricsConfig   `yaml:"metrics" toml:"metrics"`
	Process      ProcessConfig   `yaml:"process" toml:"process"`
	ConfigReload ReloadConfig    `yaml:"configReload" toml:"configReload"`
}

type StoreConfig struct {
	Root string `yaml:"root" toml:"root"` // <root>/<source>/<YYYY-MM-DD_HH:MM>
}

type SyncConfig struct {
	Root    string      `yaml:"root" toml:"root"`
	Sources []string    `yaml:"sources" toml:"sources"` // empty: every directory under Root
	Exclude []string    `yaml:"exclude" toml:"exclude"` // gitignore-style, left out of snapshots
	Watch   WatchConfig `yaml:"watch" toml:"watch"`
}

type WatchConfig struct {
	Mode           string        `yaml:"mode" toml:"mode"`                     // "auto", "poll", "fsnotify"
	PollInterval   time.Duration `yaml:"pollInterval" toml:"pollInterval"`     // e.g. 30s
	DebounceWindow time.Duration `yaml:"debounceWindow" toml:"debounceWindow"` // e.g. 2s
}

type RetentionConfig struct {
	Cron     string              `yaml:"cron" toml:"cron"` // empty: only after new snapshots
	DryRun   bool                `yaml:"dryRun" toml:"dryRun"`
	Schedule []schedule.RuleSpec `yaml:"schedule" toml:"schedule"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`   // "info", "debug", etc.
	Format string `yaml:"format" toml:"format"` // "json", "text"
	Output string `yaml:"output" toml:"output"` // "stderr", "stdout", or a path
}

type MetricsConfig struct {
	Listen string `yaml:"listen" toml:"listen"` // e.g. ":9310", empty disables
	Path   string `yaml:"path" toml:"path"`
}

type ProcessConfig struct {
	Nice   int  `yaml:"nice" toml:"nice"`
	IdleIO bool `yaml:"idleIO" toml:"idleIO"`
}

type ReloadConfig struct {
	Enabled bool `yaml:"enabled" toml:"enabled"` // reload on SIGHUP
}

// Rules parses the retention schedule.
func (c *Config) Rules() ([]schedule.Rule, error) {
	return schedule.ParseRules(c.Retention.Schedule)
}

func (l LoggingConfig) Logging() logging.Config {
	return logging.Config{Level: l.Level, Format: l.Format, Output: l.Output}
}
