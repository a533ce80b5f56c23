package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raoulx24/snaprotate/internal/schedule"
)

const sampleYAML = `
store:
  root: $(SNAPROTATE_TEST_ROOT)/Backups
sync:
  root: /srv/sync
  sources: [miranda, ariel]
  exclude: ["cache/", "*.tmp"]
  watch:
    mode: poll
    pollInterval: 5s
retention:
  cron: "15 * * * *"
  dryRun: true
  schedule:
    - { interval: 1h, keep: 2D }
    - { interval: 1D, keep: 1M }
logging:
  level: debug
  format: json
`

func TestLoadYAML(t *testing.T) {
	t.Setenv("SNAPROTATE_TEST_ROOT", "/data")
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/data/Backups", cfg.Store.Root)
	assert.Equal(t, []string{"miranda", "ariel"}, cfg.Sync.Sources)
	assert.Equal(t, []string{"cache/", "*.tmp"}, cfg.Sync.Exclude)
	assert.Equal(t, "poll", cfg.Sync.Watch.Mode)
	assert.Equal(t, 5*time.Second, cfg.Sync.Watch.PollInterval)
	assert.Equal(t, 2*time.Second, cfg.Sync.Watch.DebounceWindow, "default kept")
	assert.True(t, cfg.Retention.DryRun)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "stderr", cfg.Logging.Output)
	assert.Equal(t, 10, cfg.Process.Nice)

	rules, err := cfg.Rules()
	require.NoError(t, err)
	assert.Equal(t, []schedule.Rule{
		{Interval: schedule.Hour, Retention: 2 * schedule.Day},
		{Interval: schedule.Day, Retention: schedule.Month},
	}, rules)
}

func TestLoadTOML(t *testing.T) {
	const sample = `
[store]
root = "/data/Backups"

[sync]
root = "/srv/sync"

[sync.watch]
mode = "fsnotify"
debounceWindow = "500ms"

[[retention.schedule]]
interval = "2h"
keep = "1W"

[metrics]
listen = ":9310"
`
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "fsnotify", cfg.Sync.Watch.Mode)
	assert.Equal(t, 500*time.Millisecond, cfg.Sync.Watch.DebounceWindow)
	assert.Equal(t, []schedule.RuleSpec{{Interval: "2h", Keep: "1W"}}, cfg.Retention.Schedule)
	assert.Equal(t, ":9310", cfg.Metrics.Listen)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	rules, err := cfg.Rules()
	require.NoError(t, err)
	assert.Len(t, rules, 6)
	assert.Equal(t, 5*schedule.Year, rules[5].Retention)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"no root", func(c *Config) { c.Store.Root = "" }, "store.root"},
		{"empty schedule", func(c *Config) { c.Retention.Schedule = nil }, "schedule is empty"},
		{"bad duration", func(c *Config) { c.Retention.Schedule[0].Keep = "1 day" }, "invalid duration"},
		{"zero interval", func(c *Config) { c.Retention.Schedule[0].Interval = "0" }, "interval must be positive"},
		{"keep shorter than interval", func(c *Config) { c.Retention.Schedule[0] = schedule.RuleSpec{Interval: "1D", Keep: "1h"} }, "shorter than interval"},
		{"bad cron", func(c *Config) { c.Retention.Cron = "every hour" }, "retention.cron"},
		{"bad mode", func(c *Config) { c.Sync.Watch.Mode = "inotify" }, "sync.watch.mode"},
		{"no poll interval", func(c *Config) { c.Sync.Watch.PollInterval = 0 }, "pollInterval"},
		{"negative debounce", func(c *Config) { c.Sync.Watch.DebounceWindow = -time.Second }, "debounceWindow"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("SNAPROTATE_HOST", "miranda")
	assert.Equal(t, "/sync/miranda/x", expandEnvVars("/sync/$(SNAPROTATE_HOST)/x"))
	assert.Equal(t, "/sync//x", expandEnvVars("/sync/$(SNAPROTATE_UNSET_VAR)/x"))
	assert.Equal(t, "$HOME", expandEnvVars("$HOME"))
}
