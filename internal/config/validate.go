package config

import (
	"errors"
	"fmt"

	"github.com/robfig/cron/v3"
)

// Validate rejects configurations that have no safe interpretation.
func (c *Config) Validate() error {
	var errs []error

	if c.Store.Root == "" {
		errs = append(errs, errors.New("store.root is required"))
	}

	if len(c.Retention.Schedule) == 0 {
		errs = append(errs, errors.New("retention.schedule is empty"))
	}
	rules, err := c.Rules()
	if err != nil {
		errs = append(errs, fmt.Errorf("retention.schedule: %w", err))
	}
	for i, r := range rules {
		if r.Interval <= 0 {
			errs = append(errs, fmt.Errorf("retention.schedule[%d]: interval must be positive", i))
		}
		if r.Retention < r.Interval {
			errs = append(errs, fmt.Errorf("retention.schedule[%d]: keep %s is shorter than interval %s",
				i, c.Retention.Schedule[i].Keep, c.Retention.Schedule[i].Interval))
		}
	}

	if c.Retention.Cron != "" {
		if _, err := cron.ParseStandard(c.Retention.Cron); err != nil {
			errs = append(errs, fmt.Errorf("retention.cron %q: %w", c.Retention.Cron, err))
		}
	}

	switch c.Sync.Watch.Mode {
	case "auto", "poll", "fsnotify":
	default:
		errs = append(errs, fmt.Errorf("sync.watch.mode %q (expected auto, poll or fsnotify)", c.Sync.Watch.Mode))
	}
	if c.Sync.Watch.Mode != "fsnotify" && c.Sync.Watch.PollInterval <= 0 {
		errs = append(errs, errors.New("sync.watch.pollInterval must be positive"))
	}
	if c.Sync.Watch.DebounceWindow < 0 {
		errs = append(errs, errors.New("sync.watch.debounceWindow must not be negative"))
	}

	return errors.Join(errs...)
}
