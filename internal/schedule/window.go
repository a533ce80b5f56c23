package schedule

import (
	"fmt"
	"time"
)

// Rule keeps one snapshot every Interval for Retention.
type Rule struct {
	Interval  time.Duration
	Retention time.Duration
}

func (r Rule) String() string {
	return fmt.Sprintf("every %s for %s", FormatDuration(r.Interval), FormatDuration(r.Retention))
}

// RuleSpec is the textual form of a Rule as it appears in configuration.
type RuleSpec struct {
	Interval string `yaml:"interval" toml:"interval"`
	Keep     string `yaml:"keep" toml:"keep"`
}

// ParseRules converts textual rules, preserving their order.
func ParseRules(specs []RuleSpec) ([]Rule, error) {
	rules := make([]Rule, 0, len(specs))
	for i, s := range specs {
		interval, err := ParseDuration(s.Interval)
		if err != nil {
			return nil, fmt.Errorf("rule %d interval: %w", i, err)
		}
		keep, err := ParseDuration(s.Keep)
		if err != nil {
			return nil, fmt.Errorf("rule %d keep: %w", i, err)
		}
		rules = append(rules, Rule{Interval: interval, Retention: keep})
	}
	return rules, nil
}

// Window is the span of the past governed by one rule.
type Window struct {
	Label     string
	Start     time.Time
	End       time.Time
	Retention time.Duration
	Interval  time.Duration
}

// Contains reports whether t lies in [Start, End].
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// Expand turns rules into windows counting backward from now, one per rule
// and in rule order. The first window ends at now; every later window ends
// where the previous one starts.
func Expand(rules []Rule, now time.Time) []Window {
	windows := make([]Window, 0, len(rules))
	prevStart := now
	for _, r := range rules {
		start := now.Add(-r.Retention)
		windows = append(windows, Window{
			Label:     r.String(),
			Start:     start,
			End:       prevStart,
			Retention: r.Retention,
			Interval:  r.Interval,
		})
		prevStart = start
	}
	return windows
}
