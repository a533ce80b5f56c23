package schedule

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"90m", 5400 * time.Second},
		{"1D", 86400 * time.Second},
		{"45", 45 * time.Second},
		{"1h", time.Hour},
		{"10s", 10 * time.Second},
		{"1W", 604800 * time.Second},
		{"6M", 6 * 2592000 * time.Second},
		{"1Q", 7862400 * time.Second},
		{"2Y", 2 * 31536000 * time.Second},
		{"0", 0},
		{" 2h ", 2 * time.Hour},
		{"h", time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDuration(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDurationErrors(t *testing.T) {
	for _, in := range []string{"", "   ", "1x", "1.5h", "-3h", "h1", "1hh", "1 h", "99999999999999999999s", "300Y"} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseDuration(in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrParse))

			var pe *ParseError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, in, pe.Input)
		})
	}
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "90m", FormatDuration(5400*time.Second))
	assert.Equal(t, "1D", FormatDuration(Day))
	assert.Equal(t, "6M", FormatDuration(6*Month))
	assert.Equal(t, "5Y", FormatDuration(5*Year))
	assert.Equal(t, "45s", FormatDuration(45*time.Second))
	assert.Equal(t, "1.5s", FormatDuration(1500*time.Millisecond))
}

func TestParseRules(t *testing.T) {
	rules, err := ParseRules([]RuleSpec{{Interval: "1h", Keep: "2D"}, {Interval: "1D", Keep: "1M"}})
	require.NoError(t, err)
	assert.Equal(t, []Rule{
		{Interval: Hour, Retention: 2 * Day},
		{Interval: Day, Retention: Month},
	}, rules)

	_, err = ParseRules([]RuleSpec{{Interval: "1h", Keep: "2 days"}})
	assert.ErrorIs(t, err, ErrParse)
}

func TestExpand(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	rules := []Rule{
		{Interval: Hour, Retention: Day},
		{Interval: 2 * Hour, Retention: Week},
		{Interval: Day, Retention: Month},
	}

	windows := Expand(rules, now)
	require.Len(t, windows, 3)

	assert.Equal(t, now, windows[0].End)
	assert.Equal(t, now.Add(-Day), windows[0].Start)
	assert.Equal(t, now.Add(-Day), windows[1].End)
	assert.Equal(t, now.Add(-Week), windows[1].Start)
	assert.Equal(t, now.Add(-Week), windows[2].End)
	assert.Equal(t, now.Add(-Month), windows[2].Start)

	for i, w := range windows {
		assert.Equal(t, rules[i].Interval, w.Interval)
		assert.Equal(t, rules[i].Retention, w.Retention)
		if i > 0 {
			assert.True(t, w.End.Before(windows[i-1].End), "end boundaries must strictly decrease")
		}
	}
	assert.Equal(t, "every 2h for 1W", windows[1].Label)
	assert.True(t, windows[1].Contains(now.Add(-2*Day)))
	assert.False(t, windows[1].Contains(now.Add(-Hour)))
}

func TestExpandEmpty(t *testing.T) {
	assert.Empty(t, Expand(nil, time.Now()))
}
