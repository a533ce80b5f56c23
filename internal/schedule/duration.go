// Package schedule parses retention durations and expands retention rules
// into time windows anchored at a fixed instant.
package schedule

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrParse is matched by every *ParseError.
var ErrParse = errors.New("invalid duration")

// ParseError reports a malformed duration expression.
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid duration %q: %s", e.Input, e.Reason)
}

func (e *ParseError) Is(target error) bool { return target == ErrParse }

// Fixed-length units. Months and quarters are approximations, not calendar aware.
const (
	Second  = time.Second
	Minute  = 60 * Second
	Hour    = 60 * Minute
	Day     = 24 * Hour
	Week    = 7 * Day
	Month   = 30 * Day
	Quarter = 91 * Day
	Year    = 365 * Day
)

var units = map[byte]time.Duration{
	's': Second,
	'm': Minute,
	'h': Hour,
	'D': Day,
	'W': Week,
	'M': Month,
	'Q': Quarter,
	'Y': Year,
}

// largest first, for FormatDuration
var unitOrder = []byte{'Y', 'Q', 'M', 'W', 'D', 'h', 'm', 's'}

// ParseDuration parses expressions like "90m", "6M" or "45". A bare number is
// seconds; a bare unit letter means one of that unit.
func ParseDuration(s string) (time.Duration, error) {
	in := strings.TrimSpace(s)
	if in == "" {
		return 0, &ParseError{Input: s, Reason: "empty"}
	}

	i := 0
	for i < len(in) && in[i] >= '0' && in[i] <= '9' {
		i++
	}
	digits := in[:i]

	unit := Second
	switch {
	case i == len(in):
		// digits only
	case i == len(in)-1:
		u, ok := units[in[i]]
		if !ok {
			return 0, &ParseError{Input: s, Reason: fmt.Sprintf("unknown unit %q", in[i])}
		}
		unit = u
	default:
		if _, ok := units[in[i]]; ok {
			return 0, &ParseError{Input: s, Reason: fmt.Sprintf("unexpected %q after unit", in[i+1:])}
		}
		return 0, &ParseError{Input: s, Reason: fmt.Sprintf("unexpected character %q", in[i])}
	}

	n := int64(1)
	if digits != "" {
		v, err := strconv.ParseInt(digits, 10, 64)
		if err != nil {
			return 0, &ParseError{Input: s, Reason: "number out of range"}
		}
		n = v
	}

	if n > int64(1<<63-1)/int64(unit) {
		return 0, &ParseError{Input: s, Reason: "duration out of range"}
	}
	return time.Duration(n) * unit, nil
}

// FormatDuration renders d in the largest unit that divides it exactly,
// e.g. 5400s -> "90m", 86400s -> "1D".
func FormatDuration(d time.Duration) string {
	if d <= 0 || d%Second != 0 {
		return d.String()
	}
	for _, c := range unitOrder {
		u := units[c]
		if d%u == 0 {
			return strconv.FormatInt(int64(d/u), 10) + string(c)
		}
	}
	return d.String()
}
