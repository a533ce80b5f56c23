package retention

import (
	"fmt"
	"strings"
)

// Status is the verdict for one snapshot in one analysis run.
type Status int

const (
	// Keep snapshots survive the run. The newest snapshot is always Keep.
	Keep Status = iota
	// KeepNext defers to the next older snapshot, which lands closer to the
	// ideal spacing. The snapshot itself is discarded.
	KeepNext
	// Prune snapshots are too close to the last kept one.
	Prune
	// Old snapshots are older than every schedule window.
	Old
)

var statusNames = [...]string{"keep", "keep-next", "prune", "old"}

func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return fmt.Sprintf("status(%d)", int(s))
	}
	return statusNames[s]
}

func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Discard reports whether a snapshot with this status gets removed.
func (s Status) Discard() bool { return s != Keep }

// ParseStatus is the inverse of String.
func ParseStatus(s string) (Status, error) {
	for i, n := range statusNames {
		if strings.EqualFold(s, n) {
			return Status(i), nil
		}
	}
	return 0, fmt.Errorf("unknown status %q", s)
}

// Counts tallies classified snapshots per status.
type Counts struct {
	Keep     int
	KeepNext int
	Prune    int
	Old      int
}

func (c Counts) Total() int { return c.Keep + c.KeepNext + c.Prune + c.Old }

// ByStatus returns the counts keyed by status name.
func (c Counts) ByStatus() map[string]int {
	return map[string]int{
		Keep.String():     c.Keep,
		KeepNext.String(): c.KeepNext,
		Prune.String():    c.Prune,
		Old.String():      c.Old,
	}
}

// Summary counts classified snapshots per status.
func Summary(classified []Classified) Counts {
	var c Counts
	for _, s := range classified {
		switch s.Status {
		case Keep:
			c.Keep++
		case KeepNext:
			c.KeepNext++
		case Prune:
			c.Prune++
		case Old:
			c.Old++
		}
	}
	return c
}
