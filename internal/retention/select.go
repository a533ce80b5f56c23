// Package retention decides which snapshots a generational schedule keeps.
package retention

import (
	"slices"
	"sort"
	"time"

	"github.com/raoulx24/snaprotate/internal/logging"
	"github.com/raoulx24/snaprotate/internal/schedule"
	"github.com/raoulx24/snaprotate/internal/snapshot"
)

// PruneThreshold is the relative age at or below which a snapshot is too
// close to the last kept one to be worth a second copy.
const PruneThreshold = 0.65

// Classified is the verdict on one snapshot for a single analysis run.
type Classified struct {
	snapshot.Snapshot

	Status Status
	// Age is the distance to the most recently kept snapshot.
	Age time.Duration
	// Gap is the distance to the next newer snapshot.
	Gap time.Duration
	// RelAge is Age in units of the active window's interval.
	RelAge float64
	// Window labels the window the snapshot was judged in.
	Window string
}

// Classify walks snapshots newest first and labels each one against the
// windows, consumed finest interval first. Snapshots dated after now are
// left out of the result. Neither input slice is modified.
func Classify(windows []schedule.Window, snaps []snapshot.Snapshot, now time.Time, log logging.Logger) []Classified {
	ws := make([]schedule.Window, 0, len(windows))
	for _, w := range windows {
		if w.Interval <= 0 {
			log.Warn("ignoring window without interval", "window", w.Label)
			continue
		}
		ws = append(ws, w)
	}
	sort.SliceStable(ws, func(i, j int) bool { return ws[i].Interval < ws[j].Interval })

	sorted := slices.Clone(snaps)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Timestamp.Equal(sorted[j].Timestamp) {
			return sorted[i].Name > sorted[j].Name
		}
		return sorted[i].Timestamp.After(sorted[j].Timestamp)
	})

	cands := sorted[:0]
	for _, s := range sorted {
		if s.Timestamp.After(now) {
			log.Warn("ignoring snapshot from the future", "snapshot", s.Path, "timestamp", s.Timestamp, "now", now)
			continue
		}
		cands = append(cands, s)
	}

	out := make([]Classified, len(cands))
	if len(cands) == 0 {
		return out
	}

	out[0] = Classified{Snapshot: cands[0], Status: Keep}
	anchor := cands[0].Timestamp
	cur := -1

	for i := 1; i < len(cands); i++ {
		s := cands[i]
		c := Classified{Snapshot: s, Gap: cands[i-1].Timestamp.Sub(s.Timestamp)}

		for cur < len(ws) && (cur < 0 || s.Timestamp.Before(ws[cur].Start)) {
			cur++
		}
		if cur >= len(ws) {
			log.Debug("schedule exhausted", "from", s.Path, "remaining", len(cands)-i)
			markOld(out, cands, i, anchor)
			break
		}

		w := ws[cur]
		c.Window = w.Label
		c.Age = anchor.Sub(s.Timestamp)
		c.RelAge = float64(c.Age) / float64(w.Interval)

		switch {
		case c.RelAge <= PruneThreshold:
			c.Status = Prune
		case i+1 < len(cands) && closer(anchor.Sub(cands[i+1].Timestamp), c.Age, w.Interval):
			c.Status = KeepNext
		default:
			c.Status = Keep
			anchor = s.Timestamp
		}

		log.Debug("classified snapshot",
			"snapshot", s.Name, "status", c.Status, "window", w.Label,
			"age", c.Age, "gap", c.Gap, "relage", c.RelAge)
		out[i] = c
	}

	return out
}

// markOld labels cands[from:] Old. The anchor no longer moves.
func markOld(out []Classified, cands []snapshot.Snapshot, from int, anchor time.Time) {
	for j := from; j < len(cands); j++ {
		s := cands[j]
		out[j] = Classified{
			Snapshot: s,
			Status:   Old,
			Age:      anchor.Sub(s.Timestamp),
			Gap:      cands[j-1].Timestamp.Sub(s.Timestamp),
		}
	}
}

// closer reports whether age a lands nearer the interval than age b.
func closer(a, b, interval time.Duration) bool {
	return abs(a-interval) < abs(b-interval)
}

func abs(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
