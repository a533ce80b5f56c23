package retention

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/raoulx24/snaprotate/internal/schedule"
	"github.com/raoulx24/snaprotate/internal/snapshot"
)

// Bucket groups the snapshots that fall inside one window.
type Bucket struct {
	Window    schedule.Window
	Snapshots []snapshot.Snapshot
}

// Report places every snapshot in the window covering it. It is for humans
// only; pruning never looks at it.
type Report struct {
	Now     time.Time
	Buckets []Bucket
	// Expired snapshots are older than every window.
	Expired []snapshot.Snapshot
	// Future snapshots are dated after Now.
	Future []snapshot.Snapshot
}

// Buckets assigns snapshots to windows, keeping window order. A snapshot on
// a shared boundary goes to the earlier window. Snapshots within a bucket
// are newest first.
func Buckets(windows []schedule.Window, snaps []snapshot.Snapshot, now time.Time) Report {
	r := Report{Now: now, Buckets: make([]Bucket, len(windows))}
	for i, w := range windows {
		r.Buckets[i].Window = w
	}

	for _, s := range snaps {
		if s.Timestamp.After(now) {
			r.Future = append(r.Future, s)
			continue
		}
		placed := false
		for i := range r.Buckets {
			if r.Buckets[i].Window.Contains(s.Timestamp) {
				r.Buckets[i].Snapshots = append(r.Buckets[i].Snapshots, s)
				placed = true
				break
			}
		}
		if !placed {
			r.Expired = append(r.Expired, s)
		}
	}

	for i := range r.Buckets {
		newestFirst(r.Buckets[i].Snapshots)
	}
	newestFirst(r.Expired)
	newestFirst(r.Future)
	return r
}

func newestFirst(s []snapshot.Snapshot) {
	sort.SliceStable(s, func(i, j int) bool { return s[i].Timestamp.After(s[j].Timestamp) })
}

const timeLayout = "2006-01-02 15:04"

// WriteBuckets renders r as a table.
func WriteBuckets(w io.Writer, r Report) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "WINDOW\tFROM\tTO\tSNAPSHOTS\tNEWEST")
	for _, b := range r.Buckets {
		newest := "-"
		if len(b.Snapshots) > 0 {
			newest = b.Snapshots[0].Name
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n",
			b.Window.Label, b.Window.Start.UTC().Format(timeLayout), b.Window.End.UTC().Format(timeLayout),
			len(b.Snapshots), newest)
	}
	fmt.Fprintf(tw, "expired\t-\t-\t%d\t-\n", len(r.Expired))
	if len(r.Future) > 0 {
		fmt.Fprintf(tw, "future\t-\t-\t%d\t-\n", len(r.Future))
	}
	return tw.Flush()
}

// WritePlan renders classified snapshots as a table, newest first.
func WritePlan(w io.Writer, classified []Classified) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SNAPSHOT\tTIMESTAMP\tSTATUS\tAGE\tGAP\tRELAGE\tWINDOW")
	for _, c := range classified {
		window := c.Window
		if window == "" {
			window = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%.2f\t%s\n",
			c.Name, c.Timestamp.UTC().Format(timeLayout), c.Status,
			c.Age, c.Gap, c.RelAge, window)
	}
	s := Summary(classified)
	fmt.Fprintf(tw, "\ntotal %d: keep %d, keep-next %d, prune %d, old %d\n",
		s.Total(), s.Keep, s.KeepNext, s.Prune, s.Old)
	return tw.Flush()
}
