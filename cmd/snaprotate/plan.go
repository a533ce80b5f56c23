package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/raoulx24/snaprotate/internal/retention"
)

var planBuckets bool

// planCmd prints the classification without changing anything
var planCmd = &cobra.Command{
	Use:   "plan [source...]",
	Short: "Show what the retention schedule would keep",
	Long: `Print, per source, the verdict on every snapshot. With --buckets the
snapshots are also grouped by schedule window. Without arguments every
source in the store is shown.`,
	RunE: planHandler,
}

func init() {
	planCmd.Flags().BoolVar(&planBuckets, "buckets", false, "also print snapshots grouped by window")
}

func planHandler(cmd *cobra.Command, args []string) error {
	a, err := newApp(nil, true)
	if err != nil {
		return err
	}
	defer a.Close()

	sources := args
	if len(sources) == 0 {
		if sources, err = a.repo.ListSources(); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	var errs []error
	for i, src := range sources {
		res, err := a.engine.Plan(src)
		if err != nil {
			errs = append(errs, fmt.Errorf("source %s: %w", src, err))
			continue
		}

		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintf(out, "== %s (now %s)\n", src, res.Now.Format("2006-01-02 15:04:05 MST"))
		if planBuckets {
			if err := retention.WriteBuckets(out, res.Report); err != nil {
				return err
			}
			fmt.Fprintln(out)
		}
		if err := retention.WritePlan(out, res.Snapshots); err != nil {
			return err
		}
	}
	return errors.Join(errs...)
}
