package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/raoulx24/snaprotate/internal/priority"
)

var (
	pruneAll    bool
	pruneDryRun bool
)

// pruneCmd runs retention once and exits
var pruneCmd = &cobra.Command{
	Use:   "prune [source...]",
	Short: "Apply the retention schedule once",
	Long: `Classify the snapshots of the named sources (or of every source with
--all) and delete those the schedule no longer keeps. Exits non-zero when
any source failed.`,
	RunE: pruneHandler,
}

func init() {
	pruneCmd.Flags().BoolVar(&pruneAll, "all", false, "prune every source in the store")
	pruneCmd.Flags().BoolVar(&pruneDryRun, "dry-run", false, "report what would be deleted without deleting")
}

func pruneHandler(cmd *cobra.Command, args []string) error {
	a, err := newApp(nil, pruneDryRun)
	if err != nil {
		return err
	}
	defer a.Close()

	sources, err := a.sources(args, pruneAll)
	if err != nil {
		return err
	}

	if err := priority.Lower(a.cfg.Process.Nice, a.cfg.Process.IdleIO); err != nil {
		a.log.Warn("lowering priority", "error", err)
	}

	out := cmd.OutOrStdout()
	var errs []error
	for _, src := range sources {
		res, err := a.engine.Run(cmd.Context(), src)
		if err != nil {
			errs = append(errs, fmt.Errorf("source %s: %w", src, err))
		}

		verb := "deleted"
		names := res.Prune.Deleted
		if res.Prune.DryRun {
			verb, names = "would delete", res.Prune.Quarantined
		}
		fmt.Fprintf(out, "%s: %s %d of %d snapshots", src, verb, len(names), res.Counts.Total())
		if len(names) > 0 {
			fmt.Fprintf(out, " (%s)", strings.Join(names, ", "))
		}
		fmt.Fprintln(out)
		for _, f := range res.Prune.Failed {
			fmt.Fprintf(out, "%s: %s %s failed: %v\n", src, f.Op, f.Name, f.Err)
		}
	}
	return errors.Join(errs...)
}
