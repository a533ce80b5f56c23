package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var purgeAll bool

// purgeCmd empties quarantines left behind by an interrupted prune
var purgeCmd = &cobra.Command{
	Use:   "purge [source...]",
	Short: "Delete leftovers in the quarantine area",
	Long: `A prune moves snapshots to <store>/_old/<source> before deleting them.
If a run was interrupted in between, purge finishes the deletion.`,
	RunE: purgeHandler,
}

func init() {
	purgeCmd.Flags().BoolVar(&purgeAll, "all", false, "purge the quarantine of every source")
}

func purgeHandler(cmd *cobra.Command, args []string) error {
	a, err := newApp(nil, false)
	if err != nil {
		return err
	}
	defer a.Close()

	sources, err := a.sources(args, purgeAll)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	var errs []error
	for _, src := range sources {
		res, err := a.pruner.Purge(cmd.Context(), src)
		if err != nil {
			errs = append(errs, fmt.Errorf("source %s: %w", src, err))
		}
		fmt.Fprintf(out, "%s: purged %d\n", src, len(res.Deleted))
	}
	return errors.Join(errs...)
}
