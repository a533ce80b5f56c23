package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

var snapshotRetention bool

// snapshotCmd takes a snapshot of finished syncs by hand
var snapshotCmd = &cobra.Command{
	Use:   "snapshot source...",
	Short: "Snapshot the sync directory of the named sources",
	Long: `Hardlink <sync.root>/<source> into <store.root>/<source>/<stamp time>.
With --retention the schedule is applied to the source afterwards.`,
	Args: cobra.MinimumNArgs(1),
	RunE: snapshotHandler,
}

func init() {
	snapshotCmd.Flags().BoolVar(&snapshotRetention, "retention", false, "apply retention after the snapshot")
}

func snapshotHandler(cmd *cobra.Command, args []string) error {
	a, err := newApp(nil, false)
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	var errs []error
	for _, src := range args {
		snap, err := a.creator.Create(cmd.Context(), filepath.Join(a.cfg.Sync.Root, src))
		if err != nil {
			errs = append(errs, fmt.Errorf("source %s: %w", src, err))
			continue
		}
		fmt.Fprintf(out, "%s: created %s\n", src, snap.Path)

		if !snapshotRetention {
			continue
		}
		if _, err := a.engine.Run(cmd.Context(), src); err != nil {
			errs = append(errs, fmt.Errorf("source %s: %w", src, err))
		}
	}
	return errors.Join(errs...)
}
