package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/raoulx24/snaprotate/internal/snapshot"
)

// sourcesCmd lists the sources in the store
var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List sources and their snapshots",
	Args:  cobra.NoArgs,
	RunE:  sourcesHandler,
}

func sourcesHandler(cmd *cobra.Command, args []string) error {
	a, err := newApp(nil, true)
	if err != nil {
		return err
	}
	defer a.Close()

	sources, err := a.repo.ListSources()
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SOURCE\tSNAPSHOTS\tOLDEST\tNEWEST")
	for _, src := range sources {
		snaps, err := a.repo.List(src)
		if err != nil {
			return err
		}
		oldest, newest := "-", "-"
		if len(snaps) > 0 {
			oldest = snaps[0].Timestamp.Format(snapshot.NameLayout)
			newest = snaps[len(snaps)-1].Timestamp.Format(snapshot.NameLayout)
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", src, len(snaps), oldest, newest)
	}
	return tw.Flush()
}
