package main

import (
	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "snaprotate",
	Short: "snaprotate - generational retention for hardlink snapshots",
	Long: `snaprotate turns finished syncs into hardlinked snapshots and thins
them out according to a "keep one every X for Y" schedule.`,
	Version:      Version,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "path to the YAML or TOML configuration")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override logging.level")

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(pruneCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(sourcesCmd)
	rootCmd.AddCommand(purgeCmd)
}
