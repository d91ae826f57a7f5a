package main

import (
	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	gitCommit = "unknown"

	configFlag string
)

var rootCmd = &cobra.Command{
	Use:     "sentinel",
	Short:   "Declarative service-availability monitor",
	Version: version + " (" + gitCommit + ")",
	Long: `sentinel probes a declarative list of HTTP(S) endpoints on a
recurring schedule, classifies each probe PASS/DEGRADED/FAIL, appends the
outcome to an append-only historical log, and publishes a current-status
snapshot for downstream renderers.

Running sentinel with no subcommand is equivalent to "sentinel run".`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMonitor(cmd, once)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "path to the configuration file (overrides CONFIG_FILE)")
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(validateCmd)
}
