package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/untoldecay/grove/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "grove",
	Short: "A terminal task manager over a DAG of shared, ordered tasks",
	Long: `grove is an interactive terminal task manager whose persistent state is a
DAG of tasks with shared children, sibling priority ordering, work sessions,
and due dates.

Running grove with no subcommand prints this help; this binary has no
interactive viewport. The subcommands below manage the underlying store
directly.`,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := config.Initialize(); err != nil {
			return fmt.Errorf("grove: %w", err)
		}
		if v, _ := cmd.Flags().GetString("data"); v != "" {
			config.Set("data", v)
		}
		if v, _ := cmd.Flags().GetString("export"); v != "" {
			config.Set("export", v)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("data", "", "path to the live grove database (default: ~/.grove/grove.db)")
	rootCmd.PersistentFlags().String("export", "", "path to the export sidecar database (default: ~/.grove/export.db)")
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(doctorCmd)
}

// Execute runs the root command, printing any error to stderr. Returns a
// non-nil error so main can set a non-zero exit code.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	return nil
}
