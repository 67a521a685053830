package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/untoldecay/grove/internal/config"
	grovedoctor "github.com/untoldecay/grove/internal/doctor"
	"github.com/untoldecay/grove/internal/store"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Open the database and check every cross-index invariant",
	RunE: func(cmd *cobra.Command, _ []string) error {
		e, err := store.Open(config.DataPath(), config.Roots())
		if err != nil {
			return fmt.Errorf("grove doctor: %w", err)
		}
		defer e.Close()

		snap, err := e.Reader()
		if err != nil {
			return fmt.Errorf("grove doctor: %w", err)
		}
		defer snap.Close()

		checks, err := grovedoctor.Run(snap)
		if err != nil {
			return fmt.Errorf("grove doctor: %w", err)
		}

		out := cmd.OutOrStdout()
		var failed bool
		for _, c := range checks {
			if c.OK {
				fmt.Fprintf(out, "ok   %s\n", c.Name)
				continue
			}
			failed = true
			fmt.Fprintf(out, "FAIL %s: %s\n", c.Name, c.Detail)
			break
		}
		if failed {
			return fmt.Errorf("grove doctor: invariant violation found")
		}
		return nil
	},
}
