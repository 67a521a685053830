package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/untoldecay/grove/internal/config"
	"github.com/untoldecay/grove/internal/exportimport"
	"github.com/untoldecay/grove/internal/store"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Replace the live database with the contents of the export path",
	RunE: func(cmd *cobra.Command, _ []string) error {
		data, export := config.DataPath(), config.ExportPath()
		e, err := store.Open(data, config.Roots())
		if err != nil {
			return fmt.Errorf("grove import: %w", err)
		}
		defer e.Close()
		if err := exportimport.Import(export, data, e); err != nil {
			return fmt.Errorf("grove import: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "imported %s into %s\n", export, data)
		return nil
	},
}
