package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/untoldecay/grove/internal/config"
	"github.com/untoldecay/grove/internal/exportimport"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Copy the live database to the export path atomically",
	RunE: func(cmd *cobra.Command, _ []string) error {
		data, export := config.DataPath(), config.ExportPath()
		if err := exportimport.Export(data, export); err != nil {
			return fmt.Errorf("grove export: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "exported %s to %s\n", data, export)
		return nil
	},
}
