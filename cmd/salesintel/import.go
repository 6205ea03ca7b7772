package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skygeni/sales-intel/internal/modules/dataset"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a deal CSV into the local database",
	Long:  "Import reads a closed-deal CSV, validates it and replaces the stored dataset.",
	RunE:  runImport,
}

var importCSVPath string

func init() {
	importCmd.Flags().StringVarP(&importCSVPath, "csv", "c", "", "Path to the deal CSV (defaults to DATA_PATH)")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	path := importCSVPath
	if path == "" {
		path = a.cfg.DataPath
	}

	deals, err := dataset.LoadCSV(path)
	if err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}
	a.log.Info().Str("path", path).Int("deals", len(deals)).Msg("Loaded dataset")

	if valid, issues := dataset.Validate(deals); !valid {
		for _, issue := range issues {
			a.log.Warn().Str("issue", issue).Msg("Data validation issue")
		}
	}

	if err := a.deals.ReplaceAll(deals); err != nil {
		return fmt.Errorf("failed to store dataset: %w", err)
	}

	a.log.Info().Int("deals", len(deals)).Msg("Import complete")
	return nil
}
