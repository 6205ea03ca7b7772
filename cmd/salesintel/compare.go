package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skygeni/sales-intel/internal/modules/dataset"
	"github.com/skygeni/sales-intel/internal/modules/drivers"
	"github.com/skygeni/sales-intel/internal/modules/model"
	"github.com/skygeni/sales-intel/internal/modules/report"
)

// compareRecentQuarters is the default size of the recent window
const compareRecentQuarters = 2

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare driver rankings between a baseline and a recent period",
	Long: "Compare splits the dataset by quarter, fits a driver model on each " +
		"period and reports which negative drivers changed materially.",
	RunE: runCompare,
}

var (
	compareCSVPath  string
	compareQuarters int
)

func init() {
	compareCmd.Flags().StringVarP(&compareCSVPath, "csv", "c", "", "Compare a CSV directly instead of the stored dataset")
	compareCmd.Flags().IntVarP(&compareQuarters, "recent-quarters", "r", compareRecentQuarters, "Number of quarters in the recent window")
	rootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	if compareQuarters < 1 {
		return fmt.Errorf("recent-quarters must be at least 1")
	}

	deals, err := a.loadDeals(compareCSVPath)
	if err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}
	deals = dataset.AddDerivedFeatures(deals)

	baseline, recent := splitByQuarter(deals, compareQuarters)
	if len(baseline) == 0 || len(recent) == 0 {
		return fmt.Errorf("dataset does not span more than %d quarters", compareQuarters)
	}
	a.log.Info().
		Int("baseline_deals", len(baseline)).
		Int("recent_deals", len(recent)).
		Msg("Comparing periods")

	recentModel, err := model.Fit(recent)
	if err != nil {
		return fmt.Errorf("failed to fit recent model: %w", err)
	}

	engine := drivers.NewEngine(a.log)
	cfg := drivers.DefaultConfig()
	cfg.TopN = a.cfg.TopN
	comparison, err := engine.ComparePeriods(recentModel, baseline, cfg)
	if err != nil {
		return fmt.Errorf("failed to compare periods: %w", err)
	}

	fmt.Println(report.RenderComparison(comparison))
	return nil
}
