package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/skygeni/sales-intel/internal/domain"
	"github.com/skygeni/sales-intel/internal/modules/dataset"
	"github.com/skygeni/sales-intel/internal/modules/drivers"
	"github.com/skygeni/sales-intel/internal/modules/insights"
	"github.com/skygeni/sales-intel/internal/modules/model"
	"github.com/skygeni/sales-intel/internal/modules/report"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run the full driver analysis and write a report",
	Long: "Analyze fits the win rate driver model on the dataset, ranks drivers, " +
		"generates insights and writes a markdown report.",
	RunE: runAnalyze,
}

var (
	analyzeCSVPath    string
	analyzeSegmentCol string
)

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeCSVPath, "csv", "c", "", "Analyze a CSV directly instead of the stored dataset")
	analyzeCmd.Flags().StringVarP(&analyzeSegmentCol, "segment", "s", domain.ColACVBucket, "Segment column for the summary table")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	deals, err := a.loadDeals(analyzeCSVPath)
	if err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}

	if valid, issues := dataset.Validate(deals); !valid {
		for _, issue := range issues {
			a.log.Warn().Str("issue", issue).Msg("Data validation issue")
		}
	}
	deals = dataset.AddDerivedFeatures(deals)

	runID, err := a.runs.Start(len(deals))
	if err != nil {
		a.log.Error().Err(err).Msg("Failed to record run start")
	}

	m, err := model.Fit(deals)
	if err != nil {
		if runID != "" {
			if failErr := a.runs.Fail(runID); failErr != nil {
				a.log.Error().Err(failErr).Msg("Failed to record run failure")
			}
		}
		return fmt.Errorf("failed to fit driver model: %w", err)
	}
	a.log.Info().
		Float64("train_accuracy", m.TrainAccuracy).
		Float64("test_accuracy", m.TestAccuracy).
		Int("training_samples", m.TrainingSamples).
		Msg("Driver model fitted")

	engine := drivers.NewEngine(a.log)
	cfg := drivers.DefaultConfig()
	cfg.TopN = a.cfg.TopN
	ranked := engine.Rank(m, deals, cfg)

	comparison := comparePeriodsIfPossible(a, engine, deals, cfg)
	found := collectInsights(a, deals)

	content := report.Render(report.Input{
		Deals:      deals,
		Drivers:    ranked,
		Comparison: comparison,
		Insights:   found,
		SegmentCol: analyzeSegmentCol,
	})
	reportPath, err := report.Save(a.cfg.ReportDir, content)
	if err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	a.log.Info().Str("path", reportPath).Msg("Report written")

	modelPath := a.cfg.ModelPath
	if err := m.Save(modelPath); err != nil {
		a.log.Error().Err(err).Str("path", modelPath).Msg("Failed to save model")
		modelPath = ""
	}

	if runID != "" {
		if err := a.runs.Finish(runID, m.TrainAccuracy, m.TestAccuracy, reportPath, modelPath); err != nil {
			a.log.Error().Err(err).Msg("Failed to record run finish")
		}
	}

	fmt.Println(content)
	return nil
}

// comparePeriodsIfPossible runs the baseline-vs-recent comparison when the
// dataset spans enough quarters. Failures are logged, not fatal.
func comparePeriodsIfPossible(a *app, engine *drivers.Engine, deals []domain.Deal, cfg drivers.Config) *drivers.PeriodComparison {
	baseline, recent := splitByQuarter(deals, compareRecentQuarters)
	if len(baseline) == 0 || len(recent) == 0 {
		a.log.Debug().Msg("Not enough history for a period comparison")
		return nil
	}

	recentModel, err := model.Fit(recent)
	if err != nil {
		a.log.Warn().Err(err).Msg("Skipping period comparison")
		return nil
	}
	comparison, err := engine.ComparePeriods(recentModel, baseline, cfg)
	if err != nil {
		a.log.Warn().Err(err).Msg("Skipping period comparison")
		return nil
	}
	return &comparison
}

// collectInsights runs every insight generator, keeping the ones that fire
func collectInsights(a *app, deals []domain.Deal) []insights.Insight {
	var found []insights.Insight
	if insight, ok := insights.SegmentDecline(deals, domain.ColACVBucket); ok {
		found = append(found, insight)
	}
	if insight, ok := insights.LeadSourceQuality(deals); ok {
		found = append(found, insight)
	}
	if insight, ok := insights.RepPerformance(deals); ok {
		found = append(found, insight)
	}
	a.log.Info().Int("insights", len(found)).Msg("Insights generated")
	return found
}

// splitByQuarter puts deals from the most recent n quarters into the recent
// slice and everything earlier into the baseline slice.
func splitByQuarter(deals []domain.Deal, n int) (baseline, recent []domain.Deal) {
	seen := make(map[string]bool)
	for _, d := range deals {
		if d.CreatedQuarter != "" {
			seen[d.CreatedQuarter] = true
		}
	}
	quarters := make([]string, 0, len(seen))
	for q := range seen {
		quarters = append(quarters, q)
	}
	sort.Strings(quarters)
	if len(quarters) <= n {
		return nil, deals
	}

	recentSet := make(map[string]bool, n)
	for _, q := range quarters[len(quarters)-n:] {
		recentSet[q] = true
	}
	for _, d := range deals {
		if recentSet[d.CreatedQuarter] {
			recent = append(recent, d)
		} else {
			baseline = append(baseline, d)
		}
	}
	return baseline, recent
}
