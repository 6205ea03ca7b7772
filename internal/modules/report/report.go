// Package report renders the analysis results as a markdown business report.
package report

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/skygeni/sales-intel/internal/domain"
	"github.com/skygeni/sales-intel/internal/modules/drivers"
	"github.com/skygeni/sales-intel/internal/modules/insights"
	"github.com/skygeni/sales-intel/internal/modules/metrics"
)

// revenueEstimateFactor converts coefficient impact into a rough dollar figure
const revenueEstimateFactor = 0.1

// maxTableRows caps each driver table
const maxTableRows = 5

// Input carries everything one rendered report needs
type Input struct {
	Deals      []domain.Deal
	Drivers    drivers.RankedDrivers
	Comparison *drivers.PeriodComparison
	Insights   []insights.Insight
	SegmentCol string
}

// Render produces the full markdown report
func Render(in Input) string {
	var b strings.Builder

	b.WriteString("# Win Rate Driver Analysis\n\n")
	b.WriteString("This report shows what changed in the pipeline, where revenue is leaking ")
	b.WriteString("and what to focus on this quarter.\n\n")

	writeOverview(&b, in.Deals)
	writeNegativeDrivers(&b, in.Deals, in.Drivers.NegativeDrivers)
	writePositiveDrivers(&b, in.Deals, in.Drivers.PositiveDrivers)
	if in.Comparison != nil && len(in.Comparison.ChangedDrivers) > 0 {
		writeChangedDrivers(&b, in.Comparison.ChangedDrivers)
	}
	if len(in.Insights) > 0 {
		writeInsights(&b, in.Insights)
	}
	if in.SegmentCol != "" {
		writeSummaryTable(&b, in.Deals, in.SegmentCol)
	}
	writeUsageGuide(&b)

	return b.String()
}

// RenderComparison renders just the period comparison as markdown
func RenderComparison(c drivers.PeriodComparison) string {
	if len(c.ChangedDrivers) == 0 {
		return "No drivers changed materially between the two periods.\n"
	}
	var b strings.Builder
	writeChangedDrivers(&b, c.ChangedDrivers)
	return b.String()
}

// Save writes a rendered report into dir with a timestamped filename and
// returns the full path.
func Save(dir, content string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("driver_analysis_%s.md", time.Now().Format("20060102_150405")))
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return path, nil
}

func writeOverview(b *strings.Builder, deals []domain.Deal) {
	b.WriteString("## Pipeline Health\n\n")
	fmt.Fprintf(b, "- Deals analyzed: %d\n", len(deals))

	if wr, err := metrics.WinRate(deals); err == nil {
		fmt.Fprintf(b, "- Overall win rate: %s\n", pct(wr))
		if rwwr, err := metrics.RevenueWeightedWinRate(deals); err == nil {
			fmt.Fprintf(b, "- Revenue-weighted win rate: %s\n", pct(rwwr))
			if rwwr < wr {
				b.WriteString("  - RWWR is lower than the win rate: bigger deals are being lost\n")
			} else {
				b.WriteString("  - RWWR is at or above the win rate: bigger deals are being won\n")
			}
		}
	}
	if dfi, ok := metrics.DealFrictionIndex(deals); ok {
		fmt.Fprintf(b, "- Deal friction index: %.2f\n", dfi)
		switch {
		case dfi > 1.2:
			b.WriteString("  - Lost deals take longer to close, which points at qualification issues\n")
		case dfi < 0.8:
			b.WriteString("  - Lost deals close faster, a sign of good early disqualification\n")
		default:
			b.WriteString("  - Won and lost deals have similar cycle lengths\n")
		}
	}
	b.WriteString("\n")
}

func writeNegativeDrivers(b *strings.Builder, deals []domain.Deal, negative []drivers.Driver) {
	b.WriteString("## Top Negative Drivers (Hurting Win Rate)\n\n")
	if len(negative) == 0 {
		b.WriteString("No negative drivers identified.\n\n")
		return
	}

	b.WriteString("| Driver | Impact | Revenue at Risk | What Changed |\n")
	b.WriteString("|--------|--------|-----------------|--------------|\n")
	shown := negative
	if len(shown) > maxTableRows {
		shown = shown[:maxTableRows]
	}
	for _, d := range shown {
		fmt.Fprintf(b, "| %s | %s | %s | Win rate %+.1f%% (%s) |\n",
			d.Feature, d.Interpretation,
			revenueEstimate(deals, d.Feature, d.Coefficient),
			d.Trend.Delta*100, d.Trend.Direction)
	}
	b.WriteString("\n")

	for _, d := range shown {
		fmt.Fprintf(b, "### %s\n\n", d.Feature)
		b.WriteString("**Likely Issues:**\n")
		for _, issue := range d.LikelyIssues {
			fmt.Fprintf(b, "- %s\n", issue)
		}
		b.WriteString("\n**Suggested Actions:**\n")
		for _, action := range d.SuggestedActions {
			fmt.Fprintf(b, "- %s\n", action)
		}
		b.WriteString("\n")
	}
}

func writePositiveDrivers(b *strings.Builder, deals []domain.Deal, positive []drivers.Driver) {
	b.WriteString("## Top Positive Drivers (Improving Win Rate)\n\n")
	if len(positive) == 0 {
		b.WriteString("No positive drivers identified.\n\n")
		return
	}

	b.WriteString("| Driver | Impact | Revenue Upside |\n")
	b.WriteString("|--------|--------|----------------|\n")
	shown := positive
	if len(shown) > maxTableRows {
		shown = shown[:maxTableRows]
	}
	for _, d := range shown {
		fmt.Fprintf(b, "| %s | %s | %s |\n",
			d.Feature, d.Interpretation, revenueEstimate(deals, d.Feature, d.Coefficient))
	}
	b.WriteString("\n")
}

func writeChangedDrivers(b *strings.Builder, changed []drivers.DriverChange) {
	b.WriteString("## Drivers That Changed Over Time\n\n")
	b.WriteString("| Driver | Direction | Baseline | Recent | Change |\n")
	b.WriteString("|--------|-----------|----------|--------|--------|\n")
	shown := changed
	if len(shown) > maxTableRows {
		shown = shown[:maxTableRows]
	}
	for _, c := range shown {
		fmt.Fprintf(b, "| %s | %s | %.3f | %.3f | %.3f |\n",
			c.Feature, c.Direction, c.BaselineCoef, c.RecentCoef, c.Change)
	}
	b.WriteString("\n")
}

func writeInsights(b *strings.Builder, found []insights.Insight) {
	b.WriteString("## Business Insights\n\n")
	for _, insight := range found {
		b.WriteString(insights.Format(insight))
		b.WriteString("\n\n")
	}
}

func writeSummaryTable(b *strings.Builder, deals []domain.Deal, segmentCol string) {
	summaries := SummaryBySegment(deals, segmentCol)
	if len(summaries) == 0 {
		return
	}

	fmt.Fprintf(b, "## Segment Summary (%s)\n\n", segmentCol)
	b.WriteString("| Segment | Deals | Total ACV | Mean ACV | Median Cycle | Win Rate | RWWR | DFI |\n")
	b.WriteString("|---------|-------|-----------|----------|--------------|----------|------|-----|\n")
	for _, s := range summaries {
		dfi := "-"
		if s.FrictionAvailable {
			dfi = fmt.Sprintf("%.2f", s.FrictionIndex)
		}
		fmt.Fprintf(b, "| %s | %d | %s | %s | %.0fd | %s | %s | %s |\n",
			s.Segment, s.DealCount, money(s.TotalACV), money(s.MeanACV),
			s.MedianCycle, pct(s.WinRate), pct(s.RevenueWeightedWinRate), dfi)
	}
	b.WriteString("\n")
}

func writeUsageGuide(b *strings.Builder) {
	b.WriteString("## How to Use This Analysis\n\n")
	b.WriteString("1. **Prioritize Pipeline**: Focus sales efforts on deals with positive drivers\n")
	b.WriteString("2. **Adjust Sales Focus**: Redirect resources away from segments with negative drivers\n")
	b.WriteString("3. **Align Marketing + Sales**: Improve lead quality for sources with negative drivers\n")
	b.WriteString("4. **Enablement**: Provide targeted coaching on deals with negative driver patterns\n")
	b.WriteString("5. **Strategic Planning**: Investigate why certain drivers changed over time\n")
}

// revenueEstimate sizes the dollar impact of a driver as the ACV exposed to
// the feature scaled by the coefficient magnitude.
func revenueEstimate(deals []domain.Deal, feature string, coefficient float64) string {
	var featureACV float64
	resolved := false
	for _, d := range deals {
		if _, ok := d.Categorical(feature); ok {
			featureACV += d.Amount
			resolved = true
			continue
		}
		if _, ok := d.Numeric(feature); ok {
			featureACV += d.Amount
			resolved = true
		}
	}
	if !resolved {
		return "N/A"
	}
	estimate := featureACV * math.Abs(coefficient) * revenueEstimateFactor
	return money(estimate)
}

func money(v float64) string {
	switch {
	case v >= 1e6:
		return fmt.Sprintf("$%.1fM", v/1e6)
	case v >= 1e3:
		return fmt.Sprintf("$%.1fK", v/1e3)
	default:
		return fmt.Sprintf("$%.0f", v)
	}
}

func pct(v float64) string {
	return fmt.Sprintf("%.1f%%", v*100)
}
