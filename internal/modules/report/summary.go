package report

import (
	"sort"

	"github.com/skygeni/sales-intel/internal/domain"
	"github.com/skygeni/sales-intel/internal/modules/metrics"
	"github.com/skygeni/sales-intel/pkg/formulas"
)

// SegmentSummary aggregates the key pipeline metrics for one segment value.
type SegmentSummary struct {
	Segment                string  `json:"segment"`
	DealCount              int     `json:"deal_count"`
	TotalACV               float64 `json:"total_acv"`
	MeanACV                float64 `json:"mean_acv"`
	MedianCycle            float64 `json:"median_cycle"`
	WinRate                float64 `json:"win_rate"`
	RevenueWeightedWinRate float64 `json:"rwwr"`
	FrictionIndex          float64 `json:"dfi"`
	FrictionAvailable      bool    `json:"dfi_available"`
}

// SummaryBySegment builds the per-segment metric table, sorted by total ACV
// descending. Segments with too little data for a metric carry its zero value.
func SummaryBySegment(deals []domain.Deal, segmentCol string) []SegmentSummary {
	groups := metrics.GroupBySegment(deals, segmentCol)
	if len(groups) == 0 {
		return nil
	}

	rwwr := metrics.RevenueWeightedWinRateBySegment(deals, segmentCol)
	dfi := metrics.DealFrictionIndexBySegment(deals, segmentCol)

	summaries := make([]SegmentSummary, 0, len(groups))
	for segment, group := range groups {
		s := SegmentSummary{
			Segment:   segment,
			DealCount: len(group),
		}
		cycles := make([]float64, 0, len(group))
		won := 0
		for _, d := range group {
			s.TotalACV += d.Amount
			cycles = append(cycles, d.SalesCycleDays)
			if d.Won() {
				won++
			}
		}
		s.MeanACV = s.TotalACV / float64(len(group))
		s.WinRate = float64(won) / float64(len(group))
		if median, ok := formulas.Median(cycles); ok {
			s.MedianCycle = median
		}
		s.RevenueWeightedWinRate = rwwr[segment]
		if v, ok := dfi[segment]; ok {
			s.FrictionIndex = v
			s.FrictionAvailable = true
		}
		summaries = append(summaries, s)
	}

	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].TotalACV != summaries[j].TotalACV {
			return summaries[i].TotalACV > summaries[j].TotalACV
		}
		return summaries[i].Segment < summaries[j].Segment
	})
	return summaries
}
