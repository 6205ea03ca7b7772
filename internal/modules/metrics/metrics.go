// Package metrics implements the pipeline health metric library.
//
// All functions are pure and operate on a slice of closed deals. Metrics that
// can be undefined for sparse data return (value, ok) instead of an error;
// grouped variants simply omit groups without enough data.
package metrics

import (
	"fmt"
	"sort"

	"github.com/skygeni/sales-intel/internal/domain"
	"github.com/skygeni/sales-intel/pkg/formulas"
)

// WinRate returns wins / total. Empty input is a caller error.
func WinRate(deals []domain.Deal) (float64, error) {
	if len(deals) == 0 {
		return 0, fmt.Errorf("win rate is undefined for an empty deal set")
	}
	wins := 0
	for _, d := range deals {
		if d.Won() {
			wins++
		}
	}
	return float64(wins) / float64(len(deals)), nil
}

// WinRateBySegment returns the win rate per observed segment value.
// Empty groups cannot occur; every key has at least one deal.
func WinRateBySegment(deals []domain.Deal, segmentCol string) map[string]float64 {
	groups := GroupBySegment(deals, segmentCol)
	out := make(map[string]float64, len(groups))
	for seg, group := range groups {
		wr, err := WinRate(group)
		if err != nil {
			continue
		}
		out[seg] = wr
	}
	return out
}

// RevenueWeightedWinRate returns sum(ACV of won deals) / sum(ACV of all deals).
// Directly comparable to WinRate: a gap where RWWR is lower means losses are
// concentrated in large deals.
func RevenueWeightedWinRate(deals []domain.Deal) (float64, error) {
	if len(deals) == 0 {
		return 0, fmt.Errorf("revenue-weighted win rate is undefined for an empty deal set")
	}
	var wonACV, totalACV float64
	for _, d := range deals {
		totalACV += d.Amount
		if d.Won() {
			wonACV += d.Amount
		}
	}
	if totalACV == 0 {
		return 0, fmt.Errorf("revenue-weighted win rate is undefined for zero total deal amount")
	}
	return wonACV / totalACV, nil
}

// RevenueWeightedWinRateBySegment returns RWWR per segment value, omitting
// segments with zero total amount.
func RevenueWeightedWinRateBySegment(deals []domain.Deal, segmentCol string) map[string]float64 {
	groups := GroupBySegment(deals, segmentCol)
	out := make(map[string]float64, len(groups))
	for seg, group := range groups {
		rwwr, err := RevenueWeightedWinRate(group)
		if err != nil {
			continue
		}
		out[seg] = rwwr
	}
	return out
}

// DealFrictionIndex returns median cycle length of lost deals divided by the
// median for won deals. ok is false when either subset is empty or the won
// median is zero; callers must treat that as insufficient data, not zero
// friction.
func DealFrictionIndex(deals []domain.Deal) (float64, bool) {
	var wonCycles, lostCycles []float64
	for _, d := range deals {
		if d.Won() {
			wonCycles = append(wonCycles, d.SalesCycleDays)
		} else {
			lostCycles = append(lostCycles, d.SalesCycleDays)
		}
	}

	wonMedian, wonOK := formulas.Median(wonCycles)
	lostMedian, lostOK := formulas.Median(lostCycles)
	if !wonOK || !lostOK || wonMedian == 0 {
		return 0, false
	}
	return lostMedian / wonMedian, true
}

// DealFrictionIndexBySegment returns DFI per segment value, omitting segments
// where the index is unavailable.
func DealFrictionIndexBySegment(deals []domain.Deal, segmentCol string) map[string]float64 {
	groups := GroupBySegment(deals, segmentCol)
	out := make(map[string]float64, len(groups))
	for seg, group := range groups {
		if dfi, ok := DealFrictionIndex(group); ok {
			out[seg] = dfi
		}
	}
	return out
}

// MedianSalesCycle returns the median cycle length, optionally filtered by
// outcome (pass "" for all deals).
func MedianSalesCycle(deals []domain.Deal, outcome domain.Outcome) (float64, bool) {
	var cycles []float64
	for _, d := range deals {
		if outcome != "" && d.Outcome != outcome {
			continue
		}
		cycles = append(cycles, d.SalesCycleDays)
	}
	return formulas.Median(cycles)
}

// WinRateDeltaBySegment compares win rates between a trailing window of
// recentPeriods time periods and the immediately preceding window of
// previousPeriods, per segment value.
//
// The two windows are adjacent and non-overlapping, taken from the tail of
// the sorted distinct period list. If fewer distinct periods exist than the
// window sizes combined, the result is empty. Segments observed in only one
// window are omitted (their delta is undefined).
func WinRateDeltaBySegment(deals []domain.Deal, segmentCol, timeCol string, recentPeriods, previousPeriods int) map[string]float64 {
	periods := distinctSorted(deals, timeCol)
	if len(periods) < recentPeriods+previousPeriods {
		return map[string]float64{}
	}

	recentSet := toSet(periods[len(periods)-recentPeriods:])
	previousSet := toSet(periods[len(periods)-recentPeriods-previousPeriods : len(periods)-recentPeriods])

	var recentDeals, previousDeals []domain.Deal
	for _, d := range deals {
		period, ok := d.Categorical(timeCol)
		if !ok {
			continue
		}
		if recentSet[period] {
			recentDeals = append(recentDeals, d)
		} else if previousSet[period] {
			previousDeals = append(previousDeals, d)
		}
	}

	recentWR := WinRateBySegment(recentDeals, segmentCol)
	previousWR := WinRateBySegment(previousDeals, segmentCol)

	delta := make(map[string]float64)
	for seg, recent := range recentWR {
		if previous, ok := previousWR[seg]; ok {
			delta[seg] = recent - previous
		}
	}
	return delta
}

// LossConcentration describes how losses distribute across segment values
type LossConcentration struct {
	TopSegments        []string           `json:"top_segments"`
	ConcentrationRatio float64            `json:"concentration_ratio"`
	SegmentLossShare   map[string]float64 `json:"segment_loss_share"` // fraction of all losses, 0-1
}

// LossConcentrationRatio reports the fraction of all losses covered by the
// topN segments with the most losses. With zero losses the result is empty,
// not an error. Segments tie-break on loss count descending, then name.
func LossConcentrationRatio(deals []domain.Deal, segmentCol string, topN int) LossConcentration {
	lossCounts := make(map[string]int)
	totalLosses := 0
	for _, d := range deals {
		if d.Won() {
			continue
		}
		seg, ok := d.Categorical(segmentCol)
		if !ok {
			continue
		}
		lossCounts[seg]++
		totalLosses++
	}

	if totalLosses == 0 {
		return LossConcentration{
			TopSegments:      []string{},
			SegmentLossShare: map[string]float64{},
		}
	}

	type segCount struct {
		name  string
		count int
	}
	ranked := make([]segCount, 0, len(lossCounts))
	for seg, count := range lossCounts {
		ranked = append(ranked, segCount{seg, count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].count != ranked[j].count {
			return ranked[i].count > ranked[j].count
		}
		return ranked[i].name < ranked[j].name
	})

	if topN > len(ranked) {
		topN = len(ranked)
	}
	if topN < 0 {
		topN = 0
	}

	top := make([]string, 0, topN)
	topCount := 0
	for _, sc := range ranked[:topN] {
		top = append(top, sc.name)
		topCount += sc.count
	}

	share := make(map[string]float64, len(ranked))
	for _, sc := range ranked {
		share[sc.name] = float64(sc.count) / float64(totalLosses)
	}

	return LossConcentration{
		TopSegments:        top,
		ConcentrationRatio: float64(topCount) / float64(totalLosses),
		SegmentLossShare:   share,
	}
}

// LossConcentrationScore returns, per segment value, the segment's loss rate
// relative to the overall loss rate. Scores above 1 mean losses concentrate
// in that segment. Returns an empty map when there are no losses at all.
func LossConcentrationScore(deals []domain.Deal, segmentCol string) map[string]float64 {
	if len(deals) == 0 {
		return map[string]float64{}
	}
	losses := 0
	for _, d := range deals {
		if !d.Won() {
			losses++
		}
	}
	if losses == 0 {
		return map[string]float64{}
	}
	overallLossRate := float64(losses) / float64(len(deals))

	out := make(map[string]float64)
	for seg, group := range GroupBySegment(deals, segmentCol) {
		segLosses := 0
		for _, d := range group {
			if !d.Won() {
				segLosses++
			}
		}
		segLossRate := float64(segLosses) / float64(len(group))
		out[seg] = segLossRate / overallLossRate
	}
	return out
}

// SalesRepWinRateVariance returns the sample standard deviation of per-rep
// win rates. ok is false with fewer than two reps.
func SalesRepWinRateVariance(deals []domain.Deal) (float64, bool) {
	repRates := WinRateBySegment(deals, domain.ColSalesRepID)
	if len(repRates) < 2 {
		return 0, false
	}
	rates := make([]float64, 0, len(repRates))
	for _, wr := range repRates {
		rates = append(rates, wr)
	}
	return formulas.StdDev(rates), true
}

// GroupBySegment partitions deals by the value of a categorical column.
// Deals where the column is unknown are dropped.
func GroupBySegment(deals []domain.Deal, segmentCol string) map[string][]domain.Deal {
	groups := make(map[string][]domain.Deal)
	for _, d := range deals {
		seg, ok := d.Categorical(segmentCol)
		if !ok {
			continue
		}
		groups[seg] = append(groups[seg], d)
	}
	return groups
}

func distinctSorted(deals []domain.Deal, col string) []string {
	seen := make(map[string]bool)
	var values []string
	for _, d := range deals {
		v, ok := d.Categorical(col)
		if !ok || seen[v] {
			continue
		}
		seen[v] = true
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}
