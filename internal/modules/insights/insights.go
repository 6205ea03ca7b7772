// Package insights surfaces single worst-offending segments, lead sources
// and reps from the metric library.
//
// Selection is deterministic: each generator ranks candidates by the size of
// the violation and breaks ties lexicographically, so repeated runs over the
// same data always flag the same offender.
package insights

import (
	"fmt"
	"sort"

	"github.com/skygeni/sales-intel/internal/domain"
	"github.com/skygeni/sales-intel/internal/modules/metrics"
	"github.com/skygeni/sales-intel/pkg/formulas"
)

// Insight is a single business-readable finding
type Insight struct {
	Type         string `json:"type"`
	What         string `json:"what"`
	WhyItMatters string `json:"why_matters"`
	Action       string `json:"action"`
}

const (
	TypeSegmentDecline    = "segment_decline"
	TypeLeadSourceQuality = "lead_source_quality"
	TypeRepPerformance    = "rep_performance"
)

// minDFIFlag flags reps whose lost deals take 20%+ longer than won ones
const minDFIFlag = 1.2

// SegmentDecline reports the segment whose win rate dropped the most between
// the last two periods and all earlier ones. ok is false with fewer than
// three distinct periods or fewer than two segments: the recent and earlier
// windows must both be non-empty and disjoint.
func SegmentDecline(deals []domain.Deal, segmentCol string) (Insight, bool) {
	periods := distinctPeriods(deals)
	segments := distinctValues(deals, segmentCol)
	if len(periods) < 3 || len(segments) < 2 {
		return Insight{}, false
	}

	recent := periods[len(periods)-2:]
	earlier := periods[:len(periods)-2]

	// Per (period, segment) win rate; absent combinations count as zero
	rate := func(period, segment string) float64 {
		var wins, total int
		for _, d := range deals {
			if d.CreatedQuarter != period {
				continue
			}
			if v, ok := d.Categorical(segmentCol); !ok || v != segment {
				continue
			}
			total++
			if d.Won() {
				wins++
			}
		}
		if total == 0 {
			return 0
		}
		return float64(wins) / float64(total)
	}

	windowMean := func(window []string, segment string) float64 {
		var sum float64
		for _, p := range window {
			sum += rate(p, segment)
		}
		return sum / float64(len(window))
	}

	var worstSegment string
	var worstDecline float64
	first := true
	for _, seg := range segments {
		decline := windowMean(earlier, seg) - windowMean(recent, seg)
		if first || decline > worstDecline || (decline == worstDecline && seg < worstSegment) {
			worstSegment = seg
			worstDecline = decline
			first = false
		}
	}

	return Insight{
		Type: TypeSegmentDecline,
		What: fmt.Sprintf("Win rate dropped most in %s='%s' segment", segmentCol, worstSegment),
		WhyItMatters: "Focusing on this segment could have the biggest impact " +
			"on overall win rate recovery",
		Action: fmt.Sprintf("Review pricing, competition, and sales process for %s deals. "+
			"Consider targeted enablement.", worstSegment),
	}, true
}

// LeadSourceQuality flags the lead source that is simultaneously below the
// median win rate and above the median cycle length. Among flagged sources
// the one with the lowest win rate wins; names break ties.
func LeadSourceQuality(deals []domain.Deal) (Insight, bool) {
	groups := metrics.GroupBySegment(deals, domain.ColLeadSource)
	if len(groups) == 0 {
		return Insight{}, false
	}

	type sourceStats struct {
		name        string
		winRate     float64
		medianCycle float64
	}

	var stats []sourceStats
	var winRates, cycles []float64
	for source, group := range groups {
		wr, err := metrics.WinRate(group)
		if err != nil {
			continue
		}
		cycle, ok := metrics.MedianSalesCycle(group, "")
		if !ok {
			continue
		}
		stats = append(stats, sourceStats{source, wr, cycle})
		winRates = append(winRates, wr)
		cycles = append(cycles, cycle)
	}

	medianWR, ok := formulas.Median(winRates)
	if !ok {
		return Insight{}, false
	}
	medianCycle, _ := formulas.Median(cycles)

	var flagged []sourceStats
	for _, s := range stats {
		if s.winRate < medianWR && s.medianCycle > medianCycle {
			flagged = append(flagged, s)
		}
	}
	if len(flagged) == 0 {
		return Insight{}, false
	}

	sort.Slice(flagged, func(i, j int) bool {
		if flagged[i].winRate != flagged[j].winRate {
			return flagged[i].winRate < flagged[j].winRate
		}
		return flagged[i].name < flagged[j].name
	})
	worst := flagged[0]

	return Insight{
		Type: TypeLeadSourceQuality,
		What: fmt.Sprintf("Deals from '%s' source have lower win rate (%.1f%%) and longer cycles (%.0f days)",
			worst.name, worst.winRate*100, worst.medianCycle),
		WhyItMatters: fmt.Sprintf("Marketing spend on %s is inflating pipeline volume without quality. "+
			"This wastes sales time and resources.", worst.name),
		Action: fmt.Sprintf("Rebalance marketing spend toward higher-intent sources. "+
			"Tighten MQL→SQL qualification criteria for %s leads.", worst.name),
	}, true
}

// RepPerformance flags reps carrying at least the median deal volume whose
// deal friction index exceeds 1.2. Among flagged reps the highest DFI wins;
// names break ties.
func RepPerformance(deals []domain.Deal) (Insight, bool) {
	groups := metrics.GroupBySegment(deals, domain.ColSalesRepID)
	if len(groups) == 0 {
		return Insight{}, false
	}

	type repStats struct {
		name      string
		dealCount int
		dfi       float64
	}

	var counts []float64
	for _, group := range groups {
		counts = append(counts, float64(len(group)))
	}
	medianCount, ok := formulas.Median(counts)
	if !ok {
		return Insight{}, false
	}

	var flagged []repStats
	for rep, group := range groups {
		if float64(len(group)) < medianCount {
			continue
		}
		dfi, ok := metrics.DealFrictionIndex(group)
		if !ok || dfi <= minDFIFlag {
			continue
		}
		flagged = append(flagged, repStats{rep, len(group), dfi})
	}
	if len(flagged) == 0 {
		return Insight{}, false
	}

	sort.Slice(flagged, func(i, j int) bool {
		if flagged[i].dfi != flagged[j].dfi {
			return flagged[i].dfi > flagged[j].dfi
		}
		return flagged[i].name < flagged[j].name
	})
	worst := flagged[0]

	return Insight{
		Type: TypeRepPerformance,
		What: fmt.Sprintf("Rep %s has normal deal volume (%d deals) but high Deal Friction Index (%.2f)",
			worst.name, worst.dealCount, worst.dfi),
		WhyItMatters: "Activity looks fine, but effectiveness is not. This rep is spending too much " +
			"time on deals that won't close, indicating qualification issues.",
		Action: fmt.Sprintf("Provide coaching to %s on deal qualification and exit discipline. "+
			"Review their qualification criteria and early-stage discovery process.", worst.name),
	}, true
}

// Format renders an insight as a readable business message
func Format(insight Insight) string {
	return fmt.Sprintf("**What:** %s\n\n**Why it matters:** %s\n\n**Recommended action:** %s",
		insight.What, insight.WhyItMatters, insight.Action)
}

func distinctPeriods(deals []domain.Deal) []string {
	return distinctValues(deals, domain.ColCreatedQuarter)
}

func distinctValues(deals []domain.Deal, col string) []string {
	seen := make(map[string]bool)
	var values []string
	for _, d := range deals {
		v, ok := d.Categorical(col)
		if !ok || v == "" || seen[v] {
			continue
		}
		seen[v] = true
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}
