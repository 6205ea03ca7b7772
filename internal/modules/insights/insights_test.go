package insights

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skygeni/sales-intel/internal/domain"
)

func deal(id string, won bool, region, source, rep, quarter string, cycleDays float64) domain.Deal {
	outcome := domain.OutcomeLost
	if won {
		outcome = domain.OutcomeWon
	}
	return domain.Deal{
		ID:             id,
		Amount:         10000,
		Outcome:        outcome,
		SalesCycleDays: cycleDays,
		Region:         region,
		LeadSource:     source,
		SalesRepID:     rep,
		CreatedQuarter: quarter,
	}
}

func TestSegmentDeclineInsufficientHistory(t *testing.T) {
	// Two periods only: no disjoint earlier window exists
	deals := []domain.Deal{
		deal("d1", true, "A", "Inbound", "r1", "2024Q1", 30),
		deal("d2", true, "B", "Inbound", "r1", "2024Q2", 30),
	}

	_, ok := SegmentDecline(deals, domain.ColRegion)
	assert.False(t, ok)
}

func TestSegmentDeclineSingleSegment(t *testing.T) {
	var deals []domain.Deal
	for i, q := range []string{"2024Q1", "2024Q2", "2024Q3"} {
		deals = append(deals, deal(fmt.Sprintf("d%d", i), true, "A", "Inbound", "r1", q, 30))
	}

	_, ok := SegmentDecline(deals, domain.ColRegion)
	assert.False(t, ok)
}

func TestSegmentDeclineFindsWorstSegment(t *testing.T) {
	// Region B collapses in the last two quarters; region A stays strong.
	var deals []domain.Deal
	id := 0
	add := func(won bool, region, quarter string, n int) {
		for i := 0; i < n; i++ {
			deals = append(deals, deal(fmt.Sprintf("d%d", id), won, region, "Inbound", "r1", quarter, 30))
			id++
		}
	}
	for _, q := range []string{"2023Q1", "2023Q2", "2023Q3", "2023Q4"} {
		add(true, "A", q, 8)
		add(false, "A", q, 2)
	}
	for _, q := range []string{"2023Q1", "2023Q2"} {
		add(true, "B", q, 9)
		add(false, "B", q, 1)
	}
	for _, q := range []string{"2023Q3", "2023Q4"} {
		add(true, "B", q, 2)
		add(false, "B", q, 8)
	}

	insight, ok := SegmentDecline(deals, domain.ColRegion)
	require.True(t, ok)
	assert.Equal(t, TypeSegmentDecline, insight.Type)
	assert.Contains(t, insight.What, "'B'")
}

func TestLeadSourceQualityFlagsWeakSource(t *testing.T) {
	// Paid: low win rate, long cycles. Inbound: healthy. Partner: average.
	var deals []domain.Deal
	id := 0
	add := func(won bool, source string, cycle float64, n int) {
		for i := 0; i < n; i++ {
			deals = append(deals, deal(fmt.Sprintf("d%d", id), won, "A", source, "r1", "2024Q1", cycle))
			id++
		}
	}
	add(true, "Inbound", 20, 8)
	add(false, "Inbound", 20, 2)
	add(true, "Partner", 40, 5)
	add(false, "Partner", 40, 5)
	add(true, "Paid", 80, 2)
	add(false, "Paid", 80, 8)

	insight, ok := LeadSourceQuality(deals)
	require.True(t, ok)
	assert.Equal(t, TypeLeadSourceQuality, insight.Type)
	assert.Contains(t, insight.What, "'Paid'")
	assert.Contains(t, insight.What, "20.0%")
}

func TestLeadSourceQualityNoSignal(t *testing.T) {
	// Uniform sources: nobody is below median win rate AND above median cycle
	var deals []domain.Deal
	for i := 0; i < 10; i++ {
		deals = append(deals, deal(fmt.Sprintf("d%d", i), i%2 == 0, "A", "Inbound", "r1", "2024Q1", 30))
	}

	_, ok := LeadSourceQuality(deals)
	assert.False(t, ok)
}

func TestRepPerformanceFlagsHighFrictionRep(t *testing.T) {
	// r1: high volume, lost deals drag on. r2: high volume, healthy. r3: low volume.
	var deals []domain.Deal
	id := 0
	add := func(won bool, rep string, cycle float64, n int) {
		for i := 0; i < n; i++ {
			deals = append(deals, deal(fmt.Sprintf("d%d", id), won, "A", "Inbound", rep, "2024Q1", cycle))
			id++
		}
	}
	add(true, "r1", 30, 5)
	add(false, "r1", 90, 5) // DFI = 3.0
	add(true, "r2", 30, 5)
	add(false, "r2", 30, 5) // DFI = 1.0
	add(true, "r3", 30, 1)
	add(false, "r3", 100, 1)

	insight, ok := RepPerformance(deals)
	require.True(t, ok)
	assert.Equal(t, TypeRepPerformance, insight.Type)
	assert.Contains(t, insight.What, "Rep r1")
	assert.Contains(t, insight.What, "3.00")
}

func TestRepPerformanceNoSignal(t *testing.T) {
	var deals []domain.Deal
	for i := 0; i < 10; i++ {
		deals = append(deals, deal(fmt.Sprintf("d%d", i), i%2 == 0, "A", "Inbound", "r1", "2024Q1", 30))
	}

	_, ok := RepPerformance(deals)
	assert.False(t, ok)
}

func TestFormat(t *testing.T) {
	insight := Insight{
		Type:         TypeRepPerformance,
		What:         "w",
		WhyItMatters: "y",
		Action:       "a",
	}

	out := Format(insight)
	assert.True(t, strings.HasPrefix(out, "**What:** w"))
	assert.Contains(t, out, "**Why it matters:** y")
	assert.Contains(t, out, "**Recommended action:** a")
}
