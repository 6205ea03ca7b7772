package drivers

import (
	"fmt"
	"math"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skygeni/sales-intel/internal/domain"
	"github.com/skygeni/sales-intel/internal/modules/features"
	"github.com/skygeni/sales-intel/internal/modules/model"
)

func testEngine() *Engine {
	return NewEngine(zerolog.Nop())
}

// stubModel builds a model with hand-picked coefficients, bypassing fitting
func stubModel(featureNames []string, coefs []float64, categorical map[string]map[string]int) *model.DriverModel {
	return &model.DriverModel{
		Encoding: features.Encoding{
			Columns:     featureNames,
			Categorical: categorical,
		},
		FeatureNames: featureNames,
		Coefficients: coefs,
	}
}

func regionDeal(id string, won bool, region string, amount float64, quarter string) domain.Deal {
	outcome := domain.OutcomeLost
	if won {
		outcome = domain.OutcomeWon
	}
	return domain.Deal{
		ID:             id,
		Amount:         amount,
		Outcome:        outcome,
		SalesCycleDays: 30,
		Region:         region,
		CreatedQuarter: quarter,
	}
}

func TestTrendMultiplierTable(t *testing.T) {
	tests := []struct {
		name        string
		coefficient float64
		direction   TrendDirection
		want        float64
	}{
		{"negative worsening", -0.5, TrendWorsening, 1.5},
		{"negative stable", -0.5, TrendStable, 1.0},
		{"negative improving", -0.5, TrendImproving, 0.8},
		{"positive improving", 0.5, TrendImproving, 1.5},
		{"positive stable", 0.5, TrendStable, 1.0},
		{"positive worsening", 0.5, TrendWorsening, 0.8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := trendMultiplier(tt.coefficient, tt.direction); got != tt.want {
				t.Errorf("trendMultiplier(%v, %s) = %v, want %v", tt.coefficient, tt.direction, got, tt.want)
			}
		})
	}
}

func TestZeroCoefficientScoresZero(t *testing.T) {
	e := testEngine()
	m := stubModel(
		[]string{domain.ColRegion},
		[]float64{0},
		map[string]map[string]int{domain.ColRegion: {"A": 0}},
	)
	deals := []domain.Deal{regionDeal("d1", true, "A", 50000, "2024Q1")}

	d := e.scoreFeature(m, deals, domain.ColRegion, 0, DefaultConfig())
	assert.Zero(t, d.ImpactStrength)
	assert.Zero(t, d.Score)
}

func TestRevenueExposureWorstCategoryShare(t *testing.T) {
	e := testEngine()
	m := stubModel(
		[]string{domain.ColRegion},
		[]float64{-0.5},
		map[string]map[string]int{domain.ColRegion: {"A": 0, "B": 1}},
	)
	// Region A holds 75% of ACV
	deals := []domain.Deal{
		regionDeal("d1", true, "A", 60000, "2024Q1"),
		regionDeal("d2", false, "A", 15000, "2024Q1"),
		regionDeal("d3", true, "B", 25000, "2024Q1"),
	}

	got := e.RevenueExposure(m, deals, domain.ColRegion)
	assert.InDelta(t, 0.75, got, 1e-9)
}

func TestRevenueExposureNumericFeatureIsOne(t *testing.T) {
	e := testEngine()
	m := stubModel([]string{domain.ColDealAmount}, []float64{0.3}, map[string]map[string]int{})

	got := e.RevenueExposure(m, nil, domain.ColDealAmount)
	assert.Equal(t, 1.0, got)
}

func TestRevenueExposureUnknownFeatureIsZero(t *testing.T) {
	e := testEngine()
	m := stubModel([]string{"mystery"}, []float64{0.3}, map[string]map[string]int{})

	got := e.RevenueExposure(m, nil, "mystery")
	assert.Equal(t, 0.0, got)
}

func TestRevenueExposureZeroTotalACV(t *testing.T) {
	e := testEngine()
	m := stubModel(
		[]string{domain.ColRegion},
		[]float64{-0.5},
		map[string]map[string]int{domain.ColRegion: {"A": 0}},
	)
	deals := []domain.Deal{regionDeal("d1", true, "A", 0, "2024Q1")}

	assert.Equal(t, 0.0, e.RevenueExposure(m, deals, domain.ColRegion))
}

func TestRecentTrendFallbackIsStable(t *testing.T) {
	e := testEngine()

	// Only two quarters of history: the 2v2 window precondition fails
	deals := []domain.Deal{
		regionDeal("d1", true, "A", 1000, "2024Q1"),
		regionDeal("d2", false, "A", 1000, "2024Q2"),
	}

	trend := e.RecentTrend(deals, domain.ColRegion)
	assert.Equal(t, TrendStable, trend.Direction)
	assert.Zero(t, trend.Delta)
}

func TestRecentTrendWorsening(t *testing.T) {
	e := testEngine()

	// Region A: 100% win in Q1/Q2, 0% in Q3/Q4
	deals := []domain.Deal{
		regionDeal("d1", true, "A", 1000, "2024Q1"),
		regionDeal("d2", true, "A", 1000, "2024Q2"),
		regionDeal("d3", false, "A", 1000, "2024Q3"),
		regionDeal("d4", false, "A", 1000, "2024Q4"),
	}

	trend := e.RecentTrend(deals, domain.ColRegion)
	assert.Equal(t, TrendWorsening, trend.Direction)
	assert.InDelta(t, -1.0, trend.Delta, 1e-9)
}

func TestRankSplitsBySignAndSortsByScore(t *testing.T) {
	e := testEngine()
	m := stubModel(
		[]string{domain.ColIndustry, domain.ColRegion, domain.ColLeadSource, domain.ColDealAmount},
		[]float64{0.8, -0.6, -0.2, 0.1},
		map[string]map[string]int{
			domain.ColIndustry:   {"SaaS": 0},
			domain.ColRegion:     {"A": 0},
			domain.ColLeadSource: {"Inbound": 0},
		},
	)
	deals := []domain.Deal{
		{ID: "d1", Outcome: domain.OutcomeWon, Amount: 10000, SalesCycleDays: 30,
			Industry: "SaaS", Region: "A", LeadSource: "Inbound", CreatedQuarter: "2024Q1"},
	}

	ranked := e.Rank(m, deals, Config{TopN: 10, IncludeWRDS: true})

	require.Len(t, ranked.PositiveDrivers, 2)
	require.Len(t, ranked.NegativeDrivers, 2)

	for _, d := range ranked.PositiveDrivers {
		assert.Positive(t, d.Coefficient)
	}
	for _, d := range ranked.NegativeDrivers {
		assert.Negative(t, d.Coefficient)
	}

	assert.GreaterOrEqual(t, ranked.PositiveDrivers[0].Score, ranked.PositiveDrivers[1].Score)
	assert.GreaterOrEqual(t, ranked.NegativeDrivers[0].Score, ranked.NegativeDrivers[1].Score)
}

func TestRankRespectsTopN(t *testing.T) {
	e := testEngine()
	names := make([]string, 6)
	coefs := make([]float64, 6)
	for i := range names {
		names[i] = fmt.Sprintf("f%d", i)
		coefs[i] = -0.1 * float64(i+1)
	}
	m := stubModel(names, coefs, map[string]map[string]int{})

	ranked := e.Rank(m, nil, Config{TopN: 3, IncludeWRDS: false})
	assert.Len(t, ranked.NegativeDrivers, 3)
	assert.Empty(t, ranked.PositiveDrivers)

	// Top 3 by impact strength: f5, f4, f3
	assert.Equal(t, "f5", ranked.NegativeDrivers[0].Feature)
	assert.Equal(t, "f4", ranked.NegativeDrivers[1].Feature)
	assert.Equal(t, "f3", ranked.NegativeDrivers[2].Feature)
}

func TestRankAttachesAnnotations(t *testing.T) {
	e := testEngine()
	m := stubModel(
		[]string{domain.ColLeadSource},
		[]float64{-0.4},
		map[string]map[string]int{domain.ColLeadSource: {"Inbound": 0}},
	)

	ranked := e.Rank(m, nil, DefaultConfig())
	require.Len(t, ranked.NegativeDrivers, 1)

	d := ranked.NegativeDrivers[0]
	assert.Contains(t, d.LikelyIssues, "Lead quality")
	assert.Contains(t, d.SuggestedActions, "Rebalance marketing spend")
	assert.Equal(t, "moderately decreases win probability", d.Interpretation)
}

func TestInterpret(t *testing.T) {
	tests := []struct {
		coefficient float64
		want        string
	}{
		{0.05, "slightly increases win probability"},
		{-0.05, "slightly decreases win probability"},
		{0.3, "moderately increases win probability"},
		{-0.3, "moderately decreases win probability"},
		{0.7, "strongly increases win probability"},
		{-1.2, "strongly decreases win probability"},
	}

	for _, tt := range tests {
		if got := Interpret(tt.coefficient); got != tt.want {
			t.Errorf("Interpret(%v) = %q, want %q", tt.coefficient, got, tt.want)
		}
	}
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindACVBucket, KindOf(domain.ColACVBucket))
	assert.Equal(t, KindCycleBucket, KindOf(domain.ColCycleBucket))
	assert.Equal(t, KindUnknown, KindOf(domain.ColDealAmount))
	assert.Equal(t, KindUnknown, KindOf("industry_region")) // no substring matching
}

// comparisonDeals builds two periods where lead source flips from a benign
// attribute to a strongly negative one.
func comparisonDeals(quarters []string, badSourceLoses bool) []domain.Deal {
	var deals []domain.Deal
	id := 0
	for _, q := range quarters {
		for i := 0; i < 60; i++ {
			source := []string{"Inbound", "Paid"}[i%2]
			won := i%3 != 0
			if badSourceLoses && source == "Paid" {
				won = i%4 == 0
			}
			outcome := domain.OutcomeLost
			if won {
				outcome = domain.OutcomeWon
			}
			amount := 5000 + float64(i%9)*8000
			cycle := 20 + float64(i%7)*12
			deals = append(deals, domain.Deal{
				ID:             fmt.Sprintf("%s-%d", q, id),
				Amount:         amount,
				Outcome:        outcome,
				SalesCycleDays: cycle,
				Industry:       []string{"SaaS", "Retail"}[i%2],
				Region:         []string{"NA", "EMEA"}[(i/2)%2],
				ProductType:    "Core",
				LeadSource:     source,
				DealStage:      "Closed",
				SalesRepID:     fmt.Sprintf("rep-%d", i%4),
				ACVBucket:      domain.ACVBucketFor(amount),
				CycleBucket:    domain.CycleBucketFor(cycle),
				CreatedQuarter: q,
			})
			id++
		}
	}
	return deals
}

func TestComparePeriods(t *testing.T) {
	e := testEngine()

	baseline := comparisonDeals([]string{"2023Q1", "2023Q2"}, false)
	recent := comparisonDeals([]string{"2024Q1", "2024Q2"}, true)

	recentModel, err := model.Fit(recent)
	require.NoError(t, err)

	cmp, err := e.ComparePeriods(recentModel, baseline, DefaultConfig())
	require.NoError(t, err)

	assert.NotNil(t, cmp.BaselineDrivers)
	assert.NotNil(t, cmp.RecentDrivers)

	for _, change := range cmp.ChangedDrivers {
		assert.Greater(t, math.Abs(change.Change), changeThreshold)
		if change.RecentCoef < change.BaselineCoef {
			assert.Equal(t, "worsened", change.Direction)
		} else {
			assert.Equal(t, "improved", change.Direction)
		}
	}

	// Sorted by absolute movement descending
	for i := 1; i < len(cmp.ChangedDrivers); i++ {
		assert.GreaterOrEqual(t,
			math.Abs(cmp.ChangedDrivers[i-1].Change),
			math.Abs(cmp.ChangedDrivers[i].Change))
	}
}

func TestComparePeriodsBaselineFitFailure(t *testing.T) {
	e := testEngine()

	recent := comparisonDeals([]string{"2024Q1", "2024Q2"}, true)
	recentModel, err := model.Fit(recent)
	require.NoError(t, err)

	// Single-class baseline cannot be fitted
	baseline := comparisonDeals([]string{"2023Q1"}, false)
	for i := range baseline {
		baseline[i].Outcome = domain.OutcomeWon
	}

	_, err = e.ComparePeriods(recentModel, baseline, DefaultConfig())
	assert.Error(t, err)
}
