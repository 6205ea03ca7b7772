// Package drivers implements the win-rate driver scoring engine.
//
// For every encoded feature it blends the model coefficient, worst-case
// revenue exposure and the recent win-rate trend into a single composite
// score (WRDS), then ranks features into positive and negative driver lists
// and attaches curated issue/action annotations. The engine is stateless:
// every call is a pure function of the fitted model, the dataset and the
// ranking configuration.
package drivers

import (
	"math"
	"sort"

	"github.com/rs/zerolog"

	"github.com/skygeni/sales-intel/internal/domain"
	"github.com/skygeni/sales-intel/internal/modules/metrics"
	"github.com/skygeni/sales-intel/internal/modules/model"
)

const (
	trendRecentQuarters   = 2
	trendPreviousQuarters = 2
	trendThreshold        = 0.05
	changeThreshold       = 0.1
)

// Engine scores and ranks win-rate drivers
type Engine struct {
	log zerolog.Logger
}

// NewEngine creates a new driver-scoring engine
func NewEngine(log zerolog.Logger) *Engine {
	return &Engine{log: log.With().Str("module", "drivers").Logger()}
}

// Rank scores every feature of the fitted model against the given dataset
// and returns the top positive and negative drivers, each sorted by score
// descending. Zero-coefficient features belong to neither list.
func (e *Engine) Rank(m *model.DriverModel, deals []domain.Deal, cfg Config) RankedDrivers {
	if cfg.TopN < 1 {
		cfg.TopN = DefaultConfig().TopN
	}

	scored := make([]Driver, 0, len(m.FeatureNames))
	for i, feature := range m.FeatureNames {
		scored = append(scored, e.scoreFeature(m, deals, feature, m.Coefficients[i], cfg))
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Feature < scored[j].Feature
	})

	ranked := RankedDrivers{
		PositiveDrivers: []Driver{},
		NegativeDrivers: []Driver{},
	}
	for _, d := range scored {
		switch {
		case d.Coefficient > 0 && len(ranked.PositiveDrivers) < cfg.TopN:
			ranked.PositiveDrivers = append(ranked.PositiveDrivers, d)
		case d.Coefficient < 0 && len(ranked.NegativeDrivers) < cfg.TopN:
			ranked.NegativeDrivers = append(ranked.NegativeDrivers, d)
		}
	}

	e.log.Debug().
		Int("features", len(scored)).
		Int("positive", len(ranked.PositiveDrivers)).
		Int("negative", len(ranked.NegativeDrivers)).
		Msg("Ranked win-rate drivers")

	return ranked
}

func (e *Engine) scoreFeature(m *model.DriverModel, deals []domain.Deal, feature string, coefficient float64, cfg Config) Driver {
	impact := math.Abs(coefficient)
	exposure := e.RevenueExposure(m, deals, feature)
	trend := e.RecentTrend(deals, feature)

	score := impact
	if cfg.IncludeWRDS {
		score = impact * exposure * trendMultiplier(coefficient, trend.Direction)
	}

	guide := GuideFor(feature)
	return Driver{
		Feature:          feature,
		Coefficient:      coefficient,
		ImpactStrength:   impact,
		RevenueExposure:  exposure,
		Trend:            trend,
		Score:            score,
		Interpretation:   Interpret(coefficient),
		LikelyIssues:     guide.LikelyIssues,
		SuggestedActions: guide.SuggestedActions,
	}
}

// RevenueExposure returns the fraction of total pipeline ACV a feature can
// touch. For categorical features this is the worst case: the largest single
// category's share of total ACV. Numeric features affect every deal and
// score 1.0.
//
// Worst-case (rather than expected) share is a deliberate policy choice: it
// amplifies attributes whose revenue concentrates in one value.
func (e *Engine) RevenueExposure(m *model.DriverModel, deals []domain.Deal, feature string) float64 {
	if !m.Encoding.IsCategorical(feature) {
		if _, ok := (domain.Deal{}).Numeric(feature); ok {
			return 1.0
		}
		return 0.0
	}

	var totalACV float64
	byCategory := make(map[string]float64)
	for _, d := range deals {
		totalACV += d.Amount
		if v, ok := d.Categorical(feature); ok {
			byCategory[v] += d.Amount
		}
	}
	if totalACV == 0 {
		return 0.0
	}

	var worst float64
	for _, acv := range byCategory {
		if share := acv / totalACV; share > worst {
			worst = share
		}
	}
	return worst
}

// RecentTrend classifies a feature's win-rate movement by comparing the last
// two quarters against the two before. When the window precondition cannot
// be met (too few quarters, or the feature does not group the data) the
// trend is stable with delta zero; that is a defined fallback, not an error.
func (e *Engine) RecentTrend(deals []domain.Deal, feature string) Trend {
	delta := metrics.WinRateDeltaBySegment(deals, feature, domain.ColCreatedQuarter, trendRecentQuarters, trendPreviousQuarters)
	if len(delta) == 0 {
		return Trend{Delta: 0, Direction: TrendStable}
	}

	var sum float64
	for _, d := range delta {
		sum += d
	}
	mean := sum / float64(len(delta))

	direction := TrendStable
	switch {
	case mean < -trendThreshold:
		direction = TrendWorsening
	case mean > trendThreshold:
		direction = TrendImproving
	}
	return Trend{Delta: mean, Direction: direction}
}

// trendMultiplier boosts drivers already trending in the direction that
// amplifies their effect and discounts those trending against it:
//
//	negative coefficient: worsening 1.5, stable 1.0, improving 0.8
//	positive coefficient: improving 1.5, stable 1.0, worsening 0.8
func trendMultiplier(coefficient float64, direction TrendDirection) float64 {
	if coefficient < 0 {
		switch direction {
		case TrendWorsening:
			return 1.5
		case TrendImproving:
			return 0.8
		}
		return 1.0
	}
	switch direction {
	case TrendImproving:
		return 1.5
	case TrendWorsening:
		return 0.8
	}
	return 1.0
}
