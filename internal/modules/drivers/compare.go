package drivers

import (
	"fmt"
	"math"
	"sort"

	"github.com/skygeni/sales-intel/internal/domain"
	"github.com/skygeni/sales-intel/internal/modules/model"
)

// ComparePeriods fits a fresh model on the baseline period and compares its
// negative-driver list against the one from the already-fitted recent model.
// A driver counts as changed when its coefficient moved by more than 0.1;
// since negative-driver coefficients sit below zero, a recent coefficient
// lower than the baseline one means the driver worsened.
func (e *Engine) ComparePeriods(recent *model.DriverModel, baselineDeals []domain.Deal, cfg Config) (PeriodComparison, error) {
	baseline, err := model.Fit(baselineDeals)
	if err != nil {
		return PeriodComparison{}, fmt.Errorf("failed to fit baseline model: %w", err)
	}

	baselineDrivers := e.Rank(baseline, baselineDeals, cfg)
	recentDrivers := e.Rank(recent, recent.FittedDeals(), cfg)

	baselineCoefs := make(map[string]float64)
	for _, d := range baselineDrivers.NegativeDrivers {
		baselineCoefs[d.Feature] = d.Coefficient
	}
	recentCoefs := make(map[string]float64)
	for _, d := range recentDrivers.NegativeDrivers {
		recentCoefs[d.Feature] = d.Coefficient
	}

	union := make(map[string]bool)
	for f := range baselineCoefs {
		union[f] = true
	}
	for f := range recentCoefs {
		union[f] = true
	}

	var changed []DriverChange
	for feature := range union {
		baselineCoef := baselineCoefs[feature]
		recentCoef := recentCoefs[feature]
		if math.Abs(baselineCoef-recentCoef) <= changeThreshold {
			continue
		}
		direction := "improved"
		if recentCoef < baselineCoef {
			direction = "worsened"
		}
		changed = append(changed, DriverChange{
			Feature:      feature,
			BaselineCoef: baselineCoef,
			RecentCoef:   recentCoef,
			Change:       recentCoef - baselineCoef,
			Direction:    direction,
		})
	}

	// Largest movement first; names break ties
	sort.Slice(changed, func(i, j int) bool {
		ci, cj := math.Abs(changed[i].Change), math.Abs(changed[j].Change)
		if ci != cj {
			return ci > cj
		}
		return changed[i].Feature < changed[j].Feature
	})

	return PeriodComparison{
		BaselineDrivers: baselineDrivers,
		RecentDrivers:   recentDrivers,
		ChangedDrivers:  changed,
	}, nil
}
