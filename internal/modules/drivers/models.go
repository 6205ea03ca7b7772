package drivers

// TrendDirection classifies the recent win-rate movement of a feature
type TrendDirection string

const (
	TrendWorsening TrendDirection = "worsening"
	TrendStable    TrendDirection = "stable"
	TrendImproving TrendDirection = "improving"
)

// Trend carries the mean win-rate delta for a feature and its classification
type Trend struct {
	Delta     float64        `json:"trend_delta"`
	Direction TrendDirection `json:"trend_direction"`
}

// Driver is a fully scored feature: model impact, revenue exposure, trend
// and the composite win-rate driver score (WRDS), plus curated annotations.
// Drivers are rebuilt fresh on every ranking call and never mutated.
type Driver struct {
	Feature          string   `json:"feature"`
	Coefficient      float64  `json:"coefficient"`
	ImpactStrength   float64  `json:"impact_strength"`
	RevenueExposure  float64  `json:"revenue_exposure"` // fraction of total ACV, 0-1
	Trend            Trend    `json:"trend"`
	Score            float64  `json:"wrds"`
	Interpretation   string   `json:"interpretation"`
	LikelyIssues     []string `json:"likely_issues"`
	SuggestedActions []string `json:"suggested_actions"`
}

// RankedDrivers splits scored features into the ones helping win rate and
// the ones hurting it, each sorted by WRDS descending.
type RankedDrivers struct {
	PositiveDrivers []Driver `json:"positive_drivers"`
	NegativeDrivers []Driver `json:"negative_drivers"`
}

// DriverChange records how a negative driver's coefficient moved between a
// baseline and a recent period.
type DriverChange struct {
	Feature      string  `json:"feature"`
	BaselineCoef float64 `json:"baseline_coef"`
	RecentCoef   float64 `json:"recent_coef"`
	Change       float64 `json:"change"`
	Direction    string  `json:"direction"` // worsened or improved
}

// PeriodComparison is the result of comparing driver rankings across two
// disjoint time periods.
type PeriodComparison struct {
	BaselineDrivers RankedDrivers  `json:"baseline_drivers"`
	RecentDrivers   RankedDrivers  `json:"recent_drivers"`
	ChangedDrivers  []DriverChange `json:"changed_drivers"`
}

// Config controls a ranking request
type Config struct {
	TopN        int
	IncludeWRDS bool // false ranks on raw impact strength only
}

// DefaultConfig returns the standard ranking configuration
func DefaultConfig() Config {
	return Config{TopN: 10, IncludeWRDS: true}
}
