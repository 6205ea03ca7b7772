package drivers

import "github.com/skygeni/sales-intel/internal/domain"

// AttributeKind is the closed set of deal attribute categories that carry
// curated issue/action annotations.
type AttributeKind int

const (
	KindUnknown AttributeKind = iota
	KindACVBucket
	KindIndustry
	KindRegion
	KindLeadSource
	KindProductType
	KindCycleBucket
)

// KindOf resolves a feature name to its attribute kind. The mapping is an
// explicit enumeration, not substring matching, so a feature either is one
// of the known attributes or falls back to KindUnknown.
func KindOf(feature string) AttributeKind {
	switch feature {
	case domain.ColACVBucket:
		return KindACVBucket
	case domain.ColIndustry:
		return KindIndustry
	case domain.ColRegion:
		return KindRegion
	case domain.ColLeadSource:
		return KindLeadSource
	case domain.ColProductType:
		return KindProductType
	case domain.ColCycleBucket:
		return KindCycleBucket
	}
	return KindUnknown
}

// ActionGuide holds the curated annotations for one attribute kind
type ActionGuide struct {
	LikelyIssues     []string
	SuggestedActions []string
}

var actionGuides = map[AttributeKind]ActionGuide{
	KindACVBucket: {
		LikelyIssues: []string{
			"Pricing objections",
			"Competitive pressure",
			"Longer procurement cycles",
			"Budget constraints",
		},
		SuggestedActions: []string{
			"Exec sponsorship on top 20 deals",
			"Pricing review and competitive analysis",
			"Deal desk involvement earlier",
			"ROI calculator and case studies",
		},
	},
	KindIndustry: {
		LikelyIssues: []string{
			"Industry-specific requirements",
			"Compliance concerns",
			"Budget cycles",
			"Competitive landscape",
		},
		SuggestedActions: []string{
			"Industry-specific enablement",
			"Compliance documentation",
			"Timing alignment with budget cycles",
			"Competitive battle cards",
		},
	},
	KindRegion: {
		LikelyIssues: []string{
			"Local competition",
			"Market maturity",
			"Language/cultural barriers",
			"Time zone challenges",
		},
		SuggestedActions: []string{
			"Local market analysis",
			"Regional sales support",
			"Localized content and demos",
			"Time zone-aligned coverage",
		},
	},
	KindLeadSource: {
		LikelyIssues: []string{
			"Lead quality",
			"Intent mismatch",
			"Timing issues",
			"Qualification gaps",
		},
		SuggestedActions: []string{
			"Rebalance marketing spend",
			"Tighten MQL→SQL qualification",
			"Improve lead scoring",
			"Better handoff process",
		},
	},
	KindProductType: {
		LikelyIssues: []string{
			"Product-market fit",
			"Feature gaps",
			"Integration complexity",
			"Support requirements",
		},
		SuggestedActions: []string{
			"Product roadmap alignment",
			"Integration support",
			"Technical enablement",
			"Customer success involvement",
		},
	},
	KindCycleBucket: {
		LikelyIssues: []string{
			"Qualification issues",
			"Chasing bad deals too long",
			"Pricing friction",
			"Process inefficiencies",
		},
		SuggestedActions: []string{
			"Improve early-stage disqualification",
			"Tighten MEDDICC / ICP enforcement",
			"Pricing transparency",
			"Streamline approval processes",
		},
	},
	KindUnknown: {
		LikelyIssues: []string{
			"Process inefficiencies",
			"Resource constraints",
			"Competitive pressure",
		},
		SuggestedActions: []string{
			"Review sales process",
			"Enablement and training",
			"Competitive analysis",
		},
	},
}

// GuideFor returns the issue/action annotations for a feature name
func GuideFor(feature string) ActionGuide {
	return actionGuides[KindOf(feature)]
}

// Interpret renders a coefficient as a one-line business statement
func Interpret(coefficient float64) string {
	direction := "increases"
	if coefficient < 0 {
		direction = "decreases"
	}

	magnitude := coefficient
	if magnitude < 0 {
		magnitude = -magnitude
	}

	strength := "strongly"
	switch {
	case magnitude < 0.1:
		strength = "slightly"
	case magnitude < 0.5:
		strength = "moderately"
	}

	return strength + " " + direction + " win probability"
}
