package dataset

import (
	"fmt"

	"github.com/skygeni/sales-intel/internal/domain"
)

// maxPlausibleCycleDays flags sales cycles longer than a year
const maxPlausibleCycleDays = 365

// Validate runs the data-contract checks and returns a validity flag plus
// human-readable issue strings. Nothing is repaired here; the caller decides
// whether to proceed with a dirty dataset.
func Validate(deals []domain.Deal) (bool, []string) {
	var issues []string

	missingIDs := 0
	invalidOutcomes := make(map[domain.Outcome]bool)
	invalidOutcomeCount := 0
	negativeAmounts := 0
	closedBeforeCreated := 0
	negativeCycles := 0
	veryLongCycles := 0

	for _, d := range deals {
		if d.ID == "" {
			missingIDs++
		}
		if d.Outcome != domain.OutcomeWon && d.Outcome != domain.OutcomeLost {
			invalidOutcomes[d.Outcome] = true
			invalidOutcomeCount++
		}
		if d.Amount < 0 {
			negativeAmounts++
		}
		if d.ClosedDate.Before(d.CreatedDate) {
			closedBeforeCreated++
		}
		if d.SalesCycleDays < 0 {
			negativeCycles++
		}
		if d.SalesCycleDays > maxPlausibleCycleDays {
			veryLongCycles++
		}
	}

	if missingIDs > 0 {
		issues = append(issues, fmt.Sprintf("Missing values in deal_id: %d", missingIDs))
	}
	if invalidOutcomeCount > 0 {
		values := make([]string, 0, len(invalidOutcomes))
		for v := range invalidOutcomes {
			values = append(values, string(v))
		}
		issues = append(issues, fmt.Sprintf("Invalid outcome values: %d deals (%v)", invalidOutcomeCount, values))
	}
	if negativeAmounts > 0 {
		issues = append(issues, fmt.Sprintf("Negative deal amounts: %d deals", negativeAmounts))
	}
	if closedBeforeCreated > 0 {
		issues = append(issues, fmt.Sprintf("Deals with closed_date before created_date: %d", closedBeforeCreated))
	}
	if negativeCycles > 0 {
		issues = append(issues, fmt.Sprintf("Negative sales cycle days: %d deals", negativeCycles))
	}
	if veryLongCycles > 0 {
		issues = append(issues, fmt.Sprintf("Sales cycles > %d days: %d deals", maxPlausibleCycleDays, veryLongCycles))
	}

	return len(issues) == 0, issues
}

// AddDerivedFeatures returns a copy of the deals with bucket, quarter and
// year attributes filled in.
func AddDerivedFeatures(deals []domain.Deal) []domain.Deal {
	out := make([]domain.Deal, len(deals))
	for i, d := range deals {
		d.ACVBucket = domain.ACVBucketFor(d.Amount)
		d.CycleBucket = domain.CycleBucketFor(d.SalesCycleDays)
		d.CreatedQuarter = domain.QuarterOf(d.CreatedDate)
		d.CreatedYear = d.CreatedDate.Year()
		out[i] = d
	}
	return out
}
