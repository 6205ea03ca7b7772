package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skygeni/sales-intel/internal/domain"
)

func quarterDeals(quarters ...string) []domain.Deal {
	deals := make([]domain.Deal, 0, len(quarters)*2)
	for i, q := range quarters {
		created := time.Date(2024, time.Month(i*3+1), 1, 0, 0, 0, 0, time.UTC)
		for j := 0; j < 2; j++ {
			deals = append(deals, domain.Deal{
				ID:             q,
				CreatedDate:    created,
				ClosedDate:     created.AddDate(0, 0, 30),
				Amount:         1000,
				Outcome:        domain.OutcomeWon,
				SalesCycleDays: 30,
				CreatedQuarter: q,
			})
		}
	}
	return deals
}

func TestSplitByQuarter(t *testing.T) {
	deals := quarterDeals("2024Q1", "2024Q2", "2024Q3", "2024Q4")

	baseline, recent := splitByQuarter(deals, 2)
	require.Len(t, baseline, 4)
	require.Len(t, recent, 4)

	for _, d := range baseline {
		assert.Contains(t, []string{"2024Q1", "2024Q2"}, d.CreatedQuarter)
	}
	for _, d := range recent {
		assert.Contains(t, []string{"2024Q3", "2024Q4"}, d.CreatedQuarter)
	}
}

func TestSplitByQuarterTooFewQuarters(t *testing.T) {
	deals := quarterDeals("2024Q1", "2024Q2")

	baseline, recent := splitByQuarter(deals, 2)
	assert.Empty(t, baseline)
	assert.Len(t, recent, 4)
}
