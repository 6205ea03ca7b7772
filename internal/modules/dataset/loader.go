// Package dataset loads, validates and persists the deal dataset.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/skygeni/sales-intel/internal/domain"
)

const dateLayout = "2006-01-02"

// requiredColumns must be present in every input file
var requiredColumns = []string{
	domain.ColDealID,
	domain.ColCreatedDate,
	domain.ColClosedDate,
	domain.ColDealAmount,
	domain.ColOutcome,
}

// LoadCSV reads deals from a CSV file with a header row. The sales_cycle_days
// column is optional; when absent the cycle is derived from the date columns.
// Optional categorical columns default to empty strings.
func LoadCSV(path string) ([]domain.Deal, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()

	return ReadCSV(f)
}

// ReadCSV parses deals from CSV content
func ReadCSV(r io.Reader) ([]domain.Deal, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	idx := make(map[string]int, len(header))
	for i, col := range header {
		idx[col] = i
	}
	for _, col := range requiredColumns {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("missing required column %q", col)
		}
	}

	field := func(record []string, col string) string {
		i, ok := idx[col]
		if !ok || i >= len(record) {
			return ""
		}
		return record[i]
	}

	var deals []domain.Deal
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record: %w", err)
		}
		line++

		created, err := time.Parse(dateLayout, field(record, domain.ColCreatedDate))
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid created_date: %w", line, err)
		}
		closed, err := time.Parse(dateLayout, field(record, domain.ColClosedDate))
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid closed_date: %w", line, err)
		}
		amount, err := strconv.ParseFloat(field(record, domain.ColDealAmount), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid deal_amount: %w", line, err)
		}

		cycleDays := closed.Sub(created).Hours() / 24
		if raw := field(record, domain.ColSalesCycleDays); raw != "" {
			cycleDays, err = strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid sales_cycle_days: %w", line, err)
			}
		}

		deals = append(deals, domain.Deal{
			ID:             field(record, domain.ColDealID),
			CreatedDate:    created,
			ClosedDate:     closed,
			Amount:         amount,
			Outcome:        domain.Outcome(field(record, domain.ColOutcome)),
			SalesCycleDays: cycleDays,
			Industry:       field(record, domain.ColIndustry),
			Region:         field(record, domain.ColRegion),
			ProductType:    field(record, domain.ColProductType),
			LeadSource:     field(record, domain.ColLeadSource),
			DealStage:      field(record, domain.ColDealStage),
			SalesRepID:     field(record, domain.ColSalesRepID),
		})
	}

	if len(deals) == 0 {
		return nil, fmt.Errorf("dataset contains no deals")
	}
	return deals, nil
}
