package domain

import (
	"fmt"
	"time"
)

// Outcome represents the final state of a closed deal
type Outcome string

const (
	OutcomeWon  Outcome = "Won"
	OutcomeLost Outcome = "Lost"
)

// Column names used across metrics, encoding and insights
const (
	ColDealID         = "deal_id"
	ColCreatedDate    = "created_date"
	ColClosedDate     = "closed_date"
	ColDealAmount     = "deal_amount"
	ColOutcome        = "outcome"
	ColSalesCycleDays = "sales_cycle_days"
	ColIndustry       = "industry"
	ColRegion         = "region"
	ColProductType    = "product_type"
	ColLeadSource     = "lead_source"
	ColDealStage      = "deal_stage"
	ColSalesRepID     = "sales_rep_id"
	ColACVBucket      = "acv_bucket"
	ColCycleBucket    = "cycle_bucket"
	ColCreatedQuarter = "created_quarter"
)

// CategoricalColumns lists the categorical attributes in encoding order
var CategoricalColumns = []string{
	ColIndustry,
	ColRegion,
	ColProductType,
	ColLeadSource,
	ColDealStage,
	ColACVBucket,
	ColCycleBucket,
}

// NumericColumns lists the numeric attributes used for modelling
var NumericColumns = []string{
	ColDealAmount,
	ColSalesCycleDays,
}

// Deal represents a single closed sales deal
type Deal struct {
	ID             string    `json:"deal_id"`
	CreatedDate    time.Time `json:"created_date"`
	ClosedDate     time.Time `json:"closed_date"`
	Amount         float64   `json:"deal_amount"`
	Outcome        Outcome   `json:"outcome"`
	SalesCycleDays float64   `json:"sales_cycle_days"`
	Industry       string    `json:"industry"`
	Region         string    `json:"region"`
	ProductType    string    `json:"product_type"`
	LeadSource     string    `json:"lead_source"`
	DealStage      string    `json:"deal_stage"`
	SalesRepID     string    `json:"sales_rep_id"`

	// Derived at ingestion
	ACVBucket      string `json:"acv_bucket"`
	CycleBucket    string `json:"cycle_bucket"`
	CreatedQuarter string `json:"created_quarter"`
	CreatedYear    int    `json:"created_year"`
}

// Won reports whether the deal closed as Won
func (d Deal) Won() bool {
	return d.Outcome == OutcomeWon
}

// Categorical returns the value of a categorical column by name
func (d Deal) Categorical(col string) (string, bool) {
	switch col {
	case ColIndustry:
		return d.Industry, true
	case ColRegion:
		return d.Region, true
	case ColProductType:
		return d.ProductType, true
	case ColLeadSource:
		return d.LeadSource, true
	case ColDealStage:
		return d.DealStage, true
	case ColSalesRepID:
		return d.SalesRepID, true
	case ColACVBucket:
		return d.ACVBucket, true
	case ColCycleBucket:
		return d.CycleBucket, true
	case ColCreatedQuarter:
		return d.CreatedQuarter, true
	}
	return "", false
}

// Numeric returns the value of a numeric column by name
func (d Deal) Numeric(col string) (float64, bool) {
	switch col {
	case ColDealAmount:
		return d.Amount, true
	case ColSalesCycleDays:
		return d.SalesCycleDays, true
	}
	return 0, false
}

// ACVBucketFor assigns a deal amount to one of four ordered ACV buckets
func ACVBucketFor(amount float64) string {
	switch {
	case amount <= 10000:
		return "SMB (<$10k)"
	case amount <= 30000:
		return "Mid-Market ($10k-$30k)"
	case amount <= 50000:
		return "Enterprise ($30k-$50k)"
	default:
		return "Large Enterprise (>$50k)"
	}
}

// CycleBucketFor assigns a sales cycle length to one of four ordered buckets
func CycleBucketFor(days float64) string {
	switch {
	case days <= 30:
		return "Fast (<30d)"
	case days <= 60:
		return "Medium (30-60d)"
	case days <= 90:
		return "Slow (60-90d)"
	default:
		return "Very Slow (>90d)"
	}
}

// QuarterOf formats a timestamp as a sortable calendar quarter, e.g. "2024Q3"
func QuarterOf(t time.Time) string {
	q := (int(t.Month())-1)/3 + 1
	return fmt.Sprintf("%04dQ%d", t.Year(), q)
}
