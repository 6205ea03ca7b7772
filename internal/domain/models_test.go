package domain

import (
	"testing"
	"time"
)

func TestACVBucketFor(t *testing.T) {
	tests := []struct {
		amount float64
		want   string
	}{
		{5000, "SMB (<$10k)"},
		{10000, "SMB (<$10k)"},
		{10001, "Mid-Market ($10k-$30k)"},
		{30000, "Mid-Market ($10k-$30k)"},
		{45000, "Enterprise ($30k-$50k)"},
		{50001, "Large Enterprise (>$50k)"},
	}

	for _, tt := range tests {
		if got := ACVBucketFor(tt.amount); got != tt.want {
			t.Errorf("ACVBucketFor(%v) = %q, want %q", tt.amount, got, tt.want)
		}
	}
}

func TestCycleBucketFor(t *testing.T) {
	tests := []struct {
		days float64
		want string
	}{
		{10, "Fast (<30d)"},
		{30, "Fast (<30d)"},
		{45, "Medium (30-60d)"},
		{75, "Slow (60-90d)"},
		{120, "Very Slow (>90d)"},
	}

	for _, tt := range tests {
		if got := CycleBucketFor(tt.days); got != tt.want {
			t.Errorf("CycleBucketFor(%v) = %q, want %q", tt.days, got, tt.want)
		}
	}
}

func TestQuarterOf(t *testing.T) {
	tests := []struct {
		date string
		want string
	}{
		{"2024-01-15", "2024Q1"},
		{"2024-03-31", "2024Q1"},
		{"2024-04-01", "2024Q2"},
		{"2024-12-31", "2024Q4"},
	}

	for _, tt := range tests {
		d, err := time.Parse("2006-01-02", tt.date)
		if err != nil {
			t.Fatal(err)
		}
		if got := QuarterOf(d); got != tt.want {
			t.Errorf("QuarterOf(%s) = %q, want %q", tt.date, got, tt.want)
		}
	}
}

func TestQuartersSortLexicographically(t *testing.T) {
	early := QuarterOf(time.Date(2023, 10, 1, 0, 0, 0, 0, time.UTC))
	late := QuarterOf(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	if !(early < late) {
		t.Errorf("expected %q < %q", early, late)
	}
}

func TestCategoricalLookup(t *testing.T) {
	d := Deal{Industry: "SaaS", Region: "EMEA", ACVBucket: "SMB (<$10k)"}

	if v, ok := d.Categorical(ColIndustry); !ok || v != "SaaS" {
		t.Errorf("Categorical(industry) = %q, %v", v, ok)
	}
	if v, ok := d.Categorical(ColACVBucket); !ok || v != "SMB (<$10k)" {
		t.Errorf("Categorical(acv_bucket) = %q, %v", v, ok)
	}
	if _, ok := d.Categorical("no_such_column"); ok {
		t.Error("unknown column should report ok=false")
	}
}
