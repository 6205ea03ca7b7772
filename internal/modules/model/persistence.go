package model

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/skygeni/sales-intel/internal/modules/features"
)

// SchemaVersion tags the persisted artifact format. Load rejects bundles
// written with a different version.
const SchemaVersion = 1

// bundle is the persisted model artifact. Coefficients, standardization
// parameters, category mappings and feature order always travel together;
// partial bundles are invalid.
type bundle struct {
	SchemaVersion    int                       `msgpack:"schema_version"`
	ColumnOrder      []string                  `msgpack:"column_order"`
	CategoryMappings map[string]map[string]int `msgpack:"category_mappings"`
	FeatureNames     []string                  `msgpack:"feature_names"`
	Coefficients     []float64                 `msgpack:"coefficients"`
	Intercept        float64                   `msgpack:"intercept"`
	Means            []float64                 `msgpack:"means"`
	Scales           []float64                 `msgpack:"scales"`
	TrainedAt        time.Time                 `msgpack:"trained_at"`
	TrainingSamples  int                       `msgpack:"training_samples"`
	TestSamples      int                       `msgpack:"test_samples"`
	TrainAccuracy    float64                   `msgpack:"train_accuracy"`
	TestAccuracy     float64                   `msgpack:"test_accuracy"`
}

// Save writes the model state to path as a single msgpack bundle.
// The write goes through a temp file and rename so a crash never leaves a
// half-written artifact behind.
func (m *DriverModel) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create model directory: %w", err)
	}

	b := bundle{
		SchemaVersion:    SchemaVersion,
		ColumnOrder:      m.Encoding.Columns,
		CategoryMappings: m.Encoding.Categorical,
		FeatureNames:     m.FeatureNames,
		Coefficients:     m.Coefficients,
		Intercept:        m.Intercept,
		Means:            m.Means,
		Scales:           m.Scales,
		TrainedAt:        m.TrainedAt,
		TrainingSamples:  m.TrainingSamples,
		TestSamples:      m.TestSamples,
		TrainAccuracy:    m.TrainAccuracy,
		TestAccuracy:     m.TestAccuracy,
	}

	data, err := msgpack.Marshal(b)
	if err != nil {
		return fmt.Errorf("failed to encode model bundle: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write model bundle: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to finalize model bundle: %w", err)
	}
	return nil
}

// Load reads a model bundle written by Save. The loaded model carries no
// fitted dataset; pass the analysis dataset to the driver engine explicitly.
func Load(path string) (*DriverModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model bundle: %w", err)
	}

	var b bundle
	if err := msgpack.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("failed to decode model bundle: %w", err)
	}

	if b.SchemaVersion != SchemaVersion {
		return nil, fmt.Errorf("unsupported model schema version %d (want %d)", b.SchemaVersion, SchemaVersion)
	}
	if len(b.FeatureNames) == 0 || len(b.Coefficients) == 0 || len(b.ColumnOrder) == 0 {
		return nil, fmt.Errorf("model bundle is incomplete")
	}
	if len(b.Coefficients) != len(b.FeatureNames) ||
		len(b.Means) != len(b.FeatureNames) ||
		len(b.Scales) != len(b.FeatureNames) {
		return nil, fmt.Errorf("model bundle is inconsistent: %d features, %d coefficients, %d means, %d scales",
			len(b.FeatureNames), len(b.Coefficients), len(b.Means), len(b.Scales))
	}

	return &DriverModel{
		Encoding: features.Encoding{
			Columns:     b.ColumnOrder,
			Categorical: b.CategoryMappings,
		},
		FeatureNames:    b.FeatureNames,
		Coefficients:    b.Coefficients,
		Intercept:       b.Intercept,
		Means:           b.Means,
		Scales:          b.Scales,
		TrainedAt:       b.TrainedAt,
		TrainingSamples: b.TrainingSamples,
		TestSamples:     b.TestSamples,
		TrainAccuracy:   b.TrainAccuracy,
		TestAccuracy:    b.TestAccuracy,
	}, nil
}
