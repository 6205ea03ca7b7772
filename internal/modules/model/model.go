// Package model fits the win-rate driver model: a logistic regression over
// standardized deal features. The model exists to produce interpretable
// linear weights, not to maximize predictive accuracy.
package model

import (
	"fmt"
	"math/rand"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/skygeni/sales-intel/internal/domain"
	"github.com/skygeni/sales-intel/internal/modules/features"
	"github.com/skygeni/sales-intel/pkg/formulas"
)

const (
	testFraction = 0.2
	splitSeed    = 42

	gdIterations   = 2000
	gdLearningRate = 0.3
)

// DriverModel is the fitted model state: encoder snapshot, standardization
// parameters, coefficients and training metadata. It is immutable after
// fitting and must be persisted and reloaded as one unit.
type DriverModel struct {
	Encoding     features.Encoding
	FeatureNames []string
	Coefficients []float64 // one per feature, in FeatureNames order
	Intercept    float64
	Means        []float64 // standardization, fit on the training split
	Scales       []float64

	TrainedAt       time.Time
	TrainingSamples int
	TestSamples     int
	TrainAccuracy   float64
	TestAccuracy    float64

	fittedDeals []domain.Deal
}

// Fit trains the driver model on the given deals. The input is split 80/20
// (stratified by outcome, fixed seed) purely to report held-out accuracy;
// the reported coefficients come from the training-split fit.
func Fit(deals []domain.Deal) (*DriverModel, error) {
	enc, err := features.Fit(deals, domain.CategoricalColumns, domain.NumericColumns)
	if err != nil {
		return nil, fmt.Errorf("feature encoding failed: %w", err)
	}
	x, y, enc := enc.Transform(deals)

	trainIdx, testIdx, err := stratifiedSplit(y, testFraction, splitSeed)
	if err != nil {
		return nil, err
	}

	xTrain, yTrain := selectRows(x, y, trainIdx)
	xTest, yTest := selectRows(x, y, testIdx)

	means, scales := fitStandardizer(xTrain)
	standardize(xTrain, means, scales)
	standardize(xTest, means, scales)

	coefs, intercept := fitLogistic(xTrain, yTrain)

	m := &DriverModel{
		Encoding:        enc,
		FeatureNames:    enc.FeatureNames(),
		Coefficients:    coefs,
		Intercept:       intercept,
		Means:           means,
		Scales:          scales,
		TrainedAt:       time.Now().UTC(),
		TrainingSamples: len(trainIdx),
		TestSamples:     len(testIdx),
		fittedDeals:     append([]domain.Deal(nil), deals...),
	}
	m.TrainAccuracy = m.accuracy(xTrain, yTrain)
	m.TestAccuracy = m.accuracy(xTest, yTest)

	return m, nil
}

// FittedDeals returns the dataset the model was fit on
func (m *DriverModel) FittedDeals() []domain.Deal {
	return m.fittedDeals
}

// Coefficient returns the coefficient for a feature name
func (m *DriverModel) Coefficient(feature string) (float64, bool) {
	for i, name := range m.FeatureNames {
		if name == feature {
			return m.Coefficients[i], true
		}
	}
	return 0, false
}

// PredictProbability returns P(Won) for an already-encoded feature row
func (m *DriverModel) PredictProbability(row []float64) float64 {
	z := m.Intercept
	for j, v := range row {
		scaled := (v - m.Means[j]) / m.Scales[j]
		z += m.Coefficients[j] * scaled
	}
	return formulas.Sigmoid(z)
}

// accuracy expects an already-standardized matrix
func (m *DriverModel) accuracy(x *mat.Dense, y []float64) float64 {
	rows, _ := x.Dims()
	if rows == 0 {
		return 0
	}
	correct := 0
	for i := 0; i < rows; i++ {
		z := m.Intercept
		for j := range m.Coefficients {
			z += m.Coefficients[j] * x.At(i, j)
		}
		predicted := 0.0
		if formulas.Sigmoid(z) >= 0.5 {
			predicted = 1.0
		}
		if predicted == y[i] {
			correct++
		}
	}
	return float64(correct) / float64(rows)
}

// stratifiedSplit shuffles indices within each class and carves off the test
// fraction from each, keeping the outcome mix comparable across splits.
func stratifiedSplit(y []float64, fraction float64, seed int64) (train, test []int, err error) {
	var won, lost []int
	for i, label := range y {
		if label == 1 {
			won = append(won, i)
		} else {
			lost = append(lost, i)
		}
	}
	if len(won) == 0 || len(lost) == 0 {
		return nil, nil, fmt.Errorf("degenerate single-class target: %d won, %d lost", len(won), len(lost))
	}

	rng := rand.New(rand.NewSource(seed))
	for _, class := range [][]int{won, lost} {
		rng.Shuffle(len(class), func(i, j int) {
			class[i], class[j] = class[j], class[i]
		})
		nTest := int(float64(len(class)) * fraction)
		test = append(test, class[:nTest]...)
		train = append(train, class[nTest:]...)
	}

	if len(train) == 0 || len(test) == 0 {
		return nil, nil, fmt.Errorf("not enough deals to split: %d total", len(y))
	}
	return train, test, nil
}

func selectRows(x *mat.Dense, y []float64, idx []int) (*mat.Dense, []float64) {
	_, cols := x.Dims()
	sub := mat.NewDense(len(idx), cols, nil)
	labels := make([]float64, len(idx))
	for i, row := range idx {
		for j := 0; j < cols; j++ {
			sub.Set(i, j, x.At(row, j))
		}
		labels[i] = y[row]
	}
	return sub, labels
}

// fitStandardizer computes per-column mean and population standard deviation.
// Constant columns get scale 1 so they standardize to zero.
func fitStandardizer(x *mat.Dense) (means, scales []float64) {
	rows, cols := x.Dims()
	means = make([]float64, cols)
	scales = make([]float64, cols)
	col := make([]float64, rows)
	for j := 0; j < cols; j++ {
		mat.Col(col, j, x)
		means[j] = formulas.Mean(col)
		scales[j] = formulas.PopStdDev(col)
		if scales[j] == 0 {
			scales[j] = 1
		}
	}
	return means, scales
}

func standardize(x *mat.Dense, means, scales []float64) {
	rows, cols := x.Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			x.Set(i, j, (x.At(i, j)-means[j])/scales[j])
		}
	}
}

// fitLogistic runs batch gradient descent on the logistic loss. Zero
// initialization and a fixed schedule keep the fit deterministic.
func fitLogistic(x *mat.Dense, y []float64) (coefs []float64, intercept float64) {
	rows, cols := x.Dims()
	coefs = make([]float64, cols)
	grad := make([]float64, cols)

	for iter := 0; iter < gdIterations; iter++ {
		for j := range grad {
			grad[j] = 0
		}
		gradIntercept := 0.0

		for i := 0; i < rows; i++ {
			z := intercept
			for j := 0; j < cols; j++ {
				z += coefs[j] * x.At(i, j)
			}
			residual := formulas.Sigmoid(z) - y[i]
			gradIntercept += residual
			for j := 0; j < cols; j++ {
				grad[j] += residual * x.At(i, j)
			}
		}

		n := float64(rows)
		intercept -= gdLearningRate * gradIntercept / n
		for j := 0; j < cols; j++ {
			coefs[j] -= gdLearningRate * grad[j] / n
		}
	}
	return coefs, intercept
}
