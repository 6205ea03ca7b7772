// Package features turns deal records into a fixed-width numeric matrix for
// linear modelling.
//
// An Encoding is an immutable snapshot of the category-to-code mappings and
// the recorded column order. Transform never mutates the snapshot it is
// called on: when unseen category values appear it returns an extended copy
// alongside the matrix.
package features

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/skygeni/sales-intel/internal/domain"
)

// UnknownCategory is the sentinel that absorbs values never seen at fit time
const UnknownCategory = "unknown"

// Encoding is a fitted feature-encoding snapshot
type Encoding struct {
	// Columns is the feature column order, recorded at fit time and reused
	// identically at transform time. Categorical columns first, then numeric.
	Columns []string
	// Categorical maps each categorical column to its value->code mapping.
	// Codes are assigned in first-observed order and never discarded.
	Categorical map[string]map[string]int
}

// Fit builds an Encoding from the observed deals. Requested columns that do
// not resolve on the Deal record are silently excluded from the feature list;
// callers relying on a fixed feature set must reconcile this themselves.
func Fit(deals []domain.Deal, categoricalCols, numericCols []string) (Encoding, error) {
	if len(deals) == 0 {
		return Encoding{}, fmt.Errorf("cannot fit encoder on an empty deal set")
	}

	enc := Encoding{
		Categorical: make(map[string]map[string]int),
	}

	for _, col := range categoricalCols {
		if _, ok := deals[0].Categorical(col); !ok {
			continue
		}
		mapping := make(map[string]int)
		for _, d := range deals {
			v, _ := d.Categorical(col)
			if _, seen := mapping[v]; !seen {
				mapping[v] = len(mapping)
			}
		}
		enc.Categorical[col] = mapping
		enc.Columns = append(enc.Columns, col)
	}

	for _, col := range numericCols {
		if _, ok := deals[0].Numeric(col); !ok {
			continue
		}
		enc.Columns = append(enc.Columns, col)
	}

	if len(enc.Columns) == 0 {
		return Encoding{}, fmt.Errorf("no usable feature columns")
	}
	return enc, nil
}

// Transform encodes deals into a matrix with one row per deal and one column
// per feature, plus the binary won label. Values absent from the snapshot's
// mappings are rewritten to the unknown sentinel; the returned Encoding is an
// extended copy when that required appending a code, otherwise the receiver.
func (e Encoding) Transform(deals []domain.Deal) (*mat.Dense, []float64, Encoding) {
	out := e
	extended := false

	// extend lazily so untouched snapshots are returned as-is
	codeFor := func(col, value string) int {
		if code, ok := out.Categorical[col][value]; ok {
			return code
		}
		if !extended {
			out = out.clone()
			extended = true
		}
		mapping := out.Categorical[col]
		code, ok := mapping[UnknownCategory]
		if !ok {
			code = len(mapping)
			mapping[UnknownCategory] = code
		}
		return code
	}

	rows := len(deals)
	cols := len(e.Columns)
	x := mat.NewDense(rows, cols, nil)
	y := make([]float64, rows)

	for i, d := range deals {
		for j, col := range e.Columns {
			if _, isCat := e.Categorical[col]; isCat {
				v, _ := d.Categorical(col)
				x.Set(i, j, float64(codeFor(col, v)))
				continue
			}
			v, _ := d.Numeric(col)
			if math.IsNaN(v) {
				v = 0
			}
			x.Set(i, j, v)
		}
		if d.Won() {
			y[i] = 1
		}
	}

	return x, y, out
}

// FeatureNames returns the recorded feature column order
func (e Encoding) FeatureNames() []string {
	names := make([]string, len(e.Columns))
	copy(names, e.Columns)
	return names
}

// IsCategorical reports whether a feature column is categorical
func (e Encoding) IsCategorical(col string) bool {
	_, ok := e.Categorical[col]
	return ok
}

func (e Encoding) clone() Encoding {
	c := Encoding{
		Columns:     make([]string, len(e.Columns)),
		Categorical: make(map[string]map[string]int, len(e.Categorical)),
	}
	copy(c.Columns, e.Columns)
	for col, mapping := range e.Categorical {
		m := make(map[string]int, len(mapping))
		for v, code := range mapping {
			m[v] = code
		}
		c.Categorical[col] = m
	}
	return c
}
