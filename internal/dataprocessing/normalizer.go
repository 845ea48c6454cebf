package dataprocessing

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"shiprisk/internal/errors"
)

// Bounds is the fitted range of one column
type Bounds struct {
	Column string  `json:"column"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// Constant reports whether the column had a single value in the reference set
func (b Bounds) Constant() bool {
	return b.Max == b.Min
}

// Scale maps x into the fitted range. Values outside it are not clipped.
func (b Bounds) Scale(x float64) float64 {
	if b.Constant() {
		return 0
	}
	return (x - b.Min) / (b.Max - b.Min)
}

// Normalizer applies min-max scaling learned from a reference frame.
type Normalizer struct {
	Bounds []Bounds `json:"bounds"`
}

// FitNormalizer records the min and max of each named column of f.
func FitNormalizer(f *Frame, columns []string) (*Normalizer, error) {
	if f.Len() == 0 {
		return nil, errors.NewEmptyPartitionError("cannot fit normalizer on an empty frame")
	}

	n := &Normalizer{Bounds: make([]Bounds, 0, len(columns))}
	for _, col := range columns {
		j := f.ColumnIndex(col)
		if j < 0 {
			return nil, errors.NewSchemaError(fmt.Sprintf("normalizer column %s not in frame", col)).
				WithContext("column", col)
		}
		values := f.Column(j)
		n.Bounds = append(n.Bounds, Bounds{Column: col, Min: floats.Min(values), Max: floats.Max(values)})
	}
	return n, nil
}

// Transform returns a scaled copy of f using the fitted bounds. Columns
// without bounds pass through. Constant columns become 0 and are reported
// as ZeroVarianceWarnings.
func (n *Normalizer) Transform(f *Frame) (*Frame, []errors.Warning, error) {
	idx := make([]int, len(n.Bounds))
	var warnings []errors.Warning
	for k, b := range n.Bounds {
		j := f.ColumnIndex(b.Column)
		if j < 0 {
			return nil, nil, errors.NewSchemaError(fmt.Sprintf("normalizer column %s not in frame", b.Column)).
				WithContext("column", b.Column)
		}
		idx[k] = j
		if b.Constant() {
			warnings = append(warnings, errors.NewWarning(errors.WarnZeroVariance,
				"column %s is constant (%g) in the reference set, scaled to 0", b.Column, b.Min).
				With("column", b.Column))
		}
	}

	out := &Frame{
		Columns: f.Columns,
		Data:    make([][]float64, f.Len()),
		Labels:  f.Labels,
		Rows:    f.Rows,
	}
	for i, row := range f.Data {
		scaled := append([]float64(nil), row...)
		for k, b := range n.Bounds {
			scaled[idx[k]] = b.Scale(row[idx[k]])
		}
		out.Data[i] = scaled
	}
	return out, warnings, nil
}
