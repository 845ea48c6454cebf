package dataprocessing

import (
	"fmt"
	"sort"

	"shiprisk/internal/errors"
	"shiprisk/pkg/contracts/domain"
)

// Frame is a numeric design table: one row per shipment, one column per
// model feature, with the on-time label kept apart from the features.
type Frame struct {
	Columns []string    `json:"columns"`
	Data    [][]float64 `json:"data"`
	Labels  []int       `json:"labels"`
	Rows    []int       `json:"rows"`
}

// Len returns the number of rows
func (f *Frame) Len() int {
	return len(f.Data)
}

// ColumnIndex returns the position of a column or -1
func (f *Frame) ColumnIndex(name string) int {
	for i, c := range f.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Column copies one column out of the frame
func (f *Frame) Column(j int) []float64 {
	out := make([]float64, len(f.Data))
	for i, row := range f.Data {
		out[i] = row[j]
	}
	return out
}

// Subset returns a frame holding the given rows, in the given order.
func (f *Frame) Subset(indices []int) *Frame {
	out := &Frame{
		Columns: f.Columns,
		Data:    make([][]float64, len(indices)),
		Labels:  make([]int, len(indices)),
		Rows:    make([]int, len(indices)),
	}
	for k, i := range indices {
		out.Data[k] = f.Data[i]
		out.Labels[k] = f.Labels[i]
		out.Rows[k] = f.Rows[i]
	}
	return out
}

// Select picks rows by index, preserving the order of indices.
func Select[T any](rows []T, indices []int) []T {
	out := make([]T, len(indices))
	for k, i := range indices {
		out[k] = rows[i]
	}
	return out
}

// BuildFrame lays engineered shipments out as numeric features followed by
// the encoder's indicator columns. Columns named in exclude are left out.
func BuildFrame(rows []domain.EngineeredShipment, enc *Encoder, exclude []string) (*Frame, error) {
	skip := make(map[string]bool, len(exclude))
	for _, c := range exclude {
		skip[c] = true
	}

	var numericIdx []int
	columns := make([]string, 0, len(domain.NumericFeatureColumns)+len(enc.FeatureNames()))
	for j, c := range domain.NumericFeatureColumns {
		if skip[c] {
			delete(skip, c)
			continue
		}
		numericIdx = append(numericIdx, j)
		columns = append(columns, c)
	}
	if len(skip) > 0 {
		unknown := make([]string, 0, len(skip))
		for c := range skip {
			unknown = append(unknown, c)
		}
		sort.Strings(unknown)
		return nil, errors.NewSchemaError(fmt.Sprintf("cannot exclude unknown features %v", unknown))
	}
	columns = append(columns, enc.FeatureNames()...)

	f := &Frame{
		Columns: columns,
		Data:    make([][]float64, len(rows)),
		Labels:  make([]int, len(rows)),
		Rows:    make([]int, len(rows)),
	}
	for i, r := range rows {
		numeric := r.Numeric()
		data := make([]float64, 0, len(columns))
		for _, j := range numericIdx {
			data = append(data, numeric[j])
		}
		data = append(data, enc.Encode(r.Shipment)...)

		f.Data[i] = data
		f.Labels[i] = r.OnTime
		f.Rows[i] = r.Row
	}
	return f, nil
}
