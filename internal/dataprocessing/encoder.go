package dataprocessing

import (
	"sort"

	"shiprisk/pkg/contracts/domain"
)

// EncoderOptions controls how categorical columns become indicators.
type EncoderOptions struct {
	// Columns to encode; defaults to domain.CategoricalColumns.
	Columns []string
	// DropReference omits the lexicographically first level of each column,
	// giving k-1 indicators for k levels.
	DropReference bool
}

// Encoder maps categorical columns onto indicator columns named
// <column>_<value>, ordered by column then value.
type Encoder struct {
	Columns       []string            `json:"columns"`
	Vocabulary    map[string][]string `json:"vocabulary"`
	DropReference bool                `json:"drop_reference"`
}

// FitEncoder learns the sorted set of non-empty values of each column.
func FitEncoder(rows []domain.EngineeredShipment, opts EncoderOptions) *Encoder {
	columns := opts.Columns
	if len(columns) == 0 {
		columns = domain.CategoricalColumns
	}
	columns = append([]string(nil), columns...)
	sort.Strings(columns)

	enc := &Encoder{
		Columns:       columns,
		Vocabulary:    make(map[string][]string, len(columns)),
		DropReference: opts.DropReference,
	}
	for _, col := range columns {
		seen := make(map[string]struct{})
		for _, r := range rows {
			if v := r.Category(col); v != "" {
				seen[v] = struct{}{}
			}
		}
		values := make([]string, 0, len(seen))
		for v := range seen {
			values = append(values, v)
		}
		sort.Strings(values)
		enc.Vocabulary[col] = values
	}
	return enc
}

// Reference returns the dropped level of a column, or "" when none is dropped.
func (e *Encoder) Reference(column string) string {
	values := e.Vocabulary[column]
	if !e.DropReference || len(values) == 0 {
		return ""
	}
	return values[0]
}

// Levels returns the values of a column that get their own indicator
func (e *Encoder) Levels(column string) []string {
	values := e.Vocabulary[column]
	if e.DropReference && len(values) > 0 {
		return values[1:]
	}
	return values
}

// FeatureNames returns the indicator column names in encoding order
func (e *Encoder) FeatureNames() []string {
	var names []string
	for _, col := range e.Columns {
		for _, v := range e.Levels(col) {
			names = append(names, col+"_"+v)
		}
	}
	return names
}

// Encode returns the indicator values for one shipment. A missing or unseen
// value, or the reference level, yields zeros for that column.
func (e *Encoder) Encode(s domain.Shipment) []float64 {
	var out []float64
	for _, col := range e.Columns {
		v := s.Category(col)
		for _, level := range e.Levels(col) {
			if v == level {
				out = append(out, 1)
			} else {
				out = append(out, 0)
			}
		}
	}
	return out
}
