package dataprocessing

import (
	"fmt"
	"math"
	"sort"

	"github.com/go-gota/gota/dataframe"
	"gonum.org/v1/gonum/stat"

	"shiprisk/pkg/contracts/domain"
)

// Describe computes descriptive statistics for every numeric feature column
// of the engineered shipments. Std is the sample standard deviation and
// quartiles use the empirical quantile, so they are actual observed values.
func Describe(rows []domain.EngineeredShipment) []domain.ColumnStatistics {
	columns := make([][]float64, len(domain.NumericFeatureColumns))
	for _, r := range rows {
		for j, v := range r.Numeric() {
			columns[j] = append(columns[j], v)
		}
	}

	out := make([]domain.ColumnStatistics, len(domain.NumericFeatureColumns))
	for j, name := range domain.NumericFeatureColumns {
		out[j] = describeColumn(name, columns[j])
	}
	return out
}

func describeColumn(name string, values []float64) domain.ColumnStatistics {
	nan := domain.Number(math.NaN())
	cs := domain.ColumnStatistics{
		Column: name,
		Count:  len(values),
		Mean:   nan, StdDev: nan, Min: nan, Q1: nan, Median: nan, Q3: nan, Max: nan,
	}
	if len(values) == 0 {
		return cs
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	cs.Mean = domain.Number(stat.Mean(sorted, nil))
	if len(sorted) > 1 {
		cs.StdDev = domain.Number(stat.StdDev(sorted, nil))
	}
	cs.Min = domain.Number(sorted[0])
	cs.Q1 = domain.Number(stat.Quantile(0.25, stat.Empirical, sorted, nil))
	cs.Median = domain.Number(stat.Quantile(0.5, stat.Empirical, sorted, nil))
	cs.Q3 = domain.Number(stat.Quantile(0.75, stat.Empirical, sorted, nil))
	cs.Max = domain.Number(sorted[len(sorted)-1])
	return cs
}

// DescribeTable renders a dataframe summary of the raw table, with missing
// tokens loaded as NaN and column types detected from the cells.
func DescribeTable(t *Table) (string, error) {
	df := dataframe.LoadRecords(t.Records(),
		dataframe.HasHeader(true),
		dataframe.DetectTypes(true),
		dataframe.NaNValues([]string{"", "NA", "N/A", "NaN", "null", "na", "n/a", "nan", "NULL"}),
	)
	if df.Err != nil {
		return "", fmt.Errorf("failed to load table into dataframe: %w", df.Err)
	}
	desc := df.Describe()
	if desc.Err != nil {
		return "", fmt.Errorf("failed to describe dataframe: %w", desc.Err)
	}
	return desc.String(), nil
}
