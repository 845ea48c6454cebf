package dataprocessing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shiprisk/pkg/contracts/domain"
)

func TestDescribe(t *testing.T) {
	var rows []domain.EngineeredShipment
	for _, w := range []float64{5, 1, 4, 2, 3} {
		rows = append(rows, domain.EngineeredShipment{Shipment: domain.Shipment{OrderWeight: w}})
	}

	stats := Describe(rows)
	require.Len(t, stats, len(domain.NumericFeatureColumns))

	var weight domain.ColumnStatistics
	for _, s := range stats {
		if s.Column == domain.ColOrderWeight {
			weight = s
		}
	}
	assert.Equal(t, 5, weight.Count)
	assert.InDelta(t, 3.0, float64(weight.Mean), 1e-12)
	assert.InDelta(t, math.Sqrt(2.5), float64(weight.StdDev), 1e-12)
	assert.Equal(t, domain.Number(1), weight.Min)
	assert.Equal(t, domain.Number(2), weight.Q1)
	assert.Equal(t, domain.Number(3), weight.Median)
	assert.Equal(t, domain.Number(4), weight.Q3)
	assert.Equal(t, domain.Number(5), weight.Max)
}

func TestDescribe_Empty(t *testing.T) {
	stats := Describe(nil)
	require.NotEmpty(t, stats)
	assert.Equal(t, 0, stats[0].Count)
	assert.False(t, stats[0].Mean.Defined())
}

func TestDescribeTable(t *testing.T) {
	table := &Table{
		Header: []string{"Order_Weight_Kg", "Route_Type"},
		Rows:   [][]string{{"10", "Sea"}, {"NA", "Air"}, {"30", "Sea"}},
	}
	out, err := DescribeTable(table)
	require.NoError(t, err)
	assert.Contains(t, out, "Order_Weight_Kg")
	assert.Contains(t, out, "mean")
}
