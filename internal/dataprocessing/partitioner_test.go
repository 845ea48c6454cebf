package dataprocessing

import (
	"math"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shiprisk/internal/errors"
)

var defaultSplit = SplitOptions{TrainFraction: 0.4, ValFractionOfRemainder: 0.5, Seed: 42}

func TestSplit_Properties(t *testing.T) {
	for _, n := range []int{2, 3, 7, 50, 101, 1000} {
		rows := makeShipments(n, uint64(n))
		labels := labelsOf(rows)
		labels[0], labels[n-1] = 0, 1

		p, err := Split(labels, defaultSplit)
		require.NoError(t, err)

		// disjoint and covering
		seen := make(map[int]int, n)
		for _, set := range p.Sets() {
			assert.True(t, sort.IntsAreSorted(set.Indices), set.Name)
			for _, i := range set.Indices {
				seen[i]++
			}
		}
		require.Len(t, seen, n)
		for i, c := range seen {
			assert.Equal(t, 1, c, "row %d", i)
		}

		// per-class counts within one row of the exact fraction
		for _, class := range []int{0, 1} {
			total := 0
			for _, y := range labels {
				if y == class {
					total++
				}
			}
			count := func(idx []int) int {
				c := 0
				for _, i := range idx {
					if labels[i] == class {
						c++
					}
				}
				return c
			}
			exactTrain := 0.4 * float64(total)
			assert.LessOrEqual(t, math.Abs(float64(count(p.Train))-exactTrain), 1.0)
			exactVal := 0.5 * (float64(total) - float64(count(p.Train)))
			assert.LessOrEqual(t, math.Abs(float64(count(p.Validation))-exactVal), 1.0)
		}
	}
}

func TestSplit_Deterministic(t *testing.T) {
	labels := labelsOf(makeShipments(300, 9))

	a, err := Split(labels, defaultSplit)
	require.NoError(t, err)
	b, err := Split(labels, defaultSplit)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	other := defaultSplit
	other.Seed = 43
	c, err := Split(labels, other)
	require.NoError(t, err)
	assert.NotEqual(t, a.Train, c.Train)
}

func TestSplit_Errors(t *testing.T) {
	tests := []struct {
		name    string
		labels  []int
		opts    SplitOptions
		errType errors.ErrorType
	}{
		{"empty input", nil, defaultSplit, errors.ErrTypeEmptyPartition},
		{"single class", []int{1, 1, 1, 1}, defaultSplit, errors.ErrTypeEmptyPartition},
		{"bad train fraction", []int{0, 1}, SplitOptions{TrainFraction: 1, ValFractionOfRemainder: 0.5}, ""},
		{"bad val fraction", []int{0, 1}, SplitOptions{TrainFraction: 0.4}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Split(tt.labels, tt.opts)
			require.Error(t, err)
			if tt.errType != "" {
				assert.True(t, errors.IsType(err, tt.errType))
			}
		})
	}
}

func TestBalance(t *testing.T) {
	b := Balance(PartitionTest, []int{1, 1, 0, 1})
	assert.Equal(t, 4, b.Rows)
	assert.Equal(t, 3, b.OnTime)
	assert.Equal(t, 1, b.Late)
	assert.InDelta(t, 75.0, float64(b.OnTimePct), 1e-12)

	assert.False(t, Balance(PartitionTrain, nil).OnTimePct.Defined())
}

func TestSelect(t *testing.T) {
	assert.Equal(t, []string{"c", "a"}, Select([]string{"a", "b", "c"}, []int{2, 0}))
}
