package dataprocessing

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClean(t *testing.T) {
	table := &Table{
		Header: []string{"a", "b", "c"},
		Rows: [][]string{
			{"1", "x", "2"},
			{"", " ", "NA"},
			{"n/a", "", "3"},
			{},
			{"null", "NaN", ""},
		},
		Lines: []int{2, 3, 4, 5, 6},
	}

	cleaned, report := Clean(table)

	require.Equal(t, 2, cleaned.NumRows())
	assert.Equal(t, []int{2, 4}, cleaned.Lines)
	assert.Equal(t, 5, report.RowsBefore)
	assert.Equal(t, 2, report.RowsAfter)
	assert.Equal(t, 3, report.RowsDropped)
	assert.Equal(t, 3, report.Columns)
	assert.Equal(t, 11, report.MissingCellsBefore)
	assert.Equal(t, 2, report.MissingCellsAfter)
	assert.Equal(t, map[string]int{"a": 1, "b": 1}, report.MissingByColumn)
	assert.Equal(t, 5, table.NumRows(), "input must not be modified")

	summary := report.Summary()
	assert.Equal(t, report.RowsDropped, summary.RowsDropped)
}

// TestClean_Properties checks on random tables that cleaning never adds rows
// and keeps exactly the rows holding at least one present value.
func TestClean_Properties(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 7))
	cells := []string{"", " ", "NA", "N/A", "nan", "null", "1", "x", "0"}

	for trial := 0; trial < 200; trial++ {
		cols := 1 + rng.IntN(5)
		table := &Table{Header: make([]string, cols)}
		for j := range table.Header {
			table.Header[j] = string(rune('a' + j))
		}
		wantKept := 0
		for i := rng.IntN(20); i > 0; i-- {
			row := make([]string, cols)
			present := false
			for j := range row {
				row[j] = cells[rng.IntN(len(cells))]
				if !IsMissing(row[j]) {
					present = true
				}
			}
			if present {
				wantKept++
			}
			table.Rows = append(table.Rows, row)
		}

		cleaned, report := Clean(table)
		assert.LessOrEqual(t, cleaned.NumRows(), table.NumRows())
		assert.Equal(t, wantKept, cleaned.NumRows())
		assert.Equal(t, report.RowsBefore-report.RowsDropped, report.RowsAfter)
		for i := range cleaned.Rows {
			present := false
			for j := range cleaned.Header {
				if !IsMissing(cleaned.Cell(i, j)) {
					present = true
				}
			}
			assert.True(t, present)
		}
	}
}

func TestIsMissing(t *testing.T) {
	for _, v := range []string{"", "  ", "NA", "na", "N/A", "NaN", "null", "NULL"} {
		assert.True(t, IsMissing(v), v)
	}
	for _, v := range []string{"0", "none", "x", "nan1"} {
		assert.False(t, IsMissing(v), v)
	}
}
