package dataprocessing

import (
	"strings"
)

// naTokens are cell values treated as missing, compared case-insensitively
// after trimming whitespace.
var naTokens = []string{"", "na", "n/a", "nan", "null"}

// Table is a raw spreadsheet: a header row and string cells.
// Lines holds the 1-based source line of each row so errors can point at
// the original file after rows have been dropped.
type Table struct {
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
	Lines  []int      `json:"lines"`

	// Sheet names the worksheet the rows came from; empty for CSV input.
	Sheet string `json:"sheet,omitempty"`
	// Overflow lists source lines whose non-empty cells ran past the header
	// and were dropped.
	Overflow []int `json:"overflow,omitempty"`
}

// NumRows returns the number of data rows
func (t *Table) NumRows() int {
	return len(t.Rows)
}

// NumColumns returns the number of header columns
func (t *Table) NumColumns() int {
	return len(t.Header)
}

// Cell returns the cell at row i, column j, or "" when the row is short.
func (t *Table) Cell(i, j int) string {
	row := t.Rows[i]
	if j >= len(row) {
		return ""
	}
	return row[j]
}

// Line returns the source line of row i
func (t *Table) Line(i int) int {
	if i < len(t.Lines) {
		return t.Lines[i]
	}
	return i + 2
}

// ColumnIndex finds a column by name. Matching ignores case, spaces,
// underscores and hyphens. Returns -1 when absent.
func (t *Table) ColumnIndex(name string) int {
	want := normalizeHeader(name)
	for i, h := range t.Header {
		if normalizeHeader(h) == want {
			return i
		}
	}
	return -1
}

// Records returns header and rows as one slice, padded to the header width.
func (t *Table) Records() [][]string {
	out := make([][]string, 0, len(t.Rows)+1)
	out = append(out, t.Header)
	for i := range t.Rows {
		row := make([]string, len(t.Header))
		for j := range row {
			row[j] = t.Cell(i, j)
		}
		out = append(out, row)
	}
	return out
}

// IsMissing reports whether a cell counts as missing
func IsMissing(cell string) bool {
	v := strings.ToLower(strings.TrimSpace(cell))
	for _, tok := range naTokens {
		if v == tok {
			return true
		}
	}
	return false
}

func normalizeHeader(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(s)
}
