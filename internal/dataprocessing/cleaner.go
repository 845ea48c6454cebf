package dataprocessing

import (
	"shiprisk/pkg/contracts/domain"
)

// CleaningReport describes what Clean removed.
type CleaningReport struct {
	RowsBefore         int            `json:"rows_before"`
	RowsAfter          int            `json:"rows_after"`
	Columns            int            `json:"columns"`
	MissingCellsBefore int            `json:"missing_cells_before"`
	MissingCellsAfter  int            `json:"missing_cells_after"`
	RowsDropped        int            `json:"rows_dropped"`
	MissingByColumn    map[string]int `json:"missing_by_column"`
}

// Summary converts the report to its domain form
func (r CleaningReport) Summary() domain.CleaningSummary {
	return domain.CleaningSummary{
		RowsBefore:         r.RowsBefore,
		RowsAfter:          r.RowsAfter,
		Columns:            r.Columns,
		MissingCellsBefore: r.MissingCellsBefore,
		MissingCellsAfter:  r.MissingCellsAfter,
		RowsDropped:        r.RowsDropped,
		MissingByColumn:    r.MissingByColumn,
	}
}

// Clean drops rows whose cells are all missing. Rows with at least one
// present value are kept untouched. The input table is not modified.
func Clean(t *Table) (*Table, CleaningReport) {
	report := CleaningReport{
		RowsBefore:      t.NumRows(),
		Columns:         t.NumColumns(),
		MissingByColumn: make(map[string]int, t.NumColumns()),
	}

	out := &Table{Header: t.Header, Sheet: t.Sheet, Overflow: t.Overflow}
	for i := range t.Rows {
		missing := 0
		for j := range t.Header {
			if IsMissing(t.Cell(i, j)) {
				missing++
			}
		}
		report.MissingCellsBefore += missing

		if missing == len(t.Header) {
			report.RowsDropped++
			continue
		}

		report.MissingCellsAfter += missing
		for j, h := range t.Header {
			if IsMissing(t.Cell(i, j)) {
				report.MissingByColumn[h]++
			}
		}
		out.Rows = append(out.Rows, t.Rows[i])
		out.Lines = append(out.Lines, t.Line(i))
	}
	report.RowsAfter = out.NumRows()

	return out, report
}
