package dataprocessing

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"shiprisk/internal/errors"
	"shiprisk/pkg/contracts/domain"
)

// headerScanRows bounds how far down a sheet the header row is searched for.
const headerScanRows = 10

// ParseFile reads a shipment spreadsheet (.xlsx or .csv) into a raw Table.
// For workbooks, sheet selects the sheet by name; when empty the first sheet
// whose header row carries the target column is used.
func ParseFile(filePath, sheet string) (*Table, error) {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".xlsx", ".xlsm":
		return parseWorkbook(filePath, sheet)
	case ".csv":
		return parseCSVFile(filePath)
	default:
		return nil, errors.NewIOError(fmt.Sprintf("unsupported file type %q", filepath.Ext(filePath)), nil).
			WithContext("path", filePath)
	}
}

func parseWorkbook(filePath, sheet string) (*Table, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, errors.NewIOError("failed to open workbook", err).WithContext("path", filePath)
	}
	defer f.Close()

	candidates := f.GetSheetList()
	if sheet != "" {
		candidates = []string{sheet}
	}

	for _, name := range candidates {
		rows, err := f.GetRows(name)
		if err != nil {
			if sheet != "" {
				return nil, errors.NewIOError(fmt.Sprintf("failed to read sheet %q", name), err).
					WithContext("path", filePath)
			}
			continue
		}

		headerRow := findHeaderRow(rows)
		if headerRow < 0 {
			continue
		}

		t := buildTable(rows, headerRow)
		t.Sheet = name
		return t, nil
	}

	return nil, errors.NewIOError("could not find a sheet with a shipment header row", nil).
		WithContext("path", filePath).
		WithContext("expected_column", domain.ColOnTime)
}

func parseCSVFile(filePath string) (*Table, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, errors.NewIOError("failed to open csv file", err).WithContext("path", filePath)
	}
	defer file.Close()

	t, err := ParseCSV(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filePath, err)
	}
	return t, nil
}

// ParseCSV reads comma-separated shipment records from r.
func ParseCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.NewIOError("failed to parse csv", err)
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], "\ufeff")
	}

	headerRow := findHeaderRow(rows)
	if headerRow < 0 {
		return nil, errors.NewIOError("no shipment header row found", nil).
			WithContext("expected_column", domain.ColOnTime)
	}
	return buildTable(rows, headerRow), nil
}

// findHeaderRow returns the index of the first row naming the target column.
func findHeaderRow(rows [][]string) int {
	want := normalizeHeader(domain.ColOnTime)
	for i := 0; i < len(rows) && i < headerScanRows; i++ {
		for _, cell := range rows[i] {
			if normalizeHeader(cell) == want {
				return i
			}
		}
	}
	return -1
}

func buildTable(rows [][]string, headerRow int) *Table {
	header := make([]string, len(rows[headerRow]))
	for j, h := range rows[headerRow] {
		header[j] = strings.TrimSpace(h)
	}

	t := &Table{Header: header}
	for i := headerRow + 1; i < len(rows); i++ {
		row := make([]string, len(header))
		copy(row, rows[i])
		if overflows(rows[i], len(header)) {
			t.Overflow = append(t.Overflow, i+1)
		}
		t.Rows = append(t.Rows, row)
		t.Lines = append(t.Lines, i+1)
	}
	return t
}

// overflows reports whether row carries a present value beyond width
func overflows(row []string, width int) bool {
	for j := width; j < len(row); j++ {
		if !IsMissing(row[j]) {
			return true
		}
	}
	return false
}
