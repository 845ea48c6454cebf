package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"shiprisk/internal/config"
	"shiprisk/pkg/contracts/domain"
)

// CoefficientHeaders are the columns of the coefficient CSV
var CoefficientHeaders = []string{"feature", "estimate", "std_err", "z", "p_value"}

// CSVWriter provides CSV export functionality
type CSVWriter struct {
	paths *config.Paths
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(paths *config.Paths) *CSVWriter {
	return &CSVWriter{paths: paths}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool // UTF-8 BOM for Excel
}

// WriteCSV writes data to a CSV file with the given options
func (w *CSVWriter) WriteCSV(filePath string, options WriteOptions) error {
	fullPath := w.resolvePath(filePath)

	slog.Info("Writing CSV file",
		slog.String("file_path", filePath),
		slog.String("full_path", fullPath),
		slog.Int("record_count", len(options.Records)))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	if options.BOMPrefix {
		if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(file)
	if len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}
	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}
	return file.Close()
}

// WriteCoefficients writes the intercept followed by the coefficients in
// descending order of magnitude
func (w *CSVWriter) WriteCoefficients(filePath string, m domain.ModelSummary) error {
	return w.WriteCSV(filePath, WriteOptions{
		Headers:   CoefficientHeaders,
		Records:   CoefficientRecords(m),
		BOMPrefix: true,
	})
}

// CoefficientRecords converts the coefficient table to string rows
func CoefficientRecords(m domain.ModelSummary) [][]string {
	rows := make([][]string, 0, len(m.Coefficients)+1)
	for _, c := range append([]domain.CoefficientRow{m.Intercept}, m.Coefficients...) {
		rows = append(rows, []string{
			c.Feature,
			formatNumber(c.Estimate, 6),
			formatNumber(c.StdErr, 6),
			formatNumber(c.Z, 4),
			formatPValue(c.PValue),
		})
	}
	return rows
}

// resolvePath places relative paths in the reports directory
func (w *CSVWriter) resolvePath(filePath string) string {
	if filepath.IsAbs(filePath) || w.paths == nil {
		return filePath
	}
	return w.paths.ReportPath(filePath)
}
