// Package exporter renders a pipeline report for people and spreadsheets.
//
// It has three writers:
//
// CSVWriter: coefficient table as CSV, with a UTF-8 BOM so Excel opens it
// with the right encoding.
//
// WriteWorkbook: an .xlsx workbook with Summary, Coefficients, Evaluation
// and Finance sheets.
//
// WriteConsole: the plain-text report printed at the end of a run.
//
// Example usage:
//
//	w := exporter.NewCSVWriter(paths)
//	err := w.WriteCoefficients("coefficients.csv", report.Model)
//
//	err = exporter.WriteWorkbook(paths.ReportPath("report.xlsx"), report)
//	err = exporter.WriteConsole(os.Stdout, report)
package exporter
