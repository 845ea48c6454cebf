package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/xuri/excelize/v2"

	"shiprisk/pkg/contracts/domain"
)

// Workbook sheet names
const (
	SheetSummary      = "Summary"
	SheetCoefficients = "Coefficients"
	SheetEvaluation   = "Evaluation"
	SheetFinance      = "Finance"
)

// WriteWorkbook renders the report as an .xlsx workbook
func WriteWorkbook(filePath string, report *domain.Report) error {
	slog.Info("Writing workbook", slog.String("file_path", filePath))

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	for _, name := range []string{SheetCoefficients, SheetEvaluation, SheetFinance} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", name, err)
		}
	}

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	sheets := []struct {
		name string
		rows [][]interface{}
	}{
		{SheetSummary, summaryRows(report)},
		{SheetCoefficients, coefficientRows(report.Model)},
		{SheetEvaluation, evaluationRows(report.Evaluations)},
		{SheetFinance, financeRows(report.Finance)},
	}
	for _, s := range sheets {
		if err := writeSheet(f, s.name, s.rows, header); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := f.SaveAs(filePath); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

// writeSheet writes rows from A1 down, styling the first row as a header
func writeSheet(f *excelize.File, sheet string, rows [][]interface{}, headerStyle int) error {
	width := 0
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		r := row
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
		width = max(width, len(row))
	}
	if width == 0 {
		return nil
	}

	last, err := excelize.CoordinatesToCellName(width, 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("failed to style %s header: %w", sheet, err)
	}
	lastCol, err := excelize.ColumnNumberToName(width)
	if err != nil {
		return err
	}
	return f.SetColWidth(sheet, "A", lastCol, 18)
}

// cellValue keeps undefined statistics readable in the sheet
func cellValue(n domain.Number) interface{} {
	if !n.Defined() {
		return "NaN"
	}
	return float64(n)
}

func summaryRows(r *domain.Report) [][]interface{} {
	rows := [][]interface{}{
		{"Item", "Value"},
		{"Run ID", r.RunID},
		{"Input file", r.InputFile},
		{"Generated at", r.GeneratedAt.Format("2006-01-02 15:04:05")},
		{"Fit scope", r.FitScope},
		{"Rows before cleaning", r.Cleaning.RowsBefore},
		{"Rows after cleaning", r.Cleaning.RowsAfter},
		{"Columns", r.Cleaning.Columns},
		{"Missing cells before", r.Cleaning.MissingCellsBefore},
		{"Missing cells after", r.Cleaning.MissingCellsAfter},
		{"Training rows", r.Model.TrainingRows},
		{"Iterations", r.Model.Iterations},
		{"Converged", formatBool(r.Model.Converged)},
		{"Rank", r.Model.Rank},
		{"Log-likelihood", cellValue(r.Model.LogLikelihood)},
		{"Null log-likelihood", cellValue(r.Model.NullLogLikelihood)},
		{"Pseudo R2", cellValue(r.Model.PseudoR2)},
	}
	for _, p := range r.Partitions {
		rows = append(rows, []interface{}{
			fmt.Sprintf("Partition %s (rows / on time / late)", p.Name),
			fmt.Sprintf("%d / %d / %d", p.Rows, p.OnTime, p.Late),
		})
	}
	for _, w := range r.Warnings {
		rows = append(rows, []interface{}{"Warning (" + w.Stage + ")", w.Kind + ": " + w.Message})
	}
	return rows
}

func coefficientRows(m domain.ModelSummary) [][]interface{} {
	rows := [][]interface{}{toInterfaces(CoefficientHeaders)}
	for _, c := range append([]domain.CoefficientRow{m.Intercept}, m.Coefficients...) {
		rows = append(rows, []interface{}{
			c.Feature, cellValue(c.Estimate), cellValue(c.StdErr), cellValue(c.Z), cellValue(c.PValue),
		})
	}
	return rows
}

func evaluationRows(evals []domain.EvaluationSummary) [][]interface{} {
	rows := [][]interface{}{{
		"subset", "label_rule", "threshold", "tn", "fp", "fn", "tp",
		"accuracy", "sensitivity", "specificity", "precision", "false_alarm_rate",
	}}
	for _, e := range evals {
		rows = append(rows, []interface{}{
			e.Subset, e.LabelRule, e.Threshold, e.TN, e.FP, e.FN, e.TP,
			cellValue(e.Accuracy), cellValue(e.Sensitivity), cellValue(e.Specificity),
			cellValue(e.Precision), cellValue(e.FalseAlarmRate),
		})
	}
	return rows
}

func financeRows(fins []domain.FinanceSummary) [][]interface{} {
	rows := [][]interface{}{{
		"subset", "horizon", "volume", "scale_factor", "net_benefit_usd", "approximation", "note",
	}}
	sorted := make([]domain.FinanceSummary, len(fins))
	copy(sorted, fins)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Subset < sorted[j].Subset })

	for _, fs := range sorted {
		rows = append(rows, []interface{}{
			fs.Subset, "observed", fs.ObservedVolume, 1.0, fs.NetBenefit, formatBool(false), "",
		})
		for _, p := range fs.Projections {
			rows = append(rows, []interface{}{
				fs.Subset, p.Horizon, p.TargetVolume, cellValue(p.ScaleFactor),
				cellValue(p.NetBenefit), formatBool(p.Approximation), p.Note,
			})
		}
	}
	return rows
}

func toInterfaces(ss []string) []interface{} {
	out := make([]interface{}, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
