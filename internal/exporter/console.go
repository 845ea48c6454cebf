package exporter

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"shiprisk/pkg/contracts/domain"
)

// WriteConsole prints the human-readable run report
func WriteConsole(w io.Writer, r *domain.Report) error {
	cw := &consoleWriter{w: w}

	cw.section("SHIPMENT DELAY MODEL REPORT")
	cw.linef("Run ID:     %s", r.RunID)
	cw.linef("Input:      %s", r.InputFile)
	cw.linef("Fit scope:  %s", r.FitScope)

	cw.section("Data")
	cw.linef("Rows:    %d (before cleaning %d, dropped %d)", r.Cleaning.RowsAfter, r.Cleaning.RowsBefore, r.Cleaning.RowsDropped)
	cw.linef("Columns: %d", r.Cleaning.Columns)
	cw.linef("Missing cells: %d before, %d after", r.Cleaning.MissingCellsBefore, r.Cleaning.MissingCellsAfter)
	if len(r.Cleaning.MissingByColumn) > 0 {
		cols := make([]string, 0, len(r.Cleaning.MissingByColumn))
		for c := range r.Cleaning.MissingByColumn {
			cols = append(cols, c)
		}
		sort.Strings(cols)
		for _, c := range cols {
			cw.linef("  %-28s %d", c, r.Cleaning.MissingByColumn[c])
		}
	}

	if len(r.Statistics) > 0 {
		cw.section("Descriptive statistics")
		cw.table(func(tw io.Writer) {
			fmt.Fprintln(tw, "column\tcount\tmean\tstd\tmin\t25%\t50%\t75%\tmax")
			for _, s := range r.Statistics {
				fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n", s.Column, s.Count,
					formatNumber(s.Mean, 3), formatNumber(s.StdDev, 3), formatNumber(s.Min, 3),
					formatNumber(s.Q1, 3), formatNumber(s.Median, 3), formatNumber(s.Q3, 3), formatNumber(s.Max, 3))
			}
		})
	}

	cw.section("Partitions")
	cw.table(func(tw io.Writer) {
		fmt.Fprintln(tw, "partition\trows\ton time\tlate\ton time %")
		for _, p := range r.Partitions {
			fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%s\n", p.Name, p.Rows, p.OnTime, p.Late, formatNumber(p.OnTimePct, 2))
		}
	})

	m := r.Model
	cw.section("Logistic regression")
	cw.linef("Training rows: %d  Features: %d  Rank: %d", m.TrainingRows, m.Features, m.Rank)
	cw.linef("Iterations: %d  Converged: %s", m.Iterations, formatBool(m.Converged))
	cw.linef("Log-likelihood: %s  Null: %s  Pseudo R2: %s",
		formatNumber(m.LogLikelihood, 4), formatNumber(m.NullLogLikelihood, 4), formatNumber(m.PseudoR2, 4))
	cw.table(func(tw io.Writer) {
		fmt.Fprintln(tw, strings.Join(CoefficientHeaders, "\t"))
		for _, rec := range CoefficientRecords(m) {
			fmt.Fprintln(tw, strings.Join(rec, "\t"))
		}
	})

	for _, e := range r.Evaluations {
		cw.section(fmt.Sprintf("Evaluation: %s (threshold %.2f, %s rule)", e.Subset, e.Threshold, e.LabelRule))
		cw.table(func(tw io.Writer) {
			fmt.Fprintln(tw, "\tpredicted 0\tpredicted 1")
			fmt.Fprintf(tw, "actual 0\t%d\t%d\n", e.TN, e.FP)
			fmt.Fprintf(tw, "actual 1\t%d\t%d\n", e.FN, e.TP)
		})
		cw.linef("Accuracy:         %s", formatPercent(e.Accuracy))
		cw.linef("Sensitivity:      %s", formatPercent(e.Sensitivity))
		cw.linef("Specificity:      %s", formatPercent(e.Specificity))
		cw.linef("Precision:        %s", formatPercent(e.Precision))
		cw.linef("False alarm rate: %s", formatPercent(e.FalseAlarmRate))
	}

	for _, f := range r.Finance {
		cw.section("Financial impact: " + f.Subset)
		cw.linef("Prevention cost %s, late loss %s, profit per prevented delay %s",
			formatMoney(f.PreventionCost), formatMoney(f.LateLoss), formatMoney(f.ProfitPerPrevented))
		cw.linef("Net benefit on %d orders: %s", f.ObservedVolume, formatMoney(f.NetBenefit))
		for _, p := range f.Projections {
			benefit := "NaN"
			if p.NetBenefit.Defined() {
				benefit = formatMoney(int64(float64(p.NetBenefit)))
			}
			cw.linef("  %-8s %d orders: %s (approximate, x%s)", p.Horizon, p.TargetVolume, benefit, formatNumber(p.ScaleFactor, 2))
		}
		if len(f.Projections) > 0 {
			cw.linef("  Note: %s", f.Projections[0].Note)
		}
	}

	if len(r.Warnings) > 0 {
		cw.section("Warnings")
		for _, w := range r.Warnings {
			cw.linef("[%s] %s: %s", w.Stage, w.Kind, w.Message)
		}
	}
	return cw.err
}

// consoleWriter remembers the first write error
type consoleWriter struct {
	w   io.Writer
	err error
}

func (c *consoleWriter) linef(format string, args ...interface{}) {
	if c.err != nil {
		return
	}
	_, c.err = fmt.Fprintf(c.w, format+"\n", args...)
}

func (c *consoleWriter) section(title string) {
	c.linef("\n%s\n%s", title, strings.Repeat("-", len(title)))
}

func (c *consoleWriter) table(fill func(io.Writer)) {
	if c.err != nil {
		return
	}
	tw := tabwriter.NewWriter(c.w, 0, 0, 2, ' ', 0)
	fill(tw)
	c.err = tw.Flush()
}
