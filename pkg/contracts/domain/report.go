package domain

import (
	"encoding/json"
	"math"
	"time"
)

// Number is a float64 that encodes NaN and ±Inf as JSON null so undefined
// statistics survive persistence. A null decodes back to NaN.
type Number float64

// MarshalJSON implements json.Marshaler
func (n Number) MarshalJSON() ([]byte, error) {
	f := float64(n)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(f)
}

// UnmarshalJSON implements json.Unmarshaler
func (n *Number) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*n = Number(math.NaN())
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*n = Number(f)
	return nil
}

// Defined reports whether the number holds a finite value.
func (n Number) Defined() bool {
	f := float64(n)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Report is the structured result of one pipeline run.
type Report struct {
	RunID       string              `json:"run_id"`
	InputFile   string              `json:"input_file"`
	GeneratedAt time.Time           `json:"generated_at"`
	FitScope    string              `json:"fit_scope"`
	Cleaning    CleaningSummary     `json:"cleaning"`
	Statistics  []ColumnStatistics  `json:"statistics,omitempty"`
	Partitions  []PartitionBalance  `json:"partitions"`
	Model       ModelSummary        `json:"model"`
	Evaluations []EvaluationSummary `json:"evaluations"`
	Finance     []FinanceSummary    `json:"finance"`
	Warnings    []WarningSummary    `json:"warnings,omitempty"`
}

// Evaluation returns the evaluation for a subset name, if present.
func (r *Report) Evaluation(subset string) (EvaluationSummary, bool) {
	for _, e := range r.Evaluations {
		if e.Subset == subset {
			return e, true
		}
	}
	return EvaluationSummary{}, false
}

// CleaningSummary describes what ingestion and cleaning did to the table.
type CleaningSummary struct {
	RowsBefore         int            `json:"rows_before"`
	RowsAfter          int            `json:"rows_after"`
	Columns            int            `json:"columns"`
	MissingCellsBefore int            `json:"missing_cells_before"`
	MissingCellsAfter  int            `json:"missing_cells_after"`
	RowsDropped        int            `json:"rows_dropped"`
	MissingByColumn    map[string]int `json:"missing_by_column,omitempty"`
}

// ColumnStatistics holds descriptive statistics for one numeric column.
type ColumnStatistics struct {
	Column string `json:"column"`
	Count  int    `json:"count"`
	Mean   Number `json:"mean"`
	StdDev Number `json:"std"`
	Min    Number `json:"min"`
	Q1     Number `json:"q1"`
	Median Number `json:"median"`
	Q3     Number `json:"q3"`
	Max    Number `json:"max"`
}

// PartitionBalance is the class balance of one dataset partition.
type PartitionBalance struct {
	Name      string `json:"name"`
	Rows      int    `json:"rows"`
	OnTime    int    `json:"on_time"`
	Late      int    `json:"late"`
	OnTimePct Number `json:"on_time_pct"`
}

// CoefficientRow is one line of the fitted-model coefficient table.
type CoefficientRow struct {
	Feature  string `json:"feature"`
	Estimate Number `json:"estimate"`
	StdErr   Number `json:"std_err"`
	Z        Number `json:"z"`
	PValue   Number `json:"p_value"`
}

// ModelSummary describes a fitted logistic regression.
type ModelSummary struct {
	Features          int              `json:"features"`
	TrainingRows      int              `json:"training_rows"`
	Iterations        int              `json:"iterations"`
	Converged         bool             `json:"converged"`
	Rank              int              `json:"rank"`
	LogLikelihood     Number           `json:"log_likelihood"`
	NullLogLikelihood Number           `json:"null_log_likelihood"`
	PseudoR2          Number           `json:"pseudo_r2"`
	Intercept         CoefficientRow   `json:"intercept"`
	Coefficients      []CoefficientRow `json:"coefficients"`
}

// EvaluationSummary holds the confusion matrix and rates for one subset.
type EvaluationSummary struct {
	Subset         string  `json:"subset"`
	LabelRule      string  `json:"label_rule"`
	Threshold      float64 `json:"threshold"`
	TN             int     `json:"tn"`
	FP             int     `json:"fp"`
	FN             int     `json:"fn"`
	TP             int     `json:"tp"`
	Accuracy       Number  `json:"accuracy"`
	Sensitivity    Number  `json:"sensitivity"`
	Specificity    Number  `json:"specificity"`
	Precision      Number  `json:"precision"`
	FalseAlarmRate Number  `json:"false_alarm_rate"`
}

// FinanceSummary is the monetary projection derived from one evaluation.
type FinanceSummary struct {
	Subset             string       `json:"subset"`
	PreventionCost     int64        `json:"prevention_cost"`
	LateLoss           int64        `json:"late_loss"`
	ProfitPerPrevented int64        `json:"profit_per_prevented"`
	ObservedVolume     int          `json:"observed_volume"`
	NetBenefit         int64        `json:"net_benefit"`
	Projections        []Projection `json:"projections"`
}

// Projection scales a net benefit linearly to a larger order volume. It is an
// approximation that assumes the observed confusion rates hold at scale.
type Projection struct {
	Horizon       string `json:"horizon"`
	TargetVolume  int    `json:"target_volume"`
	ScaleFactor   Number `json:"scale_factor"`
	NetBenefit    Number `json:"net_benefit"`
	Approximation bool   `json:"approximation"`
	Note          string `json:"note"`
}

// WarningSummary is a non-fatal numerical condition raised during the run.
type WarningSummary struct {
	Stage   string `json:"stage"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}
