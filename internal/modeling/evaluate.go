package modeling

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"

	"shiprisk/internal/errors"
	"shiprisk/pkg/contracts/domain"
)

// LabelRule decides which class a probability above the threshold predicts.
type LabelRule string

const (
	// RuleInverted predicts late (0) when P(on time) exceeds the threshold.
	RuleInverted LabelRule = "inverted"
	// RuleNatural predicts on time (1) when P(on time) exceeds the threshold.
	RuleNatural LabelRule = "natural"
)

// EvalOptions controls thresholding
type EvalOptions struct {
	Threshold float64
	Rule      LabelRule
}

// DefaultEvalOptions returns a 0.5 threshold with the inverted rule
func DefaultEvalOptions() EvalOptions {
	return EvalOptions{Threshold: 0.5, Rule: RuleInverted}
}

// Label maps a probability onto a predicted class
func (o EvalOptions) Label(p float64) int {
	above := p > o.Threshold
	if o.Rule == RuleNatural {
		if above {
			return domain.OnTime
		}
		return domain.Late
	}
	if above {
		return domain.Late
	}
	return domain.OnTime
}

// ConfusionMatrix counts predictions against truth, label 1 positive.
type ConfusionMatrix struct {
	TN int `json:"tn"`
	FP int `json:"fp"`
	FN int `json:"fn"`
	TP int `json:"tp"`
}

// Total returns the number of evaluated rows
func (c ConfusionMatrix) Total() int {
	return c.TN + c.FP + c.FN + c.TP
}

// Evaluation is the outcome of scoring one subset.
type Evaluation struct {
	Subset         string
	Options        EvalOptions
	Matrix         ConfusionMatrix
	Accuracy       float64
	Sensitivity    float64
	Specificity    float64
	Precision      float64
	FalseAlarmRate float64
	Warnings       []errors.Warning
}

// Summary converts the evaluation to its report form
func (e *Evaluation) Summary() domain.EvaluationSummary {
	return domain.EvaluationSummary{
		Subset:         e.Subset,
		LabelRule:      string(e.Options.Rule),
		Threshold:      e.Options.Threshold,
		TN:             e.Matrix.TN,
		FP:             e.Matrix.FP,
		FN:             e.Matrix.FN,
		TP:             e.Matrix.TP,
		Accuracy:       domain.Number(e.Accuracy),
		Sensitivity:    domain.Number(e.Sensitivity),
		Specificity:    domain.Number(e.Specificity),
		Precision:      domain.Number(e.Precision),
		FalseAlarmRate: domain.Number(e.FalseAlarmRate),
	}
}

// Evaluate scores X against y. Rates whose denominator is zero are NaN and
// each raises an UndefinedRateWarning.
func Evaluate(m *Model, subset string, X [][]float64, y []int, opts EvalOptions) (*Evaluation, error) {
	if len(X) != len(y) {
		return nil, errors.NewSchemaError(fmt.Sprintf("%d labels for %d rows", len(y), len(X)))
	}

	var cm ConfusionMatrix
	for i, x := range X {
		if len(x) != len(m.Weights) {
			return nil, errors.NewSchemaError(fmt.Sprintf("row %d has %d values, model expects %d", i, len(x), len(m.Weights))).
				WithContext("subset", subset).
				WithContext("row", i)
		}
		pred := opts.Label(m.Predict(x))
		switch {
		case pred == domain.OnTime && y[i] == domain.OnTime:
			cm.TP++
		case pred == domain.OnTime:
			cm.FP++
		case y[i] == domain.OnTime:
			cm.FN++
		default:
			cm.TN++
		}
	}

	return FromMatrix(subset, cm, opts), nil
}

// FromMatrix derives the rates of a confusion matrix
func FromMatrix(subset string, cm ConfusionMatrix, opts EvalOptions) *Evaluation {
	e := &Evaluation{Subset: subset, Options: opts, Matrix: cm}
	rate := func(name string, num, den int) float64 {
		if den == 0 {
			e.Warnings = append(e.Warnings, errors.NewWarning(errors.WarnUndefinedRate,
				"%s is undefined on subset %s: zero denominator", name, subset).
				With("rate", name).With("subset", subset))
			return math.NaN()
		}
		return float64(num) / float64(den)
	}

	e.Accuracy = rate("accuracy", cm.TP+cm.TN, cm.Total())
	e.Sensitivity = rate("sensitivity", cm.TP, cm.TP+cm.FN)
	e.Specificity = rate("specificity", cm.TN, cm.TN+cm.FP)
	e.Precision = rate("precision", cm.TP, cm.TP+cm.FP)
	e.FalseAlarmRate = rate("false_alarm_rate", cm.FP, cm.TN+cm.FP)
	return e
}

// Subset is a named slice of rows to score
type Subset struct {
	Name string
	X    [][]float64
	Y    []int
}

// EvaluateAll scores every subset concurrently against the read-only model.
// Results keep the order of subsets.
func EvaluateAll(ctx context.Context, m *Model, subsets []Subset, opts EvalOptions) ([]*Evaluation, error) {
	results := make([]*Evaluation, len(subsets))
	g, ctx := errgroup.WithContext(ctx)
	for i, s := range subsets {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			e, err := Evaluate(m, s.Name, s.X, s.Y, opts)
			if err != nil {
				return fmt.Errorf("evaluate %s: %w", s.Name, err)
			}
			results[i] = e
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
