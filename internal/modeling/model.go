package modeling

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"

	"shiprisk/internal/errors"
	"shiprisk/pkg/contracts/domain"
)

// InterceptName labels the intercept row of coefficient tables
const InterceptName = "(Intercept)"

// Model is a fitted logistic regression. Covariance is the inverse observed
// information with the intercept at index 0. Read-only once fitted.
type Model struct {
	Features          []string          `json:"features"`
	Intercept         float64           `json:"intercept"`
	Weights           []float64         `json:"weights"`
	Covariance        [][]domain.Number `json:"covariance"`
	TrainingRows      int               `json:"training_rows"`
	Iterations        int               `json:"iterations"`
	Converged         bool              `json:"converged"`
	Rank              int               `json:"rank"`
	LogLikelihood     float64           `json:"log_likelihood"`
	NullLogLikelihood float64           `json:"null_log_likelihood"`
	Warnings          []errors.Warning  `json:"warnings,omitempty"`
}

// Coefficient is one estimated parameter with its Wald statistics.
type Coefficient struct {
	Feature  string
	Estimate float64
	StdErr   float64
	Z        float64
	PValue   float64
}

// Validate checks that a loaded model is internally consistent
func (m *Model) Validate() error {
	k := len(m.Features) + 1
	if len(m.Weights) != len(m.Features) {
		return errors.NewSchemaError(fmt.Sprintf("model has %d weights for %d features", len(m.Weights), len(m.Features)))
	}
	if len(m.Covariance) != k {
		return errors.NewSchemaError(fmt.Sprintf("model covariance has %d rows, want %d", len(m.Covariance), k))
	}
	for _, row := range m.Covariance {
		if len(row) != k {
			return errors.NewSchemaError(fmt.Sprintf("model covariance row has %d columns, want %d", len(row), k))
		}
	}
	return nil
}

// Linear returns w·x + b
func (m *Model) Linear(x []float64) float64 {
	z := m.Intercept
	for j, w := range m.Weights {
		z += w * x[j]
	}
	return z
}

// Predict returns P(on time | x)
func (m *Model) Predict(x []float64) float64 {
	return sigmoid(m.Linear(x))
}

func (m *Model) coefficient(name string, estimate float64, idx int) Coefficient {
	c := Coefficient{Feature: name, Estimate: estimate, StdErr: math.NaN(), Z: math.NaN(), PValue: math.NaN()}
	if idx >= len(m.Covariance) {
		return c
	}
	variance := float64(m.Covariance[idx][idx])
	if math.IsNaN(variance) || variance <= 0 {
		return c
	}
	c.StdErr = math.Sqrt(variance)
	c.Z = estimate / c.StdErr
	c.PValue = 2 * distuv.UnitNormal.Survival(math.Abs(c.Z))
	return c
}

// InterceptCoefficient returns the intercept with its Wald statistics
func (m *Model) InterceptCoefficient() Coefficient {
	return m.coefficient(InterceptName, m.Intercept, 0)
}

// Coefficients returns the feature coefficients in design order
func (m *Model) Coefficients() []Coefficient {
	out := make([]Coefficient, len(m.Features))
	for j, name := range m.Features {
		out[j] = m.coefficient(name, m.Weights[j], j+1)
	}
	return out
}

// CoefficientsByMagnitude returns the feature coefficients sorted by
// descending absolute estimate, ties broken by name.
func (m *Model) CoefficientsByMagnitude() []Coefficient {
	out := m.Coefficients()
	sort.SliceStable(out, func(i, j int) bool {
		ai, aj := math.Abs(out[i].Estimate), math.Abs(out[j].Estimate)
		if ai != aj {
			return ai > aj
		}
		return out[i].Feature < out[j].Feature
	})
	return out
}

// PseudoR2 returns McFadden's 1 - LL/LL0, NaN when the null model is perfect.
func (m *Model) PseudoR2() float64 {
	if m.NullLogLikelihood == 0 {
		return math.NaN()
	}
	return 1 - m.LogLikelihood/m.NullLogLikelihood
}

// Summary converts the model to its report form
func (m *Model) Summary() domain.ModelSummary {
	row := func(c Coefficient) domain.CoefficientRow {
		return domain.CoefficientRow{
			Feature:  c.Feature,
			Estimate: domain.Number(c.Estimate),
			StdErr:   domain.Number(c.StdErr),
			Z:        domain.Number(c.Z),
			PValue:   domain.Number(c.PValue),
		}
	}

	coefs := m.CoefficientsByMagnitude()
	s := domain.ModelSummary{
		Features:          len(m.Features),
		TrainingRows:      m.TrainingRows,
		Iterations:        m.Iterations,
		Converged:         m.Converged,
		Rank:              m.Rank,
		LogLikelihood:     domain.Number(m.LogLikelihood),
		NullLogLikelihood: domain.Number(m.NullLogLikelihood),
		PseudoR2:          domain.Number(m.PseudoR2()),
		Intercept:         row(m.InterceptCoefficient()),
		Coefficients:      make([]domain.CoefficientRow, len(coefs)),
	}
	for i, c := range coefs {
		s.Coefficients[i] = row(c)
	}
	return s
}
