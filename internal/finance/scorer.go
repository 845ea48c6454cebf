// Package finance converts confusion-matrix counts into money.
package finance

import (
	"math"

	"shiprisk/internal/errors"
	"shiprisk/internal/modeling"
	"shiprisk/pkg/contracts/domain"
)

// ProjectionNote is attached to every projection.
const ProjectionNote = "linear scaling of the observed net benefit by target/observed volume; " +
	"assumes the observed confusion rates hold at scale and is not a validated forecast"

// Costs are per-order amounts in whole USD.
type Costs struct {
	PreventionCost int64 `json:"prevention_cost"`
	LateLoss       int64 `json:"late_loss"`
}

// DefaultCosts returns the reference prevention cost and late-delivery loss
func DefaultCosts() Costs {
	return Costs{PreventionCost: 6078, LateLoss: 7493}
}

// ProfitPerPrevented is the saving of one correctly prevented late delivery
func (c Costs) ProfitPerPrevented() int64 {
	return c.LateLoss - c.PreventionCost
}

// Result is the scored outcome of one evaluated subset
type Result struct {
	Subset         string
	Costs          Costs
	Matrix         modeling.ConfusionMatrix
	ObservedVolume int
	NetBenefit     int64
}

// Target is a volume to extrapolate to
type Target struct {
	Horizon string
	Volume  int
}

// Projection is an extrapolated net benefit. Approximation is always true.
type Projection struct {
	Horizon       string
	TargetVolume  int
	ScaleFactor   float64
	NetBenefit    float64
	Approximation bool
	Note          string
}

// Score computes TP·(C_l−C_p) − FP·C_p − FN·C_l in exact integer arithmetic.
func Score(subset string, cm modeling.ConfusionMatrix, costs Costs) Result {
	net := int64(cm.TP)*costs.ProfitPerPrevented() -
		int64(cm.FP)*costs.PreventionCost -
		int64(cm.FN)*costs.LateLoss
	return Result{
		Subset:         subset,
		Costs:          costs,
		Matrix:         cm,
		ObservedVolume: cm.Total(),
		NetBenefit:     net,
	}
}

// Project scales the net benefit linearly to each target volume. With no
// observed orders the projections are NaN and an EmptyVolume warning is returned.
func Project(r Result, targets []Target) ([]Projection, []errors.Warning) {
	var warnings []errors.Warning
	if r.ObservedVolume == 0 && len(targets) > 0 {
		warnings = append(warnings, errors.NewWarning(errors.WarnEmptyVolume,
			"no observed orders on subset %s; projections are undefined", r.Subset).
			With("subset", r.Subset))
	}

	out := make([]Projection, len(targets))
	for i, t := range targets {
		p := Projection{
			Horizon:       t.Horizon,
			TargetVolume:  t.Volume,
			ScaleFactor:   math.NaN(),
			NetBenefit:    math.NaN(),
			Approximation: true,
			Note:          ProjectionNote,
		}
		if r.ObservedVolume > 0 {
			p.ScaleFactor = float64(t.Volume) / float64(r.ObservedVolume)
			p.NetBenefit = float64(r.NetBenefit) * p.ScaleFactor
		}
		out[i] = p
	}
	return out, warnings
}

// Summary converts a result and its projections to the report form
func Summary(r Result, projections []Projection) domain.FinanceSummary {
	s := domain.FinanceSummary{
		Subset:             r.Subset,
		PreventionCost:     r.Costs.PreventionCost,
		LateLoss:           r.Costs.LateLoss,
		ProfitPerPrevented: r.Costs.ProfitPerPrevented(),
		ObservedVolume:     r.ObservedVolume,
		NetBenefit:         r.NetBenefit,
		Projections:        make([]domain.Projection, len(projections)),
	}
	for i, p := range projections {
		s.Projections[i] = domain.Projection{
			Horizon:       p.Horizon,
			TargetVolume:  p.TargetVolume,
			ScaleFactor:   domain.Number(p.ScaleFactor),
			NetBenefit:    domain.Number(p.NetBenefit),
			Approximation: p.Approximation,
			Note:          p.Note,
		}
	}
	return s
}
