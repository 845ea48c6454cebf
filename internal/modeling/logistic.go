package modeling

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"shiprisk/internal/errors"
	"shiprisk/pkg/contracts/domain"
)

const (
	// probability clamp keeping IRLS weights strictly positive
	minProb = 1e-10
	// relative singular value cutoff for the Newton-step pseudo-inverse
	pinvRCond = 1e-12
	// step halvings tried before accepting a step that lowers the likelihood
	maxHalvings = 30
)

// FitOptions bounds the IRLS loop.
type FitOptions struct {
	MaxIterations int
	Tolerance     float64
}

// DefaultFitOptions returns a cap of 100 iterations and a tolerance of 1e-8
func DefaultFitOptions() FitOptions {
	return FitOptions{MaxIterations: 100, Tolerance: 1e-8}
}

// Fit estimates a binary logistic regression with intercept by iteratively
// reweighted least squares. X holds one row per observation with one column
// per name; y holds 0/1 labels. The loop is deterministic and stops when the
// log-likelihood or every coefficient moves less than the tolerance.
//
// Numerical trouble does not fail the fit: a rank-deficient design, perfect
// separation or hitting the iteration cap are reported as warnings on the
// returned model, which always carries the best iterate found.
func Fit(ctx context.Context, X [][]float64, y []int, names []string, opts FitOptions) (*Model, error) {
	if err := validateInputs(X, y, names); err != nil {
		return nil, err
	}
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = DefaultFitOptions().MaxIterations
	}
	if opts.Tolerance <= 0 {
		opts.Tolerance = DefaultFitOptions().Tolerance
	}

	n, k := len(X), len(names)+1
	A := designMatrix(X)
	target := mat.NewVecDense(n, nil)
	for i, v := range y {
		target.SetVec(i, float64(v))
	}

	model := &Model{
		Features:          append([]string(nil), names...),
		TrainingRows:      n,
		NullLogLikelihood: nullLogLikelihood(y),
	}

	rank, err := matrixRank(A)
	if err != nil {
		return nil, err
	}
	model.Rank = rank
	if rank < k {
		model.Warnings = append(model.Warnings, errors.NewWarning(errors.WarnRankDeficiency,
			"design matrix has rank %d but %d columns; some coefficients are not identifiable", rank, k).
			With("rank", rank).With("columns", k))
	}

	beta := mat.NewVecDense(k, nil)
	ll := logLikelihood(A, target, beta)

	for iter := 1; iter <= opts.MaxIterations; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		hessian, grad := newtonSystem(A, target, beta)
		pinv, err := pseudoInverse(hessian)
		if err != nil {
			return nil, err
		}
		var step mat.VecDense
		step.MulVec(pinv, grad)

		next, nextLL := beta, ll
		scale := 1.0
		for h := 0; h <= maxHalvings; h++ {
			var candidate mat.VecDense
			candidate.AddScaledVec(beta, scale, &step)
			candidateLL := logLikelihood(A, target, &candidate)
			if candidateLL >= ll || h == maxHalvings {
				next, nextLL = &candidate, candidateLL
				break
			}
			scale /= 2
		}

		maxDelta := 0.0
		for j := 0; j < k; j++ {
			maxDelta = math.Max(maxDelta, math.Abs(next.AtVec(j)-beta.AtVec(j)))
		}
		deltaLL := math.Abs(nextLL - ll)

		beta, ll = next, nextLL
		model.Iterations = iter
		if deltaLL < opts.Tolerance || maxDelta < opts.Tolerance {
			model.Converged = true
			break
		}
	}

	if !model.Converged {
		model.Warnings = append(model.Warnings, errors.NewWarning(errors.WarnConvergence,
			"IRLS did not converge within %d iterations; returning the best iterate", opts.MaxIterations).
			With("iterations", model.Iterations))
	}
	if separated(A, target, beta) {
		model.Warnings = append(model.Warnings, errors.NewWarning(errors.WarnSeparation,
			"training data is perfectly separated; coefficients and standard errors are unreliable"))
	}

	hessian, _ := newtonSystem(A, target, beta)
	cov, err := pseudoInverse(hessian)
	if err != nil {
		return nil, err
	}

	model.LogLikelihood = ll
	model.Intercept = beta.AtVec(0)
	model.Weights = make([]float64, k-1)
	for j := range model.Weights {
		model.Weights[j] = beta.AtVec(j + 1)
	}
	model.Covariance = make([][]domain.Number, k)
	for r := 0; r < k; r++ {
		model.Covariance[r] = make([]domain.Number, k)
		for c := 0; c < k; c++ {
			model.Covariance[r][c] = domain.Number(cov.At(r, c))
		}
	}
	return model, nil
}

func validateInputs(X [][]float64, y []int, names []string) error {
	if len(X) == 0 {
		return errors.NewEmptyPartitionError("cannot fit a model on an empty training set")
	}
	if len(y) != len(X) {
		return errors.NewSchemaError(fmt.Sprintf("%d labels for %d rows", len(y), len(X)))
	}
	for i, row := range X {
		if len(row) != len(names) {
			return errors.NewSchemaError(fmt.Sprintf("row %d has %d values, want %d", i, len(row), len(names))).
				WithContext("row", i)
		}
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return errors.NewSchemaError(fmt.Sprintf("non-finite value in feature %s at row %d", names[j], i)).
					WithContext("column", names[j]).
					WithContext("row", i)
			}
		}
		if y[i] != domain.Late && y[i] != domain.OnTime {
			return errors.NewSchemaError(fmt.Sprintf("label at row %d must be 0 or 1, got %d", i, y[i])).
				WithContext("row", i)
		}
	}
	return nil
}

// designMatrix prepends the intercept column of ones
func designMatrix(X [][]float64) *mat.Dense {
	n, k := len(X), len(X[0])+1
	A := mat.NewDense(n, k, nil)
	for i, row := range X {
		A.Set(i, 0, 1)
		for j, v := range row {
			A.Set(i, j+1, v)
		}
	}
	return A
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}

// softplus computes log(1+exp(z)) without overflow
func softplus(z float64) float64 {
	if z > 0 {
		return z + math.Log1p(math.Exp(-z))
	}
	return math.Log1p(math.Exp(z))
}

// logLikelihood is the Bernoulli log-likelihood sum(y*eta - log(1+exp(eta)))
func logLikelihood(A *mat.Dense, y, beta *mat.VecDense) float64 {
	var eta mat.VecDense
	eta.MulVec(A, beta)
	ll := 0.0
	for i := 0; i < eta.Len(); i++ {
		z := eta.AtVec(i)
		ll += y.AtVec(i)*z - softplus(z)
	}
	return ll
}

func nullLogLikelihood(y []int) float64 {
	pos := 0
	for _, v := range y {
		pos += v
	}
	n := float64(len(y))
	p := float64(pos) / n
	if p == 0 || p == 1 {
		return 0
	}
	return n * (p*math.Log(p) + (1-p)*math.Log(1-p))
}

// newtonSystem returns the observed information XᵀWX and the score Xᵀ(y−μ)
func newtonSystem(A *mat.Dense, y, beta *mat.VecDense) (*mat.Dense, *mat.VecDense) {
	n, k := A.Dims()
	var eta mat.VecDense
	eta.MulVec(A, beta)

	weighted := mat.NewDense(n, k, nil)
	resid := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		mu := math.Min(math.Max(sigmoid(eta.AtVec(i)), minProb), 1-minProb)
		w := mu * (1 - mu)
		resid.SetVec(i, y.AtVec(i)-mu)
		for j := 0; j < k; j++ {
			weighted.Set(i, j, w*A.At(i, j))
		}
	}

	hessian := mat.NewDense(k, k, nil)
	hessian.Mul(A.T(), weighted)
	grad := mat.NewVecDense(k, nil)
	grad.MulVec(A.T(), resid)
	return hessian, grad
}

// pseudoInverse returns the Moore-Penrose inverse of m via SVD, zeroing
// singular values below pinvRCond times the largest.
func pseudoInverse(m mat.Matrix) (*mat.Dense, error) {
	var svd mat.SVD
	if ok := svd.Factorize(m, mat.SVDThin); !ok {
		return nil, fmt.Errorf("svd factorization failed")
	}
	values := svd.Values(nil)
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	cutoff := 0.0
	if len(values) > 0 {
		cutoff = pinvRCond * values[0]
	}
	inv := make([]float64, len(values))
	for i, s := range values {
		if s > cutoff {
			inv[i] = 1 / s
		}
	}

	var vs mat.Dense
	vs.Mul(&v, mat.NewDiagDense(len(inv), inv))
	var out mat.Dense
	out.Mul(&vs, u.T())
	return &out, nil
}

// matrixRank counts singular values above max(n,k)·eps·σmax
func matrixRank(A *mat.Dense) (int, error) {
	var svd mat.SVD
	if ok := svd.Factorize(A, mat.SVDNone); !ok {
		return 0, fmt.Errorf("svd factorization failed")
	}
	values := svd.Values(nil)
	if len(values) == 0 {
		return 0, nil
	}
	n, k := A.Dims()
	tol := float64(max(n, k)) * 2.220446049250313e-16 * values[0]
	rank := 0
	for _, s := range values {
		if s > tol {
			rank++
		}
	}
	return rank, nil
}

// separated reports whether the linear predictor classifies every training
// row correctly, in which case the likelihood has no finite maximiser.
func separated(A *mat.Dense, y, beta *mat.VecDense) bool {
	var eta mat.VecDense
	eta.MulVec(A, beta)
	hasPos, hasNeg := false, false
	for i := 0; i < eta.Len(); i++ {
		z := eta.AtVec(i)
		if y.AtVec(i) == 1 {
			hasPos = true
			if z <= 0 {
				return false
			}
		} else {
			hasNeg = true
			if z >= 0 {
				return false
			}
		}
	}
	return hasPos && hasNeg
}
