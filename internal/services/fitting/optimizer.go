package fitting

import (
	"context"
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"

	"BubbleScope/internal/domain/models"
	"BubbleScope/pkg/config"
)

// Typed trial failures. The session maps these onto failure-reason counters;
// none of them ever escalates past the trial that produced them.
var (
	ErrNonConvergence = errors.New("trial did not converge")
	ErrSingular       = errors.New("singular normal equations")
)

// Optimizer runs one bounded LPPL trial from one initial vector. It is
// stateless and safe for concurrent use; each Fit call owns its working
// buffers.
type Optimizer struct {
	cfg config.OptimizerConfig
}

func NewOptimizer(cfg config.OptimizerConfig) *Optimizer {
	return &Optimizer{cfg: cfg}
}

// Fit minimizes the squared residuals of the LPPL model over (t, y) starting
// from init, keeping every parameter inside bounds. On success the returned
// candidate carries the fitted vector and its statistics; its diagnostic
// status is attached downstream. Failures are ErrNonConvergence, ErrSingular,
// or the context error when the per-trial budget expires.
func (o *Optimizer) Fit(ctx context.Context, t, y []float64, init models.ParameterVector, bounds models.Bounds) (*models.FitCandidate, error) {
	n := len(t)
	p := bounds.Clamp(init)
	r := make([]float64, n)
	rNew := make([]float64, n)
	row := make([]float64, models.NumParams)

	sse := residualsInto(p, t, y, r)
	if math.IsInf(sse, 1) {
		return nil, ErrSingular
	}

	lambda := o.cfg.InitialDamp
	converged := false
	var (
		hess [models.NumParams][models.NumParams]float64
		grad [models.NumParams]float64
	)

	for iter := 0; iter < o.cfg.MaxIterations && !converged; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		// Accumulate J^T J and J^T r at the current point.
		for j := range grad {
			grad[j] = 0
			for k := range hess[j] {
				hess[j][k] = 0
			}
		}
		for i := 0; i < n; i++ {
			jacobianRow(p, t[i], row)
			for j := 0; j < models.NumParams; j++ {
				grad[j] += row[j] * r[i]
				for k := j; k < models.NumParams; k++ {
					hess[j][k] += row[j] * row[k]
				}
			}
		}
		if normInf(grad[:]) < o.cfg.Tolerance {
			converged = true
			break
		}

		// Damped step: solve (H + lambda*diag(H)) delta = -g, escalating
		// lambda until the step reduces the cost. Marquardt scaling keeps
		// the step sane when Jacobian columns differ wildly in magnitude,
		// which they do here (A versus omega).
		accepted := false
		for lambda <= o.cfg.MaxDamp {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			delta, ok := solveDamped(&hess, &grad, lambda)
			if !ok {
				lambda *= 10
				continue
			}

			trial := bounds.Clamp(models.ParameterVector{
				Tc:    p.Tc + delta[models.IdxTc],
				Beta:  p.Beta + delta[models.IdxBeta],
				Omega: p.Omega + delta[models.IdxOmega],
				Phi:   p.Phi + delta[models.IdxPhi],
				A:     p.A + delta[models.IdxA],
				B:     p.B + delta[models.IdxB],
				C:     p.C + delta[models.IdxC],
			})
			sseNew := residualsInto(trial, t, y, rNew)
			if sseNew < sse {
				rel := (sse - sseNew) / math.Max(sse, 1e-300)
				p = trial
				sse = sseNew
				r, rNew = rNew, r
				lambda = math.Max(lambda/10, 1e-12)
				accepted = true
				if rel < o.cfg.Tolerance {
					converged = true // cost plateau
				}
				break
			}
			lambda *= 10
		}

		if !accepted {
			if iter == 0 {
				// Not a single descending step from the initial vector.
				return nil, ErrNonConvergence
			}
			// Progress stalled against the bounds or the damping ceiling;
			// report the best point reached so diagnostics can classify the
			// boundary sticking.
			converged = true
		}
	}

	if !converged {
		return nil, ErrNonConvergence
	}
	if !isFinite(p) {
		return nil, ErrSingular
	}
	rSquared, rmse := fitStatistics(p, t, y)
	if math.IsNaN(rSquared) || math.IsNaN(rmse) {
		return nil, ErrSingular
	}
	return &models.FitCandidate{
		Params:   p,
		RSquared: rSquared,
		RMSE:     rmse,
		Initial:  init,
	}, nil
}

// solveDamped solves (H + lambda*diag(H)) delta = -g via Cholesky. ok is
// false when the damped system is still not positive definite.
func solveDamped(h *[models.NumParams][models.NumParams]float64, g *[models.NumParams]float64, lambda float64) ([models.NumParams]float64, bool) {
	var delta [models.NumParams]float64

	data := make([]float64, models.NumParams*models.NumParams)
	for j := 0; j < models.NumParams; j++ {
		for k := j; k < models.NumParams; k++ {
			v := h[j][k]
			if j == k {
				d := h[j][j]
				if d < 1e-12 {
					d = 1e-12
				}
				v += lambda * d
			}
			data[j*models.NumParams+k] = v
			data[k*models.NumParams+j] = v
		}
	}

	var chol mat.Cholesky
	if ok := chol.Factorize(mat.NewSymDense(models.NumParams, data)); !ok {
		return delta, false
	}

	rhs := mat.NewVecDense(models.NumParams, nil)
	for j := 0; j < models.NumParams; j++ {
		rhs.SetVec(j, -g[j])
	}
	var sol mat.VecDense
	if err := chol.SolveVecTo(&sol, rhs); err != nil {
		return delta, false
	}
	for j := 0; j < models.NumParams; j++ {
		v := sol.AtVec(j)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return delta, false
		}
		delta[j] = v
	}
	return delta, true
}

func normInf(v []float64) float64 {
	m := 0.0
	for _, x := range v {
		if a := math.Abs(x); a > m {
			m = a
		}
	}
	return m
}

func isFinite(p models.ParameterVector) bool {
	for _, v := range p.Array() {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
