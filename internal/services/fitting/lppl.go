// Package fitting runs one bounded nonlinear least-squares trial of the
// Log-Periodic Power Law model
//
//	logp(t) = A + B*tau^beta + C*tau^beta*cos(omega*ln(tau) + phi)
//
// with tau = tc - t on the normalized window. The optimizer is a damped
// Levenberg-Marquardt loop with an analytic Jacobian and projection onto the
// box bounds, so a trial that wants a parameter outside its box visibly
// sticks to the boundary instead of escaping it.
package fitting

import (
	"math"

	"BubbleScope/internal/domain/models"
)

// tauFloor keeps ln(tau) and tau^(beta-1) finite when tc is pinned at its
// lower bound and t reaches the window end.
const tauFloor = 1e-9

// Evaluate writes the model values for p at each t into out. len(out) must
// equal len(t).
func Evaluate(p models.ParameterVector, t []float64, out []float64) {
	for i, ti := range t {
		tau := p.Tc - ti
		if tau < tauFloor {
			tau = tauFloor
		}
		pw := math.Pow(tau, p.Beta)
		out[i] = p.A + pw*(p.B+p.C*math.Cos(p.Omega*math.Log(tau)+p.Phi))
	}
}

// residualsInto writes model(t_i) - y_i into r and returns the sum of squared
// residuals, or +Inf if any value is not finite.
func residualsInto(p models.ParameterVector, t, y, r []float64) float64 {
	sse := 0.0
	for i, ti := range t {
		tau := p.Tc - ti
		if tau < tauFloor {
			tau = tauFloor
		}
		pw := math.Pow(tau, p.Beta)
		ri := p.A + pw*(p.B+p.C*math.Cos(p.Omega*math.Log(tau)+p.Phi)) - y[i]
		if math.IsNaN(ri) || math.IsInf(ri, 0) {
			return math.Inf(1)
		}
		r[i] = ri
		sse += ri * ri
	}
	return sse
}

// jacobianRow fills one row of the Jacobian d model / d params at time ti.
func jacobianRow(p models.ParameterVector, ti float64, row []float64) {
	tau := p.Tc - ti
	if tau < tauFloor {
		tau = tauFloor
	}
	lnTau := math.Log(tau)
	pw := math.Pow(tau, p.Beta)
	arg := p.Omega*lnTau + p.Phi
	cosA := math.Cos(arg)
	sinA := math.Sin(arg)

	// d/dtc: the power term and the oscillation both depend on tau.
	pwm1 := math.Pow(tau, p.Beta-1)
	row[models.IdxTc] = pwm1*p.Beta*(p.B+p.C*cosA) - pw*p.C*sinA*p.Omega/tau
	row[models.IdxBeta] = pw * lnTau * (p.B + p.C*cosA)
	row[models.IdxOmega] = -pw * p.C * sinA * lnTau
	row[models.IdxPhi] = -pw * p.C * sinA
	row[models.IdxA] = 1
	row[models.IdxB] = pw
	row[models.IdxC] = pw * cosA
}

// fitStatistics computes R-squared and RMSE of p over (t, y).
func fitStatistics(p models.ParameterVector, t, y []float64) (rSquared, rmse float64) {
	n := len(y)
	r := make([]float64, n)
	sse := residualsInto(p, t, y, r)

	mean := 0.0
	for _, yi := range y {
		mean += yi
	}
	mean /= float64(n)
	sst := 0.0
	for _, yi := range y {
		d := yi - mean
		sst += d * d
	}
	if sst > 0 {
		rSquared = 1 - sse/sst
	}
	rmse = math.Sqrt(sse / float64(n))
	return rSquared, rmse
}
