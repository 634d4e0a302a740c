// Package diagnostics classifies each converged trial before quality
// evaluation. Boundary degeneracies are first-class states here, never
// errors: a tc pinned at its lower bound is a fitting artifact that must
// survive into the result set as data.
package diagnostics

import (
	"math"

	"BubbleScope/internal/domain/models"
	"BubbleScope/pkg/config"
)

// Classifier assigns exactly one DiagnosticStatus per candidate using a
// relative boundary epsilon: a parameter is "at" a bound when it lies within
// tolerance*(hi-lo) of it.
type Classifier struct {
	tolerance   float64
	minRSquared float64
}

func New(cfg config.FittingConfig) *Classifier {
	return &Classifier{
		tolerance:   cfg.BoundaryTolerance,
		minRSquared: cfg.Quality.MinRSquared,
	}
}

// Classify checks, in precedence order: critical proximity (tc at its lower
// bound, overriding everything including a high R-squared), any other
// boundary sticking, low statistical quality, then normal.
func (c *Classifier) Classify(cand models.FitCandidate, bounds models.Bounds) models.DiagnosticStatus {
	if c.nearLower(cand.Params.Tc, bounds.Tc) {
		return models.StatusCriticalProximity
	}
	if c.anyBoundaryStuck(cand.Params, bounds) {
		return models.StatusBoundaryStuck
	}
	if cand.RSquared < c.minRSquared {
		return models.StatusLowQuality
	}
	return models.StatusNormal
}

// StuckParameters names every parameter sitting at a bound. The session
// attaches the list to each diagnosed candidate and the quality evaluator
// surfaces it in the issue list.
func (c *Classifier) StuckParameters(p models.ParameterVector, bounds models.Bounds) []string {
	names := [models.NumParams]string{"tc", "beta", "omega", "phi", "A", "B", "C"}
	values := p.Array()
	intervals := bounds.Intervals()

	var out []string
	for i, iv := range intervals {
		eps := c.tolerance * iv.Width()
		switch {
		case math.Abs(values[i]-iv.Lo) < eps:
			out = append(out, names[i]+" near lower boundary")
		case math.Abs(values[i]-iv.Hi) < eps:
			out = append(out, names[i]+" near upper boundary")
		}
	}
	return out
}

func (c *Classifier) nearLower(v float64, iv models.Interval) bool {
	return math.Abs(v-iv.Lo) < c.tolerance*iv.Width()
}

func (c *Classifier) anyBoundaryStuck(p models.ParameterVector, bounds models.Bounds) bool {
	values := p.Array()
	intervals := bounds.Intervals()
	for i, iv := range intervals {
		eps := c.tolerance * iv.Width()
		if math.Abs(values[i]-iv.Lo) < eps || math.Abs(values[i]-iv.Hi) < eps {
			return true
		}
	}
	return false
}
