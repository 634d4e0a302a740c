// Package quality scores each diagnosed candidate on a composite [0,1]
// scale: statistical fit, consistency with the Sornette reference values,
// practical usability of the predicted critical time, and numerical
// stability. The evaluator is a pure function of the candidate and its
// diagnostic status.
package quality

import (
	"fmt"
	"math"

	"BubbleScope/internal/domain/models"
	"BubbleScope/pkg/config"
)

// Degradation of the practical-usability component as tc moves past each
// horizon tier. The tiers themselves are configuration.
const (
	practicalActionable = 1.0
	practicalNear       = 0.8
	practicalDistant    = 0.4
	practicalRemote     = 0.1
)

type Evaluator struct {
	cfg config.FittingConfig
}

func New(cfg config.FittingConfig) *Evaluator {
	return &Evaluator{cfg: cfg}
}

// Evaluate computes the weighted composite score, maps it onto a category and
// decides usability. A candidate is usable only when its category clears the
// configured floor, its status is not critical proximity, and its R-squared
// clears the statistical floor on its own: the practical and stability terms
// score any smooth trend fit well, so a pinned tc or a drift-grade R-squared
// must each veto usability regardless of the composite.
func (e *Evaluator) Evaluate(cand models.FitCandidate) models.QualityAssessment {
	q := e.cfg.Quality

	statistical := clamp01(cand.RSquared)
	theoretical := (e.proximity(cand.Params.Beta, e.cfg.TheoreticalBeta) +
		e.proximity(cand.Params.Omega, e.cfg.TheoreticalOmega)) / 2
	practical := e.practicalScore(cand.Params.Tc)
	stability := 1.0 / (1.0 + cand.RMSE)

	composite := q.StatisticalWeight*statistical +
		q.TheoreticalWeight*theoretical +
		q.PracticalWeight*practical +
		q.StabilityWeight*stability

	category := e.categorize(composite)
	usable := category != models.QualityUnusable &&
		cand.Status != models.StatusCriticalProximity &&
		statistical >= q.MinUsableRSquared

	return models.QualityAssessment{
		Composite:   composite,
		Statistical: statistical,
		Theoretical: theoretical,
		Practical:   practical,
		Stability:   stability,
		Category:    category,
		Usable:      usable,
		Issues:      e.issues(cand),
	}
}

// proximity is 1 at the reference value, falling linearly to 0 at a full
// relative deviation.
func (e *Evaluator) proximity(value, reference float64) float64 {
	return 1.0 - math.Min(1.0, math.Abs(value-reference)/reference)
}

func (e *Evaluator) practicalScore(tc float64) float64 {
	switch {
	case tc <= e.cfg.ActionableTc:
		return practicalActionable
	case tc <= e.cfg.PracticalTc:
		return practicalNear
	case tc <= e.cfg.DistantTc:
		return practicalDistant
	default:
		return practicalRemote
	}
}

func (e *Evaluator) categorize(score float64) models.QualityCategory {
	q := e.cfg.Quality
	switch {
	case score >= q.HighThreshold:
		return models.QualityHigh
	case score >= q.AcceptableThreshold:
		return models.QualityAcceptable
	case score >= q.UsableThreshold:
		return models.QualityMarginal
	default:
		return models.QualityUnusable
	}
}

func (e *Evaluator) issues(cand models.FitCandidate) []string {
	var out []string
	switch cand.Status {
	case models.StatusCriticalProximity:
		out = append(out, "tc near lower boundary: fitting artifact, not a prediction")
	case models.StatusBoundaryStuck:
		if len(cand.StuckParams) > 0 {
			out = append(out, cand.StuckParams...)
		} else {
			out = append(out, "parameter stuck at optimization boundary")
		}
	case models.StatusLowQuality:
		out = append(out, fmt.Sprintf("low statistical quality (r_squared %.3f)", cand.RSquared))
	}
	if cand.Status != models.StatusLowQuality && clamp01(cand.RSquared) < e.cfg.Quality.MinUsableRSquared {
		out = append(out, fmt.Sprintf("r_squared %.3f below usable floor %.2f",
			cand.RSquared, e.cfg.Quality.MinUsableRSquared))
	}
	if d := math.Abs(cand.Params.Beta-e.cfg.TheoreticalBeta) / e.cfg.TheoreticalBeta; d > 0.5 {
		out = append(out, fmt.Sprintf("beta %.3f far from theoretical value %.2f", cand.Params.Beta, e.cfg.TheoreticalBeta))
	}
	if d := math.Abs(cand.Params.Omega-e.cfg.TheoreticalOmega) / e.cfg.TheoreticalOmega; d > 0.8 {
		out = append(out, fmt.Sprintf("omega %.2f far from theoretical value %.2f", cand.Params.Omega, e.cfg.TheoreticalOmega))
	}
	if cand.Params.Tc > e.cfg.DistantTc {
		out = append(out, fmt.Sprintf("tc %.2f beyond any practical horizon", cand.Params.Tc))
	}
	return out
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
