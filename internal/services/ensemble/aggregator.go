// Package ensemble combines the usable candidates into one quality-weighted
// consensus estimate. Competing local optima that all passed diagnosis carry
// real information; averaging them by quality is more defensible than
// betting the session on a single winner.
package ensemble

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"BubbleScope/internal/domain/models"
)

type Aggregator struct{}

func New() *Aggregator {
	return &Aggregator{}
}

// Aggregate requires at least one usable candidate. Each candidate is
// weighted by its composite score, renormalized across the subset; the
// aggregate vector is the weighted mean per field and the uncertainty the
// weighted standard deviation of tc. A single candidate comes back verbatim
// with the low-confidence flag set instead of a fabricated variance.
func (a *Aggregator) Aggregate(cands []models.ScoredCandidate) (*models.EnsembleEstimate, error) {
	if len(cands) == 0 {
		return nil, models.ErrNoCandidates
	}

	if len(cands) == 1 {
		only := cands[0]
		return &models.EnsembleEstimate{
			Params:         only.Candidate.Params,
			TcStdDev:       0,
			Confidence:     only.Assessment.Composite,
			ComponentCount: 1,
			LowConfidence:  true,
		}, nil
	}

	// Fixed reduction order keeps the float sums identical across runs.
	ordered := make([]models.ScoredCandidate, len(cands))
	copy(ordered, cands)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Candidate.TrialIndex < ordered[j].Candidate.TrialIndex
	})

	n := len(ordered)
	weights := make([]float64, n)
	fields := make([][]float64, models.NumParams)
	for f := range fields {
		fields[f] = make([]float64, n)
	}
	for i, c := range ordered {
		weights[i] = c.Assessment.Composite
		arr := c.Candidate.Params.Array()
		for f := 0; f < models.NumParams; f++ {
			fields[f][i] = arr[f]
		}
	}

	var agg [models.NumParams]float64
	for f := 0; f < models.NumParams; f++ {
		agg[f] = stat.Mean(fields[f], weights)
	}
	params := models.VectorFromArray(agg)

	tcStd := weightedStdDev(fields[models.IdxTc], weights, params.Tc)
	// Uncertainty normalized by the mean critical time (its coefficient of
	// variation); tc > 1 always, so the ratio is well defined.
	confidence := 1.0 / (1.0 + tcStd/params.Tc)

	return &models.EnsembleEstimate{
		Params:         params,
		TcStdDev:       tcStd,
		Confidence:     confidence,
		ComponentCount: n,
		LowConfidence:  false,
	}, nil
}

// weightedStdDev is the population-style weighted standard deviation
// sqrt(sum w_i*(x_i-mean)^2 / sum w_i). It is exactly zero when every
// component agrees on x.
func weightedStdDev(xs, weights []float64, mean float64) float64 {
	sumW := 0.0
	sumSq := 0.0
	for i, x := range xs {
		d := x - mean
		sumSq += weights[i] * d * d
		sumW += weights[i]
	}
	if sumW <= 0 {
		return 0
	}
	return math.Sqrt(sumSq / sumW)
}
