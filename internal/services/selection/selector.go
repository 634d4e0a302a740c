// Package selection reduces the unordered pool of scored candidates to one
// winner per criterion. The reduction is pure and iterates in trial order, so
// a session is reproducible run to run under the same seed. An empty usable
// pool is the expected outcome for a non-bubble period and comes back as
// data, never as an error.
package selection

import (
	"sort"

	"BubbleScope/internal/domain/models"
	"BubbleScope/pkg/config"
)

const topCandidateCount = 3

type Selector struct {
	epsilon float64
}

func New(cfg config.FittingConfig) *Selector {
	return &Selector{epsilon: cfg.SelectionEpsilon}
}

// Select filters the pool to usable candidates and picks per-criterion
// winners. Score ties within epsilon prefer the smaller tc: a sooner
// prediction is falsified sooner.
func (s *Selector) Select(pool []models.ScoredCandidate) models.SelectionResult {
	ordered := make([]models.ScoredCandidate, len(pool))
	copy(ordered, pool)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Candidate.TrialIndex < ordered[j].Candidate.TrialIndex
	})

	usable := make([]models.ScoredCandidate, 0, len(ordered))
	for _, c := range ordered {
		if c.Assessment.Usable {
			usable = append(usable, c)
		}
	}

	result := models.SelectionResult{
		Winners:         make(map[models.SelectionCriterion]models.ScoredCandidate),
		TotalCandidates: len(pool),
		UsableCount:     len(usable),
	}
	if len(usable) == 0 {
		result.NoUsableFit = true
		return result
	}

	result.Winners[models.CriterionMaxRSquared] = s.maximize(usable, func(c models.ScoredCandidate) float64 {
		return c.Candidate.RSquared
	})
	result.Winners[models.CriterionMaxTheoretical] = s.maximize(usable, func(c models.ScoredCandidate) float64 {
		return c.Assessment.Theoretical
	})
	result.Winners[models.CriterionMaxCompositeQuality] = s.maximize(usable, func(c models.ScoredCandidate) float64 {
		return c.Assessment.Composite
	})
	result.Winners[models.CriterionMostConservativeTc] = s.smallestTc(usable)

	result.TopCandidates = s.topByComposite(usable)
	return result
}

// maximize returns the candidate with the largest score; within epsilon of a
// tie the smaller tc wins.
func (s *Selector) maximize(pool []models.ScoredCandidate, score func(models.ScoredCandidate) float64) models.ScoredCandidate {
	best := pool[0]
	bestScore := score(best)
	for _, c := range pool[1:] {
		v := score(c)
		switch {
		case v > bestScore+s.epsilon:
			best, bestScore = c, v
		case v > bestScore-s.epsilon && c.Candidate.Params.Tc < best.Candidate.Params.Tc:
			best = c
			if v > bestScore {
				bestScore = v
			}
		}
	}
	return best
}

// smallestTc is the most conservative pick: the earliest critical time still
// ahead of the observation window. tc > 1 holds for every candidate by
// construction of the bounds, so this is a plain minimum over the pool.
func (s *Selector) smallestTc(pool []models.ScoredCandidate) models.ScoredCandidate {
	best := pool[0]
	for _, c := range pool[1:] {
		if c.Candidate.Params.Tc < best.Candidate.Params.Tc {
			best = c
		}
	}
	return best
}

func (s *Selector) topByComposite(pool []models.ScoredCandidate) []models.ScoredCandidate {
	top := make([]models.ScoredCandidate, len(pool))
	copy(top, pool)
	sort.SliceStable(top, func(i, j int) bool {
		a, b := top[i], top[j]
		if a.Assessment.Composite != b.Assessment.Composite {
			return a.Assessment.Composite > b.Assessment.Composite
		}
		return a.Candidate.Params.Tc < b.Candidate.Params.Tc
	})
	if len(top) > topCandidateCount {
		top = top[:topCandidateCount]
	}
	return top
}
