package models

// SelectionCriterion names one way of picking a winner from the usable pool.
type SelectionCriterion string

const (
	CriterionMaxRSquared         SelectionCriterion = "max_r_squared"
	CriterionMaxTheoretical      SelectionCriterion = "max_theoretical_consistency"
	CriterionMostConservativeTc  SelectionCriterion = "most_conservative_tc"
	CriterionMaxCompositeQuality SelectionCriterion = "max_composite_quality"
)

// Criteria lists every selection criterion in a fixed order.
var Criteria = []SelectionCriterion{
	CriterionMaxRSquared,
	CriterionMaxTheoretical,
	CriterionMostConservativeTc,
	CriterionMaxCompositeQuality,
}

// SelectionResult holds the per-criterion winners plus the top candidates by
// composite score for audit. An empty usable pool is not an error: it yields
// NoUsableFit=true, the expected outcome for a series with no bubble
// signature.
type SelectionResult struct {
	Winners map[SelectionCriterion]ScoredCandidate

	// TopCandidates are the best usable candidates by composite score,
	// at most three, for side-by-side comparison.
	TopCandidates []ScoredCandidate

	TotalCandidates int
	UsableCount     int
	NoUsableFit     bool
}

// Winner returns the candidate selected under the given criterion.
func (r SelectionResult) Winner(c SelectionCriterion) (ScoredCandidate, bool) {
	w, ok := r.Winners[c]
	return w, ok
}
