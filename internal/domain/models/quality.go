package models

// QualityCategory maps a composite score onto a coarse usability class.
// Thresholds live in configuration, not here.
type QualityCategory int

const (
	QualityUnusable QualityCategory = iota
	QualityMarginal
	QualityAcceptable
	QualityHigh
)

func (c QualityCategory) String() string {
	switch c {
	case QualityHigh:
		return "high_quality"
	case QualityAcceptable:
		return "acceptable"
	case QualityMarginal:
		return "marginal"
	case QualityUnusable:
		return "unusable"
	default:
		return "unknown"
	}
}

// QualityAssessment is the evaluator's verdict on one FitCandidate: the
// composite [0,1] score, its per-component breakdown, the category, whether
// the candidate may feed selection and aggregation, and a human-readable
// issue list.
type QualityAssessment struct {
	Composite float64

	Statistical float64 // R-squared contribution
	Theoretical float64 // proximity of beta/omega to the Sornette values
	Practical   float64 // tc within an actionable horizon
	Stability   float64 // 1/(1+RMSE)

	Category QualityCategory
	Usable   bool
	Issues   []string
}

// ScoredCandidate pairs a candidate with its assessment; the selector and
// aggregator operate on these.
type ScoredCandidate struct {
	Candidate  FitCandidate
	Assessment QualityAssessment
}
