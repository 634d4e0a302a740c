package models

// DiagnosticStatus classifies one converged trial. Every successful trial is
// assigned exactly one status before quality evaluation.
type DiagnosticStatus int

const (
	// StatusNormal means no boundary or quality issue was detected.
	StatusNormal DiagnosticStatus = iota
	// StatusLowQuality means R-squared fell below the configured minimum
	// with no boundary issue.
	StatusLowQuality
	// StatusBoundaryStuck means a parameter other than tc-at-lower-bound
	// landed within epsilon of a box bound.
	StatusBoundaryStuck
	// StatusCriticalProximity means tc is pinned at its lower bound. This is
	// a fitting artifact, not a near-term prediction, and overrides every
	// other check regardless of R-squared.
	StatusCriticalProximity
)

func (s DiagnosticStatus) String() string {
	switch s {
	case StatusNormal:
		return "normal"
	case StatusLowQuality:
		return "low_quality"
	case StatusBoundaryStuck:
		return "boundary_stuck"
	case StatusCriticalProximity:
		return "critical_proximity"
	default:
		return "unknown"
	}
}

// FailureReason is the typed cause of a failed optimizer trial. Trial
// failures are values, never session-level errors.
type FailureReason int

const (
	FailureNone FailureReason = iota
	// FailureNonConvergence means the optimizer exhausted its iteration or
	// damping budget without meeting the convergence tolerance.
	FailureNonConvergence
	// FailureNumeric means the trial hit a numerical dead end, typically a
	// singular Jacobian or a NaN in the residuals.
	FailureNumeric
	// FailureTimeout means the trial exceeded its wall-clock budget and was
	// aborted. Timed-out trials are never retried within a session.
	FailureTimeout
)

func (r FailureReason) String() string {
	switch r {
	case FailureNone:
		return "none"
	case FailureNonConvergence:
		return "non_convergence"
	case FailureNumeric:
		return "numeric"
	case FailureTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// FitCandidate is the immutable output of one successful optimizer trial:
// the fitted parameters, the fit statistics over the log-price series, and
// the diagnostic status attached before quality evaluation.
type FitCandidate struct {
	Params   ParameterVector
	RSquared float64
	RMSE     float64
	Status   DiagnosticStatus

	// StuckParams names every parameter sitting at a box bound, attached at
	// diagnosis and surfaced in the quality issue list.
	StuckParams []string

	// TrialIndex identifies the sampled initial vector that produced this
	// candidate; aggregates iterate in trial order for determinism.
	TrialIndex int
	Initial    ParameterVector
}

// TrialOutcome is the per-trial result: either a candidate or a typed
// failure reason. Exactly one of the two is meaningful.
type TrialOutcome struct {
	TrialIndex int
	Candidate  *FitCandidate
	Failure    FailureReason
}

// Succeeded reports whether the trial produced a candidate.
func (o TrialOutcome) Succeeded() bool { return o.Candidate != nil }
