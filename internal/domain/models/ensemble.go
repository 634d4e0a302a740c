package models

// EnsembleEstimate is the quality-weighted consensus over the usable
// candidate subset. Weights are the composite scores renormalized to sum to
// one; uncertainty is the weighted standard deviation of tc.
type EnsembleEstimate struct {
	Params ParameterVector

	// TcStdDev is the quality-weighted standard deviation of the critical
	// time across components. Zero when all components agree.
	TcStdDev float64

	// Confidence is 1/(1 + TcStdDev/tc_mean), in (0,1].
	Confidence float64

	ComponentCount int

	// LowConfidence is set when the estimate rests on a single candidate:
	// the vector is returned verbatim instead of fabricating variance.
	LowConfidence bool
}
