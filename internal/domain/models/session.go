package models

import "time"

// SessionState tracks a fitting session through its pipeline stages. There is
// no session-level retry: a session with zero usable candidates still reaches
// SessionComplete, carrying a NoUsableFit selection as a valid terminal
// payload.
type SessionState int

const (
	SessionInitiated SessionState = iota
	SessionSampling
	SessionTrialsRunning
	SessionDiagnosed
	SessionEvaluated
	SessionSelected
	SessionEnsembled
	SessionComplete
)

func (s SessionState) String() string {
	switch s {
	case SessionInitiated:
		return "initiated"
	case SessionSampling:
		return "sampling"
	case SessionTrialsRunning:
		return "trials_running"
	case SessionDiagnosed:
		return "diagnosed"
	case SessionEvaluated:
		return "evaluated"
	case SessionSelected:
		return "selected"
	case SessionEnsembled:
		return "ensembled"
	case SessionComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// Strategy selects one row of the configured strategy table.
type Strategy string

const (
	StrategyConservative Strategy = "conservative"
	StrategyExtensive    Strategy = "extensive"
	StrategyEmergency    Strategy = "emergency"
)

// SessionReport is the immutable result of one fitting session for one
// (symbol, window) pair, handed to external persistence and visualization
// collaborators.
type SessionReport struct {
	ID       string
	Symbol   string
	Strategy Strategy
	State    SessionState

	Selection SelectionResult
	// Ensemble is nil when the usable pool was empty.
	Ensemble *EnsembleEstimate

	TrialCount    int
	FailureCounts map[FailureReason]int
	StatusCounts  map[DiagnosticStatus]int

	StartedAt time.Time
	Elapsed   time.Duration
}
