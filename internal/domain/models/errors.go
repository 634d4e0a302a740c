package models

import "errors"

// Input and configuration preconditions. These are the only failure modes
// that propagate to the caller as errors; every numerical or statistical
// failure inside a session is absorbed into TrialOutcome and diagnostic
// fields instead.
var (
	ErrInsufficientData  = errors.New("insufficient data points")
	ErrInvalidPrice      = errors.New("price must be positive and finite")
	ErrNonIncreasingTime = errors.New("timestamps must be strictly increasing")
	ErrUnknownStrategy   = errors.New("unknown fitting strategy")
	ErrNoCandidates      = errors.New("ensemble requires at least one usable candidate")
)
