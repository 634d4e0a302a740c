package ensemble

import (
	"errors"
	"math"
	"testing"

	"BubbleScope/internal/domain/models"
)

func scored(trial int, tc, composite float64) models.ScoredCandidate {
	return models.ScoredCandidate{
		Candidate: models.FitCandidate{
			Params:     models.ParameterVector{Tc: tc, Beta: 0.33, Omega: 6.36, Phi: 0.2, A: 5, B: -0.5, C: 0.15},
			TrialIndex: trial,
		},
		Assessment: models.QualityAssessment{Composite: composite, Usable: true},
	}
}

func TestAggregateEmptyPool(t *testing.T) {
	a := New()
	if _, err := a.Aggregate(nil); !errors.Is(err, models.ErrNoCandidates) {
		t.Fatalf("expected ErrNoCandidates, got %v", err)
	}
}

func TestAggregateSingleCandidateVerbatim(t *testing.T) {
	a := New()
	only := scored(4, 1.18, 0.82)
	est, err := a.Aggregate([]models.ScoredCandidate{only})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if est.Params != only.Candidate.Params {
		t.Fatalf("single-candidate ensemble must pass the vector through: %+v", est.Params)
	}
	if est.TcStdDev != 0 {
		t.Fatalf("TcStdDev = %v, want 0", est.TcStdDev)
	}
	if est.Confidence != only.Assessment.Composite {
		t.Fatalf("Confidence = %v, want the composite score %v", est.Confidence, only.Assessment.Composite)
	}
	if !est.LowConfidence || est.ComponentCount != 1 {
		t.Fatalf("single candidate must be flagged low confidence: %+v", est)
	}
}

func TestAggregateIdenticalCandidatesZeroUncertainty(t *testing.T) {
	a := New()
	pool := []models.ScoredCandidate{
		scored(0, 1.2, 0.8),
		scored(1, 1.2, 0.8),
		scored(2, 1.2, 0.8),
	}
	est, err := a.Aggregate(pool)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if est.TcStdDev > 1e-12 {
		t.Fatalf("identical candidates must give zero tc spread, got %v", est.TcStdDev)
	}
	if math.Abs(est.Confidence-1) > 1e-12 {
		t.Fatalf("Confidence = %v, want 1 for zero spread", est.Confidence)
	}
	if math.Abs(est.Params.Tc-1.2) > 1e-12 {
		t.Fatalf("Tc = %v, want 1.2", est.Params.Tc)
	}
	if est.LowConfidence || est.ComponentCount != 3 {
		t.Fatalf("unexpected flags: %+v", est)
	}
}

func TestAggregateWeightsByComposite(t *testing.T) {
	a := New()
	pool := []models.ScoredCandidate{
		scored(0, 1.1, 0.9),
		scored(1, 1.3, 0.1),
	}
	est, err := a.Aggregate(pool)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Weighted mean: (0.9*1.1 + 0.1*1.3) / 1.0 = 1.12.
	if math.Abs(est.Params.Tc-1.12) > 1e-12 {
		t.Fatalf("weighted Tc = %v, want 1.12", est.Params.Tc)
	}
	if est.Params.Tc >= 1.2 {
		t.Fatalf("aggregate must lean toward the higher-quality candidate")
	}
}

func TestAggregateConfidenceFallsWithSpread(t *testing.T) {
	a := New()
	tight, err := a.Aggregate([]models.ScoredCandidate{
		scored(0, 1.19, 0.8),
		scored(1, 1.21, 0.8),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wide, err := a.Aggregate([]models.ScoredCandidate{
		scored(0, 1.05, 0.8),
		scored(1, 1.9, 0.8),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if wide.Confidence >= tight.Confidence {
		t.Fatalf("confidence must fall with tc spread: wide %v >= tight %v",
			wide.Confidence, tight.Confidence)
	}
}

func TestAggregateOrderIndependent(t *testing.T) {
	a := New()
	pool := []models.ScoredCandidate{
		scored(0, 1.1, 0.9),
		scored(1, 1.2, 0.7),
		scored(2, 1.3, 0.5),
	}
	reversed := []models.ScoredCandidate{pool[2], pool[1], pool[0]}

	x, err := a.Aggregate(pool)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	y, err := a.Aggregate(reversed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if x.Params != y.Params || x.TcStdDev != y.TcStdDev || x.Confidence != y.Confidence {
		t.Fatalf("aggregation depends on input order: %+v vs %+v", x, y)
	}
}
