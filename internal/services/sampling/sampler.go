// Package sampling generates diverse initial parameter vectors for the
// multi-start fit. A single start is unreliable: the LPPL objective is
// riddled with local optima, so coverage of the (tc, beta, omega) box matters
// more than cleverness of any one guess.
package sampling

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"

	"BubbleScope/internal/domain/models"
	"BubbleScope/pkg/config"
)

// Initial values for the parameters not explored by grid or random draws.
// Phase starts flat and the oscillation amplitude small; A and B come from
// the data statistics.
const (
	initialPhi = 0.0
	initialC   = 0.1
)

// Sampler produces initial vectors and the session box bounds from a
// strategy row and the data statistics. It is a pure function of its inputs
// and the seed.
type Sampler struct {
	cfg config.FittingConfig
}

func New(cfg config.FittingConfig) *Sampler {
	return &Sampler{cfg: cfg}
}

// BoundsFor derives the session box. tc, beta and omega come straight from
// the strategy table; phi covers one full oscillation either way; A, B and C
// scale with the observed log-price range so the box adapts to the series.
func (s *Sampler) BoundsFor(stats models.LogPriceStats, strat config.StrategyConfig) models.Bounds {
	pr := stats.Range
	if pr <= 0 {
		pr = 1 // degenerate flat series, keep the box non-empty
	}
	return models.Bounds{
		Tc:    models.Interval{Lo: strat.TcMin, Hi: strat.TcMax},
		Beta:  models.Interval{Lo: strat.BetaMin, Hi: strat.BetaMax},
		Omega: models.Interval{Lo: strat.OmegaMin, Hi: strat.OmegaMax},
		Phi:   models.Interval{Lo: -2 * math.Pi, Hi: 2 * math.Pi},
		A:     models.Interval{Lo: stats.Min - pr, Hi: stats.Max + pr},
		B:     models.Interval{Lo: -2 * pr, Hi: 2 * pr},
		C:     models.Interval{Lo: -pr, Hi: pr},
	}
}

// Generate returns the strategy's trial count of initial vectors, every one
// inside the session bounds. Grid strategies walk a cube over
// (tc, beta, omega); hybrid mixes half grid, half random; random draws
// uniformly over the full ranges. Identical inputs and seed produce an
// identical sequence.
func (s *Sampler) Generate(stats models.LogPriceStats, strat config.StrategyConfig, seed int64) []models.ParameterVector {
	bounds := s.BoundsFor(stats, strat)
	rng := rand.New(rand.NewSource(seed))

	var out []models.ParameterVector
	switch strat.Method {
	case "grid":
		out = s.gridVectors(stats, strat, strat.Trials)
	case "hybrid":
		half := strat.Trials / 2
		out = s.gridVectors(stats, strat, half)
		out = append(out, s.randomVectors(stats, strat, strat.Trials-half, rng)...)
	default: // random
		out = s.randomVectors(stats, strat, strat.Trials, rng)
	}

	// The data-derived A/B/C starts can fall outside a tight box on unusual
	// series; project so every trial begins inside its constraints.
	for i := range out {
		out[i] = bounds.Clamp(out[i])
	}
	return out
}

func (s *Sampler) gridVectors(stats models.LogPriceStats, strat config.StrategyConfig, n int) []models.ParameterVector {
	if n <= 0 {
		return nil
	}
	perAxis := int(math.Ceil(math.Cbrt(float64(n))))
	if perAxis < 2 {
		perAxis = 2
	}
	tcs := floats.Span(make([]float64, perAxis), strat.TcMin, strat.TcMax)
	betas := floats.Span(make([]float64, perAxis), strat.BetaMin, strat.BetaMax)
	omegas := floats.Span(make([]float64, perAxis), strat.OmegaMin, strat.OmegaMax)

	out := make([]models.ParameterVector, 0, n)
	for _, tc := range tcs {
		for _, beta := range betas {
			for _, omega := range omegas {
				if len(out) == n {
					return out
				}
				out = append(out, models.ParameterVector{
					Tc: tc, Beta: beta, Omega: omega,
					Phi: initialPhi, A: stats.Mean, B: stats.Slope, C: initialC,
				})
			}
		}
	}
	return out
}

func (s *Sampler) randomVectors(stats models.LogPriceStats, strat config.StrategyConfig, n int, rng *rand.Rand) []models.ParameterVector {
	out := make([]models.ParameterVector, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, models.ParameterVector{
			Tc:    uniform(rng, strat.TcMin, strat.TcMax),
			Beta:  uniform(rng, strat.BetaMin, strat.BetaMax),
			Omega: uniform(rng, strat.OmegaMin, strat.OmegaMax),
			Phi:   initialPhi,
			A:     stats.Mean,
			B:     stats.Slope,
			C:     initialC,
		})
	}
	return out
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}
