package models

import (
	"fmt"
	"math"
	"time"
)

// PricePoint is one observation of the input series.
type PricePoint struct {
	Timestamp time.Time
	Price     float64
}

// LogPriceStats holds the data-derived statistics the sampler and bound
// derivation need. All values are computed on the log-price series.
type LogPriceStats struct {
	Mean  float64
	Slope float64 // log-price change per unit of normalized time
	Min   float64
	Max   float64
	Range float64
}

// TimeSeriesInput is an immutable, validated price series together with its
// normalized time axis t in [0,1] and log-price series. It is the only input
// a fitting session reads; nothing in the engine mutates it.
type TimeSeriesInput struct {
	points   []PricePoint
	t        []float64
	logPrice []float64
	stats    LogPriceStats
}

// NewTimeSeriesInput validates the raw series and derives the normalized time
// axis and log prices. Timestamps must be strictly increasing and every price
// strictly positive; fewer than minPoints observations is a precondition
// violation surfaced as ErrInsufficientData.
func NewTimeSeriesInput(points []PricePoint, minPoints int) (*TimeSeriesInput, error) {
	if len(points) < minPoints {
		return nil, fmt.Errorf("%w: got %d points, need at least %d", ErrInsufficientData, len(points), minPoints)
	}
	for i, p := range points {
		if p.Price <= 0 || math.IsNaN(p.Price) || math.IsInf(p.Price, 0) {
			return nil, fmt.Errorf("%w: price %v at index %d", ErrInvalidPrice, p.Price, i)
		}
		if i > 0 && !points[i-1].Timestamp.Before(p.Timestamp) {
			return nil, fmt.Errorf("%w: index %d (%s >= %s)",
				ErrNonIncreasingTime, i, points[i-1].Timestamp.Format(time.RFC3339), p.Timestamp.Format(time.RFC3339))
		}
	}

	n := len(points)
	in := &TimeSeriesInput{
		points:   append([]PricePoint(nil), points...),
		t:        make([]float64, n),
		logPrice: make([]float64, n),
	}
	for i, p := range points {
		in.t[i] = float64(i) / float64(n-1)
		in.logPrice[i] = math.Log(p.Price)
	}

	sum := 0.0
	lo, hi := in.logPrice[0], in.logPrice[0]
	for _, v := range in.logPrice {
		sum += v
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	in.stats = LogPriceStats{
		Mean:  sum / float64(n),
		Slope: in.logPrice[n-1] - in.logPrice[0],
		Min:   lo,
		Max:   hi,
		Range: hi - lo,
	}
	return in, nil
}

// Len returns the number of observations.
func (in *TimeSeriesInput) Len() int { return len(in.points) }

// NormalizedTime returns the t axis in [0,1]. The slice is shared and must
// not be modified.
func (in *TimeSeriesInput) NormalizedTime() []float64 { return in.t }

// LogPrice returns the log-price series. The slice is shared and must not be
// modified.
func (in *TimeSeriesInput) LogPrice() []float64 { return in.logPrice }

// Stats returns the derived log-price statistics.
func (in *TimeSeriesInput) Stats() LogPriceStats { return in.stats }

// Window returns the first and last observation timestamps.
func (in *TimeSeriesInput) Window() (time.Time, time.Time) {
	return in.points[0].Timestamp, in.points[len(in.points)-1].Timestamp
}
