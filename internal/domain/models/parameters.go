package models

// NumParams is the dimensionality of the LPPL parameter space.
const NumParams = 7

// Indices into the flattened parameter array, in optimizer order.
const (
	IdxTc = iota
	IdxBeta
	IdxOmega
	IdxPhi
	IdxA
	IdxB
	IdxC
)

// ParameterVector is one point in LPPL parameter space:
//
//	logp(t) = A + B*tau^Beta + C*tau^Beta*cos(Omega*ln(tau) + Phi), tau = Tc - t
//
// Tc is the critical time on the normalized window (>1 means beyond the
// observed data), Beta the power-law exponent and Omega the log-periodic
// angular frequency.
type ParameterVector struct {
	Tc    float64
	Beta  float64
	Omega float64
	Phi   float64
	A     float64
	B     float64
	C     float64
}

// Array returns the vector in optimizer order.
func (p ParameterVector) Array() [NumParams]float64 {
	return [NumParams]float64{p.Tc, p.Beta, p.Omega, p.Phi, p.A, p.B, p.C}
}

// VectorFromArray is the inverse of Array.
func VectorFromArray(a [NumParams]float64) ParameterVector {
	return ParameterVector{Tc: a[IdxTc], Beta: a[IdxBeta], Omega: a[IdxOmega], Phi: a[IdxPhi], A: a[IdxA], B: a[IdxB], C: a[IdxC]}
}

// Interval is a closed [Lo, Hi] range.
type Interval struct {
	Lo float64
	Hi float64
}

// Width returns Hi - Lo.
func (iv Interval) Width() float64 { return iv.Hi - iv.Lo }

func (iv Interval) clamp(v float64) float64 {
	if v < iv.Lo {
		return iv.Lo
	}
	if v > iv.Hi {
		return iv.Hi
	}
	return v
}

func (iv Interval) contains(v float64) bool { return v >= iv.Lo && v <= iv.Hi }

// Bounds is the per-parameter box constraint for one fitting session. The
// tc/beta/omega intervals come from the strategy table; A, B and C scale with
// the observed log-price range.
type Bounds struct {
	Tc    Interval
	Beta  Interval
	Omega Interval
	Phi   Interval
	A     Interval
	B     Interval
	C     Interval
}

// Intervals returns the bounds in optimizer order.
func (b Bounds) Intervals() [NumParams]Interval {
	return [NumParams]Interval{b.Tc, b.Beta, b.Omega, b.Phi, b.A, b.B, b.C}
}

// Clamp projects v onto the box.
func (b Bounds) Clamp(v ParameterVector) ParameterVector {
	return ParameterVector{
		Tc:    b.Tc.clamp(v.Tc),
		Beta:  b.Beta.clamp(v.Beta),
		Omega: b.Omega.clamp(v.Omega),
		Phi:   b.Phi.clamp(v.Phi),
		A:     b.A.clamp(v.A),
		B:     b.B.clamp(v.B),
		C:     b.C.clamp(v.C),
	}
}

// Contains reports whether v lies inside the box (bounds inclusive).
func (b Bounds) Contains(v ParameterVector) bool {
	return b.Tc.contains(v.Tc) &&
		b.Beta.contains(v.Beta) &&
		b.Omega.contains(v.Omega) &&
		b.Phi.contains(v.Phi) &&
		b.A.contains(v.A) &&
		b.B.contains(v.B) &&
		b.C.contains(v.C)
}
