// Package rolling provides fixed-capacity streaming aggregates used by the
// feature calculators: EMA, windowed sum/mean/variance/std-dev/z-score,
// windowed max/min, and windowed linear-regression slope.
//
// All aggregates use a preallocated circular buffer plus incremental running
// totals — one push is O(1) (max/min/slope queries scan the buffer, which is
// fine for the small windows used here). NaN is the universal "not defined
// yet" sentinel; no aggregate ever returns ±Inf or panics on data.
package rolling

import "math"

// Eps guards every divide in the feature pipeline: ratios are computed as
// num/(den+Eps) so a zero denominator yields a large-but-finite value
// instead of ±Inf or a fault.
const Eps = 1e-9

// SafeDivide returns num / (den + Eps).
func SafeDivide(num, den float64) float64 {
	return num / (den + Eps)
}

// Valid reports whether v is a usable sample (finite, not NaN).
func Valid(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// LogReturn returns ln(current/lagged), or NaN if either price is
// non-positive.
func LogReturn(current, lagged float64) float64 {
	if current <= 0 || lagged <= 0 {
		return math.NaN()
	}
	return math.Log(current / lagged)
}
