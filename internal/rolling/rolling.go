package rolling

import "math"

// EMA is a recursive exponential moving average with alpha = 2/(span+1).
// The first finite input seeds the value unchanged; non-finite inputs are
// no-ops that return the last value.
type EMA struct {
	alpha  float64
	value  float64
	seeded bool
}

// NewEMA creates an EMA with the given span.
func NewEMA(span int) *EMA {
	return &EMA{alpha: 2.0 / float64(span+1), value: math.NaN()}
}

// Update feeds one sample and returns the current EMA value.
func (e *EMA) Update(x float64) float64 {
	if !Valid(x) {
		return e.value
	}
	if !e.seeded {
		e.value = x
		e.seeded = true
		return e.value
	}
	e.value = e.alpha*x + (1-e.alpha)*e.value
	return e.value
}

// Value returns the current EMA value (NaN before the first finite sample).
func (e *EMA) Value() float64 { return e.value }

// Sum is a windowed running sum over a circular buffer.
type Sum struct {
	buf    []float64
	window int
	pos    int
	count  int
	total  float64
}

// NewSum creates a windowed sum of size window.
func NewSum(window int) *Sum {
	return &Sum{buf: make([]float64, window), window: window}
}

// Push adds a sample, evicting the oldest once the window is full.
func (s *Sum) Push(x float64) {
	if s.count >= s.window {
		s.total -= s.buf[s.pos]
	} else {
		s.count++
	}
	s.buf[s.pos] = x
	s.total += x
	s.pos = (s.pos + 1) % s.window
}

// Full reports whether window samples have been pushed at least once.
func (s *Sum) Full() bool { return s.count >= s.window }

// Sum returns the running total over the buffered samples.
func (s *Sum) Sum() float64 { return s.total }

// Mean returns total/count (NaN before the first push).
func (s *Sum) Mean() float64 {
	if s.count == 0 {
		return math.NaN()
	}
	return s.total / float64(s.count)
}

// Stats maintains a windowed running sum and sum-of-squares for mean,
// population variance, std-dev and z-score queries.
type Stats struct {
	buf    []float64
	window int
	pos    int
	count  int
	sum    float64
	sumsq  float64
}

// NewStats creates windowed statistics of size window.
func NewStats(window int) *Stats {
	return &Stats{buf: make([]float64, window), window: window}
}

// Push adds a sample, evicting the oldest once the window is full.
func (s *Stats) Push(x float64) {
	if s.count >= s.window {
		old := s.buf[s.pos]
		s.sum -= old
		s.sumsq -= old * old
	} else {
		s.count++
	}
	s.buf[s.pos] = x
	s.sum += x
	s.sumsq += x * x
	s.pos = (s.pos + 1) % s.window
}

// Full reports whether window samples have been pushed at least once.
func (s *Stats) Full() bool { return s.count >= s.window }

// Mean returns the mean of the buffered samples (NaN before the first push).
func (s *Stats) Mean() float64 {
	if s.count == 0 {
		return math.NaN()
	}
	return s.sum / float64(s.count)
}

// Variance returns the population variance sumsq/count − mean².
// NaN until at least two samples have been pushed.
func (s *Stats) Variance() float64 {
	if s.count < 2 {
		return math.NaN()
	}
	m := s.Mean()
	return s.sumsq/float64(s.count) - m*m
}

// StdDev returns sqrt(max(variance, 0)), NaN while variance is undefined.
func (s *Stats) StdDev() float64 {
	v := s.Variance()
	if math.IsNaN(v) {
		return math.NaN()
	}
	if v < 0 {
		v = 0 // tiny negative from float cancellation
	}
	return math.Sqrt(v)
}

// ZScore returns (x − mean)/(std + Eps), defined only once the window is
// full; NaN otherwise.
func (s *Stats) ZScore(x float64) float64 {
	if !s.Full() {
		return math.NaN()
	}
	return SafeDivide(x-s.Mean(), s.StdDev())
}

// Max tracks the maximum over a circular buffer. The max is recomputed by a
// linear scan on query rather than maintained incrementally — windows here
// are ≤250 and queried once per bar.
type Max struct {
	buf    []float64
	window int
	pos    int
	count  int
}

// NewMax creates a windowed max of size window.
func NewMax(window int) *Max {
	return &Max{buf: make([]float64, window), window: window}
}

// Push adds a sample, overwriting the oldest once the window is full.
func (m *Max) Push(x float64) {
	if m.count < m.window {
		m.count++
	}
	m.buf[m.pos] = x
	m.pos = (m.pos + 1) % m.window
}

// Full reports whether window samples have been pushed at least once.
func (m *Max) Full() bool { return m.count >= m.window }

// Max returns the maximum of the buffered samples (NaN before any push).
func (m *Max) Max() float64 {
	if m.count == 0 {
		return math.NaN()
	}
	mx := math.Inf(-1)
	for i := 0; i < m.count; i++ {
		if m.buf[i] > mx {
			mx = m.buf[i]
		}
	}
	return mx
}

// Min tracks the minimum over a circular buffer; same contract as Max.
type Min struct {
	buf    []float64
	window int
	pos    int
	count  int
}

// NewMin creates a windowed min of size window.
func NewMin(window int) *Min {
	return &Min{buf: make([]float64, window), window: window}
}

// Push adds a sample, overwriting the oldest once the window is full.
func (m *Min) Push(x float64) {
	if m.count < m.window {
		m.count++
	}
	m.buf[m.pos] = x
	m.pos = (m.pos + 1) % m.window
}

// Full reports whether window samples have been pushed at least once.
func (m *Min) Full() bool { return m.count >= m.window }

// Min returns the minimum of the buffered samples (NaN before any push).
func (m *Min) Min() float64 {
	if m.count == 0 {
		return math.NaN()
	}
	mn := math.Inf(1)
	for i := 0; i < m.count; i++ {
		if m.buf[i] < mn {
			mn = m.buf[i]
		}
	}
	return mn
}

// Slope computes the ordinary-least-squares slope of the buffered values
// against their index 0..window−1 (oldest → newest).
type Slope struct {
	buf    []float64
	window int
	pos    int
	count  int
}

// NewSlope creates a windowed regression slope of size window.
func NewSlope(window int) *Slope {
	return &Slope{buf: make([]float64, window), window: window}
}

// Push adds a sample, overwriting the oldest once the window is full.
func (s *Slope) Push(x float64) {
	if s.count < s.window {
		s.count++
	}
	s.buf[s.pos] = x
	s.pos = (s.pos + 1) % s.window
}

// Full reports whether window samples have been pushed at least once.
func (s *Slope) Full() bool { return s.count >= s.window }

// Slope returns the OLS slope, NaN until full, and 0 for a degenerate
// window whose index variance is below Eps (e.g. window of 1).
func (s *Slope) Slope() float64 {
	if !s.Full() {
		return math.NaN()
	}
	n := s.window
	xMean := float64(n-1) / 2.0

	yMean := 0.0
	for i := 0; i < n; i++ {
		yMean += s.buf[(s.pos+i)%n]
	}
	yMean /= float64(n)

	num, den := 0.0, 0.0
	for i := 0; i < n; i++ {
		dx := float64(i) - xMean
		num += dx * (s.buf[(s.pos+i)%n] - yMean)
		den += dx * dx
	}
	if den <= Eps {
		return 0
	}
	return num / den
}
