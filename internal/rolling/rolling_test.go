package rolling

import (
	"math"
	"testing"
)

func assertClose(t *testing.T, label string, got, want, tol float64) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Errorf("%s: got %.10f, want %.10f (tol=%g)", label, got, want, tol)
	}
}

// ────────────────────────────────────────────────────────────
// Guarded math
// ────────────────────────────────────────────────────────────

func TestSafeDivide(t *testing.T) {
	assertClose(t, "10/2", SafeDivide(10, 2), 5.0, 1e-6)

	// Zero denominator: finite, equals n/Eps, never Inf.
	v := SafeDivide(1.0, 0.0)
	if math.IsInf(v, 0) || math.IsNaN(v) {
		t.Fatalf("SafeDivide(1,0) = %v, want finite", v)
	}
	assertClose(t, "1/0", v, 1.0/Eps, 1.0)
}

func TestLogReturn(t *testing.T) {
	assertClose(t, "110/100", LogReturn(110, 100), math.Log(1.1), 1e-12)
	if !math.IsNaN(LogReturn(100, 0)) {
		t.Error("lagged=0 should be NaN")
	}
	if !math.IsNaN(LogReturn(-1, 100)) {
		t.Error("negative current should be NaN")
	}
}

// ────────────────────────────────────────────────────────────
// EMA
// ────────────────────────────────────────────────────────────

func TestEMA_SeedAndPull(t *testing.T) {
	ema := NewEMA(3) // alpha = 0.5

	// First finite input seeds unchanged.
	if got := ema.Update(100); got != 100 {
		t.Fatalf("seed: got %v, want 100", got)
	}

	// Second input pulls the EMA strictly toward it.
	got := ema.Update(110)
	if !(got > 100 && got < 110) {
		t.Errorf("EMA after 110: got %v, want in (100, 110)", got)
	}
	assertClose(t, "EMA(3) second update", got, 105.0, 1e-9)
}

func TestEMA_NonFiniteIsNoOp(t *testing.T) {
	ema := NewEMA(5)
	ema.Update(50)
	before := ema.Value()

	if got := ema.Update(math.NaN()); got != before {
		t.Errorf("NaN update returned %v, want %v", got, before)
	}
	if ema.Value() != before {
		t.Error("NaN update mutated state")
	}
}

func TestEMA_UnseededValueIsNaN(t *testing.T) {
	ema := NewEMA(10)
	if !math.IsNaN(ema.Value()) {
		t.Error("value before first sample should be NaN")
	}
}

// ────────────────────────────────────────────────────────────
// Windowed sum / stats
// ────────────────────────────────────────────────────────────

func TestSum_Eviction(t *testing.T) {
	// Window 3, pushes 1..5: totals 1, 3, 6, 9, 12.
	s := NewSum(3)
	want := []float64{1, 3, 6, 9, 12}
	full := []bool{false, false, true, true, true}
	for i := 1; i <= 5; i++ {
		s.Push(float64(i))
		assertClose(t, "sum", s.Sum(), want[i-1], 1e-12)
		if s.Full() != full[i-1] {
			t.Errorf("push %d: Full()=%v, want %v", i, s.Full(), full[i-1])
		}
	}
	// Mean over last 3 values (3+4+5)/3 = 4.
	assertClose(t, "mean", s.Mean(), 4.0, 1e-12)
}

func TestSum_MeanBeforeFull(t *testing.T) {
	s := NewSum(4)
	s.Push(2)
	s.Push(4)
	// Not yet full: mean is sum/count.
	assertClose(t, "partial mean", s.Mean(), 3.0, 1e-12)
}

func TestStats_ClosedForm(t *testing.T) {
	// Window 3 over 2, 4, 6: mean 4, population variance 8/3.
	st := NewStats(3)
	st.Push(2)
	st.Push(4)
	if st.Full() {
		t.Fatal("full after 2 of 3 pushes")
	}
	st.Push(6)
	if !st.Full() {
		t.Fatal("not full after 3 pushes")
	}
	assertClose(t, "mean", st.Mean(), 4.0, 1e-12)
	assertClose(t, "variance", st.Variance(), 8.0/3.0, 1e-9)
	assertClose(t, "std", st.StdDev(), math.Sqrt(8.0/3.0), 1e-9)

	// Eviction: push 8 → window {4, 6, 8}, mean 6.
	st.Push(8)
	assertClose(t, "mean after evict", st.Mean(), 6.0, 1e-9)
}

func TestStats_ZScoreOnlyWhenFull(t *testing.T) {
	st := NewStats(3)
	st.Push(1)
	st.Push(2)
	if !math.IsNaN(st.ZScore(2)) {
		t.Error("z-score before full should be NaN")
	}
	st.Push(3)
	// x = mean → z ≈ 0.
	assertClose(t, "z at mean", st.ZScore(2), 0.0, 1e-6)
	z := st.ZScore(4)
	if math.IsNaN(z) || math.IsInf(z, 0) || z <= 0 {
		t.Errorf("z above mean: got %v, want positive finite", z)
	}
}

func TestStats_ConstantSeriesZScoreFinite(t *testing.T) {
	// Zero std: Eps guard keeps the z-score finite.
	st := NewStats(3)
	for i := 0; i < 3; i++ {
		st.Push(5)
	}
	z := st.ZScore(6)
	if math.IsInf(z, 0) || math.IsNaN(z) {
		t.Errorf("z with zero std: got %v, want finite", z)
	}
}

// ────────────────────────────────────────────────────────────
// Windowed max / min
// ────────────────────────────────────────────────────────────

func TestMaxMin_Eviction(t *testing.T) {
	mx := NewMax(3)
	mn := NewMin(3)
	for _, v := range []float64{5, 9, 1} {
		mx.Push(v)
		mn.Push(v)
	}
	assertClose(t, "max", mx.Max(), 9, 0)
	assertClose(t, "min", mn.Min(), 1, 0)

	// Evict 5, then 9: window {1, 2, 3}.
	mx.Push(2)
	mx.Push(3)
	mn.Push(2)
	mn.Push(3)
	assertClose(t, "max after evict", mx.Max(), 3, 0)
	assertClose(t, "min after evict", mn.Min(), 1, 0)
}

// ────────────────────────────────────────────────────────────
// Windowed slope
// ────────────────────────────────────────────────────────────

func TestSlope_LinearSeries(t *testing.T) {
	// Exact slope for a strictly linear series, at every full window.
	s := NewSlope(5)
	for i := 0; i < 4; i++ {
		s.Push(3.0 + 2.0*float64(i))
		if !math.IsNaN(s.Slope()) {
			t.Fatalf("slope before full should be NaN (push %d)", i)
		}
	}
	for i := 4; i < 20; i++ {
		s.Push(3.0 + 2.0*float64(i))
		assertClose(t, "linear slope", s.Slope(), 2.0, 1e-9)
	}
}

func TestSlope_DegenerateWindow(t *testing.T) {
	s := NewSlope(1)
	s.Push(42)
	// Index variance is zero → defined as 0, not NaN/Inf.
	assertClose(t, "slope w=1", s.Slope(), 0.0, 0)
}
