package feature

import (
	"math"

	"github.com/mandeep1729/algomatic-state/internal/model"
	"github.com/mandeep1729/algomatic-state/internal/rolling"
)

// Returns computes log-return features: r1/r5/r15/r60, the 60-bar cumulative
// return, the fast/slow EMA spread, the log-price regression slope, and trend
// strength (slope magnitude over realized volatility).
//
// It also produces the r1 series consumed by Volatility, so it must run first.
type Returns struct {
	shortWindow  int
	mediumWindow int
	longWindow   int
	emaFast      int
	emaSlow      int
}

// NewReturns creates the returns calculator with the standard windows
// (5/15/60 bars, EMA spans 12/26).
func NewReturns() *Returns {
	return &Returns{
		shortWindow:  5,
		mediumWindow: 15,
		longWindow:   60,
		emaFast:      12,
		emaSlow:      26,
	}
}

func (r *Returns) Name() string { return "returns" }

// Compute fills return features for every bar and returns the r1 series,
// aligned index-for-index with bars (NaN where undefined).
func (r *Returns) Compute(bars []model.Bar, results []model.FeatureResult) []float64 {
	n := len(bars)
	r1Out := make([]float64, n)

	emaF := rolling.NewEMA(r.emaFast)
	emaS := rolling.NewEMA(r.emaSlow)
	cumret := rolling.NewSum(r.longWindow)
	slope := rolling.NewSlope(r.longWindow)
	rvLong := rolling.NewStats(r.longWindow)

	for i := 0; i < n; i++ {
		f := results[i].Features
		c := bars[i].Close

		r1 := math.NaN()
		if i >= 1 {
			r1 = rolling.LogReturn(c, bars[i-1].Close)
		}
		f["r1"] = r1
		r1Out[i] = r1

		f["r5"] = lagReturn(bars, i, r.shortWindow)
		f["r15"] = lagReturn(bars, i, r.mediumWindow)
		f["r60"] = lagReturn(bars, i, r.longWindow)

		// cumret_60 accumulates only defined returns.
		if rolling.Valid(r1) {
			cumret.Push(r1)
		}
		if cumret.Full() {
			f["cumret_60"] = cumret.Sum()
		} else {
			f["cumret_60"] = math.NaN()
		}

		// The EMAs seed from the first close, but the spread is reported only
		// once a full slow span has elapsed.
		ef := emaF.Update(c)
		es := emaS.Update(c)
		if i >= r.emaSlow-1 && c > 0 {
			f["ema_diff"] = rolling.SafeDivide(ef-es, c)
		} else {
			f["ema_diff"] = math.NaN()
		}

		// slope_60 regresses log price; non-positive closes are skipped.
		if c > 0 {
			slope.Push(math.Log(c))
		}
		s60 := math.NaN()
		if slope.Full() {
			s60 = slope.Slope()
		}
		f["slope_60"] = s60

		if rolling.Valid(r1) {
			rvLong.Push(r1)
		}
		rv60 := math.NaN()
		if rvLong.Full() {
			rv60 = rvLong.StdDev()
		}
		if rolling.Valid(s60) && rolling.Valid(rv60) {
			f["trend_strength"] = rolling.SafeDivide(math.Abs(s60), rv60)
		} else {
			f["trend_strength"] = math.NaN()
		}
	}

	return r1Out
}

func lagReturn(bars []model.Bar, i, lag int) float64 {
	if i < lag {
		return math.NaN()
	}
	return rolling.LogReturn(bars[i].Close, bars[i-lag].Close)
}
