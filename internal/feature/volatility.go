package feature

import (
	"math"

	"github.com/mandeep1729/algomatic-state/internal/model"
	"github.com/mandeep1729/algomatic-state/internal/rolling"
)

// Volatility computes realized-volatility and range features: rv_15/rv_60
// (std of r1), the normalized bar range and its 60-bar mean and z-score, and
// vol_of_vol (std of rv_15).
//
// It consumes the r1 series produced by Returns.
type Volatility struct {
	shortWindow int
	longWindow  int
}

// NewVolatility creates the volatility calculator with 15/60 bar windows.
func NewVolatility() *Volatility {
	return &Volatility{shortWindow: 15, longWindow: 60}
}

func (v *Volatility) Name() string { return "volatility" }

// Compute fills volatility features. r1 must be aligned index-for-index with
// bars (NaN entries are skipped, not counted toward windows).
func (v *Volatility) Compute(bars []model.Bar, results []model.FeatureResult, r1 []float64) {
	rvShort := rolling.NewStats(v.shortWindow)
	rvLong := rolling.NewStats(v.longWindow)
	rangeStats := rolling.NewStats(v.longWindow)
	volOfVol := rolling.NewStats(v.longWindow)

	for i := range bars {
		f := results[i].Features

		if rolling.Valid(r1[i]) {
			rvShort.Push(r1[i])
			rvLong.Push(r1[i])
		}

		rv15 := math.NaN()
		if rvShort.Full() {
			rv15 = rvShort.StdDev()
		}
		f["rv_15"] = rv15

		if rvLong.Full() {
			f["rv_60"] = rvLong.StdDev()
		} else {
			f["rv_60"] = math.NaN()
		}

		rng := rolling.SafeDivide(bars[i].High-bars[i].Low, bars[i].Close)
		f["range_1"] = rng

		rangeStats.Push(rng)
		if rangeStats.Full() {
			f["atr_60"] = rangeStats.Mean()
			f["range_z_60"] = rangeStats.ZScore(rng)
		} else {
			f["atr_60"] = math.NaN()
			f["range_z_60"] = math.NaN()
		}

		// vol_of_vol sees rv_15 only once rv_15 itself is defined.
		if rolling.Valid(rv15) {
			volOfVol.Push(rv15)
		}
		if volOfVol.Full() {
			f["vol_of_vol"] = volOfVol.StdDev()
		} else {
			f["vol_of_vol"] = math.NaN()
		}
	}
}
