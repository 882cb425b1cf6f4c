package feature

import (
	"math"

	"github.com/mandeep1729/algomatic-state/internal/model"
	"github.com/mandeep1729/algomatic-state/internal/rolling"
)

// Volume computes participation features: raw and dollar volume, relative
// volume against the 60-bar mean, and z-scores of both series.
type Volume struct {
	window int
}

// NewVolume creates the volume calculator with a 60-bar window.
func NewVolume() *Volume {
	return &Volume{window: 60}
}

func (v *Volume) Name() string { return "volume" }

func (v *Volume) Compute(bars []model.Bar, results []model.FeatureResult) {
	volStats := rolling.NewStats(v.window)
	dvolStats := rolling.NewStats(v.window)

	for i := range bars {
		f := results[i].Features

		vol := float64(bars[i].Volume)
		dvol := bars[i].Close * vol
		f["vol1"] = vol
		f["dvol1"] = dvol

		volStats.Push(vol)
		dvolStats.Push(dvol)

		if volStats.Full() {
			f["relvol_60"] = rolling.SafeDivide(vol, volStats.Mean())
			f["vol_z_60"] = volStats.ZScore(vol)
		} else {
			f["relvol_60"] = math.NaN()
			f["vol_z_60"] = math.NaN()
		}

		if dvolStats.Full() {
			f["dvol_z_60"] = dvolStats.ZScore(dvol)
		} else {
			f["dvol_z_60"] = math.NaN()
		}
	}
}
