package feature

import (
	"math"

	"github.com/mandeep1729/algomatic-state/internal/model"
	"github.com/mandeep1729/algomatic-state/internal/rolling"
)

// Anchor computes price-relative-to-anchor features: rolling VWAP and the
// distance to it, distance to a 48-bar EMA, and breakout/pullback measures
// against the 20-bar high.
type Anchor struct {
	vwapWindow     int
	emaPeriod      int
	breakoutWindow int
}

// NewAnchor creates the anchor calculator (VWAP 60, EMA 48, breakout 20).
func NewAnchor() *Anchor {
	return &Anchor{vwapWindow: 60, emaPeriod: 48, breakoutWindow: 20}
}

func (a *Anchor) Name() string { return "anchor" }

func (a *Anchor) Compute(bars []model.Bar, results []model.FeatureResult) {
	tpVol := rolling.NewSum(a.vwapWindow)
	volSum := rolling.NewSum(a.vwapWindow)
	ema := rolling.NewEMA(a.emaPeriod)
	highMax := rolling.NewMax(a.breakoutWindow)

	for i := range bars {
		f := results[i].Features
		h, l, c := bars[i].High, bars[i].Low, bars[i].Close
		v := float64(bars[i].Volume)

		typical := (h + l + c) / 3.0

		tpVol.Push(typical * v)
		volSum.Push(v)
		vwap := math.NaN()
		if tpVol.Full() && volSum.Sum() > 0 {
			vwap = tpVol.Sum() / volSum.Sum()
		}
		f["vwap_60"] = vwap

		if rolling.Valid(vwap) && c > 0 {
			f["dist_vwap_60"] = rolling.SafeDivide(c-vwap, c)
		} else {
			f["dist_vwap_60"] = math.NaN()
		}

		e48 := ema.Update(c)
		if i >= a.emaPeriod-1 && c > 0 {
			f["dist_ema_48"] = rolling.SafeDivide(c-e48, c)
		} else {
			f["dist_ema_48"] = math.NaN()
		}

		highMax.Push(h)
		if highMax.Full() && c > 0 {
			h20 := highMax.Max()
			f["breakout_20"] = rolling.SafeDivide(c-h20, c)
			if h20 > 0 {
				f["pullback_depth"] = rolling.SafeDivide(h20-c, h20)
			} else {
				f["pullback_depth"] = math.NaN()
			}
		} else {
			f["breakout_20"] = math.NaN()
			f["pullback_depth"] = math.NaN()
		}
	}
}
