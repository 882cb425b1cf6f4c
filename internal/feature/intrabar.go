package feature

import (
	"math"

	"github.com/mandeep1729/algomatic-state/internal/model"
	"github.com/mandeep1729/algomatic-state/internal/rolling"
)

// Intrabar computes per-bar candle-structure ratios: close location value,
// body ratio, and upper/lower wick ratios. The three body/wick segments
// partition the high-low range, so their ratios sum to ~1 for every bar.
type Intrabar struct{}

// NewIntrabar creates the intrabar calculator.
func NewIntrabar() *Intrabar { return &Intrabar{} }

func (in *Intrabar) Name() string { return "intrabar" }

func (in *Intrabar) Compute(bars []model.Bar, results []model.FeatureResult) {
	for i := range bars {
		f := results[i].Features
		o, h, l, c := bars[i].Open, bars[i].High, bars[i].Low, bars[i].Close

		rng := h - l + rolling.Eps

		f["clv"] = (c - l) / rng
		f["body_ratio"] = math.Abs(c-o) / rng
		f["upper_wick"] = (h - math.Max(o, c)) / rng
		f["lower_wick"] = (math.Min(o, c) - l) / rng
	}
}
