package feature

import (
	"github.com/mandeep1729/algomatic-state/internal/model"
)

// Pipeline composes the calculators in their fixed dependency order:
// Returns → Volatility → Volume → Intrabar → Anchor → TimeOfDay → bank.
// Returns runs first because Volatility consumes its r1 series; the remaining
// stages are independent of one another.
//
// Compute is a pure function of the input bars. All rolling state is created
// inside the calculators per call, so a Pipeline is safe for concurrent use.
type Pipeline struct {
	returns    *Returns
	volatility *Volatility
	stages     []Calculator
}

// NewPipeline builds the standard pipeline. The bank stage is selected by
// enableBank (real indicator bank vs. all-NaN fallback).
func NewPipeline(session SessionConfig, enableBank bool) *Pipeline {
	return &Pipeline{
		returns:    NewReturns(),
		volatility: NewVolatility(),
		stages: []Calculator{
			NewVolume(),
			NewIntrabar(),
			NewAnchor(),
			NewTimeOfDay(session),
			NewBank(enableBank),
		},
	}
}

// Compute runs every stage over bars and returns one FeatureResult per bar,
// positionally aligned: results[i].BarID == bars[i].ID. Empty input yields an
// empty result with no stage invoked.
func (p *Pipeline) Compute(bars []model.Bar) []model.FeatureResult {
	results := make([]model.FeatureResult, len(bars))
	if len(bars) == 0 {
		return results
	}
	for i := range bars {
		results[i] = model.FeatureResult{
			BarID:    bars[i].ID,
			Features: make(model.Features),
		}
	}

	r1 := p.returns.Compute(bars, results)
	p.volatility.Compute(bars, results, r1)
	for _, stage := range p.stages {
		stage.Compute(bars, results)
	}
	return results
}
