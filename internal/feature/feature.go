// Package feature turns OHLCV bar history into named per-bar feature values.
//
// Calculators are composed by Pipeline in a fixed order. Each calculator makes
// one pass over the bar sequence and writes its features into the shared
// result slice; the i-th result always corresponds to the i-th bar. Rolling
// state lives only for the duration of one Compute call.
package feature

import "github.com/mandeep1729/algomatic-state/internal/model"

// Calculator is one pipeline stage. Compute reads the full bar sequence and
// writes feature values into results, which is pre-sized to len(bars).
type Calculator interface {
	// Name identifies the stage in logs.
	Name() string

	// Compute fills results[i].Features for every bar. It must not reorder,
	// drop, or append results.
	Compute(bars []model.Bar, results []model.FeatureResult)
}
