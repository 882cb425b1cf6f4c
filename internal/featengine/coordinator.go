package featengine

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mandeep1729/algomatic-state/internal/feature"
	"github.com/mandeep1729/algomatic-state/internal/metrics"
	"github.com/mandeep1729/algomatic-state/internal/model"
)

// writeBatchSize bounds one store upsert. Smaller batches reduce transaction
// memory pressure and allow incremental commits.
const writeBatchSize = 5000

// ComputeStats summarizes one coordinator invocation.
// BarsSkipped is the number of bars that already had persisted features,
// regardless of how many were missing.
type ComputeStats struct {
	BarsComputed int64
	BarsSkipped  int64
}

// Coordinator fills feature gaps per (ticker, timeframe): it diffs the bar
// history against the persisted feature set, runs the pipeline over the full
// history (rolling windows need the complete lookback), and persists only the
// missing slice in bounded batches.
type Coordinator struct {
	store          model.BarStore
	pipeline       *feature.Pipeline
	featureVersion string
	prom           *metrics.Metrics // optional
	inflight       *keyedMutex
}

// NewCoordinator creates a Coordinator. prom may be nil.
func NewCoordinator(store model.BarStore, pipeline *feature.Pipeline, featureVersion string, prom *metrics.Metrics) *Coordinator {
	return &Coordinator{
		store:          store,
		pipeline:       pipeline,
		featureVersion: featureVersion,
		prom:           prom,
		inflight:       newKeyedMutex(),
	}
}

// ComputeForTicker brings the feature store up to date for one
// (ticker, timeframe) pair and reports what it did. Concurrent calls for the
// same pair are serialized.
func (c *Coordinator) ComputeForTicker(ctx context.Context, tickerID int64, timeframe string) (ComputeStats, error) {
	unlock := c.inflight.Lock(fmt.Sprintf("%d:%s", tickerID, timeframe))
	defer unlock()

	var stats ComputeStats

	bars, err := c.store.ReadBars(ctx, tickerID, timeframe, 0, 0)
	if err != nil {
		return stats, fmt.Errorf("read bars ticker=%d tf=%s: %w", tickerID, timeframe, err)
	}
	if len(bars) == 0 {
		return stats, nil
	}

	existing, err := c.store.ExistingFeatureBarIDs(ctx, tickerID, timeframe, 0, 0)
	if err != nil {
		return stats, fmt.Errorf("read feature ids ticker=%d tf=%s: %w", tickerID, timeframe, err)
	}
	stats.BarsSkipped = int64(len(existing))

	missing := make(map[int64]struct{})
	for _, b := range bars {
		if _, ok := existing[b.ID]; !ok {
			missing[b.ID] = struct{}{}
		}
	}
	if len(missing) == 0 {
		return stats, nil
	}

	log.Printf("[featengine] ticker=%d tf=%s: computing %d missing bars (of %d total)",
		tickerID, timeframe, len(missing), len(bars))

	// Full-history run: the missing bars need their preceding lookback.
	computeStart := time.Now()
	results := c.pipeline.Compute(bars)
	if c.prom != nil {
		c.prom.ComputeDur.Observe(time.Since(computeStart).Seconds())
	}

	toWrite := make([]model.FeatureResult, 0, len(missing))
	for _, r := range results {
		if _, ok := missing[r.BarID]; ok {
			toWrite = append(toWrite, r)
		}
	}

	for i := 0; i < len(toWrite); i += writeBatchSize {
		end := i + writeBatchSize
		if end > len(toWrite) {
			end = len(toWrite)
		}

		upsertStart := time.Now()
		written, err := c.store.UpsertFeatures(ctx, toWrite[i:end], tickerID, timeframe, c.featureVersion)
		if c.prom != nil {
			c.prom.UpsertDur.Observe(time.Since(upsertStart).Seconds())
		}
		if err != nil {
			return stats, fmt.Errorf("upsert features ticker=%d tf=%s: %w", tickerID, timeframe, err)
		}
		stats.BarsComputed += written
	}

	if c.prom != nil {
		c.prom.BarsComputed.Add(float64(stats.BarsComputed))
		c.prom.BarsSkipped.Add(float64(stats.BarsSkipped))
	}
	return stats, nil
}
