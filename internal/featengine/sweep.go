package featengine

import (
	"context"
	"log"
	"time"
)

// runSweep periodically enumerates active tickers × configured timeframes
// and invokes the coordinator for each pair. Timing is self-correcting: each
// iteration sleeps only the remainder of the interval, and a zero or negative
// remainder starts the next iteration immediately.
func (s *Service) runSweep(ctx context.Context) {
	interval := time.Duration(s.cfg.IntervalMinutes) * time.Minute
	log.Printf("[featengine] sweep loop started (interval=%dmin, timeframes=%v)",
		s.cfg.IntervalMinutes, s.cfg.Timeframes)

	for {
		start := time.Now()
		s.sweepOnce(ctx)

		if ctx.Err() != nil {
			log.Println("[featengine] sweep loop stopped")
			return
		}

		remaining := interval - time.Since(start)
		if remaining > 0 {
			select {
			case <-ctx.Done():
				log.Println("[featengine] sweep loop stopped")
				return
			case <-time.After(remaining):
			}
		}
	}
}

// sweepOnce processes every (ticker, timeframe) pair sequentially. Per-pair
// errors are logged and the sweep moves on; they are retried naturally on the
// next interval.
func (s *Service) sweepOnce(ctx context.Context) {
	start := time.Now()

	tickers, err := s.store.ActiveTickers(ctx)
	if err != nil {
		log.Printf("[featengine] sweep error: active tickers: %v", err)
		if s.prom != nil {
			s.prom.SweepErrors.Inc()
		}
		return
	}
	log.Printf("[featengine] sweeping %d active tickers", len(tickers))

	var totalComputed, totalSkipped int64
	for _, ticker := range tickers {
		for _, tf := range s.cfg.Timeframes {
			if ctx.Err() != nil {
				return
			}
			stats, err := s.coord.ComputeForTicker(ctx, ticker.ID, tf)
			if err != nil {
				log.Printf("[featengine] sweep error: %s %s: %v", ticker.Symbol, tf, err)
				if s.prom != nil {
					s.prom.SweepErrors.Inc()
				}
				continue
			}
			totalComputed += stats.BarsComputed
			totalSkipped += stats.BarsSkipped
		}
	}

	elapsed := time.Since(start)
	log.Printf("[featengine] sweep complete: %d computed, %d skipped, %dms",
		totalComputed, totalSkipped, elapsed.Milliseconds())
	if s.prom != nil {
		s.prom.SweepsTotal.Inc()
		s.prom.SweepDur.Observe(elapsed.Seconds())
	}
}
