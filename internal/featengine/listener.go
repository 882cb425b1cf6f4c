package featengine

import (
	"context"
	"encoding/json"
	"log"
)

// runListener blocks on the compute-request channel until ctx is cancelled.
// Messages are handled one at a time; handler errors never terminate the
// subscription.
func (s *Service) runListener(ctx context.Context) error {
	channel := s.bus.ChannelFor(EventComputeRequest)
	log.Printf("[featengine] listener started on channel %s", channel)

	return s.bus.Subscribe(ctx, channel, func(_ string, payload []byte) {
		s.handleComputeRequest(ctx, payload)
	})
}

// handleComputeRequest resolves the requested symbol, runs the coordinator,
// and publishes a completion or failure event. An unknown ticker is a defined
// business outcome, not an error: it always yields a failure event.
func (s *Service) handleComputeRequest(ctx context.Context, payload []byte) {
	if s.prom != nil {
		s.prom.RequestsTotal.Inc()
	}

	var req computeRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		log.Printf("[featengine] malformed compute request: %v", err)
		return
	}
	if req.Payload.Timeframe == "" {
		req.Payload.Timeframe = defaultTimeframe
	}
	log.Printf("[featengine] compute request: symbol=%s tf=%s correlation_id=%s",
		req.Payload.Symbol, req.Payload.Timeframe, req.CorrelationID)

	ticker, err := s.store.TickerBySymbol(ctx, req.Payload.Symbol)
	if err != nil {
		log.Printf("[featengine] ticker lookup failed: %v", err)
		s.publishFailure(ctx, req, err.Error())
		return
	}
	if ticker.ID == 0 {
		log.Printf("[featengine] ticker not found: %s", req.Payload.Symbol)
		s.publishFailure(ctx, req, "Ticker not found")
		return
	}

	stats, err := s.coord.ComputeForTicker(ctx, ticker.ID, req.Payload.Timeframe)
	if err != nil {
		log.Printf("[featengine] compute failed: %s %s: %v",
			req.Payload.Symbol, req.Payload.Timeframe, err)
		s.publishFailure(ctx, req, err.Error())
		return
	}

	s.publishEvent(ctx, EventComputeComplete, completeEvent{
		EventType: EventComputeComplete,
		Payload: completePayload{
			Symbol:       req.Payload.Symbol,
			Timeframe:    req.Payload.Timeframe,
			BarsComputed: stats.BarsComputed,
			BarsSkipped:  stats.BarsSkipped,
		},
		Source:        sourceName,
		CorrelationID: req.CorrelationID,
	})
	log.Printf("[featengine] compute complete: symbol=%s computed=%d skipped=%d",
		req.Payload.Symbol, stats.BarsComputed, stats.BarsSkipped)
}

func (s *Service) publishFailure(ctx context.Context, req computeRequest, reason string) {
	if s.prom != nil {
		s.prom.RequestFailures.Inc()
	}
	s.publishEvent(ctx, EventComputeFailed, failedEvent{
		EventType:     EventComputeFailed,
		Payload:       failedPayload{Symbol: req.Payload.Symbol, Error: reason},
		Source:        sourceName,
		CorrelationID: req.CorrelationID,
	})
}

func (s *Service) publishEvent(ctx context.Context, eventType string, event any) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("[featengine] encode %s event: %v", eventType, err)
		return
	}
	if err := s.bus.Publish(ctx, s.bus.ChannelFor(eventType), payload); err != nil {
		log.Printf("[featengine] publish %s event: %v", eventType, err)
	}
}
