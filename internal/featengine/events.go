package featengine

// Event types exchanged on the message bus.
const (
	EventComputeRequest  = "indicator_compute_request"
	EventComputeComplete = "indicator_compute_complete"
	EventComputeFailed   = "indicator_compute_failed"
)

// sourceName identifies this service in outbound events.
const sourceName = "feature-engine"

// defaultTimeframe is assumed when a request omits the timeframe.
const defaultTimeframe = "5Min"

type requestPayload struct {
	Symbol    string `json:"symbol"`
	Timeframe string `json:"timeframe"`
}

// computeRequest is the inbound message on the request channel.
type computeRequest struct {
	Payload       requestPayload `json:"payload"`
	CorrelationID string         `json:"correlation_id"`
}

type completePayload struct {
	Symbol       string `json:"symbol"`
	Timeframe    string `json:"timeframe"`
	BarsComputed int64  `json:"bars_computed"`
	BarsSkipped  int64  `json:"bars_skipped"`
}

// completeEvent is published after a request has been computed.
type completeEvent struct {
	EventType     string          `json:"event_type"`
	Payload       completePayload `json:"payload"`
	Source        string          `json:"source"`
	CorrelationID string          `json:"correlation_id"`
}

type failedPayload struct {
	Symbol string `json:"symbol"`
	Error  string `json:"error"`
}

// failedEvent is published when a request cannot be served.
type failedEvent struct {
	EventType     string        `json:"event_type"`
	Payload       failedPayload `json:"payload"`
	Source        string        `json:"source"`
	CorrelationID string        `json:"correlation_id"`
}
