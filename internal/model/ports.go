package model

import "context"

// ── Collaborator Port Interfaces ──
// These interfaces decouple the compute coordinator from concrete backends
// (Postgres, SQLite, Redis). Each implementation satisfies one of these.

// BarStore reads bar history and persists computed feature vectors.
// start/end bound the query by epoch seconds; zero means unbounded.
type BarStore interface {
	// ReadBars returns bars for (ticker, timeframe) ordered by timestamp ASC.
	ReadBars(ctx context.Context, tickerID int64, timeframe string, start, end int64) ([]Bar, error)

	// ExistingFeatureBarIDs returns the set of bar IDs that already have
	// persisted features for (ticker, timeframe).
	ExistingFeatureBarIDs(ctx context.Context, tickerID int64, timeframe string, start, end int64) (map[int64]struct{}, error)

	// ActiveTickers lists tickers enabled for the periodic sweep.
	ActiveTickers(ctx context.Context) ([]Ticker, error)

	// TickerBySymbol resolves a symbol. A missing symbol is not an error:
	// the returned Ticker has ID 0.
	TickerBySymbol(ctx context.Context, symbol string) (Ticker, error)

	// UpsertFeatures writes feature vectors keyed by bar ID (idempotent:
	// rewriting a bar ID replaces its feature map). Non-finite values are
	// dropped before persisting. Returns the number of rows affected.
	UpsertFeatures(ctx context.Context, results []FeatureResult, tickerID int64, timeframe, featureVersion string) (int64, error)

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases underlying resources.
	Close() error
}

// MessageBus publishes events and consumes inbound requests.
type MessageBus interface {
	// Publish sends a payload on a channel.
	Publish(ctx context.Context, channel string, payload []byte) error

	// Subscribe blocks, invoking handler once per inbound message, until ctx
	// is cancelled. A panic inside the handler is recovered and logged; the
	// subscription keeps receiving.
	Subscribe(ctx context.Context, channel string, handler func(channel string, payload []byte)) error

	// ChannelFor returns the namespaced channel name for an event type.
	ChannelFor(eventType string) string

	// Close releases underlying resources.
	Close() error
}
