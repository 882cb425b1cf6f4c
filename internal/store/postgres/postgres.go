// Package postgres implements the bar/feature store on PostgreSQL using a
// pgx connection pool. The pool is safe for concurrent use by the sweep and
// listener; reconnects are handled inside the pool.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mandeep1729/algomatic-state/internal/model"
)

// Store implements model.BarStore on PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a connection pool for the given DSN and verifies connectivity.
func New(ctx context.Context, dsn string) (*Store, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	log.Printf("[postgres] connected: %s", config.ConnConfig.Host)
	return &Store{pool: pool}, nil
}

// ReadBars returns bars for (ticker, timeframe) ordered by timestamp.
// start/end bound by epoch seconds; zero means unbounded.
func (s *Store) ReadBars(ctx context.Context, tickerID int64, timeframe string, start, end int64) ([]model.Bar, error) {
	query := `SELECT id, ticker_id, EXTRACT(EPOCH FROM timestamp)::bigint,
			open, high, low, close, volume
		FROM ohlcv_bars
		WHERE ticker_id = $1 AND timeframe = $2`
	args := []any{tickerID, timeframe}
	if start > 0 {
		args = append(args, start)
		query += fmt.Sprintf(" AND timestamp >= to_timestamp($%d)", len(args))
	}
	if end > 0 {
		args = append(args, end)
		query += fmt.Sprintf(" AND timestamp < to_timestamp($%d)", len(args))
	}
	query += " ORDER BY timestamp ASC"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("read bars: %w", err)
	}
	defer rows.Close()

	var bars []model.Bar
	for rows.Next() {
		var b model.Bar
		if err := rows.Scan(&b.ID, &b.TickerID, &b.Timestamp, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			return nil, fmt.Errorf("scan bar: %w", err)
		}
		bars = append(bars, b)
	}
	return bars, rows.Err()
}

// ExistingFeatureBarIDs returns the bar ids that already have persisted
// features for (ticker, timeframe).
func (s *Store) ExistingFeatureBarIDs(ctx context.Context, tickerID int64, timeframe string, start, end int64) (map[int64]struct{}, error) {
	query := `SELECT bar_id FROM computed_features WHERE ticker_id = $1 AND timeframe = $2`
	args := []any{tickerID, timeframe}
	if start > 0 {
		args = append(args, start)
		query += fmt.Sprintf(" AND timestamp >= to_timestamp($%d)", len(args))
	}
	if end > 0 {
		args = append(args, end)
		query += fmt.Sprintf(" AND timestamp < to_timestamp($%d)", len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("read feature bar ids: %w", err)
	}
	defer rows.Close()

	ids := make(map[int64]struct{})
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan feature bar id: %w", err)
		}
		ids[id] = struct{}{}
	}
	return ids, rows.Err()
}

// ActiveTickers lists tickers enabled for the periodic sweep.
func (s *Store) ActiveTickers(ctx context.Context) ([]model.Ticker, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, symbol FROM tickers WHERE is_active = true ORDER BY symbol`)
	if err != nil {
		return nil, fmt.Errorf("read active tickers: %w", err)
	}
	defer rows.Close()

	var tickers []model.Ticker
	for rows.Next() {
		var t model.Ticker
		if err := rows.Scan(&t.ID, &t.Symbol); err != nil {
			return nil, fmt.Errorf("scan ticker: %w", err)
		}
		tickers = append(tickers, t)
	}
	return tickers, rows.Err()
}

// TickerBySymbol resolves a symbol; a missing symbol returns Ticker{ID: 0}.
func (s *Store) TickerBySymbol(ctx context.Context, symbol string) (model.Ticker, error) {
	var t model.Ticker
	err := s.pool.QueryRow(ctx,
		`SELECT id, symbol FROM tickers WHERE symbol = $1`, symbol).Scan(&t.ID, &t.Symbol)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Ticker{}, nil
	}
	if err != nil {
		return model.Ticker{}, fmt.Errorf("ticker lookup %q: %w", symbol, err)
	}
	return t, nil
}

// UpsertFeatures writes feature rows keyed by bar id using a pipelined batch.
// Non-finite feature values are dropped by the JSON encoding. Returns the sum
// of affected rows.
func (s *Store) UpsertFeatures(ctx context.Context, results []model.FeatureResult, tickerID int64, timeframe, featureVersion string) (int64, error) {
	if len(results) == 0 {
		return 0, nil
	}

	const upsert = `
		INSERT INTO computed_features
			(bar_id, ticker_id, timeframe, timestamp, features, feature_version, created_at)
		VALUES ($1, $2, $3,
			(SELECT timestamp FROM ohlcv_bars WHERE id = $1),
			$4::jsonb, $5, NOW())
		ON CONFLICT (bar_id) DO UPDATE SET
			features = EXCLUDED.features,
			feature_version = EXCLUDED.feature_version`

	batch := &pgx.Batch{}
	for _, r := range results {
		payload, err := json.Marshal(r.Features)
		if err != nil {
			return 0, fmt.Errorf("encode features for bar %d: %w", r.BarID, err)
		}
		batch.Queue(upsert, r.BarID, tickerID, timeframe, string(payload), featureVersion)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	var affected int64
	for range results {
		tag, err := br.Exec()
		if err != nil {
			return affected, fmt.Errorf("upsert features: %w", err)
		}
		affected += tag.RowsAffected()
	}
	return affected, nil
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close closes the connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}
