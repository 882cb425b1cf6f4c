// Package sqlite implements the bar/feature store on a local SQLite file.
// Single-writer with WAL mode; suited to single-node deployments.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"

	_ "github.com/mattn/go-sqlite3"

	"github.com/mandeep1729/algomatic-state/internal/model"
)

// Store implements model.BarStore on SQLite.
type Store struct {
	db *sql.DB
}

// New opens (and if needed creates) the database at path.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}

	// Single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite schema: %w", err)
	}

	log.Printf("[sqlite] opened database at %s", path)
	return &Store{db: db}, nil
}

func createSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS tickers (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			symbol    TEXT    NOT NULL UNIQUE,
			is_active INTEGER NOT NULL DEFAULT 1
		);

		CREATE TABLE IF NOT EXISTS ohlcv_bars (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			ticker_id INTEGER NOT NULL,
			timeframe TEXT    NOT NULL,
			ts        INTEGER NOT NULL,
			open      REAL    NOT NULL,
			high      REAL    NOT NULL,
			low       REAL    NOT NULL,
			close     REAL    NOT NULL,
			volume    INTEGER NOT NULL,
			UNIQUE (ticker_id, timeframe, ts)
		);

		CREATE TABLE IF NOT EXISTS computed_features (
			bar_id          INTEGER PRIMARY KEY,
			ticker_id       INTEGER NOT NULL,
			timeframe       TEXT    NOT NULL,
			ts              INTEGER,
			features        TEXT    NOT NULL,
			feature_version TEXT    NOT NULL,
			created_at      INTEGER NOT NULL DEFAULT (strftime('%s', 'now'))
		);
		CREATE INDEX IF NOT EXISTS idx_features_ticker_tf
			ON computed_features (ticker_id, timeframe);
	`)
	return err
}

// ReadBars returns bars for (ticker, timeframe) ordered by timestamp.
// start/end bound by epoch seconds; zero means unbounded.
func (s *Store) ReadBars(ctx context.Context, tickerID int64, timeframe string, start, end int64) ([]model.Bar, error) {
	query := `SELECT id, ticker_id, ts, open, high, low, close, volume
		FROM ohlcv_bars WHERE ticker_id = ? AND timeframe = ?`
	args := []any{tickerID, timeframe}
	if start > 0 {
		query += " AND ts >= ?"
		args = append(args, start)
	}
	if end > 0 {
		query += " AND ts < ?"
		args = append(args, end)
	}
	query += " ORDER BY ts ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite read bars: %w", err)
	}
	defer rows.Close()

	var bars []model.Bar
	for rows.Next() {
		var b model.Bar
		if err := rows.Scan(&b.ID, &b.TickerID, &b.Timestamp, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			return nil, fmt.Errorf("sqlite scan bar: %w", err)
		}
		bars = append(bars, b)
	}
	return bars, rows.Err()
}

// ExistingFeatureBarIDs returns the bar ids that already have persisted
// features for (ticker, timeframe).
func (s *Store) ExistingFeatureBarIDs(ctx context.Context, tickerID int64, timeframe string, start, end int64) (map[int64]struct{}, error) {
	query := `SELECT bar_id FROM computed_features WHERE ticker_id = ? AND timeframe = ?`
	args := []any{tickerID, timeframe}
	if start > 0 {
		query += " AND ts >= ?"
		args = append(args, start)
	}
	if end > 0 {
		query += " AND ts < ?"
		args = append(args, end)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite read feature ids: %w", err)
	}
	defer rows.Close()

	ids := make(map[int64]struct{})
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("sqlite scan feature id: %w", err)
		}
		ids[id] = struct{}{}
	}
	return ids, rows.Err()
}

// ActiveTickers lists tickers enabled for the periodic sweep.
func (s *Store) ActiveTickers(ctx context.Context) ([]model.Ticker, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, symbol FROM tickers WHERE is_active = 1 ORDER BY symbol`)
	if err != nil {
		return nil, fmt.Errorf("sqlite read tickers: %w", err)
	}
	defer rows.Close()

	var tickers []model.Ticker
	for rows.Next() {
		var t model.Ticker
		if err := rows.Scan(&t.ID, &t.Symbol); err != nil {
			return nil, fmt.Errorf("sqlite scan ticker: %w", err)
		}
		tickers = append(tickers, t)
	}
	return tickers, rows.Err()
}

// TickerBySymbol resolves a symbol; a missing symbol returns Ticker{ID: 0}.
func (s *Store) TickerBySymbol(ctx context.Context, symbol string) (model.Ticker, error) {
	var t model.Ticker
	err := s.db.QueryRowContext(ctx,
		`SELECT id, symbol FROM tickers WHERE symbol = ?`, symbol).Scan(&t.ID, &t.Symbol)
	if err == sql.ErrNoRows {
		return model.Ticker{}, nil
	}
	if err != nil {
		return model.Ticker{}, fmt.Errorf("sqlite ticker lookup: %w", err)
	}
	return t, nil
}

// UpsertFeatures writes feature rows keyed by bar id in one transaction.
// Non-finite feature values are dropped by the JSON encoding.
func (s *Store) UpsertFeatures(ctx context.Context, results []model.FeatureResult, tickerID int64, timeframe, featureVersion string) (int64, error) {
	if len(results) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("sqlite begin: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO computed_features
			(bar_id, ticker_id, timeframe, ts, features, feature_version)
		VALUES (?, ?, ?, (SELECT ts FROM ohlcv_bars WHERE id = ?), ?, ?)
	`)
	if err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("sqlite prepare upsert: %w", err)
	}
	defer stmt.Close()

	var affected int64
	for _, r := range results {
		payload, err := json.Marshal(r.Features)
		if err != nil {
			tx.Rollback()
			return 0, fmt.Errorf("encode features for bar %d: %w", r.BarID, err)
		}
		res, err := stmt.ExecContext(ctx, r.BarID, tickerID, timeframe, r.BarID, string(payload), featureVersion)
		if err != nil {
			tx.Rollback()
			return 0, fmt.Errorf("sqlite upsert bar %d: %w", r.BarID, err)
		}
		n, _ := res.RowsAffected()
		affected += n
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("sqlite commit: %w", err)
	}
	return affected, nil
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
