package model

import "time"

// Bar is one OHLCV record for a ticker at a timeframe.
// ID is the store-assigned primary key, unique and monotonic per
// (ticker, timeframe). Timestamp is UTC epoch seconds.
type Bar struct {
	ID        int64   `json:"id"`
	TickerID  int64   `json:"ticker_id"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    int64   `json:"volume"`
	Timestamp int64   `json:"timestamp"`
}

// Time returns the bar timestamp as UTC time.
func (b *Bar) Time() time.Time {
	return time.Unix(b.Timestamp, 0).UTC()
}

// Ticker identifies a tradable instrument. A zero ID means "not found".
type Ticker struct {
	ID     int64  `json:"id"`
	Symbol string `json:"symbol"`
}
