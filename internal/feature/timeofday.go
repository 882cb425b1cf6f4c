package feature

import (
	"math"

	"github.com/mandeep1729/algomatic-state/internal/model"
)

// SessionConfig describes the trading session used for time-of-day features.
// Defaults match US equities regular trading hours (09:30 UTC-agnostic clock
// time, 390 minutes).
type SessionConfig struct {
	OpenHour           int
	OpenMinute         int
	TradingMinutes     int
	OpenWindowMinutes  int
	CloseWindowMinutes int
	MiddayStartMinutes int
	MiddayEndMinutes   int
}

// DefaultSession returns the standard 09:30 + 390min session with a 30-minute
// open window, 60-minute close window, and midday band [120, 240].
func DefaultSession() SessionConfig {
	return SessionConfig{
		OpenHour:           9,
		OpenMinute:         30,
		TradingMinutes:     390,
		OpenWindowMinutes:  30,
		CloseWindowMinutes: 60,
		MiddayStartMinutes: 120,
		MiddayEndMinutes:   240,
	}
}

// TimeOfDay computes cyclical session-time encodings (tod_sin/tod_cos) and
// the open/close/midday window flags from each bar's timestamp.
type TimeOfDay struct {
	session SessionConfig
}

// NewTimeOfDay creates the time-of-day calculator for the given session.
func NewTimeOfDay(session SessionConfig) *TimeOfDay {
	return &TimeOfDay{session: session}
}

func (t *TimeOfDay) Name() string { return "time_of_day" }

func (t *TimeOfDay) Compute(bars []model.Bar, results []model.FeatureResult) {
	s := t.session
	openMinutes := s.OpenHour*60 + s.OpenMinute

	for i := range bars {
		f := results[i].Features
		bt := bars[i].Time()

		// Minutes since session open, clamped into the session.
		tod := bt.Hour()*60 + bt.Minute() - openMinutes
		if tod < 0 {
			tod = 0
		}
		if tod > s.TradingMinutes {
			tod = s.TradingMinutes
		}

		norm := float64(tod) / float64(s.TradingMinutes)
		f["tod_sin"] = math.Sin(2 * math.Pi * norm)
		f["tod_cos"] = math.Cos(2 * math.Pi * norm)

		f["is_open_window"] = flag(tod < s.OpenWindowMinutes)
		f["is_close_window"] = flag(tod > s.TradingMinutes-s.CloseWindowMinutes)
		f["is_midday"] = flag(tod >= s.MiddayStartMinutes && tod <= s.MiddayEndMinutes)
	}
}

func flag(b bool) float64 {
	if b {
		return 1.0
	}
	return 0.0
}
