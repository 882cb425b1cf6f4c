package feature

import (
	"math"
	"testing"

	"github.com/mandeep1729/algomatic-state/internal/model"
)

func TestVolatilityBoundaries(t *testing.T) {
	bars := makeBars(150)
	results := emptyResults(bars)
	r1 := NewReturns().Compute(bars, results)
	NewVolatility().Compute(bars, results, r1)

	boundaries := []struct {
		name  string
		first int
	}{
		{"rv_15", 15},  // 15 valid r1 samples, first at i=1
		{"rv_60", 60},
		{"range_1", 0},
		{"atr_60", 59},
		{"range_z_60", 59},
		{"vol_of_vol", 74}, // 60 rv_15 samples, first at i=15
	}
	for _, b := range boundaries {
		if b.first > 0 {
			if v := results[b.first-1].Features[b.name]; !math.IsNaN(v) {
				t.Errorf("%s at index %d: got %v, want NaN", b.name, b.first-1, v)
			}
		}
		if v := results[b.first].Features[b.name]; math.IsNaN(v) {
			t.Errorf("%s at index %d: got NaN, want defined", b.name, b.first)
		}
	}

	// range_1 is the normalized bar range.
	want := (bars[0].High - bars[0].Low) / bars[0].Close
	assertClose(t, "range_1", results[0].Features["range_1"], want, 1e-6)
}

func TestVolumeFeatures(t *testing.T) {
	bars := makeBars(100)
	results := emptyResults(bars)
	NewVolume().Compute(bars, results)

	f0 := results[0].Features
	assertClose(t, "vol1", f0["vol1"], float64(bars[0].Volume), 0)
	assertClose(t, "dvol1", f0["dvol1"], bars[0].Close*float64(bars[0].Volume), 1e-9)

	for _, name := range []string{"relvol_60", "vol_z_60", "dvol_z_60"} {
		if v := results[58].Features[name]; !math.IsNaN(v) {
			t.Errorf("%s at index 58: got %v, want NaN", name, v)
		}
		if v := results[59].Features[name]; math.IsNaN(v) {
			t.Errorf("%s at index 59: got NaN, want defined", name)
		}
	}
}

func TestVolumeConstantSeries(t *testing.T) {
	bars := makeBars(80)
	for i := range bars {
		bars[i].Volume = 5000
	}
	results := emptyResults(bars)
	NewVolume().Compute(bars, results)

	// Constant volume: relative volume ~1, z-score ~0, both finite.
	f := results[70].Features
	assertClose(t, "relvol_60", f["relvol_60"], 1.0, 1e-6)
	if math.IsNaN(f["vol_z_60"]) || math.IsInf(f["vol_z_60"], 0) {
		t.Errorf("vol_z_60 on constant volume: got %v, want finite", f["vol_z_60"])
	}
}

func TestIntrabarWickPartition(t *testing.T) {
	bars := makeBars(200)
	results := emptyResults(bars)
	NewIntrabar().Compute(bars, results)

	for i := range results {
		f := results[i].Features
		sum := f["upper_wick"] + f["body_ratio"] + f["lower_wick"]
		if math.Abs(sum-1.0) > 0.01 {
			t.Fatalf("bar %d: wick+body sum %.6f, want ~1", i, sum)
		}
		if f["clv"] < 0 || f["clv"] > 1 {
			t.Fatalf("bar %d: clv %.6f out of [0,1]", i, f["clv"])
		}
	}
}

func TestIntrabarZeroRange(t *testing.T) {
	bars := makeBars(1)
	bars[0].Open = 100
	bars[0].High = 100
	bars[0].Low = 100
	bars[0].Close = 100
	results := emptyResults(bars)
	NewIntrabar().Compute(bars, results)

	// Zero-range bar: everything finite via the epsilon range.
	for _, name := range []string{"clv", "body_ratio", "upper_wick", "lower_wick"} {
		v := results[0].Features[name]
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Errorf("%s on zero-range bar: got %v, want finite", name, v)
		}
	}
}

func TestAnchorBoundaries(t *testing.T) {
	bars := makeBars(100)
	results := emptyResults(bars)
	NewAnchor().Compute(bars, results)

	boundaries := []struct {
		name  string
		first int
	}{
		{"vwap_60", 59},
		{"dist_vwap_60", 59},
		{"dist_ema_48", 47},
		{"breakout_20", 19},
		{"pullback_depth", 19},
	}
	for _, b := range boundaries {
		if v := results[b.first-1].Features[b.name]; !math.IsNaN(v) {
			t.Errorf("%s at index %d: got %v, want NaN", b.name, b.first-1, v)
		}
		if v := results[b.first].Features[b.name]; math.IsNaN(v) {
			t.Errorf("%s at index %d: got NaN, want defined", b.name, b.first)
		}
	}
}

func TestAnchorFlatSeries(t *testing.T) {
	bars := makeBars(80)
	for i := range bars {
		bars[i].Open = 50
		bars[i].High = 50
		bars[i].Low = 50
		bars[i].Close = 50
	}
	results := emptyResults(bars)
	NewAnchor().Compute(bars, results)

	f := results[70].Features
	assertClose(t, "vwap_60", f["vwap_60"], 50.0, 1e-9)
	assertClose(t, "dist_vwap_60", f["dist_vwap_60"], 0.0, 1e-9)
	assertClose(t, "breakout_20", f["breakout_20"], 0.0, 1e-9)
	assertClose(t, "pullback_depth", f["pullback_depth"], 0.0, 1e-9)
}

func TestTimeOfDayEncoding(t *testing.T) {
	session := DefaultSession()
	// 2024-01-02, a Tuesday. Clock times chosen inside and around the session.
	mk := func(hour, minute int) model.Bar {
		ts := int64(1704153600) + int64(hour)*3600 + int64(minute)*60
		return model.Bar{ID: 1, Close: 100, High: 100, Low: 100, Timestamp: ts}
	}

	cases := []struct {
		hour, minute                   int
		sin, cos                       float64
		openW, closeW, midday          float64
	}{
		{9, 30, 0, 1, 1, 0, 0},                   // session open
		{9, 59, math.NaN(), math.NaN(), 1, 0, 0}, // still in open window
		{11, 30, math.NaN(), math.NaN(), 0, 0, 1}, // 120 min in, midday
		{15, 30, math.NaN(), math.NaN(), 0, 1, 0}, // last hour
		{8, 0, 0, 1, 1, 0, 0},                    // pre-open clamps to 0
		{17, 0, math.NaN(), math.NaN(), 0, 1, 0},  // post-close clamps to 390
	}
	for _, c := range cases {
		bars := []model.Bar{mk(c.hour, c.minute)}
		results := emptyResults(bars)
		NewTimeOfDay(session).Compute(bars, results)
		f := results[0].Features

		if !math.IsNaN(c.sin) {
			assertClose(t, "tod_sin", f["tod_sin"], c.sin, 1e-9)
			assertClose(t, "tod_cos", f["tod_cos"], c.cos, 1e-9)
		}
		if f["tod_sin"] < -1 || f["tod_sin"] > 1 || f["tod_cos"] < -1 || f["tod_cos"] > 1 {
			t.Errorf("%02d:%02d: encoding out of [-1,1]", c.hour, c.minute)
		}
		if f["is_open_window"] != c.openW {
			t.Errorf("%02d:%02d: is_open_window=%v, want %v", c.hour, c.minute, f["is_open_window"], c.openW)
		}
		if f["is_close_window"] != c.closeW {
			t.Errorf("%02d:%02d: is_close_window=%v, want %v", c.hour, c.minute, f["is_close_window"], c.closeW)
		}
		if f["is_midday"] != c.midday {
			t.Errorf("%02d:%02d: is_midday=%v, want %v", c.hour, c.minute, f["is_midday"], c.midday)
		}
	}
}
