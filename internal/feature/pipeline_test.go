package feature

import (
	"math"
	"testing"
)

// coreFeatureNames are the features produced by the streaming calculators
// (everything except the indicator bank).
var coreFeatureNames = []string{
	"r1", "r5", "r15", "r60", "cumret_60", "ema_diff", "slope_60", "trend_strength",
	"rv_15", "rv_60", "range_1", "atr_60", "range_z_60", "vol_of_vol",
	"vol1", "dvol1", "relvol_60", "vol_z_60", "dvol_z_60",
	"clv", "body_ratio", "upper_wick", "lower_wick",
	"vwap_60", "dist_vwap_60", "dist_ema_48", "breakout_20", "pullback_depth",
	"tod_sin", "tod_cos", "is_open_window", "is_close_window", "is_midday",
}

func TestPipelineEmptyInput(t *testing.T) {
	p := NewPipeline(DefaultSession(), false)
	results := p.Compute(nil)
	if len(results) != 0 {
		t.Fatalf("empty input: got %d results, want 0", len(results))
	}
}

func TestPipelineAlignment(t *testing.T) {
	bars := makeBars(50)
	results := NewPipeline(DefaultSession(), false).Compute(bars)

	if len(results) != len(bars) {
		t.Fatalf("got %d results for %d bars", len(results), len(bars))
	}
	for i := range results {
		if results[i].BarID != bars[i].ID {
			t.Fatalf("result %d carries bar id %d, want %d", i, results[i].BarID, bars[i].ID)
		}
	}
}

func TestPipelineAllCoreFeaturesFinite(t *testing.T) {
	// 200 trending bars: beyond index 100 every core feature has enough
	// lookback and must be a finite number.
	bars := makeBars(200)
	results := NewPipeline(DefaultSession(), false).Compute(bars)

	f := results[100].Features
	for _, name := range coreFeatureNames {
		v, ok := f[name]
		if !ok {
			t.Errorf("%s missing at index 100", name)
			continue
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Errorf("%s at index 100: got %v, want finite", name, v)
		}
	}

	// The disabled bank still contributes its full name set, as NaN.
	for _, name := range BankFeatureNames {
		v, ok := f[name]
		if !ok {
			t.Errorf("bank feature %s missing", name)
			continue
		}
		if !math.IsNaN(v) {
			t.Errorf("disabled bank emitted %s=%v, want NaN", name, v)
		}
	}
}

func TestPipelineIsPure(t *testing.T) {
	bars := makeBars(120)
	p := NewPipeline(DefaultSession(), false)

	first := p.Compute(bars)
	second := p.Compute(bars)
	for i := range first {
		for name, v := range first[i].Features {
			w := second[i].Features[name]
			if v != w && !(math.IsNaN(v) && math.IsNaN(w)) {
				t.Fatalf("run 2 diverges at bar %d feature %s: %v vs %v", i, name, v, w)
			}
		}
	}
}

func TestBankShortHistory(t *testing.T) {
	// Histories shorter than an indicator's lookback must yield NaN for that
	// indicator, never an index fault inside go-talib. Lengths straddle the
	// bank's lookback boundaries (rsi_2=2, rsi_14=14, macd=33, sma_200=199).
	for _, n := range []int{1, 2, 5, 13, 33, 64} {
		bars := makeBars(n)
		results := NewPipeline(DefaultSession(), true).Compute(bars)
		if len(results) != n {
			t.Fatalf("n=%d: got %d results, want %d", n, len(results), n)
		}
		last := results[n-1].Features
		for _, name := range BankFeatureNames {
			if _, ok := last[name]; !ok {
				t.Errorf("n=%d: bank feature %s missing", n, name)
			}
		}
	}

	// With 5 bars rsi_2 has cleared its warm-up while rsi_14 has not.
	f := NewPipeline(DefaultSession(), true).Compute(makeBars(5))[4].Features
	if math.IsNaN(f["rsi_2"]) {
		t.Error("rsi_2 with 5 bars: got NaN, want a value")
	}
	if !math.IsNaN(f["rsi_14"]) {
		t.Errorf("rsi_14 with 5 bars: got %v, want NaN", f["rsi_14"])
	}
}

func TestBankEnabled(t *testing.T) {
	bars := makeBars(250)
	results := NewPipeline(DefaultSession(), true).Compute(bars)

	f13 := results[13].Features
	if !math.IsNaN(f13["rsi_14"]) {
		t.Errorf("rsi_14 inside warm-up: got %v, want NaN", f13["rsi_14"])
	}

	f := results[230].Features
	for _, name := range []string{
		"rsi_14", "macd", "stoch_k", "adx_14", "atr_14", "bb_upper", "bb_width",
		"obv", "vwap", "sma_200", "ichi_senkou_b", "donchian_high_20",
		"atr_sma_50", "obv_sma_20", "volume_sma_20",
	} {
		v := f[name]
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Errorf("%s at index 230: got %v, want finite", name, v)
		}
	}

	// Donchian bounds bracket the close.
	if f["donchian_high_20"] < f["donchian_low_20"] {
		t.Error("donchian_high_20 below donchian_low_20")
	}
	c := bars[230].Close
	if c > f["donchian_high_20"]+1e-9 || c < f["donchian_low_20"]-1e-9 {
		t.Errorf("close %v outside donchian [%v, %v]", c, f["donchian_low_20"], f["donchian_high_20"])
	}

	// RSI stays in its 0..100 domain.
	if f["rsi_14"] < 0 || f["rsi_14"] > 100 {
		t.Errorf("rsi_14 %v out of [0,100]", f["rsi_14"])
	}
}
