package feature

import (
	"math"

	"github.com/mandeep1729/algomatic-state/internal/model"
)

// BankFeatureNames lists every feature the indicator bank produces. The
// disabled bank emits NaN for each of these so the feature vector keeps a
// fixed width regardless of availability.
var BankFeatureNames = []string{
	// momentum
	"rsi_14", "rsi_2",
	"macd", "macd_signal", "macd_hist",
	"stoch_k", "stoch_d",
	"adx_14", "cci_20", "willr_14", "mfi_14", "cmo_14",
	"roc_10", "mom_10", "apo", "ppo", "trix_15",
	"plus_di_14", "minus_di_14",
	"aroon_down_25", "aroon_up_25",
	// trend
	"sma_20", "sma_50", "sma_200",
	"ema_20", "ema_50", "ema_200",
	"psar", "kama_30", "ht_trendline", "linearreg_slope_20",
	"ichi_tenkan", "ichi_kijun", "ichi_senkou_a", "ichi_senkou_b", "ichi_chikou",
	// volatility
	"bb_upper", "bb_middle", "bb_lower", "bb_width", "bb_pct",
	"atr_14", "stddev_20",
	// volume
	"obv", "adosc", "vwap",
	"pivot_pp", "pivot_r1", "pivot_r2", "pivot_s1", "pivot_s2",
	// derived
	"donchian_high_20", "donchian_low_20", "donchian_mid_20",
	"donchian_high_10", "donchian_low_10",
	"bar_range", "atr_sma_50",
	"obv_sma_20", "obv_high_20", "obv_low_20",
	"typical_price_sma_20", "volume_sma_20",
}

// NewBank returns the indicator bank stage. When enabled it computes the
// classical indicator set; when disabled it emits NaN for every bank feature
// and the pipeline carries on.
func NewBank(enabled bool) Calculator {
	if enabled {
		return &talibBank{}
	}
	return &nanBank{}
}

// nanBank is the disabled-bank fallback.
type nanBank struct{}

func (*nanBank) Name() string { return "indicator_bank" }

func (*nanBank) Compute(bars []model.Bar, results []model.FeatureResult) {
	nan := math.NaN()
	for i := range results {
		for _, name := range BankFeatureNames {
			results[i].Features[name] = nan
		}
	}
}
