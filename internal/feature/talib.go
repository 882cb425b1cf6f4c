package feature

import (
	"math"

	talib "github.com/markcheno/go-talib"

	"github.com/mandeep1729/algomatic-state/internal/model"
	"github.com/mandeep1729/algomatic-state/internal/rolling"
)

// talibBank computes the classical indicator set over full price/volume
// arrays using go-talib, plus composites (ichimoku, donchian, pivots,
// cumulative VWAP, rolling means of other outputs) derived locally.
//
// go-talib returns full-length slices with zeros in the warm-up region, so
// every output is masked to NaN before its valid-from offset. Histories
// shorter than an indicator's lookback skip its go-talib call entirely and
// emit NaN for its features.
type talibBank struct{}

func (*talibBank) Name() string { return "indicator_bank" }

type priceArrays struct {
	open, high, low, close, volume []float64
}

func extract(bars []model.Bar) priceArrays {
	n := len(bars)
	p := priceArrays{
		open:   make([]float64, n),
		high:   make([]float64, n),
		low:    make([]float64, n),
		close:  make([]float64, n),
		volume: make([]float64, n),
	}
	for i := range bars {
		p.open[i] = bars[i].Open
		p.high[i] = bars[i].High
		p.low[i] = bars[i].Low
		p.close[i] = bars[i].Close
		p.volume[i] = float64(bars[i].Volume)
	}
	return p
}

// writeMasked copies series into results under name, with indices before
// validFrom forced to NaN. A nil series writes NaN everywhere.
func writeMasked(results []model.FeatureResult, name string, series []float64, validFrom int) {
	for i := range results {
		if series == nil || i < validFrom {
			results[i].Features[name] = math.NaN()
		} else {
			results[i].Features[name] = series[i]
		}
	}
}

// guard calls fn only when the history extends past validFrom, so at least
// one output index is defined; otherwise it returns nil. go-talib indexes
// out of range on inputs shorter than an indicator's lookback, so short
// histories must never reach it.
func guard(n, validFrom int, fn func() []float64) []float64 {
	if n <= validFrom {
		return nil
	}
	return fn()
}

// nanSeries returns an all-NaN series of length n.
func nanSeries(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

// mask returns a copy of series with indices before validFrom set to NaN.
func mask(series []float64, validFrom int) []float64 {
	out := make([]float64, len(series))
	for i := range series {
		if i < validFrom {
			out[i] = math.NaN()
		} else {
			out[i] = series[i]
		}
	}
	return out
}

func (b *talibBank) Compute(bars []model.Bar, results []model.FeatureResult) {
	if len(bars) == 0 {
		return
	}
	p := extract(bars)

	b.momentum(p, results)
	b.trend(p, results)
	atr := b.volatility(p, results)
	obv := b.volume(p, results)
	b.derived(p, results, atr, obv)
}

func (b *talibBank) momentum(p priceArrays, results []model.FeatureResult) {
	n := len(results)

	writeMasked(results, "rsi_14", guard(n, 14, func() []float64 { return talib.Rsi(p.close, 14) }), 14)
	writeMasked(results, "rsi_2", guard(n, 2, func() []float64 { return talib.Rsi(p.close, 2) }), 2)

	var macd, signal, hist []float64
	if n > 33 {
		macd, signal, hist = talib.Macd(p.close, 12, 26, 9)
	}
	writeMasked(results, "macd", macd, 33)
	writeMasked(results, "macd_signal", signal, 33)
	writeMasked(results, "macd_hist", hist, 33)

	var stochK, stochD []float64
	if n > 17 {
		stochK, stochD = talib.Stoch(p.high, p.low, p.close, 14, 3, talib.SMA, 3, talib.SMA)
	}
	writeMasked(results, "stoch_k", stochK, 17)
	writeMasked(results, "stoch_d", stochD, 17)

	writeMasked(results, "adx_14", guard(n, 27, func() []float64 { return talib.Adx(p.high, p.low, p.close, 14) }), 27)
	writeMasked(results, "cci_20", guard(n, 19, func() []float64 { return talib.Cci(p.high, p.low, p.close, 20) }), 19)
	writeMasked(results, "willr_14", guard(n, 13, func() []float64 { return talib.WillR(p.high, p.low, p.close, 14) }), 13)
	writeMasked(results, "mfi_14", guard(n, 14, func() []float64 { return talib.Mfi(p.high, p.low, p.close, p.volume, 14) }), 14)
	writeMasked(results, "cmo_14", guard(n, 14, func() []float64 { return talib.Cmo(p.close, 14) }), 14)
	writeMasked(results, "roc_10", guard(n, 10, func() []float64 { return talib.Roc(p.close, 10) }), 10)
	writeMasked(results, "mom_10", guard(n, 10, func() []float64 { return talib.Mom(p.close, 10) }), 10)
	writeMasked(results, "apo", guard(n, 25, func() []float64 { return talib.Apo(p.close, 12, 26, talib.EMA) }), 25)
	writeMasked(results, "ppo", guard(n, 25, func() []float64 { return talib.Ppo(p.close, 12, 26, talib.EMA) }), 25)
	writeMasked(results, "trix_15", guard(n, 43, func() []float64 { return talib.Trix(p.close, 15) }), 43)
	writeMasked(results, "plus_di_14", guard(n, 14, func() []float64 { return talib.PlusDI(p.high, p.low, p.close, 14) }), 14)
	writeMasked(results, "minus_di_14", guard(n, 14, func() []float64 { return talib.MinusDI(p.high, p.low, p.close, 14) }), 14)

	var aroonDown, aroonUp []float64
	if n > 25 {
		aroonDown, aroonUp = talib.Aroon(p.high, p.low, 25)
	}
	writeMasked(results, "aroon_down_25", aroonDown, 25)
	writeMasked(results, "aroon_up_25", aroonUp, 25)
}

func (b *talibBank) trend(p priceArrays, results []model.FeatureResult) {
	n := len(results)

	for _, sma := range []struct {
		period int
		name   string
	}{{20, "sma_20"}, {50, "sma_50"}, {200, "sma_200"}} {
		period := sma.period
		writeMasked(results, sma.name, guard(n, period-1, func() []float64 { return talib.Sma(p.close, period) }), period-1)
	}
	for _, ema := range []struct {
		period int
		name   string
	}{{20, "ema_20"}, {50, "ema_50"}, {200, "ema_200"}} {
		period := ema.period
		writeMasked(results, ema.name, guard(n, period-1, func() []float64 { return talib.Ema(p.close, period) }), period-1)
	}

	writeMasked(results, "psar", guard(n, 1, func() []float64 { return talib.Sar(p.high, p.low, 0.02, 0.2) }), 1)
	writeMasked(results, "kama_30", guard(n, 30, func() []float64 { return talib.Kama(p.close, 30) }), 30)
	writeMasked(results, "ht_trendline", guard(n, 63, func() []float64 { return talib.HtTrendline(p.close) }), 63)
	writeMasked(results, "linearreg_slope_20", guard(n, 19, func() []float64 { return talib.LinearRegSlope(p.close, 20) }), 19)

	// Ichimoku has no native implementation; built from rolling hi/lo bands.
	tenkanHi, tenkanLo := rolling.NewMax(9), rolling.NewMin(9)
	kijunHi, kijunLo := rolling.NewMax(26), rolling.NewMin(26)
	senkouHi, senkouLo := rolling.NewMax(52), rolling.NewMin(52)

	for i := range results {
		f := results[i].Features
		tenkanHi.Push(p.high[i])
		tenkanLo.Push(p.low[i])
		kijunHi.Push(p.high[i])
		kijunLo.Push(p.low[i])
		senkouHi.Push(p.high[i])
		senkouLo.Push(p.low[i])

		tenkan, kijun := math.NaN(), math.NaN()
		if tenkanHi.Full() {
			tenkan = (tenkanHi.Max() + tenkanLo.Min()) / 2.0
		}
		if kijunHi.Full() {
			kijun = (kijunHi.Max() + kijunLo.Min()) / 2.0
		}
		f["ichi_tenkan"] = tenkan
		f["ichi_kijun"] = kijun

		if rolling.Valid(tenkan) && rolling.Valid(kijun) {
			f["ichi_senkou_a"] = (tenkan + kijun) / 2.0
		} else {
			f["ichi_senkou_a"] = math.NaN()
		}

		if senkouHi.Full() {
			f["ichi_senkou_b"] = (senkouHi.Max() + senkouLo.Min()) / 2.0
		} else {
			f["ichi_senkou_b"] = math.NaN()
		}

		f["ichi_chikou"] = p.close[i]
	}
}

// volatility writes the volatility family and returns the masked atr_14
// series for the derived stage.
func (b *talibBank) volatility(p priceArrays, results []model.FeatureResult) []float64 {
	n := len(results)

	var upper, middle, lower []float64
	if n > 19 {
		upper, middle, lower = talib.BBands(p.close, 20, 2.0, 2.0, talib.SMA)
	}
	writeMasked(results, "bb_upper", upper, 19)
	writeMasked(results, "bb_middle", middle, 19)
	writeMasked(results, "bb_lower", lower, 19)

	for i := range results {
		f := results[i].Features
		if upper == nil || i < 19 {
			f["bb_width"] = math.NaN()
			f["bb_pct"] = math.NaN()
			continue
		}
		if middle[i] > rolling.Eps {
			f["bb_width"] = (upper[i] - lower[i]) / middle[i]
		} else {
			f["bb_width"] = math.NaN()
		}
		if band := upper[i] - lower[i]; band > rolling.Eps {
			f["bb_pct"] = (p.close[i] - lower[i]) / band
		} else {
			f["bb_pct"] = math.NaN()
		}
	}

	atr := guard(n, 14, func() []float64 { return talib.Atr(p.high, p.low, p.close, 14) })
	if atr == nil {
		atr = nanSeries(n)
	} else {
		atr = mask(atr, 14)
	}
	writeMasked(results, "atr_14", atr, 0)
	writeMasked(results, "stddev_20", guard(n, 19, func() []float64 { return talib.StdDev(p.close, 20, 1.0) }), 19)
	return atr
}

// volume writes the volume family and returns the obv series for the derived
// stage.
func (b *talibBank) volume(p priceArrays, results []model.FeatureResult) []float64 {
	obv := talib.Obv(p.close, p.volume)
	writeMasked(results, "obv", obv, 0)
	writeMasked(results, "adosc", guard(len(results), 9, func() []float64 {
		return talib.AdOsc(p.high, p.low, p.close, p.volume, 3, 10)
	}), 9)

	// Session-anchored cumulative VWAP, distinct from the rolling vwap_60.
	cumTpVol, cumVol := 0.0, 0.0
	for i := range results {
		f := results[i].Features
		tp := (p.high[i] + p.low[i] + p.close[i]) / 3.0
		cumTpVol += tp * p.volume[i]
		cumVol += p.volume[i]
		if cumVol > 0 {
			f["vwap"] = cumTpVol / cumVol
		} else {
			f["vwap"] = math.NaN()
		}

		pp := tp
		f["pivot_pp"] = pp
		f["pivot_r1"] = 2.0*pp - p.low[i]
		f["pivot_r2"] = pp + (p.high[i] - p.low[i])
		f["pivot_s1"] = 2.0*pp - p.high[i]
		f["pivot_s2"] = pp - (p.high[i] - p.low[i])
	}
	return obv
}

func (b *talibBank) derived(p priceArrays, results []model.FeatureResult, atr, obv []float64) {
	don20Hi, don20Lo := rolling.NewMax(20), rolling.NewMin(20)
	don10Hi, don10Lo := rolling.NewMax(10), rolling.NewMin(10)
	atrSum := rolling.NewSum(50)
	obvSum := rolling.NewSum(20)
	obvMax, obvMin := rolling.NewMax(20), rolling.NewMin(20)
	tpSum := rolling.NewSum(20)
	volSum := rolling.NewSum(20)

	for i := range results {
		f := results[i].Features

		don20Hi.Push(p.high[i])
		don20Lo.Push(p.low[i])
		if don20Hi.Full() {
			hh, ll := don20Hi.Max(), don20Lo.Min()
			f["donchian_high_20"] = hh
			f["donchian_low_20"] = ll
			f["donchian_mid_20"] = (hh + ll) / 2.0
		} else {
			f["donchian_high_20"] = math.NaN()
			f["donchian_low_20"] = math.NaN()
			f["donchian_mid_20"] = math.NaN()
		}

		don10Hi.Push(p.high[i])
		don10Lo.Push(p.low[i])
		if don10Hi.Full() {
			f["donchian_high_10"] = don10Hi.Max()
			f["donchian_low_10"] = don10Lo.Min()
		} else {
			f["donchian_high_10"] = math.NaN()
			f["donchian_low_10"] = math.NaN()
		}

		f["bar_range"] = p.high[i] - p.low[i]

		if rolling.Valid(atr[i]) {
			atrSum.Push(atr[i])
		}
		if atrSum.Full() {
			f["atr_sma_50"] = atrSum.Mean()
		} else {
			f["atr_sma_50"] = math.NaN()
		}

		if rolling.Valid(obv[i]) {
			obvSum.Push(obv[i])
			obvMax.Push(obv[i])
			obvMin.Push(obv[i])
		}
		if obvSum.Full() {
			f["obv_sma_20"] = obvSum.Mean()
			f["obv_high_20"] = obvMax.Max()
			f["obv_low_20"] = obvMin.Min()
		} else {
			f["obv_sma_20"] = math.NaN()
			f["obv_high_20"] = math.NaN()
			f["obv_low_20"] = math.NaN()
		}

		tpSum.Push((p.high[i] + p.low[i] + p.close[i]) / 3.0)
		if tpSum.Full() {
			f["typical_price_sma_20"] = tpSum.Mean()
		} else {
			f["typical_price_sma_20"] = math.NaN()
		}

		volSum.Push(p.volume[i])
		if volSum.Full() {
			f["volume_sma_20"] = volSum.Mean()
		} else {
			f["volume_sma_20"] = math.NaN()
		}
	}
}
