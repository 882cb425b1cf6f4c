package model

import (
	"bytes"
	"math"
	"sort"
	"strconv"
)

// Features maps feature name → value. NaN is the "not yet defined" sentinel
// (insufficient lookback, guarded denominator, unavailable indicator bank) —
// it is a first-class value in memory but never crosses the wire.
type Features map[string]float64

// MarshalJSON encodes the map as a flat name→number object, omitting keys
// whose value is NaN or ±Inf. An empty (or fully non-finite) map encodes
// as {}. Keys are emitted in sorted order so payloads are stable.
func (f Features) MarshalJSON() ([]byte, error) {
	keys := make([]string, 0, len(f))
	for k, v := range f {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(strconv.Quote(k))
		buf.WriteByte(':')
		buf.WriteString(strconv.FormatFloat(f[k], 'g', -1, 64))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Finite returns a copy holding only the finite entries. Used by stores that
// persist the map through drivers which reject NaN/Inf.
func (f Features) Finite() Features {
	out := make(Features, len(f))
	for k, v := range f {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		out[k] = v
	}
	return out
}

// FeatureResult is the full feature vector computed for one bar.
// The i-th result of a pipeline run always corresponds to the i-th input bar
// and carries that bar's ID.
type FeatureResult struct {
	BarID    int64    `json:"bar_id"`
	Features Features `json:"features"`
}
