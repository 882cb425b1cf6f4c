package model

import (
	"encoding/json"
	"math"
	"testing"
)

func TestFeaturesMarshalDropsNonFinite(t *testing.T) {
	f := Features{
		"a": 1.5,
		"b": math.NaN(),
		"c": math.Inf(1),
		"d": math.Inf(-1),
	}
	out, err := json.Marshal(f)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `{"a":1.5}` {
		t.Errorf("got %s, want {\"a\":1.5}", out)
	}
}

func TestFeaturesMarshalEmpty(t *testing.T) {
	for _, f := range []Features{{}, {"x": math.NaN()}} {
		out, err := json.Marshal(f)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		if string(out) != "{}" {
			t.Errorf("got %s, want {}", out)
		}
	}
}

func TestFeaturesMarshalSortedKeys(t *testing.T) {
	f := Features{"z": 1, "a": 2, "m": 3}
	out, err := json.Marshal(f)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `{"a":2,"m":3,"z":1}` {
		t.Errorf("got %s, want sorted keys", out)
	}
}

func TestFeaturesFinite(t *testing.T) {
	f := Features{"a": 1, "b": math.NaN(), "c": math.Inf(1)}
	got := f.Finite()
	if len(got) != 1 || got["a"] != 1 {
		t.Errorf("Finite() = %v, want map with only a=1", got)
	}
	// Original untouched.
	if len(f) != 3 {
		t.Errorf("Finite() mutated the receiver")
	}
}
