package models

import (
	"encoding/json"
	"fmt"
	"math"
)

// Point is a single observation: millisecond UTC timestamp plus a nullable
// value. A nil value means "no observation" (non-trading day, missing source),
// which is distinct from zero.
type Point struct {
	TS    int64
	Value *float64
}

// V returns a pointer to v, for literal Point construction.
func V(v float64) *float64 { return &v }

// MarshalJSON renders the wire format used by the charting layer:
// [timestamp_ms, value] with null for missing values.
func (p Point) MarshalJSON() ([]byte, error) {
	if p.Value == nil {
		return json.Marshal([2]interface{}{p.TS, nil})
	}
	if math.IsNaN(*p.Value) || math.IsInf(*p.Value, 0) {
		return json.Marshal([2]interface{}{p.TS, nil})
	}
	return json.Marshal([2]interface{}{p.TS, *p.Value})
}

// UnmarshalJSON parses the [timestamp_ms, value_or_null] pair form.
func (p *Point) UnmarshalJSON(b []byte) error {
	var raw [2]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("point pair: %w", err)
	}
	if err := json.Unmarshal(raw[0], &p.TS); err != nil {
		return fmt.Errorf("point timestamp: %w", err)
	}
	if string(raw[1]) == "null" {
		p.Value = nil
		return nil
	}
	var v float64
	if err := json.Unmarshal(raw[1], &v); err != nil {
		return fmt.Errorf("point value: %w", err)
	}
	p.Value = &v
	return nil
}

// Series is an ordered sequence of points. Timestamps are strictly increasing
// and unique within one series.
type Series []Point

// Validate checks the strictly-increasing timestamp invariant.
func (s Series) Validate() error {
	for i := 1; i < len(s); i++ {
		if s[i].TS <= s[i-1].TS {
			return fmt.Errorf("series timestamps not strictly increasing at index %d (%d <= %d)", i, s[i].TS, s[i-1].TS)
		}
	}
	return nil
}

// NonNullCount returns the number of points carrying an actual observation.
func (s Series) NonNullCount() int {
	n := 0
	for _, p := range s {
		if p.Value != nil {
			n++
		}
	}
	return n
}

// ClipAfter keeps only points with TS >= cutoff. Series are ascending, so
// this is a binary-search truncation.
func (s Series) ClipAfter(cutoff int64) Series {
	lo, hi := 0, len(s)
	for lo < hi {
		mid := (lo + hi) / 2
		if s[mid].TS < cutoff {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return s[lo:]
}

// LastTS returns the timestamp of the final point, or 0 for an empty series.
func (s Series) LastTS() int64 {
	if len(s) == 0 {
		return 0
	}
	return s[len(s)-1].TS
}

// Metadata carries display attributes for a dataset, consumed verbatim by the
// charting layer.
type Metadata struct {
	Label      string `json:"label"`
	YAxisID    string `json:"yAxisId,omitempty"`
	YAxisLabel string `json:"yAxisLabel,omitempty"`
	Unit       string `json:"unit,omitempty"`
	Color      string `json:"color,omitempty"`
	ChartType  string `json:"chartType,omitempty"`
}
