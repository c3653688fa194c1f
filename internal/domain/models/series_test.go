package models

import (
	"encoding/json"
	"math"
	"testing"
)

func TestPointJSONPair(t *testing.T) {
	b, err := json.Marshal(Point{TS: 1609459200000, Value: V(1.5)})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != "[1609459200000,1.5]" {
		t.Fatalf("unexpected wire form %s", b)
	}

	b, err = json.Marshal(Point{TS: 1609459200000})
	if err != nil {
		t.Fatalf("marshal null: %v", err)
	}
	if string(b) != "[1609459200000,null]" {
		t.Fatalf("unexpected null wire form %s", b)
	}
}

func TestPointJSONNaNBecomesNull(t *testing.T) {
	nan := math.NaN()
	b, err := json.Marshal(Point{TS: 7, Value: &nan})
	if err != nil {
		t.Fatalf("marshal NaN: %v", err)
	}
	if string(b) != "[7,null]" {
		t.Fatalf("NaN must serialize as null, got %s", b)
	}
}

func TestPointJSONRoundTrip(t *testing.T) {
	var p Point
	if err := json.Unmarshal([]byte("[42,3.25]"), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.TS != 42 || p.Value == nil || *p.Value != 3.25 {
		t.Fatalf("unexpected point %+v", p)
	}
	if err := json.Unmarshal([]byte("[42,null]"), &p); err != nil {
		t.Fatalf("unmarshal null: %v", err)
	}
	if p.Value != nil {
		t.Fatalf("expected null value")
	}
}

func TestSeriesValidate(t *testing.T) {
	good := Series{{TS: 1}, {TS: 2}, {TS: 3}}
	if err := good.Validate(); err != nil {
		t.Fatalf("valid series rejected: %v", err)
	}
	bad := Series{{TS: 1}, {TS: 1}}
	if err := bad.Validate(); err == nil {
		t.Fatalf("duplicate timestamps must be rejected")
	}
}

func TestSeriesClipAfter(t *testing.T) {
	s := Series{{TS: 1}, {TS: 2}, {TS: 3}, {TS: 4}}
	got := s.ClipAfter(3)
	if len(got) != 2 || got[0].TS != 3 {
		t.Fatalf("unexpected clip %+v", got)
	}
	if got := s.ClipAfter(10); len(got) != 0 {
		t.Fatalf("expected empty clip, got %+v", got)
	}
}

func TestCandleValidate(t *testing.T) {
	ok := Candle{TS: 1, Open: 100, High: 105, Low: 95, Close: 102}
	if err := ok.Validate(); err != nil {
		t.Fatalf("valid candle rejected: %v", err)
	}
	cases := []Candle{
		{TS: 1, Open: 0, High: 105, Low: 95, Close: 102},
		{TS: 1, Open: 100, High: 99, Low: 95, Close: 102},
		{TS: 1, Open: 100, High: 105, Low: 101, Close: 102},
	}
	for i, c := range cases {
		if err := c.Validate(); err == nil {
			t.Fatalf("case %d should fail validation", i)
		}
	}
}
