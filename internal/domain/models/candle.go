package models

import "fmt"

// Candle represents one OHLCV bar keyed by millisecond UTC timestamp.
type Candle struct {
	TS     int64
	Symbol string
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Validate enforces the raw price invariants: positive prices, high covering
// the body, low under the body. A failing bar is treated as missing by
// callers, not as a fatal series error.
func (c Candle) Validate() error {
	if c.Open <= 0 || c.High <= 0 || c.Low <= 0 || c.Close <= 0 {
		return fmt.Errorf("candle at %d: non-positive price", c.TS)
	}
	if c.High < c.Open || c.High < c.Close {
		return fmt.Errorf("candle at %d: high below body", c.TS)
	}
	if c.Low > c.Open || c.Low > c.Close {
		return fmt.Errorf("candle at %d: low above body", c.TS)
	}
	return nil
}

// CloseSeries projects candles onto a close-price Series.
func CloseSeries(candles []Candle) Series {
	out := make(Series, 0, len(candles))
	for _, c := range candles {
		v := c.Close
		out = append(out, Point{TS: c.TS, Value: &v})
	}
	return out
}
