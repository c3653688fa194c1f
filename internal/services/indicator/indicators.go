// Package indicator derives standard technical-analysis series from stored
// candles for datasets that are not ingested directly. The formulas come from
// go-talib; this package only adapts candle slices to talib's parallel-array
// inputs and converts the warmup region to explicit nulls so downstream
// normalization never mistakes lookback padding for zero signal.
package indicator

import (
	"fmt"
	"math"

	"github.com/markcheno/go-talib"

	"OscLens/internal/domain/models"
)

const (
	DefaultRSIPeriod = 14
	DefaultADXPeriod = 14
	DefaultATRPeriod = 14

	macdFast   = 12
	macdSlow   = 26
	macdSignal = 9

	sarAccel    = 0.02
	sarMaxAccel = 0.2
)

// Compute evaluates the named indicator over the candles. Supported names:
// rsi, macd_histogram, adx, atr, sma_<n>, psar.
func Compute(name string, candles []models.Candle) (models.Series, error) {
	if len(candles) == 0 {
		return nil, fmt.Errorf("indicator %s: no candles", name)
	}
	closes := make([]float64, len(candles))
	highs := make([]float64, len(candles))
	lows := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
		highs[i] = c.High
		lows[i] = c.Low
	}

	switch {
	case name == "rsi":
		return toSeries(candles, talib.Rsi(closes, DefaultRSIPeriod), DefaultRSIPeriod), nil
	case name == "macd_histogram":
		_, _, hist := talib.Macd(closes, macdFast, macdSlow, macdSignal)
		return toSeries(candles, hist, macdSlow+macdSignal-2), nil
	case name == "adx":
		return toSeries(candles, talib.Adx(highs, lows, closes, DefaultADXPeriod), 2*DefaultADXPeriod-1), nil
	case name == "atr":
		return toSeries(candles, talib.Atr(highs, lows, closes, DefaultATRPeriod), DefaultATRPeriod), nil
	case name == "psar":
		return toSeries(candles, talib.Sar(highs, lows, sarAccel, sarMaxAccel), 1), nil
	default:
		var period int
		if _, err := fmt.Sscanf(name, "sma_%d", &period); err == nil && period > 0 {
			return toSeries(candles, talib.Sma(closes, period), period-1), nil
		}
		return nil, fmt.Errorf("indicator %s: unknown", name)
	}
}

// IsIndicator reports whether the dataset name is computed here rather than
// fetched from the store.
func IsIndicator(name string) bool {
	switch name {
	case "rsi", "macd_histogram", "adx", "atr", "psar":
		return true
	}
	var period int
	_, err := fmt.Sscanf(name, "sma_%d", &period)
	return err == nil && period > 0
}

// toSeries pairs talib output with candle timestamps. talib pads the warmup
// region with zeros; those become nulls, as do NaN/Inf values.
func toSeries(candles []models.Candle, values []float64, warmup int) models.Series {
	out := make(models.Series, 0, len(candles))
	for i, c := range candles {
		p := models.Point{TS: c.TS}
		if i < len(values) && i >= warmup {
			v := values[i]
			if !math.IsNaN(v) && !math.IsInf(v, 0) {
				p.Value = &v
			}
		}
		out = append(out, p)
	}
	return out
}
