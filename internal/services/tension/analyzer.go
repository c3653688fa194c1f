// Package tension measures the divergence between two independently
// normalized signal legs (a "sentiment" leg and a "mechanics" leg) and flags
// timestamps where that divergence is itself abnormal relative to its own
// rolling history.
package tension

import (
	"OscLens/internal/domain/models"
	"OscLens/internal/services/timeseries"
)

// DefaultThreshold is the significance bar, in sigma units, for flagging a
// divergence event.
const DefaultThreshold = 2.0

// Analyzer derives tension series from two normalized legs.
type Analyzer struct {
	Window     int
	MinPeriods int
}

// New builds an Analyzer; non-positive parameters fall back to the
// normalizer's defaults so both stages share one window convention.
func New(window, minPeriods int) *Analyzer {
	if window <= 0 {
		window = 30
	}
	if minPeriods <= 0 {
		minPeriods = 10
	}
	return &Analyzer{Window: window, MinPeriods: minPeriods}
}

// Analyze computes tension1 = sentiment_z - mechanics_z over the aligned
// intersection of the two legs (same null-drop join as raw alignment, applied
// to score series), then tension2 as the rolling self z-score of tension1.
// Null policy carries through: insufficient points or zero rolling deviation
// yield null, never zero.
func (a *Analyzer) Analyze(name string, sentiment, mechanics models.NormalizedSeries) models.TensionResult {
	pair := timeseries.Align(sentiment.Points, mechanics.Points)

	tension1 := make(models.Series, 0, pair.Len())
	for i := 0; i < pair.Len(); i++ {
		d := pair.A[i] - pair.B[i]
		tension1 = append(tension1, models.Point{TS: pair.TS[i], Value: &d})
	}

	tension2 := timeseries.RollingZScore(tension1, a.Window, a.MinPeriods)

	return models.TensionResult{
		Name:     name,
		Tension1: tension1,
		Tension2: tension2,
	}
}

// Signals classifies abnormal divergence events: tension2 beyond +threshold
// with positive tension1 is sell pressure (sentiment running ahead of
// mechanics), with negative tension1 it is buy pressure. A pure function of
// the two output series, computed for the presentation layer and never
// stored.
func Signals(r models.TensionResult, threshold float64) models.TensionSignals {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	t1 := make(map[int64]float64, len(r.Tension1))
	for _, p := range r.Tension1 {
		if p.Value != nil {
			t1[p.TS] = *p.Value
		}
	}

	var out models.TensionSignals
	for _, p := range r.Tension2 {
		if p.Value == nil || *p.Value <= threshold {
			continue
		}
		raw, ok := t1[p.TS]
		if !ok {
			continue
		}
		switch {
		case raw > 0:
			out.SellSignals = append(out.SellSignals, p)
		case raw < 0:
			out.BuySignals = append(out.BuySignals, p)
		}
	}
	return out
}
