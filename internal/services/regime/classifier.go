// Package regime classifies market volatility into two latent states by
// fitting a Markov-switching model to a Garman-Klass volatility series. The
// labels drive background shading on the composite oscillator chart: blue
// for the quiet state, red for the stressed one.
package regime

import (
	"fmt"
	"sort"

	"OscLens/internal/domain/models"
)

// DefaultMinObservations is the practical fitting floor. Below it the model
// is unstable and classification fails instead of returning a degenerate
// single-state series. Configurable rather than derived; see config.
const DefaultMinObservations = 30

// ErrInsufficientData is returned when the volatility series is shorter than
// the configured observation floor.
type ErrInsufficientData struct {
	Have int
	Need int
}

func (e *ErrInsufficientData) Error() string {
	return fmt.Sprintf("regime: insufficient volatility observations: have %d, need %d", e.Have, e.Need)
}

// Classifier fits one model per call over the full supplied window. It holds
// no state between calls; each request's computation owns its own series.
type Classifier struct {
	MinObservations int
}

// New builds a Classifier; a non-positive floor falls back to the default.
func New(minObservations int) *Classifier {
	if minObservations <= 0 {
		minObservations = DefaultMinObservations
	}
	return &Classifier{MinObservations: minObservations}
}

// Metadata returns the per-state display contract. State order (and hence
// name/color assignment) is stable across requests by construction.
func Metadata() models.RegimeMetadata {
	return models.RegimeMetadata{
		Label: "Market Regime",
		States: map[int]models.RegimeState{
			0: {
				Name:        "low-vol",
				Color:       "rgba(0, 122, 255, 0.1)",
				Description: "Stable, range-bound market conditions",
			},
			1: {
				Name:        "high-vol",
				Color:       "rgba(255, 59, 48, 0.1)",
				Description: "Unstable, trending market conditions",
			},
		},
	}
}

// Classify fits the 2-state model to the non-null points of the volatility
// series and labels each of them with the smoothed-probability argmax state.
// State 0 is guaranteed to be the lower-mean-volatility state regardless of
// how the fit ordered its internal indices. When the EM fit degenerates the
// classifier falls back to a median-threshold split, which preserves the
// ordering invariant trivially.
func (c *Classifier) Classify(vol models.Series) ([]models.RegimeLabel, error) {
	ts := make([]int64, 0, len(vol))
	obs := make([]float64, 0, len(vol))
	for _, p := range vol {
		if p.Value != nil {
			ts = append(ts, p.TS)
			obs = append(obs, *p.Value)
		}
	}
	if len(obs) < c.MinObservations {
		return nil, &ErrInsufficientData{Have: len(obs), Need: c.MinObservations}
	}

	fit, err := fitMarkov(obs)
	if err != nil {
		return thresholdLabels(ts, obs), nil
	}
	fit.reorder()

	labels := make([]models.RegimeLabel, len(obs))
	for i := range obs {
		state := 0
		if fit.Smoothed[i][1] > fit.Smoothed[i][0] {
			state = 1
		}
		labels[i] = models.RegimeLabel{TS: ts[i], State: state}
	}
	return labels, nil
}

// thresholdLabels is the fallback classification: above-median volatility is
// the high state. Mirrors the model's labeling contract without a fit.
func thresholdLabels(ts []int64, obs []float64) []models.RegimeLabel {
	threshold := percentile(obs, 50)
	labels := make([]models.RegimeLabel, len(obs))
	for i, v := range obs {
		state := 0
		if v > threshold {
			state = 1
		}
		labels[i] = models.RegimeLabel{TS: ts[i], State: state}
	}
	return labels
}

// ClipToWindow filters labels to the display timestamps requested by the
// caller. The model fits over all available history, but labels outside the
// query range must not leak into the rendered window.
func ClipToWindow(labels []models.RegimeLabel, window []int64) []models.RegimeLabel {
	if len(window) == 0 {
		return nil
	}
	keep := make(map[int64]struct{}, len(window))
	for _, t := range window {
		keep[t] = struct{}{}
	}
	out := make([]models.RegimeLabel, 0, len(labels))
	for _, l := range labels {
		if _, ok := keep[l.TS]; ok {
			out = append(out, l)
		}
	}
	return out
}

func percentile(xs []float64, p float64) float64 {
	tmp := make([]float64, len(xs))
	copy(tmp, xs)
	sort.Float64s(tmp)
	if len(tmp) == 0 {
		return 0
	}
	idx := int(p / 100 * float64(len(tmp)-1))
	return tmp[idx]
}
