// Package volatility estimates per-period volatility from OHLC bars using
// the Garman-Klass range estimator, which extracts more information per bar
// than close-to-close methods. The estimate feeds the regime classifier.
package volatility

import (
	"math"

	"OscLens/internal/domain/models"
)

// DefaultAnnualizationFactor is the number of daily trading periods per year.
const DefaultAnnualizationFactor = 252.0

var ln2Factor = 2*math.Ln2 - 1 // ≈ 0.386

// Estimator computes annualized Garman-Klass volatility, expressed in
// percent to match the display layer's axis.
type Estimator struct {
	AnnualizationFactor float64
}

// New builds an Estimator with the given periods-per-year factor
// (252 for daily bars); non-positive falls back to the default.
func New(annualizationFactor float64) *Estimator {
	if annualizationFactor <= 0 {
		annualizationFactor = DefaultAnnualizationFactor
	}
	return &Estimator{AnnualizationFactor: annualizationFactor}
}

// Estimate returns one point per input bar:
//
//	sigma² = 0.5·ln(H/L)² − (2·ln2 − 1)·ln(C/O)²
//	sigma_annualized = sqrt(sigma² · factor) · 100
//
// A bar failing OHLC validation is emitted as null rather than excluded, so
// the output index stays aligned with the input. A negative per-bar sigma² is
// also null: the estimator is only unbiased in expectation across many bars
// and single extreme bars can push it below zero.
func (e *Estimator) Estimate(candles []models.Candle) models.Series {
	out := make(models.Series, 0, len(candles))
	for _, c := range candles {
		p := models.Point{TS: c.TS}
		if v, ok := e.bar(c); ok {
			p.Value = &v
		}
		out = append(out, p)
	}
	return out
}

func (e *Estimator) bar(c models.Candle) (float64, bool) {
	if c.Validate() != nil {
		return 0, false
	}
	hl := math.Log(c.High / c.Low)
	co := math.Log(c.Close / c.Open)
	variance := 0.5*hl*hl - ln2Factor*co*co
	if variance < 0 || math.IsNaN(variance) {
		return 0, false
	}
	sigma := math.Sqrt(variance*e.AnnualizationFactor) * 100
	if math.IsNaN(sigma) || math.IsInf(sigma, 0) {
		return 0, false
	}
	return sigma, true
}
