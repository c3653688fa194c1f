// Package normalize converts raw indicator series into comparable,
// zero-centered oscillator scores. The scoring primitive is the standardized
// residual of a rolling OLS regression of the indicator against a reference
// asset series: the z-score measures how far the indicator sits from where
// its historical relationship with the reference predicts it should be.
package normalize

import (
	"math"

	"OscLens/internal/domain/models"
	"OscLens/internal/services/timeseries"
)

// Mode selects the reference space for the regression.
type Mode string

const (
	// ModeLevel regresses indicator levels against reference levels.
	ModeLevel Mode = "zscore"
	// ModePctChange regresses indicator log returns against reference log
	// returns, anchoring the score on velocity rather than level.
	ModePctChange Mode = "pct_change_zscore"
)

const (
	// DefaultWindow is the rolling regression lookback in periods.
	DefaultWindow = 30
	// DefaultMinPeriods is the floor of aligned observations a window must
	// hold before a fit is attempted.
	DefaultMinPeriods = 10

	method = "ols_residual"
)

// Normalizer computes rolling regression-residual z-scores.
type Normalizer struct {
	Window     int
	MinPeriods int
	Mode       Mode
}

// New builds a Normalizer, falling back to defaults for non-positive values.
func New(window, minPeriods int, mode Mode) *Normalizer {
	if window <= 0 {
		window = DefaultWindow
	}
	if minPeriods <= 0 {
		minPeriods = DefaultMinPeriods
	}
	if mode == "" {
		mode = ModeLevel
	}
	return &Normalizer{Window: window, MinPeriods: minPeriods, Mode: mode}
}

// Normalize scores the indicator against the reference series. The output
// carries one point per aligned timestamp; the value is null wherever the
// window was underdetermined (too few points, zero residual error, singular
// regression, or NaN contamination). A score is either a valid z-score or
// explicitly absent — never a sentinel numeric value.
func (n *Normalizer) Normalize(indicator, reference models.Series) models.NormalizedSeries {
	ind, ref := indicator, reference
	if n.Mode == ModePctChange {
		ind = timeseries.LogReturns(indicator)
		ref = timeseries.LogReturns(reference)
	}
	pair := timeseries.Align(ind, ref)

	points := make(models.Series, 0, pair.Len())
	for i := 0; i < pair.Len(); i++ {
		p := models.Point{TS: pair.TS[i]}
		lo := i - n.Window + 1
		if lo < 0 {
			lo = 0
		}
		if z, ok := residualZ(pair.A[lo:i+1], pair.B[lo:i+1], n.MinPeriods); ok {
			p.Value = &z
		}
		points = append(points, p)
	}

	return models.NormalizedSeries{
		Points: points,
		Meta: models.NormalizationMeta{
			Window:     n.Window,
			MinPeriods: n.MinPeriods,
			Method:     method,
		},
	}
}

// residualZ fits indicator = alpha*reference + beta over the window by
// ordinary least squares and standardizes the final residual by the residual
// standard error sqrt(SSR / (n-2)). The window includes the point being
// scored.
func residualZ(ind, ref []float64, minPeriods int) (float64, bool) {
	n := len(ind)
	if n < minPeriods || n < 3 {
		return 0, false
	}

	var sumX, sumY, sumXX, sumXY float64
	for i := 0; i < n; i++ {
		x, y := ref[i], ind[i]
		if math.IsNaN(x) || math.IsNaN(y) {
			return 0, false
		}
		sumX += x
		sumY += y
		sumXX += x * x
		sumXY += x * y
	}

	fn := float64(n)
	sxx := sumXX - sumX*sumX/fn
	if sxx == 0 {
		// constant reference column: the regression is singular
		return 0, false
	}
	alpha := (sumXY - sumX*sumY/fn) / sxx
	beta := (sumY - alpha*sumX) / fn

	var ssr float64
	for i := 0; i < n; i++ {
		r := ind[i] - (alpha*ref[i] + beta)
		ssr += r * r
	}
	stderr := math.Sqrt(ssr / float64(n-2))
	if stderr == 0 || math.IsNaN(stderr) {
		// perfect fit carries no information about abnormality
		return 0, false
	}

	residual := ind[n-1] - (alpha*ref[n-1] + beta)
	z := residual / stderr
	if math.IsNaN(z) || math.IsInf(z, 0) {
		return 0, false
	}
	return z, true
}
