package timeseries

import (
	"math"

	"OscLens/internal/domain/models"
)

// LogReturns computes r_t = ln(x_t / x_{t-1}) over a series, preserving the
// timestamp of the later point. Non-positive or null endpoints yield a null
// return rather than a log of a bad domain.
func LogReturns(s models.Series) models.Series {
	if len(s) < 2 {
		return nil
	}
	out := make(models.Series, 0, len(s)-1)
	for i := 1; i < len(s); i++ {
		p := models.Point{TS: s[i].TS}
		prev, cur := s[i-1].Value, s[i].Value
		if prev != nil && cur != nil && *prev > 0 && *cur > 0 {
			r := math.Log(*cur / *prev)
			if !math.IsNaN(r) && !math.IsInf(r, 0) {
				p.Value = &r
			}
		}
		out = append(out, p)
	}
	return out
}

// RollingZScore standardizes each point against the mean and standard
// deviation of the trailing window ending at that point (window includes the
// point itself). Fewer than minPeriods observations, zero deviation, or a NaN
// anywhere in the window all yield null for that point only — never a
// placeholder zero.
func RollingZScore(s models.Series, window, minPeriods int) models.Series {
	out := make(models.Series, 0, len(s))
	for i := range s {
		p := models.Point{TS: s[i].TS}
		if s[i].Value != nil {
			lo := i - window + 1
			if lo < 0 {
				lo = 0
			}
			if z, ok := windowZ(s[lo:i+1], *s[i].Value, minPeriods); ok {
				p.Value = &z
			}
		}
		out = append(out, p)
	}
	return out
}

func windowZ(w models.Series, x float64, minPeriods int) (float64, bool) {
	var sum, sum2 float64
	n := 0
	for _, p := range w {
		if p.Value == nil {
			continue
		}
		v := *p.Value
		if math.IsNaN(v) {
			return 0, false
		}
		sum += v
		sum2 += v * v
		n++
	}
	if n < minPeriods {
		return 0, false
	}
	mean := sum / float64(n)
	variance := sum2/float64(n) - mean*mean
	if variance <= 0 {
		return 0, false
	}
	std := math.Sqrt(variance)
	z := (x - mean) / std
	if math.IsNaN(z) || math.IsInf(z, 0) {
		return 0, false
	}
	return z, true
}
