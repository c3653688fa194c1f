package timeseries

import (
	"slices"

	"OscLens/internal/domain/models"
)

// AlignedPair holds two series resampled onto one shared timestamp set.
// Values are dense: a timestamp only enters the pair when both sides carry a
// non-null observation at exactly that timestamp.
type AlignedPair struct {
	TS []int64
	A  []float64
	B  []float64
}

// Len returns the number of aligned points.
func (p AlignedPair) Len() int { return len(p.TS) }

// Align joins two ascending series on exact timestamps. There is no
// interpolation: a timestamp present on one side only contributes nothing, so
// market-closed gaps stay gaps instead of growing fabricated values. Matched
// points where either side is null are dropped entirely; nulls never reach
// the regression input.
func Align(a, b models.Series) AlignedPair {
	out := AlignedPair{}
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i].TS < b[j].TS:
			i++
		case a[i].TS > b[j].TS:
			j++
		default:
			if a[i].Value != nil && b[j].Value != nil {
				out.TS = append(out.TS, a[i].TS)
				out.A = append(out.A, *a[i].Value)
				out.B = append(out.B, *b[j].Value)
			}
			i++
			j++
		}
	}
	return out
}

// Intersect returns the timestamps present in every input series with a
// non-null value, ascending.
func Intersect(series ...models.Series) []int64 {
	if len(series) == 0 {
		return nil
	}
	counts := make(map[int64]int)
	for _, s := range series {
		for _, p := range s {
			if p.Value != nil {
				counts[p.TS]++
			}
		}
	}
	out := make([]int64, 0, len(counts))
	for ts, n := range counts {
		if n == len(series) {
			out = append(out, ts)
		}
	}
	slices.Sort(out)
	return out
}
