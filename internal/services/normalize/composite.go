package normalize

import (
	"slices"

	"OscLens/internal/domain/models"
)

// Composite combines multiple normalized score series into one weighted
// composite over the union of their timestamps. At each timestamp the value
// is sum(weight_i * signed value_i) / count of contributing components, where
// contributing means "present with a non-null value". Supplied weights are
// used exactly as given — the aggregator never renormalizes them to a fixed
// total. A timestamp where no component contributes stays in the output as an
// explicit null so downstream consumers see the gap.
func Composite(components map[string]models.NormalizedSeries, cfg models.CompositeConfig) models.Series {
	if len(components) == 0 {
		return nil
	}

	type slot struct {
		sum   float64
		count int
	}
	slots := make(map[int64]*slot)
	for name, comp := range components {
		cw, ok := cfg[name]
		if !ok {
			cw = models.ComponentWeight{Weight: 1.0}
		}
		for _, p := range comp.Points {
			s := slots[p.TS]
			if s == nil {
				s = &slot{}
				slots[p.TS] = s
			}
			if p.Value == nil {
				continue
			}
			v := *p.Value
			if cw.Invert {
				v = -v
			}
			s.sum += cw.Weight * v
			s.count++
		}
	}

	ts := make([]int64, 0, len(slots))
	for t := range slots {
		ts = append(ts, t)
	}
	slices.Sort(ts)

	out := make(models.Series, 0, len(ts))
	for _, t := range ts {
		p := models.Point{TS: t}
		if s := slots[t]; s.count > 0 {
			v := s.sum / float64(s.count)
			p.Value = &v
		}
		out = append(out, p)
	}
	return out
}
