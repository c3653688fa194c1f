package timeseries

import (
	"testing"

	"OscLens/internal/domain/models"
)

func mkSeries(start int64, vals []*float64) models.Series {
	s := make(models.Series, 0, len(vals))
	for i, v := range vals {
		s = append(s, models.Point{TS: start + int64(i)*86400000, Value: v})
	}
	return s
}

func TestAlignExactJoin(t *testing.T) {
	day := int64(86400000)
	a := models.Series{
		{TS: 0, Value: models.V(1)},
		{TS: day, Value: models.V(2)},
		{TS: 3 * day, Value: models.V(4)},
	}
	b := models.Series{
		{TS: day, Value: models.V(10)},
		{TS: 2 * day, Value: models.V(20)},
		{TS: 3 * day, Value: models.V(30)},
	}
	pair := Align(a, b)
	if pair.Len() != 2 {
		t.Fatalf("expected 2 aligned points, got %d", pair.Len())
	}
	if pair.TS[0] != day || pair.TS[1] != 3*day {
		t.Fatalf("unexpected timestamps %v", pair.TS)
	}
	if pair.A[0] != 2 || pair.B[0] != 10 {
		t.Fatalf("unexpected values at first point: %v %v", pair.A[0], pair.B[0])
	}
}

func TestAlignDropsNulls(t *testing.T) {
	a := mkSeries(0, []*float64{models.V(1), nil, models.V(3)})
	b := mkSeries(0, []*float64{models.V(9), models.V(8), nil})
	pair := Align(a, b)
	if pair.Len() != 1 {
		t.Fatalf("expected only the fully observed point, got %d", pair.Len())
	}
	if pair.A[0] != 1 || pair.B[0] != 9 {
		t.Fatalf("unexpected surviving values %v %v", pair.A[0], pair.B[0])
	}
}

func TestAlignIntersectionBound(t *testing.T) {
	a := mkSeries(0, []*float64{models.V(1), nil, models.V(3), models.V(4)})
	b := mkSeries(0, []*float64{models.V(9), models.V(8), models.V(7)})
	pair := Align(a, b)
	if pair.Len() > a.NonNullCount() || pair.Len() > b.NonNullCount() {
		t.Fatalf("aligned length %d exceeds non-null input bound", pair.Len())
	}
	// every output timestamp must exist, non-null, in both inputs
	for i, ts := range pair.TS {
		foundA, foundB := false, false
		for _, p := range a {
			if p.TS == ts && p.Value != nil {
				foundA = true
			}
		}
		for _, p := range b {
			if p.TS == ts && p.Value != nil {
				foundB = true
			}
		}
		if !foundA || !foundB {
			t.Fatalf("output ts %d (index %d) not non-null in both inputs", ts, i)
		}
	}
}

func TestAlignEmpty(t *testing.T) {
	pair := Align(nil, mkSeries(0, []*float64{models.V(1)}))
	if pair.Len() != 0 {
		t.Fatalf("expected empty pair, got %d", pair.Len())
	}
}

func TestIntersect(t *testing.T) {
	a := mkSeries(0, []*float64{models.V(1), models.V(2), nil})
	b := mkSeries(0, []*float64{models.V(4), models.V(5), models.V(6)})
	c := mkSeries(86400000, []*float64{models.V(7), models.V(8)})
	got := Intersect(a, b, c)
	if len(got) != 1 || got[0] != 86400000 {
		t.Fatalf("expected single shared timestamp, got %v", got)
	}
}
