package normalize

import (
	"math"
	"testing"

	"OscLens/internal/domain/models"
)

const day = int64(86400000)

func series(vals ...float64) models.Series {
	s := make(models.Series, 0, len(vals))
	for i, v := range vals {
		vv := v
		s = append(s, models.Point{TS: int64(i) * day, Value: &vv})
	}
	return s
}

func linear(n int, slope, intercept float64) models.Series {
	s := make(models.Series, 0, n)
	for i := 0; i < n; i++ {
		v := slope*float64(i) + intercept
		s = append(s, models.Point{TS: int64(i) * day, Value: &v})
	}
	return s
}

func TestNormalizeInsufficientWindowIsNull(t *testing.T) {
	n := New(30, 10, ModeLevel)
	ind := series(1, 2, 3, 4, 5)
	ref := series(10, 20, 30, 40, 50)
	got := n.Normalize(ind, ref)
	if len(got.Points) != 5 {
		t.Fatalf("expected one output point per aligned input, got %d", len(got.Points))
	}
	for i, p := range got.Points {
		if p.Value != nil {
			t.Fatalf("fewer than min_periods points must score null, index %d = %v", i, *p.Value)
		}
	}
}

func TestNormalizePerfectFitIsNull(t *testing.T) {
	// indicator is exactly 2*ref + 1 everywhere: zero residual error
	n := New(30, 10, ModeLevel)
	ref := linear(20, 1, 0)
	ind := make(models.Series, 0, 20)
	for i, p := range ref {
		v := 2*(*p.Value) + 1
		ind = append(ind, models.Point{TS: int64(i) * day, Value: &v})
	}
	got := n.Normalize(ind, ref)
	for i, p := range got.Points {
		if p.Value != nil {
			t.Fatalf("perfect fit must score null, index %d = %v", i, *p.Value)
		}
	}
}

func TestNormalizeSingularReferenceIsNull(t *testing.T) {
	n := New(30, 10, ModeLevel)
	ind := series(1, 3, 2, 5, 4, 6, 8, 7, 9, 11, 10, 12)
	ref := linear(12, 0, 42) // constant reference column
	got := n.Normalize(ind, ref)
	for i, p := range got.Points {
		if p.Value != nil {
			t.Fatalf("singular regression must score null, index %d = %v", i, *p.Value)
		}
	}
}

func TestNormalizeNaNPointIsNullOnlyThere(t *testing.T) {
	n := New(10, 10, ModeLevel)
	ind := make(models.Series, 0, 22)
	ref := make(models.Series, 0, 22)
	for i := 0; i < 22; i++ {
		iv := float64(i) + float64(i%3)*0.7
		rv := 2*float64(i) + float64(i%5)*0.3
		ind = append(ind, models.Point{TS: int64(i) * day, Value: &iv})
		ref = append(ref, models.Point{TS: int64(i) * day, Value: &rv})
	}
	nan := math.NaN()
	ind[7].Value = &nan

	got := n.Normalize(ind, ref)
	// windows containing index 7 are poisoned; ones past it recover
	for i := 7; i <= 16; i++ {
		if got.Points[i].Value != nil {
			t.Fatalf("window containing NaN must score null, index %d = %v", i, *got.Points[i].Value)
		}
	}
	for i := 17; i < 22; i++ {
		if got.Points[i].Value == nil {
			t.Fatalf("window past the NaN must recover, index %d is null", i)
		}
		if math.IsNaN(*got.Points[i].Value) {
			t.Fatalf("NaN leaked into output at index %d", i)
		}
	}
}

func TestNormalizeDivergenceSign(t *testing.T) {
	// indicator tracks ref closely, then jumps above the relationship
	n := New(30, 10, ModeLevel)
	ref := linear(20, 1, 100)
	ind := make(models.Series, len(ref))
	for i, p := range ref {
		v := *p.Value * 2
		if i == 19 {
			v += 10 // break upward
		}
		ind[i] = models.Point{TS: p.TS, Value: &v}
	}
	// add mild noise so the base fit is not perfect
	for i := 0; i < 19; i++ {
		*ind[i].Value += float64(i%3) * 0.1
	}
	got := n.Normalize(ind, ref)
	last := got.Points[len(got.Points)-1]
	if last.Value == nil {
		t.Fatalf("expected a score at the divergence point")
	}
	if *last.Value <= 0 {
		t.Fatalf("upward break must score positive, got %v", *last.Value)
	}
}

func TestNormalizeDeterminism(t *testing.T) {
	n := New(14, 10, ModeLevel)
	ind := series(1, 3, 2, 5, 4, 6, 8, 7, 9, 11, 10, 12, 14, 13, 15, 17, 16, 18)
	ref := series(2, 5, 4, 9, 8, 11, 15, 13, 17, 20, 19, 23, 27, 25, 29, 33, 31, 35)
	a := n.Normalize(ind, ref)
	b := n.Normalize(ind, ref)
	if len(a.Points) != len(b.Points) {
		t.Fatalf("length mismatch between runs")
	}
	for i := range a.Points {
		av, bv := a.Points[i].Value, b.Points[i].Value
		if (av == nil) != (bv == nil) {
			t.Fatalf("null mismatch at %d", i)
		}
		if av != nil && *av != *bv {
			t.Fatalf("bit-identical output expected at %d: %v vs %v", i, *av, *bv)
		}
	}
}

func TestNormalizeMeta(t *testing.T) {
	n := New(0, 0, "")
	got := n.Normalize(nil, nil)
	if got.Meta.Window != DefaultWindow || got.Meta.MinPeriods != DefaultMinPeriods {
		t.Fatalf("defaults not applied: %+v", got.Meta)
	}
	if got.Meta.Method != "ols_residual" {
		t.Fatalf("unexpected method %q", got.Meta.Method)
	}
}

func TestNormalizePctChangeMode(t *testing.T) {
	n := New(14, 10, ModePctChange)
	// geometric growth with a velocity break at the end
	ind := make(models.Series, 0, 20)
	ref := make(models.Series, 0, 20)
	iv, rv := 100.0, 50.0
	for i := 0; i < 20; i++ {
		ivc, rvc := iv, rv
		ind = append(ind, models.Point{TS: int64(i) * day, Value: &ivc})
		ref = append(ref, models.Point{TS: int64(i) * day, Value: &rvc})
		growth := 1.01 + float64(i%4)*0.003
		iv *= growth
		rv *= 1.0 + (growth-1.0)*0.5
	}
	got := n.Normalize(ind, ref)
	// returns lose one point; the rest must be present in the index
	if len(got.Points) != 19 {
		t.Fatalf("expected 19 velocity points, got %d", len(got.Points))
	}
}
