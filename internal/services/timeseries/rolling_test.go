package timeseries

import (
	"math"
	"testing"

	"OscLens/internal/domain/models"
)

func TestLogReturns(t *testing.T) {
	s := mkSeries(0, []*float64{models.V(100), models.V(110), models.V(110)})
	got := LogReturns(s)
	if len(got) != 2 {
		t.Fatalf("expected 2 returns, got %d", len(got))
	}
	if got[0].Value == nil || math.Abs(*got[0].Value-math.Log(1.1)) > 1e-12 {
		t.Fatalf("unexpected first return %v", got[0].Value)
	}
	if got[1].Value == nil || *got[1].Value != 0 {
		t.Fatalf("flat step should be zero return, got %v", got[1].Value)
	}
}

func TestLogReturnsBadDomain(t *testing.T) {
	s := mkSeries(0, []*float64{models.V(100), models.V(-5), models.V(100), nil, models.V(50)})
	got := LogReturns(s)
	// -5 poisons both adjacent returns; the null poisons its neighbors too
	for i, p := range got {
		if p.Value != nil {
			t.Fatalf("expected all-null returns, index %d = %v", i, *p.Value)
		}
	}
}

func TestRollingZScoreMinPeriods(t *testing.T) {
	s := mkSeries(0, []*float64{models.V(1), models.V(2), models.V(3)})
	got := RollingZScore(s, 10, 10)
	for i, p := range got {
		if p.Value != nil {
			t.Fatalf("short history must be null, index %d = %v", i, *p.Value)
		}
	}
}

func TestRollingZScoreZeroDeviation(t *testing.T) {
	vals := make([]*float64, 12)
	for i := range vals {
		vals[i] = models.V(5)
	}
	s := mkSeries(0, vals)
	got := RollingZScore(s, 12, 10)
	if got[len(got)-1].Value != nil {
		t.Fatalf("zero deviation must yield null, got %v", *got[len(got)-1].Value)
	}
}

func TestRollingZScoreValue(t *testing.T) {
	// ten 1s then a 5: classic outlier in its own window
	vals := make([]*float64, 11)
	for i := 0; i < 10; i++ {
		vals[i] = models.V(1)
	}
	vals[10] = models.V(5)
	s := mkSeries(0, vals)
	got := RollingZScore(s, 11, 10)
	last := got[len(got)-1]
	if last.Value == nil {
		t.Fatalf("expected a score at the outlier")
	}
	if *last.Value <= 2 {
		t.Fatalf("outlier score should exceed 2 sigma, got %v", *last.Value)
	}
}
