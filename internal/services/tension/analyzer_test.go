package tension

import (
	"testing"

	"OscLens/internal/domain/models"
)

func zseries(vals ...float64) models.NormalizedSeries {
	pts := make(models.Series, 0, len(vals))
	for i, v := range vals {
		vv := v
		pts = append(pts, models.Point{TS: int64(i) * 86400000, Value: &vv})
	}
	return models.NormalizedSeries{
		Points: pts,
		Meta:   models.NormalizationMeta{Window: 30, MinPeriods: 10, Method: "ols_residual"},
	}
}

func TestTensionBoundaryScenario(t *testing.T) {
	sentiment := zseries(1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 5)
	mechanics := zseries(0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0)

	a := New(11, 10)
	got := a.Analyze("fear_greed_vs_funding", sentiment, mechanics)

	if len(got.Tension1) != 11 {
		t.Fatalf("expected 11 tension1 points, got %d", len(got.Tension1))
	}
	last1 := got.Tension1[10]
	if last1.Value == nil || *last1.Value != 5 {
		t.Fatalf("tension1 at the break must be 5, got %+v", last1.Value)
	}

	last2 := got.Tension2[10]
	if last2.Value == nil {
		t.Fatalf("tension2 at the break must be scored")
	}
	if *last2.Value <= 2 {
		t.Fatalf("abnormal divergence must exceed 2 sigma, got %v", *last2.Value)
	}
}

func TestTensionAlignmentDropsNulls(t *testing.T) {
	sentiment := zseries(1, 2, 3)
	mechanics := zseries(1, 1, 1)
	mechanics.Points[1].Value = nil

	a := New(30, 10)
	got := a.Analyze("pair", sentiment, mechanics)
	if len(got.Tension1) != 2 {
		t.Fatalf("null leg observations must drop the aligned point, got %d", len(got.Tension1))
	}
}

func TestTensionSignals(t *testing.T) {
	r := models.TensionResult{
		Name: "pair",
		Tension1: models.Series{
			{TS: 0, Value: models.V(1.0)},
			{TS: 1, Value: models.V(-1.0)},
			{TS: 2, Value: models.V(0.5)},
		},
		Tension2: models.Series{
			{TS: 0, Value: models.V(2.5)},
			{TS: 1, Value: models.V(3.0)},
			{TS: 2, Value: models.V(1.0)},
		},
	}
	got := Signals(r, 2.0)
	if len(got.SellSignals) != 1 || got.SellSignals[0].TS != 0 {
		t.Fatalf("expected one sell signal at ts 0, got %+v", got.SellSignals)
	}
	if len(got.BuySignals) != 1 || got.BuySignals[0].TS != 1 {
		t.Fatalf("expected one buy signal at ts 1, got %+v", got.BuySignals)
	}
}

func TestTensionShortHistoryIsNull(t *testing.T) {
	sentiment := zseries(1, 2, 3)
	mechanics := zseries(0, 0, 0)
	a := New(30, 10)
	got := a.Analyze("pair", sentiment, mechanics)
	for i, p := range got.Tension2 {
		if p.Value != nil {
			t.Fatalf("short history must be null, index %d = %v", i, *p.Value)
		}
	}
}
