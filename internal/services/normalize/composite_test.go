package normalize

import (
	"testing"

	"OscLens/internal/domain/models"
)

func normalized(points models.Series) models.NormalizedSeries {
	return models.NormalizedSeries{
		Points: points,
		Meta:   models.NormalizationMeta{Window: 30, MinPeriods: 10, Method: "ols_residual"},
	}
}

func TestCompositeEqualWeightMean(t *testing.T) {
	comps := map[string]models.NormalizedSeries{
		"rsi": normalized(models.Series{{TS: 0, Value: models.V(2.0)}}),
		"adx": normalized(models.Series{{TS: 0, Value: models.V(0.0)}}),
	}
	cfg := models.EqualWeights([]string{"rsi", "adx"})
	got := Composite(comps, cfg)
	if len(got) != 1 || got[0].Value == nil {
		t.Fatalf("expected one scored point, got %+v", got)
	}
	// divisor is the active-component count, not a fixed total
	if *got[0].Value != 1.0 {
		t.Fatalf("expected simple mean 1.0, got %v", *got[0].Value)
	}
}

func TestCompositeAllNullStaysInIndex(t *testing.T) {
	comps := map[string]models.NormalizedSeries{
		"rsi": normalized(models.Series{{TS: 0, Value: nil}, {TS: 1, Value: models.V(1)}}),
		"adx": normalized(models.Series{{TS: 0, Value: nil}, {TS: 1, Value: models.V(3)}}),
	}
	got := Composite(comps, models.EqualWeights([]string{"rsi", "adx"}))
	if len(got) != 2 {
		t.Fatalf("all-null timestamp must stay in the index, got %d points", len(got))
	}
	if got[0].Value != nil {
		t.Fatalf("all-null timestamp must be null, got %v", *got[0].Value)
	}
	if got[1].Value == nil || *got[1].Value != 2.0 {
		t.Fatalf("expected mean 2.0 at second point, got %+v", got[1].Value)
	}
}

func TestCompositePartialNullUsesActiveCount(t *testing.T) {
	comps := map[string]models.NormalizedSeries{
		"rsi": normalized(models.Series{{TS: 0, Value: models.V(3.0)}}),
		"adx": normalized(models.Series{{TS: 0, Value: nil}}),
	}
	got := Composite(comps, models.EqualWeights([]string{"rsi", "adx"}))
	if got[0].Value == nil || *got[0].Value != 3.0 {
		t.Fatalf("single active component should pass through, got %+v", got[0].Value)
	}
}

func TestCompositeInvertFlag(t *testing.T) {
	comps := map[string]models.NormalizedSeries{
		"atr": normalized(models.Series{{TS: 0, Value: models.V(1.5)}}),
	}
	cfg := models.CompositeConfig{"atr": {Weight: 1.0, Invert: true}}
	got := Composite(comps, cfg)
	if got[0].Value == nil || *got[0].Value != -1.5 {
		t.Fatalf("inverted component should flip sign, got %+v", got[0].Value)
	}
}

func TestCompositeWeightsUsedAsGiven(t *testing.T) {
	comps := map[string]models.NormalizedSeries{
		"a": normalized(models.Series{{TS: 0, Value: models.V(1.0)}}),
		"b": normalized(models.Series{{TS: 0, Value: models.V(1.0)}}),
	}
	cfg := models.CompositeConfig{
		"a": {Weight: 3.0},
		"b": {Weight: 1.0},
	}
	got := Composite(comps, cfg)
	// (3*1 + 1*1) / 2 — no renormalization of the supplied weights
	if got[0].Value == nil || *got[0].Value != 2.0 {
		t.Fatalf("expected 2.0 from unnormalized weights, got %+v", got[0].Value)
	}
}

func TestCompositeEmpty(t *testing.T) {
	if got := Composite(nil, nil); got != nil {
		t.Fatalf("expected nil for no components, got %+v", got)
	}
}
