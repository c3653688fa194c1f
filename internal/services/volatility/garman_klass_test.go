package volatility

import (
	"math"
	"testing"

	"OscLens/internal/domain/models"
)

func TestGarmanKlassKnownValue(t *testing.T) {
	e := New(252)
	candles := []models.Candle{
		{TS: 0, Open: 100, High: 105, Low: 95, Close: 102},
	}
	got := e.Estimate(candles)
	if len(got) != 1 || got[0].Value == nil {
		t.Fatalf("expected one estimate, got %+v", got)
	}

	hl := math.Log(105.0 / 95.0)
	co := math.Log(102.0 / 100.0)
	variance := 0.5*hl*hl - (2*math.Ln2-1)*co*co
	want := math.Sqrt(variance*252) * 100

	if math.Abs(*got[0].Value-want) > 1e-9 {
		t.Fatalf("want %.12f got %.12f", want, *got[0].Value)
	}
}

func TestGarmanKlassInvalidBarIsNull(t *testing.T) {
	e := New(252)
	candles := []models.Candle{
		{TS: 0, Open: 100, High: 95, Low: 105, Close: 102},  // high < low
		{TS: 1, Open: -10, High: 105, Low: 95, Close: 102},  // non-positive price
		{TS: 2, Open: 100, High: 101, Low: 99, Close: 100},  // valid
		{TS: 3, Open: 100, High: 99, Low: 98, Close: 98.5},  // high below body
	}
	got := e.Estimate(candles)
	if len(got) != 4 {
		t.Fatalf("output index must match input, got %d", len(got))
	}
	for _, i := range []int{0, 1, 3} {
		if got[i].Value != nil {
			t.Fatalf("invalid bar %d must be null, got %v", i, *got[i].Value)
		}
	}
	if got[2].Value == nil {
		t.Fatalf("valid bar must produce an estimate")
	}
}

func TestGarmanKlassDefaultFactor(t *testing.T) {
	e := New(0)
	if e.AnnualizationFactor != DefaultAnnualizationFactor {
		t.Fatalf("expected default factor, got %v", e.AnnualizationFactor)
	}
}

func TestGarmanKlassFlatBar(t *testing.T) {
	e := New(252)
	got := e.Estimate([]models.Candle{{TS: 0, Open: 100, High: 100, Low: 100, Close: 100}})
	if got[0].Value == nil || *got[0].Value != 0 {
		t.Fatalf("flat bar should estimate zero volatility, got %+v", got[0].Value)
	}
}
