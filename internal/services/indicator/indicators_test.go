package indicator

import (
	"math"
	"testing"

	"OscLens/internal/domain/models"
)

func candles(closes ...float64) []models.Candle {
	out := make([]models.Candle, 0, len(closes))
	for i, c := range closes {
		out = append(out, models.Candle{
			TS:     int64(i) * 86400000,
			Open:   c,
			High:   c * 1.01,
			Low:    c * 0.99,
			Close:  c,
			Volume: 100,
		})
	}
	return out
}

func TestComputeSMA(t *testing.T) {
	got, err := Compute("sma_3", candles(1, 2, 3, 4, 5))
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("output index must match input, got %d", len(got))
	}
	for i := 0; i < 2; i++ {
		if got[i].Value != nil {
			t.Fatalf("warmup must be null, index %d = %v", i, *got[i].Value)
		}
	}
	if got[2].Value == nil || math.Abs(*got[2].Value-2.0) > 1e-12 {
		t.Fatalf("expected SMA 2.0 at index 2, got %+v", got[2].Value)
	}
	if got[4].Value == nil || math.Abs(*got[4].Value-4.0) > 1e-12 {
		t.Fatalf("expected SMA 4.0 at index 4, got %+v", got[4].Value)
	}
}

func TestComputeRSIWarmup(t *testing.T) {
	cs := candles(44, 44.3, 44.1, 43.6, 44.3, 44.8, 45.1, 45.4, 45.8, 46.1,
		45.9, 46.3, 46.8, 46.4, 46.2, 45.6, 46.4, 46.2, 46.0, 46.1)
	got, err := Compute("rsi", cs)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	for i := 0; i < DefaultRSIPeriod; i++ {
		if got[i].Value != nil {
			t.Fatalf("rsi warmup must be null, index %d", i)
		}
	}
	last := got[len(got)-1]
	if last.Value == nil || *last.Value < 0 || *last.Value > 100 {
		t.Fatalf("rsi out of range: %+v", last.Value)
	}
}

func TestComputeUnknown(t *testing.T) {
	if _, err := Compute("vibes", candles(1, 2, 3)); err == nil {
		t.Fatalf("expected error for unknown indicator")
	}
	if _, err := Compute("rsi", nil); err == nil {
		t.Fatalf("expected error for empty candles")
	}
}

func TestIsIndicator(t *testing.T) {
	for _, name := range []string{"rsi", "macd_histogram", "adx", "atr", "psar", "sma_21"} {
		if !IsIndicator(name) {
			t.Fatalf("%s should be an indicator", name)
		}
	}
	for _, name := range []string{"btc", "dvol_btc", "sma_x"} {
		if IsIndicator(name) {
			t.Fatalf("%s should not be an indicator", name)
		}
	}
}
