package usecase

import (
	"testing"

	"OscLens/internal/domain/models"
	"OscLens/pkg/config"
)

func TestSplitDatasets(t *testing.T) {
	got := splitDatasets("rsi, atr ,,dvol_index_deribit")
	want := []string{"rsi", "atr", "dvol_index_deribit"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestClipToDaysAnchorsOnLastPoint(t *testing.T) {
	s := models.Series{
		{TS: 0, Value: models.V(1)},
		{TS: 5 * msPerDay, Value: models.V(2)},
		{TS: 10 * msPerDay, Value: models.V(3)},
	}
	got := clipToDays(s, 5)
	if len(got) != 2 {
		t.Fatalf("expected 2 points inside the window, got %d", len(got))
	}
	if got[0].TS != 5*msPerDay {
		t.Fatalf("first kept point at %d", got[0].TS)
	}

	if out := clipToDays(nil, 5); len(out) != 0 {
		t.Fatalf("empty series should stay empty")
	}
}

func TestClipLabelsToDays(t *testing.T) {
	labels := []models.RegimeLabel{
		{TS: 0, State: 0},
		{TS: 3 * msPerDay, State: 1},
		{TS: 10 * msPerDay, State: 0},
	}
	got := clipLabelsToDays(labels, 7)
	if len(got) != 2 {
		t.Fatalf("expected 2 labels, got %d", len(got))
	}
	if got[0].TS != 3*msPerDay {
		t.Fatalf("first kept label at %d", got[0].TS)
	}
}

func TestCompositeWeights(t *testing.T) {
	cfg := &config.Config{}
	cfg.Analytics.Weights = map[string]float64{"rsi": 2.5, "unknown": 9}
	u := &OscillatorUsecase{cfg: cfg}

	weights := u.compositeWeights([]string{"rsi", "atr", "dvol_index_deribit"})
	if len(weights) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(weights))
	}
	if weights["rsi"].Weight != 2.5 {
		t.Fatalf("rsi weight = %v, want config override 2.5", weights["rsi"].Weight)
	}
	if !weights["atr"].Invert {
		t.Fatalf("atr must contribute inverted")
	}
	if weights["dvol_index_deribit"].Invert {
		t.Fatalf("only atr is inverted")
	}
	if _, ok := weights["unknown"]; ok {
		t.Fatalf("weights for unrequested datasets must not appear")
	}
}
