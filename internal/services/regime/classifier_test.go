package regime

import (
	"errors"
	"testing"

	"OscLens/internal/domain/models"
)

// syntheticVol builds a deterministic two-block volatility series: a calm
// block around lowLevel followed by a stressed block around highLevel, with
// bounded jitter so neither block is perfectly flat.
func syntheticVol(nLow, nHigh int, lowLevel, highLevel float64) models.Series {
	s := make(models.Series, 0, nLow+nHigh)
	ts := int64(0)
	for i := 0; i < nLow; i++ {
		v := lowLevel + float64(i%7)*0.4
		s = append(s, models.Point{TS: ts, Value: &v})
		ts += 86400000
	}
	for i := 0; i < nHigh; i++ {
		v := highLevel + float64(i%5)*1.3
		s = append(s, models.Point{TS: ts, Value: &v})
		ts += 86400000
	}
	return s
}

func labelMeans(t *testing.T, vol models.Series, labels []models.RegimeLabel) (float64, float64) {
	t.Helper()
	byTS := make(map[int64]float64, len(vol))
	for _, p := range vol {
		if p.Value != nil {
			byTS[p.TS] = *p.Value
		}
	}
	var sum [2]float64
	var n [2]float64
	for _, l := range labels {
		v, ok := byTS[l.TS]
		if !ok {
			t.Fatalf("label at %d has no volatility observation", l.TS)
		}
		sum[l.State] += v
		n[l.State]++
	}
	if n[0] == 0 || n[1] == 0 {
		t.Fatalf("expected both states populated, counts %v", n)
	}
	return sum[0] / n[0], sum[1] / n[1]
}

func TestClassifyOrderingInvariant(t *testing.T) {
	vol := syntheticVol(60, 60, 12, 55)
	c := New(30)
	labels, err := c.Classify(vol)
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if len(labels) != 120 {
		t.Fatalf("expected one label per observation, got %d", len(labels))
	}
	mean0, mean1 := labelMeans(t, vol, labels)
	if mean0 > mean1 {
		t.Fatalf("state 0 must be the low-vol state: mean0=%v mean1=%v", mean0, mean1)
	}
}

func TestClassifySeparatesBlocks(t *testing.T) {
	vol := syntheticVol(50, 50, 10, 60)
	c := New(30)
	labels, err := c.Classify(vol)
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	// the calm block should be overwhelmingly state 0, stressed block state 1
	lowHits, highHits := 0, 0
	for i, l := range labels {
		if i < 50 && l.State == 0 {
			lowHits++
		}
		if i >= 50 && l.State == 1 {
			highHits++
		}
	}
	if lowHits < 45 || highHits < 45 {
		t.Fatalf("weak separation: lowHits=%d highHits=%d", lowHits, highHits)
	}
}

func TestClassifyInsufficientData(t *testing.T) {
	vol := syntheticVol(10, 10, 10, 50)
	c := New(30)
	_, err := c.Classify(vol)
	if err == nil {
		t.Fatalf("expected insufficient data error")
	}
	var ie *ErrInsufficientData
	if !errors.As(err, &ie) {
		t.Fatalf("expected ErrInsufficientData, got %T: %v", err, err)
	}
	if ie.Have != 20 || ie.Need != 30 {
		t.Fatalf("unexpected counts %+v", ie)
	}
}

func TestClassifySkipsNulls(t *testing.T) {
	vol := syntheticVol(30, 30, 10, 50)
	vol[5].Value = nil
	vol[40].Value = nil
	c := New(30)
	labels, err := c.Classify(vol)
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	if len(labels) != 58 {
		t.Fatalf("null observations must not be labeled, got %d labels", len(labels))
	}
}

func TestClipToWindow(t *testing.T) {
	labels := []models.RegimeLabel{{TS: 1}, {TS: 2, State: 1}, {TS: 3}}
	got := ClipToWindow(labels, []int64{2, 3})
	if len(got) != 2 || got[0].TS != 2 || got[1].TS != 3 {
		t.Fatalf("unexpected clip result %+v", got)
	}
	if got := ClipToWindow(labels, nil); got != nil {
		t.Fatalf("empty window must clip everything, got %+v", got)
	}
}

func TestMetadataStability(t *testing.T) {
	a, b := Metadata(), Metadata()
	if a.States[0].Name != "low-vol" || a.States[1].Name != "high-vol" {
		t.Fatalf("unexpected state names %+v", a.States)
	}
	if a.States[0] != b.States[0] || a.States[1] != b.States[1] {
		t.Fatalf("metadata must be stable across calls")
	}
}
