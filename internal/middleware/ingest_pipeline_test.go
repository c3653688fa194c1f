package middleware

import (
	"context"
	"fmt"
	"testing"

	"OscLens/internal/domain/models"
)

type nopMetrics struct{}

func (nopMetrics) RecordRequest(string, string)        {}
func (nopMetrics) RecordNormalization(string, float64) {}
func (nopMetrics) RecordCacheHit(string)               {}
func (nopMetrics) RecordCacheMiss(string)              {}
func (nopMetrics) RecordIngest(string)                 {}
func (nopMetrics) RecordError(string)                  {}
func (nopMetrics) RecordLatency(string, float64)       {}

type captureProc struct {
	got  []*models.Candle
	fail bool
}

func (p *captureProc) Process(_ context.Context, c *models.Candle) error {
	if p.fail {
		return fmt.Errorf("sink down")
	}
	p.got = append(p.got, c)
	return nil
}

func bar(symbol string, ts int64) *models.Candle {
	return &models.Candle{TS: ts, Symbol: symbol, Open: 100, High: 110, Low: 95, Close: 105, Volume: 1}
}

func TestPipelineForwardsValidCandle(t *testing.T) {
	proc := &captureProc{}
	p := NewIngestPipeline(proc, nopMetrics{})

	if err := p.Process(context.Background(), bar("btc", 1000)); err != nil {
		t.Fatalf("process: %v", err)
	}
	if len(proc.got) != 1 || proc.got[0].TS != 1000 {
		t.Fatalf("expected one forwarded candle, got %+v", proc.got)
	}
}

func TestPipelineRejectsInvalidCandle(t *testing.T) {
	proc := &captureProc{}
	p := NewIngestPipeline(proc, nopMetrics{})

	c := bar("btc", 1000)
	c.High = 50 // below body
	if err := p.Process(context.Background(), c); err == nil {
		t.Fatalf("expected validation error")
	}
	if err := p.Process(context.Background(), nil); err == nil {
		t.Fatalf("expected error for nil candle")
	}
	if len(proc.got) != 0 {
		t.Fatalf("invalid candles must not reach downstream")
	}
}

func TestPipelineDeduplicatesReplays(t *testing.T) {
	proc := &captureProc{}
	p := NewIngestPipeline(proc, nopMetrics{})
	ctx := context.Background()

	if err := p.Process(ctx, bar("btc", 2000)); err != nil {
		t.Fatalf("process: %v", err)
	}
	// reconnect replays the same bar, then an older one
	if err := p.Process(ctx, bar("btc", 2000)); err != nil {
		t.Fatalf("duplicate should be dropped silently: %v", err)
	}
	if err := p.Process(ctx, bar("btc", 1000)); err != nil {
		t.Fatalf("stale bar should be dropped silently: %v", err)
	}
	// other symbols keep their own watermark
	if err := p.Process(ctx, bar("eth", 1000)); err != nil {
		t.Fatalf("process eth: %v", err)
	}
	if err := p.Process(ctx, bar("btc", 3000)); err != nil {
		t.Fatalf("process newer btc: %v", err)
	}

	if len(proc.got) != 3 {
		t.Fatalf("expected 3 forwarded candles, got %d", len(proc.got))
	}
}

func TestPipelineBuffersOnDownstreamError(t *testing.T) {
	proc := &captureProc{fail: true}
	p := NewIngestPipeline(proc, nopMetrics{}, WithBufferSize(4))

	if err := p.Process(context.Background(), bar("btc", 1000)); err == nil {
		t.Fatalf("expected downstream error")
	}
	if len(p.bufCh) != 1 {
		t.Fatalf("failed candle should be buffered, buffer depth %d", len(p.bufCh))
	}
}

func TestPipelineTransform(t *testing.T) {
	proc := &captureProc{}
	p := NewIngestPipeline(proc, nopMetrics{}, WithTransform(func(c *models.Candle) *models.Candle {
		c.Symbol = "btc"
		return c
	}))

	if err := p.Process(context.Background(), bar("BTCUSDT", 1000)); err != nil {
		t.Fatalf("process: %v", err)
	}
	if proc.got[0].Symbol != "btc" {
		t.Fatalf("transform not applied, symbol %s", proc.got[0].Symbol)
	}
}
