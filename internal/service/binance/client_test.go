package binance

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

func TestStreamNames(t *testing.T) {
	c := &Client{symbols: []string{"BTCUSDT", "ETHUSDT"}, interval: "1d"}
	want := "btcusdt@kline_1d/ethusdt@kline_1d"
	if got := c.streamNames(); got != want {
		t.Fatalf("streamNames = %q, want %q", got, want)
	}
}

func TestKlineToCandle(t *testing.T) {
	frame := []byte(`{
		"stream": "btcusdt@kline_1d",
		"data": {
			"e": "kline",
			"k": {
				"t": 1609459200000,
				"s": "BTCUSDT",
				"i": "1d",
				"o": "28923.63",
				"c": "29600.00",
				"h": "29600.00",
				"l": "28624.57",
				"v": "54182.92",
				"x": true
			}
		}
	}`)

	var f wsFrame
	if err := json.Unmarshal(frame, &f); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if f.Data.Type != "kline" || !f.Data.Kline.Closed {
		t.Fatalf("frame not recognized as closed kline: %+v", f.Data)
	}

	c, err := f.Data.Kline.toCandle()
	if err != nil {
		t.Fatalf("toCandle: %v", err)
	}
	if c.Symbol != "btc" {
		t.Fatalf("symbol = %q, want btc", c.Symbol)
	}
	if c.TS != 1609459200000 {
		t.Fatalf("ts = %d", c.TS)
	}
	if c.Open != 28923.63 || c.Close != 29600 || c.Volume != 54182.92 {
		t.Fatalf("unexpected OHLCV: %+v", c)
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("candle should validate: %v", err)
	}
}

func TestKlineToCandleBadNumber(t *testing.T) {
	k := wsKline{OpenTime: 1, Symbol: "BTCUSDT", Open: "not-a-number", High: "1", Low: "1", Close: "1", Volume: "1"}
	if _, err := k.toCandle(); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestParseKlineRow(t *testing.T) {
	raw := []byte(`[1609459200000,"28923.63","29600.00","28624.57","29331.69","54182.92",1609545599999,"0",0,"0","0","0"]`)
	var row []json.RawMessage
	if err := json.Unmarshal(raw, &row); err != nil {
		t.Fatalf("unmarshal row: %v", err)
	}

	c, err := parseKlineRow("BTCUSDT", row)
	if err != nil {
		t.Fatalf("parseKlineRow: %v", err)
	}
	if c.Symbol != "btc" || c.TS != 1609459200000 {
		t.Fatalf("unexpected candle identity: %+v", c)
	}
	if c.High != 29600 || c.Low != 28624.57 || c.Close != 29331.69 {
		t.Fatalf("unexpected prices: %+v", c)
	}
}

func TestRestWaitRespectsContext(t *testing.T) {
	r := NewRest("https://example.invalid", nil)
	// drain the burst
	for i := 0; i < restBurst; i++ {
		if err := r.wait(context.Background()); err != nil {
			t.Fatalf("burst wait %d: %v", i, err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := r.wait(ctx); err == nil {
		t.Fatalf("expected context deadline while throttled")
	}
}
