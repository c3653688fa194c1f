package repository

import (
	"sort"
	"testing"
)

func TestLookupDataset(t *testing.T) {
	d, ok := LookupDataset("btc")
	if !ok {
		t.Fatalf("btc should be registered")
	}
	if d.Kind != KindPrice {
		t.Fatalf("btc kind = %s, want %s", d.Kind, KindPrice)
	}
	if d.Source != "btc_price" {
		t.Fatalf("btc source = %s, want btc_price", d.Source)
	}

	if _, ok := LookupDataset("nope"); ok {
		t.Fatalf("unregistered name should not resolve")
	}
}

func TestDerivedDatasets(t *testing.T) {
	cases := []struct {
		name    string
		derived bool
	}{
		{"rsi", true},
		{"macd_histogram", true},
		{"sma_21_btc", true},
		{"btc", false},
		{"funding_rate_btc", false},
	}
	for _, tc := range cases {
		d, ok := LookupDataset(tc.name)
		if !ok {
			t.Fatalf("%s should be registered", tc.name)
		}
		if d.Derived() != tc.derived {
			t.Fatalf("%s derived = %v, want %v", tc.name, d.Derived(), tc.derived)
		}
	}
}

func TestDatasetsSorted(t *testing.T) {
	all := Datasets()
	if len(all) == 0 {
		t.Fatalf("registry is empty")
	}
	names := make([]string, len(all))
	for i, d := range all {
		names[i] = d.Name
	}
	if !sort.StringsAreSorted(names) {
		t.Fatalf("Datasets() not sorted: %v", names)
	}
}

func TestPriceDataset(t *testing.T) {
	cases := map[string]string{
		"btc":  "btc",
		"eth":  "eth_price_alpaca",
		"gold": "gold_price_oscillator",
	}
	for asset, want := range cases {
		d, ok := PriceDataset(asset)
		if !ok {
			t.Fatalf("no price dataset for %s", asset)
		}
		if d.Name != want {
			t.Fatalf("price dataset for %s = %s, want %s", asset, d.Name, want)
		}
	}
	if _, ok := PriceDataset("doge"); ok {
		t.Fatalf("unknown asset should not resolve")
	}
}

func TestNormalizeTimeframe(t *testing.T) {
	if got := NormalizeTimeframe(""); got != TF1d {
		t.Fatalf("empty timeframe = %s, want %s", got, TF1d)
	}
	if got := NormalizeTimeframe("4h"); got != TF4h {
		t.Fatalf("4h timeframe = %s, want %s", got, TF4h)
	}
	if !IsValidTimeframe("1h") || IsValidTimeframe("5m") {
		t.Fatalf("timeframe validity mismatch")
	}
}
