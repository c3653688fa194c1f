package repository

import (
	"sort"

	"OscLens/internal/domain/models"
)

// Kind classifies how a dataset is produced and rendered.
type Kind string

const (
	// KindPrice is a raw asset price series from the store.
	KindPrice Kind = "price"
	// KindOscillator is an externally sourced series normalized against the
	// asset price (dominance, basis, DVOL, funding).
	KindOscillator Kind = "oscillator"
	// KindIndicator is derived on demand from stored candles.
	KindIndicator Kind = "indicator"
	// KindOverlay renders on the price chart rather than the oscillator pane.
	KindOverlay Kind = "overlay"
)

// Dataset describes one registered series: its API name, where its raw data
// lives, and its display metadata.
type Dataset struct {
	Name      string
	Source    string // series store source name, empty for derived datasets
	Kind      Kind
	Indicator string // indicator name for KindIndicator/KindOverlay datasets
	Asset     string // candle symbol the indicator is derived from
	Meta      models.Metadata
}

// Derived reports whether the dataset is computed from candles instead of
// fetched from the series store.
func (d Dataset) Derived() bool { return d.Indicator != "" }

var registry = map[string]Dataset{
	"btc": {
		Name: "btc", Source: "btc_price", Kind: KindPrice,
		Meta: models.Metadata{Label: "Bitcoin Price", YAxisID: "price", YAxisLabel: "Price (USD)", Unit: "$", Color: "#F7931A", ChartType: "line"},
	},
	"eth_price_alpaca": {
		Name: "eth_price_alpaca", Source: "eth_price_alpaca", Kind: KindOscillator,
		Meta: models.Metadata{Label: "ETH (vs BTC)", YAxisID: "indicator", YAxisLabel: "Normalized Divergence (σ)", Unit: "σ", Color: "#627EEA", ChartType: "line"},
	},
	"spx_price_fmp": {
		Name: "spx_price_fmp", Source: "spx_price_fmp", Kind: KindOscillator,
		Meta: models.Metadata{Label: "SPX (vs BTC)", YAxisID: "indicator", YAxisLabel: "Normalized Divergence (σ)", Unit: "σ", Color: "#00C853", ChartType: "line"},
	},
	"gold_price_oscillator": {
		Name: "gold_price_oscillator", Source: "gold_price", Kind: KindOscillator,
		Meta: models.Metadata{Label: "Gold (vs BTC)", YAxisID: "indicator", YAxisLabel: "Normalized Divergence (σ)", Unit: "σ", Color: "#FFD700", ChartType: "line"},
	},
	"dxy_price_yfinance": {
		Name: "dxy_price_yfinance", Source: "dxy_price", Kind: KindOscillator,
		Meta: models.Metadata{Label: "DXY (vs BTC)", YAxisID: "indicator", YAxisLabel: "Normalized Divergence (σ)", Unit: "σ", Color: "#85BB65", ChartType: "line"},
	},
	"btc_dominance_cmc": {
		Name: "btc_dominance_cmc", Source: "btc_dominance", Kind: KindOscillator,
		Meta: models.Metadata{Label: "BTC.D (vs BTC)", YAxisID: "indicator", YAxisLabel: "Normalized Divergence (σ)", Unit: "σ", Color: "#FF6B35", ChartType: "line"},
	},
	"usdt_dominance_cmc": {
		Name: "usdt_dominance_cmc", Source: "usdt_dominance", Kind: KindOscillator,
		Meta: models.Metadata{Label: "USDT.D (vs BTC)", YAxisID: "indicator", YAxisLabel: "Normalized Divergence (σ)", Unit: "σ", Color: "#26A17B", ChartType: "line"},
	},
	"dvol_index_deribit": {
		Name: "dvol_index_deribit", Source: "dvol_btc", Kind: KindOscillator,
		Meta: models.Metadata{Label: "DVOL (vs BTC)", YAxisID: "indicator", YAxisLabel: "Normalized Divergence (σ)", Unit: "σ", Color: "#9C27B0", ChartType: "line"},
	},
	"basis_spread_binance": {
		Name: "basis_spread_binance", Source: "basis_spread_btc", Kind: KindOscillator,
		Meta: models.Metadata{Label: "Basis Spread (vs BTC)", YAxisID: "indicator", YAxisLabel: "Normalized Divergence (σ)", Unit: "σ", Color: "#00BCD4", ChartType: "line"},
	},
	"funding_rate_btc": {
		Name: "funding_rate_btc", Source: "funding_rate_btc", Kind: KindOscillator,
		Meta: models.Metadata{Label: "Funding Rate (Bitcoin Perpetual)", YAxisID: "percentage", YAxisLabel: "Funding Rate (%)", Unit: "%", Color: "#FF9500", ChartType: "area"},
	},
	"funding_rate_daily_btc": {
		Name: "funding_rate_daily_btc", Source: "funding_rate_daily_btc", Kind: KindOscillator,
		Meta: models.Metadata{Label: "Funding Rate Daily (Bitcoin)", YAxisID: "percentage", YAxisLabel: "Funding Rate (%)", Unit: "%", Color: "#FF9500", ChartType: "area"},
	},
	"stable_c_d": {
		Name: "stable_c_d", Source: "stable_c_d", Kind: KindOscillator,
		Meta: models.Metadata{Label: "Stablecoin Dominance (vs BTC)", YAxisID: "indicator", YAxisLabel: "Normalized Divergence (σ)", Unit: "σ", Color: "#2775CA", ChartType: "line"},
	},
	"rsi": {
		Name: "rsi", Source: "rsi_btc", Kind: KindIndicator, Indicator: "rsi", Asset: "btc",
		Meta: models.Metadata{Label: "RSI (Bitcoin)", YAxisID: "oscillator", YAxisLabel: "RSI", Color: "#FF9500", ChartType: "line"},
	},
	"macd_histogram": {
		Name: "macd_histogram", Source: "macd_histogram_btc", Kind: KindIndicator, Indicator: "macd_histogram", Asset: "btc",
		Meta: models.Metadata{Label: "MACD Histogram (Bitcoin)", YAxisID: "oscillator", YAxisLabel: "MACD", Color: "#5856D6", ChartType: "bar"},
	},
	"adx": {
		Name: "adx", Source: "adx_btc", Kind: KindIndicator, Indicator: "adx", Asset: "btc",
		Meta: models.Metadata{Label: "ADX (Bitcoin)", YAxisID: "oscillator", YAxisLabel: "ADX", Color: "#AF52DE", ChartType: "line"},
	},
	"atr": {
		Name: "atr", Source: "atr_btc", Kind: KindIndicator, Indicator: "atr", Asset: "btc",
		Meta: models.Metadata{Label: "ATR (Bitcoin)", YAxisID: "oscillator", YAxisLabel: "ATR", Color: "#FF2D55", ChartType: "line"},
	},
	"sma_7_btc": {
		Name: "sma_7_btc", Source: "sma_7_btc", Kind: KindOverlay, Indicator: "sma_7", Asset: "btc",
		Meta: models.Metadata{Label: "SMA 7 (Bitcoin)", YAxisID: "price", YAxisLabel: "Price (USD)", Unit: "$", Color: "#34C759", ChartType: "line"},
	},
	"sma_21_btc": {
		Name: "sma_21_btc", Source: "sma_21_btc", Kind: KindOverlay, Indicator: "sma_21", Asset: "btc",
		Meta: models.Metadata{Label: "SMA 21 (Bitcoin)", YAxisID: "price", YAxisLabel: "Price (USD)", Unit: "$", Color: "#FFCC00", ChartType: "line"},
	},
	"sma_60_btc": {
		Name: "sma_60_btc", Source: "sma_60_btc", Kind: KindOverlay, Indicator: "sma_60", Asset: "btc",
		Meta: models.Metadata{Label: "SMA 60 (Bitcoin)", YAxisID: "price", YAxisLabel: "Price (USD)", Unit: "$", Color: "#FF3B30", ChartType: "line"},
	},
	"psar_btc": {
		Name: "psar_btc", Source: "psar_btc", Kind: KindOverlay, Indicator: "psar", Asset: "btc",
		Meta: models.Metadata{Label: "Parabolic SAR (Bitcoin)", YAxisID: "price", YAxisLabel: "Price (USD)", Unit: "$", Color: "#8E8E93", ChartType: "scatter"},
	},
}

// LookupDataset resolves a dataset by its API name.
func LookupDataset(name string) (Dataset, bool) {
	d, ok := registry[name]
	return d, ok
}

// IsRegistered reports whether name is a known dataset.
func IsRegistered(name string) bool {
	_, ok := registry[name]
	return ok
}

// Datasets returns all registered descriptors sorted by name.
func Datasets() []Dataset {
	out := make([]Dataset, 0, len(registry))
	for _, d := range registry {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// PriceDataset returns the price dataset name for an asset symbol.
func PriceDataset(asset string) (Dataset, bool) {
	for _, d := range registry {
		if d.Kind == KindPrice && d.Name == asset {
			return d, true
		}
	}
	// price oscillators double as reference prices for non-BTC assets
	switch asset {
	case "eth":
		return registry["eth_price_alpaca"], true
	case "gold":
		return registry["gold_price_oscillator"], true
	}
	return Dataset{}, false
}
