package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"OscLens/internal/domain/models"
	domrepo "OscLens/internal/domain/repository"
	domsvc "OscLens/internal/domain/service"
	"OscLens/internal/services/compute"
	"OscLens/internal/services/normalize"
	"OscLens/internal/services/regime"
	"OscLens/internal/services/timeseries"
	"OscLens/pkg/config"
	applogger "OscLens/pkg/logger"
)

const msPerDay = int64(24 * 60 * 60 * 1000)

// rangeBufferDays pads fetches beyond the display range so rolling windows
// are warm at the left edge of the chart.
const rangeBufferDays = 10

// stockMarketDatasets trade weekdays only, so calendar-day fetches come up
// short. Request 1.5x the range to compensate.
var stockMarketDatasets = map[string]bool{
	"spx_price_fmp":         true,
	"gold_price_oscillator": true,
}

// OscillatorUsecase produces normalized divergence series, individually or
// aggregated into a weighted composite with a regime overlay.
type OscillatorUsecase struct {
	provider   domsvc.SeriesProvider
	candles    domrepo.CandleStore
	vol        domsvc.VolatilityEstimator
	classifier domsvc.RegimeClassifier
	cache      *compute.Cache
	cfg        *config.Config
	metrics    domrepo.Metrics
	l          *applogger.Logger
}

func NewOscillatorUsecase(
	provider domsvc.SeriesProvider,
	candles domrepo.CandleStore,
	vol domsvc.VolatilityEstimator,
	classifier domsvc.RegimeClassifier,
	cache *compute.Cache,
	cfg *config.Config,
	metrics domrepo.Metrics,
	l *applogger.Logger,
) *OscillatorUsecase {
	return &OscillatorUsecase{
		provider:   provider,
		candles:    candles,
		vol:        vol,
		classifier: classifier,
		cache:      cache,
		cfg:        cfg,
		metrics:    metrics,
		l:          l,
	}
}

// Individual normalizes each requested dataset against the asset price and
// returns them side by side.
func (u *OscillatorUsecase) Individual(ctx context.Context, req models.OscillatorRequest) (models.IndividualResult, error) {
	key := compute.Key("oscillator", "individual", req.Asset, req.Datasets,
		strconv.Itoa(req.Days), req.Normalizer)
	return compute.DoTyped(ctx, u.cache, key, u.cfg.Analytics.CacheTTL.Oscillator,
		func(ctx context.Context) (models.IndividualResult, error) {
			return u.individual(ctx, req)
		})
}

func (u *OscillatorUsecase) individual(ctx context.Context, req models.OscillatorRequest) (models.IndividualResult, error) {
	out := models.IndividualResult{
		Mode:       "individual",
		Asset:      req.Asset,
		Normalizer: req.Normalizer,
		Datasets:   make(map[string]models.DatasetPayload),
	}

	price, err := u.assetPrice(ctx, req.Asset, req.Days)
	if err != nil {
		return out, err
	}

	norm := normalize.New(u.cfg.Analytics.Window, u.cfg.Analytics.MinPeriods, normalize.Mode(req.Normalizer))
	for _, name := range splitDatasets(req.Datasets) {
		d, ok := domrepo.LookupDataset(name)
		if !ok || d.Kind == domrepo.KindPrice || d.Kind == domrepo.KindOverlay {
			u.l.Warn("skipping non-oscillator dataset", applogger.String("dataset", name))
			continue
		}
		start := time.Now()
		raw, err := u.provider.Fetch(ctx, name, req.Days)
		if err != nil {
			u.l.Warn("dataset fetch failed, skipping",
				applogger.String("dataset", name), applogger.Error(err))
			continue
		}
		ns := norm.Normalize(raw, price)
		u.metrics.RecordNormalization(name, time.Since(start).Seconds())

		out.Datasets[name] = models.DatasetPayload{Data: ns.Points, Metadata: d.Meta}
	}
	if len(out.Datasets) == 0 {
		return out, fmt.Errorf("no datasets could be normalized")
	}
	return out, nil
}

// Composite builds the weighted composite oscillator plus its regime overlay
// and per-component breakdown.
func (u *OscillatorUsecase) Composite(ctx context.Context, req models.OscillatorRequest) (models.CompositeResult, error) {
	key := compute.Key("oscillator", "composite", req.Asset, req.Datasets,
		strconv.Itoa(req.Days), req.Normalizer, strconv.Itoa(req.NoiseLevel))
	return compute.DoTyped(ctx, u.cache, key, u.cfg.Analytics.CacheTTL.Oscillator,
		func(ctx context.Context) (models.CompositeResult, error) {
			return u.composite(ctx, req)
		})
}

func (u *OscillatorUsecase) composite(ctx context.Context, req models.OscillatorRequest) (models.CompositeResult, error) {
	out := models.CompositeResult{
		Mode:       "composite",
		Asset:      req.Asset,
		NoiseLevel: req.NoiseLevel,
		Breakdown:  make(map[string]models.DatasetPayload),
	}

	// Fetch beyond the display range so the rolling window is warm where
	// the chart starts.
	fetchDays := req.Days + req.NoiseLevel + rangeBufferDays
	price, err := u.assetPrice(ctx, req.Asset, fetchDays)
	if err != nil {
		return out, err
	}

	norm := normalize.New(req.NoiseLevel, u.cfg.Analytics.MinPeriods, normalize.Mode(req.Normalizer))
	components := make(map[string]models.NormalizedSeries)
	names := make([]string, 0)
	for _, name := range splitDatasets(req.Datasets) {
		d, ok := domrepo.LookupDataset(name)
		if !ok || d.Kind == domrepo.KindPrice || d.Kind == domrepo.KindOverlay {
			u.l.Warn("skipping non-oscillator dataset", applogger.String("dataset", name))
			continue
		}
		days := fetchDays
		if stockMarketDatasets[name] {
			days = fetchDays * 3 / 2
		}
		start := time.Now()
		raw, err := u.provider.Fetch(ctx, name, days)
		if err != nil {
			u.l.Warn("dataset fetch failed, skipping",
				applogger.String("dataset", name), applogger.Error(err))
			continue
		}
		ns := norm.Normalize(raw, price)
		u.metrics.RecordNormalization(name, time.Since(start).Seconds())
		if ns.Points.NonNullCount() == 0 {
			u.l.Warn("normalization produced no values, skipping",
				applogger.String("dataset", name))
			continue
		}
		components[name] = ns
		names = append(names, name)
	}
	if len(components) == 0 {
		return out, fmt.Errorf("no oscillators could be normalized")
	}

	weights := u.compositeWeights(names)
	composite := normalize.Composite(components, weights)
	composite = clipToDays(composite, req.Days)
	out.Composite = models.DatasetPayload{
		Data: composite,
		Metadata: models.Metadata{
			Label:      "Composite Regression Divergence",
			YAxisID:    "zscore",
			YAxisLabel: "Standard Deviations",
			Unit:       "σ",
			Color:      "#00D9FF",
			ChartType:  "line",
		},
	}

	// Breakdown keeps the non-inverted normalized values so component charts
	// stay intuitive even when the composite flips a sign.
	for name, ns := range components {
		d, _ := domrepo.LookupDataset(name)
		out.Breakdown[name] = models.DatasetPayload{
			Data:     clipToDays(ns.Points, req.Days),
			Metadata: d.Meta,
		}
	}

	regimeResult, err := u.compositeRegime(ctx, req, components)
	if err != nil {
		u.l.Warn("regime classification unavailable", applogger.Error(err))
	} else {
		out.Regime = regimeResult
	}
	return out, nil
}

// compositeRegime fits the volatility regime over the candles that fall on
// the composite's shared timestamps, then clips to the display range.
func (u *OscillatorUsecase) compositeRegime(ctx context.Context, req models.OscillatorRequest, components map[string]models.NormalizedSeries) (*models.RegimeResult, error) {
	series := make([]models.Series, 0, len(components))
	for _, ns := range components {
		series = append(series, ns.Points)
	}
	common := timeseries.Intersect(series...)
	if len(common) == 0 {
		return nil, fmt.Errorf("no common timestamps across components")
	}

	fetchDays := req.Days + req.NoiseLevel + rangeBufferDays
	to := time.Now().UTC()
	from := to.AddDate(0, 0, -fetchDays)
	candles, err := u.candles.GetCandles(ctx, req.Asset, from, to, domrepo.TF1d)
	if err != nil {
		return nil, fmt.Errorf("candles for regime: %w", err)
	}

	keep := make(map[int64]struct{}, len(common))
	for _, ts := range common {
		keep[ts] = struct{}{}
	}
	aligned := make([]models.Candle, 0, len(common))
	for _, c := range candles {
		if _, ok := keep[c.TS]; ok {
			aligned = append(aligned, c)
		}
	}

	vol := u.vol.Estimate(aligned)
	labels, err := u.classifier.Classify(vol)
	if err != nil {
		return nil, err
	}
	labels = clipLabelsToDays(labels, req.Days)
	return &models.RegimeResult{Data: labels, Metadata: regime.Metadata()}, nil
}

func (u *OscillatorUsecase) compositeWeights(names []string) models.CompositeConfig {
	cfg := models.EqualWeights(names)
	for name, w := range u.cfg.Analytics.Weights {
		if cw, ok := cfg[name]; ok {
			cw.Weight = w
			cfg[name] = cw
		}
	}
	// High ATR reads as risk, not strength; it contributes inverted.
	if cw, ok := cfg["atr"]; ok {
		cw.Invert = true
		cfg["atr"] = cw
	}
	return cfg
}

// assetPrice fetches the reference price series for normalization.
func (u *OscillatorUsecase) assetPrice(ctx context.Context, asset string, days int) (models.Series, error) {
	d, ok := domrepo.PriceDataset(asset)
	if !ok {
		return nil, fmt.Errorf("no price dataset for asset %s", asset)
	}
	price, err := u.provider.Fetch(ctx, d.Name, days)
	if err != nil {
		return nil, fmt.Errorf("price for %s: %w", asset, err)
	}
	if len(price) == 0 {
		return nil, fmt.Errorf("no %s price data available", asset)
	}
	return price, nil
}

// clipToDays trims a series to the final N days, anchored on the last point
// rather than the wall clock so stale data still renders a full window.
func clipToDays(s models.Series, days int) models.Series {
	if len(s) == 0 {
		return s
	}
	cutoff := s[len(s)-1].TS - int64(days)*msPerDay
	return s.ClipAfter(cutoff)
}

func clipLabelsToDays(labels []models.RegimeLabel, days int) []models.RegimeLabel {
	if len(labels) == 0 {
		return labels
	}
	cutoff := labels[len(labels)-1].TS - int64(days)*msPerDay
	out := make([]models.RegimeLabel, 0, len(labels))
	for _, l := range labels {
		if l.TS >= cutoff {
			out = append(out, l)
		}
	}
	return out
}

func splitDatasets(param string) []string {
	parts := strings.Split(param, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
