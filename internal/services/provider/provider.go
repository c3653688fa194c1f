// Package provider resolves registered dataset names into series. Stored
// datasets come straight from the series store; indicator datasets are
// derived from daily candles on demand.
package provider

import (
	"context"
	"fmt"
	"time"

	"OscLens/internal/domain/models"
	domrepo "OscLens/internal/domain/repository"
	domsvc "OscLens/internal/domain/service"
	"OscLens/internal/services/indicator"
	applogger "OscLens/pkg/logger"
)

// indicatorWarmupDays is fetched in addition to the requested range so that
// derived indicators have history to warm up on. The slowest indicator in
// the registry (sma_60) needs 59 prior bars.
const indicatorWarmupDays = 120

// Store backed by ClickHouse plus a candle store for derived datasets.
type Store struct {
	series  domrepo.SeriesStore
	candles domrepo.CandleStore
	metrics domrepo.Metrics
	l       *applogger.Logger
}

// New creates a SeriesProvider over the two stores.
func New(series domrepo.SeriesStore, candles domrepo.CandleStore, metrics domrepo.Metrics, l *applogger.Logger) *Store {
	return &Store{series: series, candles: candles, metrics: metrics, l: l}
}

// ErrUnknownDataset is returned for names missing from the registry.
type ErrUnknownDataset struct {
	Name string
}

func (e *ErrUnknownDataset) Error() string {
	return fmt.Sprintf("unknown dataset: %s", e.Name)
}

// Fetch returns the most recent `days` of the named dataset.
func (s *Store) Fetch(ctx context.Context, dataset string, days int) (models.Series, error) {
	d, ok := domrepo.LookupDataset(dataset)
	if !ok {
		return nil, &ErrUnknownDataset{Name: dataset}
	}

	start := time.Now()
	to := time.Now().UTC()
	from := to.AddDate(0, 0, -days)

	var (
		out models.Series
		err error
	)
	if d.Derived() {
		out, err = s.fetchDerived(ctx, d, from, to)
	} else {
		out, err = s.series.Fetch(ctx, d.Source, from, to)
	}
	if err != nil {
		s.metrics.RecordError("provider_fetch")
		return nil, err
	}
	s.metrics.RecordLatency("provider_fetch", time.Since(start).Seconds())
	return out, nil
}

// Describe returns the display metadata for the named dataset.
func (s *Store) Describe(dataset string) (models.Metadata, error) {
	d, ok := domrepo.LookupDataset(dataset)
	if !ok {
		return models.Metadata{}, &ErrUnknownDataset{Name: dataset}
	}
	return d.Meta, nil
}

// fetchDerived computes an indicator over candles fetched with warmup
// history, then clips back to the requested range.
func (s *Store) fetchDerived(ctx context.Context, d domrepo.Dataset, from, to time.Time) (models.Series, error) {
	warmupFrom := from.AddDate(0, 0, -indicatorWarmupDays)
	candles, err := s.candles.GetCandles(ctx, d.Asset, warmupFrom, to, domrepo.TF1d)
	if err != nil {
		return nil, fmt.Errorf("candles for %s: %w", d.Name, err)
	}
	full, err := indicator.Compute(d.Indicator, candles)
	if err != nil {
		return nil, fmt.Errorf("compute %s: %w", d.Name, err)
	}
	out := full.ClipAfter(from.UnixMilli())
	if s.l != nil {
		s.l.Debug("derived dataset computed",
			applogger.String("dataset", d.Name),
			applogger.Int("candles", len(candles)),
			applogger.Int("points", len(out)),
		)
	}
	return out, nil
}

var _ domsvc.SeriesProvider = (*Store)(nil)
