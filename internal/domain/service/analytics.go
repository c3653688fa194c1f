package service

import (
	"context"
	"time"

	"OscLens/internal/domain/models"
)

// SeriesProvider resolves registered dataset names into series plus display
// metadata, whether the data is stored or derived from candles.
type SeriesProvider interface {
	Fetch(ctx context.Context, dataset string, days int) (models.Series, error)
	Describe(dataset string) (models.Metadata, error)
}

// RegimeClassifier labels a volatility series with latent-state assignments.
type RegimeClassifier interface {
	Classify(vol models.Series) ([]models.RegimeLabel, error)
}

// VolatilityEstimator produces a per-bar volatility series from candles.
type VolatilityEstimator interface {
	Estimate(candles []models.Candle) models.Series
}

// TensionAnalyzer measures divergence between two normalized components.
type TensionAnalyzer interface {
	Analyze(name string, sentiment, mechanics models.NormalizedSeries) models.TensionResult
}

// ComputeCache memoizes expensive derived results. Concurrent callers with
// the same key share one computation.
type ComputeCache interface {
	Do(ctx context.Context, key string, ttl time.Duration, fn func(ctx context.Context) (interface{}, error)) (interface{}, error)
	Invalidate(ctx context.Context, key string) error
}
