package repository

import (
	"context"
	"time"

	"OscLens/internal/domain/models"
)

// MarketStream is a live candle feed from an exchange websocket.
type MarketStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.Candle, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// Publisher forwards collected candles to the ingest topic.
type Publisher interface {
	Publish(ctx context.Context, c *models.Candle) error
	PublishBatch(ctx context.Context, candles []*models.Candle) error
	Close() error
}

// SeriesStore is the durable home of raw daily series.
type SeriesStore interface {
	Init(ctx context.Context) error // ensure tables, health checks
	Fetch(ctx context.Context, source string, from, to time.Time) (models.Series, error)
	StoreBatch(ctx context.Context, source string, points models.Series) error
	LatestTS(ctx context.Context, source string) (int64, error)
	Health(ctx context.Context) error // ping
	Close() error
}

// CandleStore is the durable home of OHLCV bars.
type CandleStore interface {
	GetCandles(ctx context.Context, symbol string, from, to time.Time, tf Timeframe) ([]models.Candle, error)
	GetLatestNCandles(ctx context.Context, symbol string, n int, tf Timeframe) ([]models.Candle, error)
	StoreCandles(ctx context.Context, candles []*models.Candle) error
}

// Metrics is the instrumentation sink shared across the pipeline.
type Metrics interface {
	RecordRequest(endpoint, status string)
	RecordNormalization(dataset string, seconds float64)
	RecordCacheHit(cache string)
	RecordCacheMiss(cache string)
	RecordIngest(symbol string)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
}
