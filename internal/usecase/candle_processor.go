package usecase

import (
	"context"
	"fmt"
	"time"

	"OscLens/internal/domain/models"
	drepo "OscLens/internal/domain/repository"
)

// CandleProcessor publishes collected bars to the ingest topic. The Kafka
// consumer on the other side owns the ClickHouse write; a direct store is
// kept for single-process deployments without a broker.
type CandleProcessor struct {
	pub     drepo.Publisher
	store   drepo.CandleStore
	metrics drepo.Metrics
	batchSz int
	batchTO time.Duration
}

// NewCandleProcessor creates a new CandleProcessor instance.
func NewCandleProcessor(
	pub drepo.Publisher,
	store drepo.CandleStore,
	metrics drepo.Metrics,
	batchSz int,
	batchTO time.Duration,
) *CandleProcessor {
	return &CandleProcessor{
		pub:     pub,
		store:   store,
		metrics: metrics,
		batchSz: batchSz,
		batchTO: batchTO,
	}
}

// Process routes a single candle to the broker, or straight to storage when
// no publisher is configured.
func (p *CandleProcessor) Process(ctx context.Context, c *models.Candle) error {
	if c == nil {
		return fmt.Errorf("candle is nil")
	}

	start := time.Now()
	var err error
	switch {
	case p.pub != nil:
		err = p.pub.Publish(ctx, c)
	case p.store != nil:
		err = p.store.StoreCandles(ctx, []*models.Candle{c})
	default:
		err = fmt.Errorf("no sink configured")
	}

	if err != nil {
		p.metrics.RecordError("process")
		return fmt.Errorf("process candle: %w", err)
	}

	p.metrics.RecordLatency("process", time.Since(start).Seconds())
	return nil
}

// ProcessBatch routes multiple candles as one batch.
func (p *CandleProcessor) ProcessBatch(ctx context.Context, candles []*models.Candle) error {
	if len(candles) == 0 {
		return nil
	}

	start := time.Now()
	var err error
	switch {
	case p.pub != nil:
		err = p.pub.PublishBatch(ctx, candles)
	case p.store != nil:
		err = p.store.StoreCandles(ctx, candles)
	default:
		err = fmt.Errorf("no sink configured")
	}

	if err != nil {
		p.metrics.RecordError("process_batch")
		return fmt.Errorf("process batch: %w", err)
	}

	p.metrics.RecordLatency("process_batch", time.Since(start).Seconds())
	return nil
}

// Close closes underlying resources if available.
func (p *CandleProcessor) Close() {
	if p.pub != nil {
		_ = p.pub.Close()
	}
}
