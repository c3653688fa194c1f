package usecase

import (
	"context"
	"fmt"
	"time"

	domrepo "OscLens/internal/domain/repository"
	"OscLens/internal/service/binance"
	"OscLens/internal/services/compute"
	"OscLens/pkg/config"
	applogger "OscLens/pkg/logger"
	"OscLens/pkg/queue"
)

// refreshBackfillBars is how many recent bars each refresh re-pulls. Wide
// enough to heal multi-day outages without refetching full history.
const refreshBackfillBars = 30

// RefreshPayload names the candle symbols a refresh run should update. An
// empty list means every configured symbol.
type RefreshPayload struct {
	Symbols []string `json:"symbols"`
}

// RefreshJob re-pulls recent klines into the candle store and invalidates
// derived caches so the next request sees fresh data.
type RefreshJob struct {
	rest    *binance.RestClient
	candles domrepo.CandleStore
	cache   *compute.Cache
	cfg     *config.Config
	l       *applogger.Logger
}

func NewRefreshJob(rest *binance.RestClient, candles domrepo.CandleStore, cache *compute.Cache, cfg *config.Config, l *applogger.Logger) *RefreshJob {
	return &RefreshJob{rest: rest, candles: candles, cache: cache, cfg: cfg, l: l}
}

func (j *RefreshJob) Name() string { return "dataset-refresh" }
func (j *RefreshJob) Type() string { return "refresh.datasets" }

func (j *RefreshJob) Handle(ctx context.Context, payload interface{}) error {
	p, err := queue.ParsePayload[RefreshPayload](payload)
	if err != nil {
		return fmt.Errorf("refresh payload: %w", err)
	}
	symbols := p.Symbols
	if len(symbols) == 0 {
		symbols = j.cfg.Binance.Symbols
	}

	start := time.Now()
	fetched, err := j.rest.BackfillAll(ctx, symbols, j.cfg.Binance.Interval, refreshBackfillBars)
	if err != nil {
		return fmt.Errorf("refresh backfill: %w", err)
	}
	total := 0
	for symbol, candles := range fetched {
		if err := j.candles.StoreCandles(ctx, candles); err != nil {
			return fmt.Errorf("refresh store %s: %w", symbol, err)
		}
		total += len(candles)
	}

	if err := j.cache.InvalidatePrefix(ctx, "compute:"); err != nil {
		j.l.Warn("cache invalidation failed", applogger.Error(err))
	}

	j.l.Info("dataset refresh complete",
		applogger.Int("symbols", len(fetched)),
		applogger.Int("candles", total),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return nil
}

var _ queue.Job = (*RefreshJob)(nil)

// RefreshScheduler enqueues a refresh on a fixed interval.
type RefreshScheduler struct {
	publisher queue.QueueService
	interval  time.Duration
	l         *applogger.Logger
	stopCh    chan struct{}
}

func NewRefreshScheduler(publisher queue.QueueService, interval time.Duration, l *applogger.Logger) *RefreshScheduler {
	return &RefreshScheduler{
		publisher: publisher,
		interval:  interval,
		l:         l,
		stopCh:    make(chan struct{}),
	}
}

// Start runs the enqueue loop until Stop or context cancellation.
func (s *RefreshScheduler) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopCh:
				return
			case <-ticker.C:
				if err := s.publisher.PublishMessage(ctx, "refresh.datasets", RefreshPayload{}); err != nil {
					s.l.Error("enqueue refresh failed", applogger.Error(err))
				}
			}
		}
	}()
}

func (s *RefreshScheduler) Stop() { close(s.stopCh) }
