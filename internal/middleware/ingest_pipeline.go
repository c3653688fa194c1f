package middleware

import (
	"context"
	"fmt"
	"sync"
	"time"

	"OscLens/internal/domain/models"
	domrepo "OscLens/internal/domain/repository"
)

// Proc is the minimal processor interface the pipeline needs.
type Proc interface {
	Process(ctx context.Context, c *models.Candle) error
}

// IngestPipeline sits between the exchange stream and the downstream sink.
// It validates bars, deduplicates stream replays after reconnects, and
// buffers when downstream is unavailable.
type IngestPipeline struct {
	proc    Proc
	metrics domrepo.Metrics
	bufSize int
	bufCh   chan *models.Candle
	stopCh  chan struct{}
	started bool
	mu      sync.Mutex
	lastTS  map[string]int64 // per-symbol open time of the last accepted bar
	// simple format transform hook (optional)
	transform func(*models.Candle) *models.Candle
	// metrics
	bufDepthGauge func(int)
}

type PipelineOption func(*IngestPipeline)

// WithBufferSize sets the temporary buffer size when downstream is unavailable.
func WithBufferSize(n int) PipelineOption {
	return func(p *IngestPipeline) {
		if n > 0 {
			p.bufSize = n
		}
	}
}

// WithTransform sets a transformation hook to modify candle format.
func WithTransform(fn func(*models.Candle) *models.Candle) PipelineOption {
	return func(p *IngestPipeline) { p.transform = fn }
}

// NewIngestPipeline creates a new pipeline.
func NewIngestPipeline(proc Proc, metrics domrepo.Metrics, opts ...PipelineOption) *IngestPipeline {
	p := &IngestPipeline{
		proc:    proc,
		metrics: metrics,
		bufSize: 1000, // default buffer
		bufCh:   make(chan *models.Candle, 1000),
		stopCh:  make(chan struct{}),
		lastTS:  make(map[string]int64),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.bufSize != cap(p.bufCh) {
		p.bufCh = make(chan *models.Candle, p.bufSize)
	}
	p.bufDepthGauge = func(n int) { p.metrics.RecordLatency("pipeline_buffer_depth", float64(n)) }
	return p
}

// Start launches background flushing of buffered candles.
func (p *IngestPipeline) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.mu.Unlock()

	go func() {
		backoff := 50 * time.Millisecond
		for {
			select {
			case <-p.stopCh:
				return
			case c := <-p.bufCh:
				if c == nil {
					continue
				}
				if err := p.proc.Process(ctx, c); err != nil {
					// exponential backoff with cap
					if backoff < 2*time.Second {
						backoff *= 2
					}
					p.metrics.RecordError("pipeline_flush")
					time.Sleep(backoff)
					// requeue if space; drop otherwise
					select {
					case p.bufCh <- c:
					default:
						p.metrics.RecordError("pipeline_buffer_drop")
					}
				} else {
					backoff = 50 * time.Millisecond
				}
			}
		}
	}()
}

// Stop stops the background flushing.
func (p *IngestPipeline) Stop() {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	p.started = false
	p.mu.Unlock()
	close(p.stopCh)
}

// Process validates, deduplicates, and forwards the candle downstream,
// buffering on errors.
func (p *IngestPipeline) Process(ctx context.Context, c *models.Candle) error {
	start := time.Now()
	if c == nil {
		p.metrics.RecordError("pipeline_validate")
		return fmt.Errorf("candle nil")
	}
	if err := c.Validate(); err != nil {
		p.metrics.RecordError("pipeline_validate")
		return fmt.Errorf("pipeline validate: %w", err)
	}
	if p.transform != nil {
		c = p.transform(c)
		if err := c.Validate(); err != nil {
			p.metrics.RecordError("pipeline_transform_invalid")
			return fmt.Errorf("pipeline transform: %w", err)
		}
	}
	if !p.accept(c) {
		// replayed or stale bar; drop silently
		p.metrics.RecordError("pipeline_duplicate")
		return nil
	}

	if err := p.proc.Process(ctx, c); err != nil {
		p.metrics.RecordError("pipeline_process")
		// buffer non-blocking
		select {
		case p.bufCh <- c:
			if p.bufDepthGauge != nil {
				p.bufDepthGauge(len(p.bufCh))
			}
		default:
			p.metrics.RecordError("pipeline_buffer_full")
		}
		return fmt.Errorf("pipeline downstream: %w", err)
	}
	p.metrics.RecordLatency("pipeline_process", time.Since(start).Seconds())
	return nil
}

// accept rejects bars at or before the last accepted open time for the
// symbol. Reconnects replay the most recent closed bar.
func (p *IngestPipeline) accept(c *models.Candle) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if last, ok := p.lastTS[c.Symbol]; ok && c.TS <= last {
		return false
	}
	p.lastTS[c.Symbol] = c.TS
	return true
}
