package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"OscLens/internal/domain/models"
	"OscLens/internal/service/ratelimit"
	xhttp "OscLens/pkg/http"

	"golang.org/x/sync/errgroup"
)

// Binance enforces a request-weight budget per minute on the spot REST API.
// A modest token bucket keeps backfill bursts well under it.
const (
	restBurst      = 10
	restPerSecond  = 5
	restRetryDelay = 200 * time.Millisecond
)

// RestClient backfills historical klines over the Binance REST API. The
// stream only carries bars closed after startup; gaps are filled from here.
type RestClient struct {
	baseURL string
	client  *xhttp.Client
	limiter *ratelimit.Limiter
}

// NewRest creates a kline REST backfill client.
func NewRest(baseURL string, client *xhttp.Client) *RestClient {
	return &RestClient{baseURL: baseURL, client: client, limiter: ratelimit.New()}
}

// Klines fetches up to limit closed klines for one symbol. Binance returns
// arrays of mixed types; numeric fields arrive as strings.
func (r *RestClient) Klines(ctx context.Context, symbol, interval string, limit int) ([]*models.Candle, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}

	var raw [][]json.RawMessage
	err := r.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    r.baseURL + "/api/v3/klines",
		QueryParams: map[string][]string{
			"symbol":   {strings.ToUpper(symbol)},
			"interval": {interval},
			"limit":    {strconv.Itoa(limit)},
		},
	}, &raw)
	if err != nil {
		return nil, fmt.Errorf("binance klines %s: %w", symbol, err)
	}

	candles := make([]*models.Candle, 0, len(raw))
	for _, row := range raw {
		if len(row) < 6 {
			continue
		}
		c, err := parseKlineRow(symbol, row)
		if err != nil {
			return nil, fmt.Errorf("binance klines %s: %w", symbol, err)
		}
		candles = append(candles, c)
	}
	return candles, nil
}

// BackfillAll fetches klines for every symbol concurrently.
func (r *RestClient) BackfillAll(ctx context.Context, symbols []string, interval string, limit int) (map[string][]*models.Candle, error) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	var mu sync.Mutex
	out := make(map[string][]*models.Candle, len(symbols))
	for _, symbol := range symbols {
		symbol := symbol
		g.Go(func() error {
			candles, err := r.Klines(gctx, symbol, interval, limit)
			if err != nil {
				return err
			}
			mu.Lock()
			out[symbol] = candles
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// wait blocks until the token bucket admits one request or ctx is done.
func (r *RestClient) wait(ctx context.Context) error {
	for !r.limiter.Allow("klines", restBurst, restPerSecond) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(restRetryDelay):
		}
	}
	return nil
}

func parseKlineRow(symbol string, row []json.RawMessage) (*models.Candle, error) {
	var openTime int64
	if err := json.Unmarshal(row[0], &openTime); err != nil {
		return nil, fmt.Errorf("open time: %w", err)
	}
	fields := make([]float64, 5)
	for i := 1; i <= 5; i++ {
		var s string
		if err := json.Unmarshal(row[i], &s); err != nil {
			return nil, fmt.Errorf("field %d: %w", i, err)
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("field %d: %w", i, err)
		}
		fields[i-1] = v
	}
	return &models.Candle{
		TS:     openTime,
		Symbol: strings.ToLower(strings.TrimSuffix(strings.ToUpper(symbol), "USDT")),
		Open:   fields[0],
		High:   fields[1],
		Low:    fields[2],
		Close:  fields[3],
		Volume: fields[4],
	}, nil
}
