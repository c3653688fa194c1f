package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"OscLens/internal/domain/models"
	drepo "OscLens/internal/domain/repository"

	"github.com/gorilla/websocket"
)

// Client implements a MarketStream backed by Binance kline WebSocket.
type Client struct {
	websocketURL   string
	symbols        []string
	interval       string
	reconnectDelay time.Duration
	pingInterval   time.Duration

	conn      *websocket.Conn
	connected bool
}

// New creates a new Binance kline MarketStream.
func New(websocketURL string, symbols []string, interval string, reconnectDelay, pingInterval time.Duration) drepo.MarketStream {
	return &Client{
		websocketURL:   websocketURL,
		symbols:        symbols,
		interval:       interval,
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
	}
}

// streamNames builds the combined-stream path segment, e.g.
// btcusdt@kline_1d/ethusdt@kline_1d.
func (c *Client) streamNames() string {
	parts := make([]string, 0, len(c.symbols))
	for _, s := range c.symbols {
		parts = append(parts, fmt.Sprintf("%s@kline_%s", strings.ToLower(s), c.interval))
	}
	return strings.Join(parts, "/")
}

// Connect establishes the WebSocket connection. Binance combined streams
// carry the subscription in the URL, so Subscribe is a no-op afterwards.
func (c *Client) Connect(ctx context.Context) error {
	u := fmt.Sprintf("%s/stream?streams=%s", c.websocketURL, c.streamNames())
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		return fmt.Errorf("binance connect: %w", err)
	}
	c.conn = conn
	c.connected = true
	log.Printf("binance: connected, streams=%s", c.streamNames())
	return nil
}

// Subscribe is satisfied by the combined-stream URL.
func (c *Client) Subscribe(ctx context.Context) error {
	if c.conn == nil || !c.connected {
		return fmt.Errorf("binance not connected")
	}
	return nil
}

type wsKline struct {
	OpenTime int64  `json:"t"`
	Symbol   string `json:"s"`
	Interval string `json:"i"`
	Open     string `json:"o"`
	Close    string `json:"c"`
	High     string `json:"h"`
	Low      string `json:"l"`
	Volume   string `json:"v"`
	Closed   bool   `json:"x"`
}

type wsKlineEvent struct {
	Type  string  `json:"e"`
	Kline wsKline `json:"k"`
}

type wsFrame struct {
	Stream string       `json:"stream"`
	Data   wsKlineEvent `json:"data"`
}

func (k wsKline) toCandle() (*models.Candle, error) {
	open, err := strconv.ParseFloat(k.Open, 64)
	if err != nil {
		return nil, fmt.Errorf("kline open: %w", err)
	}
	high, err := strconv.ParseFloat(k.High, 64)
	if err != nil {
		return nil, fmt.Errorf("kline high: %w", err)
	}
	low, err := strconv.ParseFloat(k.Low, 64)
	if err != nil {
		return nil, fmt.Errorf("kline low: %w", err)
	}
	cl, err := strconv.ParseFloat(k.Close, 64)
	if err != nil {
		return nil, fmt.Errorf("kline close: %w", err)
	}
	vol, err := strconv.ParseFloat(k.Volume, 64)
	if err != nil {
		return nil, fmt.Errorf("kline volume: %w", err)
	}
	return &models.Candle{
		TS:     k.OpenTime,
		Symbol: strings.ToLower(strings.TrimSuffix(k.Symbol, "USDT")),
		Open:   open,
		High:   high,
		Low:    low,
		Close:  cl,
		Volume: vol,
	}, nil
}

// Read streams closed candles and errors. In-progress klines are skipped;
// only the final bar of each interval reaches the pipeline.
func (c *Client) Read(ctx context.Context) (<-chan *models.Candle, <-chan error) {
	candles := make(chan *models.Candle, 256)
	errs := make(chan error, 1)

	// ping loop
	go func() {
		ticker := time.NewTicker(c.pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if c.conn != nil {
					_ = c.conn.WriteMessage(websocket.PingMessage, nil)
				}
			}
		}
	}()

	// read loop
	go func() {
		defer close(candles)
		defer close(errs)
		for {
			select {
			case <-ctx.Done():
				return
			default:
				if c.conn == nil {
					errs <- fmt.Errorf("binance conn nil")
					return
				}
				_, b, err := c.conn.ReadMessage()
				if err != nil {
					errs <- fmt.Errorf("binance read: %w", err)
					return
				}
				var f wsFrame
				if err := json.Unmarshal(b, &f); err != nil {
					// ignore non-kline frames
					continue
				}
				if f.Data.Type != "kline" || !f.Data.Kline.Closed {
					continue
				}
				candle, err := f.Data.Kline.toCandle()
				if err != nil {
					continue
				}
				select {
				case candles <- candle:
				default:
					// drop on backpressure
				}
			}
		}
	}()

	return candles, errs
}

// Reconnect closes and reconnects.
func (c *Client) Reconnect(ctx context.Context) error {
	_ = c.Close()
	time.Sleep(c.reconnectDelay)
	if err := c.Connect(ctx); err != nil {
		return err
	}
	return c.Subscribe(ctx)
}

// Close closes the WS connection.
func (c *Client) Close() error {
	c.connected = false
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// IsConnected indicates status.
func (c *Client) IsConnected() bool { return c.connected }
