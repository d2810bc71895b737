package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"CoinSentry/internal/domain/models"
	drepo "CoinSentry/internal/domain/repository"
	applogger "CoinSentry/pkg/logger"

	"github.com/gorilla/websocket"
)

// Client implements a MarketStream backed by the Binance miniTicker
// WebSocket stream.
type Client struct {
	websocketURL   string
	symbols        []string
	reconnectDelay time.Duration
	pingInterval   time.Duration

	conn      *websocket.Conn
	connected bool
	l         *applogger.Logger
}

// New creates a new Binance MarketStream.
func New(websocketURL string, symbols []string, reconnectDelay, pingInterval time.Duration) drepo.MarketStream {
	return &Client{
		websocketURL:   websocketURL,
		symbols:        symbols,
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
	}
}

// SetLogger injects a structured logger.
func (c *Client) SetLogger(l *applogger.Logger) { c.l = l }

// Connect establishes the WebSocket connection.
func (c *Client) Connect(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.websocketURL, nil)
	if err != nil {
		return fmt.Errorf("binance connect: %w", err)
	}
	c.conn = conn
	c.connected = true
	if c.l != nil {
		c.l.Info("binance: connected", applogger.String("url", c.websocketURL))
	}
	return nil
}

// Subscribe subscribes to the miniTicker stream of every configured symbol.
func (c *Client) Subscribe(ctx context.Context) error {
	if c.conn == nil || !c.connected {
		return fmt.Errorf("binance not connected")
	}
	params := make([]string, 0, len(c.symbols))
	for _, s := range c.symbols {
		params = append(params, strings.ToLower(s)+"@miniTicker")
	}
	msg := map[string]any{"method": "SUBSCRIBE", "params": params, "id": 1}
	if err := c.conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("binance subscribe: %w", err)
	}
	if c.l != nil {
		c.l.Info("binance: subscribed", applogger.Any("streams", params))
	}
	return nil
}

// miniTicker frame. Binance sends numeric fields as strings.
type bnMiniTicker struct {
	EventType string `json:"e"`
	EventTime int64  `json:"E"` // ms
	Symbol    string `json:"s"`
	Close     string `json:"c"`
	Volume    string `json:"v"` // 24h base asset volume
}

// Read streams PriceTick events and errors.
func (c *Client) Read(ctx context.Context) (<-chan *models.PriceTick, <-chan error) {
	ticks := make(chan *models.PriceTick, 1024)
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
		defer close(ticks)
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
				var m bnMiniTicker
				if err := json.Unmarshal(b, &m); err != nil {
					// ignore non-ticker frames (subscribe acks etc.)
					continue
				}
				if m.EventType != "24hrMiniTicker" {
					continue
				}
				price, perr := strconv.ParseFloat(m.Close, 64)
				vol, verr := strconv.ParseFloat(m.Volume, 64)
				if perr != nil || verr != nil {
					continue
				}
				tick := &models.PriceTick{
					Symbol:    m.Symbol,
					Timestamp: m.EventTime / 1000,
					Price:     price,
					Volume:    vol,
				}
				select {
				case ticks <- tick:
				default:
					// drop on backpressure
				}
			}
		}
	}()

	return ticks, errs
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
