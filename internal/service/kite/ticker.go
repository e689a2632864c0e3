package kite

import (
	"context"
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	"NiftyPulse/internal/domain/models"
	drepo "NiftyPulse/internal/domain/repository"
	applogger "NiftyPulse/pkg/logger"

	"github.com/gorilla/websocket"
)

// Well-known NSE index instrument tokens.
const (
	NiftySpotToken uint32 = 256265
	IndiaVIXToken  uint32 = 264969
)

// Ticker implements a SpotStream backed by the Kite WebSocket in LTP mode.
// VIX ticks are folded into the spot stream: each emitted SpotTick carries
// the last VIX level seen.
type Ticker struct {
	apiKey         string
	accessToken    string
	websocketURL   string
	spotSymbol     string
	spotToken      uint32
	vixToken       uint32
	reconnectDelay time.Duration
	pingInterval   time.Duration

	mu        sync.Mutex // guards conn, connected, tokens, lastVIX
	conn      *websocket.Conn
	connected bool
	tokens    []uint32
	lastVIX   float64

	logger *applogger.Logger
}

// NewTicker creates a Kite SpotStream.
func NewTicker(apiKey, accessToken, websocketURL, spotSymbol string, reconnectDelay, pingInterval time.Duration, log *applogger.Logger) drepo.SpotStream {
	if log == nil {
		log, _ = applogger.New(&applogger.Config{Level: "info", Format: "console", Output: "stdout"})
	}
	return &Ticker{
		apiKey:         apiKey,
		accessToken:    accessToken,
		websocketURL:   websocketURL,
		spotSymbol:     spotSymbol,
		spotToken:      NiftySpotToken,
		vixToken:       IndiaVIXToken,
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
		logger:         log,
	}
}

// Connect establishes the WebSocket connection.
func (t *Ticker) Connect(ctx context.Context) error {
	u := fmt.Sprintf("%s?api_key=%s&access_token=%s", t.websocketURL, t.apiKey, t.accessToken)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		return fmt.Errorf("kite ticker connect: %w", err)
	}
	t.mu.Lock()
	t.conn = conn
	t.connected = true
	t.mu.Unlock()
	t.logger.Info("kite ticker connected")
	return nil
}

// Subscribe subscribes the given instrument tokens in LTP mode. The spot
// and VIX index tokens are always included.
func (t *Ticker) Subscribe(ctx context.Context, tokens []uint32) error {
	t.mu.Lock()
	conn := t.conn
	if conn == nil || !t.connected {
		t.mu.Unlock()
		return fmt.Errorf("kite ticker not connected")
	}
	all := append([]uint32{t.spotToken, t.vixToken}, tokens...)
	t.tokens = all
	t.mu.Unlock()

	sub := map[string]interface{}{"a": "subscribe", "v": all}
	if err := conn.WriteJSON(sub); err != nil {
		return fmt.Errorf("kite subscribe: %w", err)
	}
	mode := map[string]interface{}{"a": "mode", "v": []interface{}{"ltp", all}}
	if err := conn.WriteJSON(mode); err != nil {
		return fmt.Errorf("kite mode: %w", err)
	}
	t.logger.Info("kite ticker subscribed", applogger.Int("tokens", len(all)))
	return nil
}

// Read streams SpotTick events and errors.
func (t *Ticker) Read(ctx context.Context) (<-chan *models.SpotTick, <-chan error) {
	ticks := make(chan *models.SpotTick, 1024)
	errs := make(chan error, 1)

	// ping loop
	go func() {
		ticker := time.NewTicker(t.pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				t.mu.Lock()
				conn := t.conn
				t.mu.Unlock()
				if conn != nil {
					_ = conn.WriteMessage(websocket.PingMessage, nil)
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
				t.mu.Lock()
				conn := t.conn
				t.mu.Unlock()
				if conn == nil {
					errs <- fmt.Errorf("kite ticker conn nil")
					return
				}
				msgType, b, err := conn.ReadMessage()
				if err != nil {
					errs <- fmt.Errorf("kite ticker read: %w", err)
					return
				}
				// text frames carry postbacks and order updates; ignore
				if msgType != websocket.BinaryMessage || len(b) < 2 {
					continue
				}
				for _, tick := range t.parseFrame(b) {
					select {
					case ticks <- tick:
					default:
						// drop on backpressure
					}
				}
			}
		}
	}()

	return ticks, errs
}

// parseFrame decodes a Kite binary frame: a big-endian packet count, then
// length-prefixed packets. An LTP packet is 8 bytes: instrument token and
// last price in paise.
func (t *Ticker) parseFrame(b []byte) []*models.SpotTick {
	count := int(binary.BigEndian.Uint16(b[0:2]))
	offset := 2
	now := time.Now()

	var out []*models.SpotTick
	for i := 0; i < count; i++ {
		if offset+2 > len(b) {
			break
		}
		plen := int(binary.BigEndian.Uint16(b[offset : offset+2]))
		offset += 2
		if offset+plen > len(b) || plen < 8 {
			break
		}
		packet := b[offset : offset+plen]
		offset += plen

		token := binary.BigEndian.Uint32(packet[0:4])
		price := float64(int32(binary.BigEndian.Uint32(packet[4:8]))) / 100

		switch token {
		case t.vixToken:
			t.mu.Lock()
			t.lastVIX = price
			t.mu.Unlock()
		case t.spotToken:
			t.mu.Lock()
			vix := t.lastVIX
			t.mu.Unlock()
			out = append(out, &models.SpotTick{
				Symbol:    t.spotSymbol,
				Timestamp: now.Unix(),
				Price:     price,
				VIX:       vix,
			})
		}
	}
	return out
}

// Reconnect closes and reconnects, restoring the previous subscription.
func (t *Ticker) Reconnect(ctx context.Context) error {
	_ = t.Close()
	time.Sleep(t.reconnectDelay)
	if err := t.Connect(ctx); err != nil {
		return err
	}
	t.mu.Lock()
	prev := t.tokens
	t.mu.Unlock()
	if len(prev) > 2 {
		prev = prev[2:] // Subscribe re-adds the index tokens
	} else {
		prev = nil
	}
	return t.Subscribe(ctx, prev)
}

// Close closes the WS connection.
func (t *Ticker) Close() error {
	t.mu.Lock()
	t.connected = false
	conn := t.conn
	t.conn = nil
	t.mu.Unlock()
	if conn != nil {
		return conn.Close()
	}
	return nil
}

// IsConnected indicates status.
func (t *Ticker) IsConnected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.connected
}
