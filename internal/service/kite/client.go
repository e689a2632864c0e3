// Package kite talks to the Zerodha Kite Connect API: REST quotes and the
// instrument dump over HTTP, live LTP ticks over WebSocket.
package kite

import (
	"context"
	"encoding/csv"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"NiftyPulse/internal/domain/models"
	domsvc "NiftyPulse/internal/domain/service"
	xhttp "NiftyPulse/pkg/http"
	applogger "NiftyPulse/pkg/logger"
)

const (
	defaultBaseURL = "https://api.kite.trade"

	// quote requests are capped by the API; chains near spot fit well under this
	maxQuoteInstruments = 500
)

// Client is a Kite Connect REST client.
type Client struct {
	apiKey      string
	accessToken string
	baseURL     string
	spotSymbol  string
	vixSymbol   string
	indexName   string

	http   *xhttp.Client
	logger *applogger.Logger
}

var _ domsvc.QuoteProvider = (*Client)(nil)

// NewClient creates a Kite REST client.
func NewClient(apiKey, accessToken, baseURL, spotSymbol, vixSymbol string, log *applogger.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if log == nil {
		log, _ = applogger.New(&applogger.Config{Level: "info", Format: "console", Output: "stdout"})
	}
	return &Client{
		apiKey:      apiKey,
		accessToken: accessToken,
		baseURL:     baseURL,
		spotSymbol:  spotSymbol,
		vixSymbol:   vixSymbol,
		indexName:   "NIFTY",
		http:        xhttp.NewClient(xhttp.WithTimeout(10 * time.Second)),
		logger:      log,
	}
}

func (c *Client) authHeaders() map[string]string {
	return map[string]string{
		"X-Kite-Version": "3",
		"Authorization":  fmt.Sprintf("token %s:%s", c.apiKey, c.accessToken),
	}
}

type quoteDepthLevel struct {
	Price    float64 `json:"price"`
	Quantity int64   `json:"quantity"`
}

type quoteDepth struct {
	Buy  []quoteDepthLevel `json:"buy"`
	Sell []quoteDepthLevel `json:"sell"`
}

type quoteData struct {
	LastPrice float64    `json:"last_price"`
	Volume    int64      `json:"volume"`
	OI        int64      `json:"oi"`
	Depth     quoteDepth `json:"depth"`
	OHLC      struct {
		Close float64 `json:"close"`
	} `json:"ohlc"`
}

type quoteResponse struct {
	Status string               `json:"status"`
	Data   map[string]quoteData `json:"data"`
}

func (c *Client) quote(ctx context.Context, instruments []string) (map[string]quoteData, error) {
	var resp quoteResponse
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         c.baseURL + "/quote",
		Headers:     c.authHeaders(),
		QueryParams: map[string][]string{"i": instruments},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("kite quote: %w", err)
	}
	if resp.Status != "success" {
		return nil, fmt.Errorf("kite quote: status %q", resp.Status)
	}
	return resp.Data, nil
}

// SpotQuote fetches the index spot and VIX levels in one call.
func (c *Client) SpotQuote(ctx context.Context) (spot, vix float64, err error) {
	data, err := c.quote(ctx, []string{c.spotSymbol, c.vixSymbol})
	if err != nil {
		return 0, 0, err
	}
	sq, ok := data[c.spotSymbol]
	if !ok || sq.LastPrice <= 0 {
		return 0, 0, fmt.Errorf("kite quote: no spot for %s", c.spotSymbol)
	}
	// A missing VIX quote degrades the signal layer, not the whole request.
	vq := data[c.vixSymbol]
	return sq.LastPrice, vq.LastPrice, nil
}

// OptionQuotes fetches quotes for the given contracts and assembles a
// chain snapshot keyed by strike and type.
func (c *Client) OptionQuotes(ctx context.Context, instruments []models.Instrument) (models.ChainSnapshot, error) {
	if len(instruments) == 0 {
		return models.ChainSnapshot{}, nil
	}
	if len(instruments) > maxQuoteInstruments {
		instruments = instruments[:maxQuoteInstruments]
	}

	keys := make([]string, 0, len(instruments))
	bySymbol := make(map[string]models.Instrument, len(instruments))
	for _, ins := range instruments {
		key := "NFO:" + ins.Symbol
		keys = append(keys, key)
		bySymbol[key] = ins
	}

	data, err := c.quote(ctx, keys)
	if err != nil {
		return nil, err
	}

	chain := make(models.ChainSnapshot, len(data))
	for key, q := range data {
		ins, ok := bySymbol[key]
		if !ok {
			continue
		}
		entry := models.ChainEntry{
			Strike: ins.Strike,
			Type:   ins.Type,
			LTP:    q.LastPrice,
			OI:     q.OI,
			Volume: q.Volume,
		}
		if len(q.Depth.Buy) > 0 {
			entry.Bid = q.Depth.Buy[0].Price
		}
		if len(q.Depth.Sell) > 0 {
			entry.Ask = q.Depth.Sell[0].Price
		}
		for _, lvl := range q.Depth.Buy {
			entry.BuyQty += lvl.Quantity
		}
		for _, lvl := range q.Depth.Sell {
			entry.SellQty += lvl.Quantity
		}
		chain[models.StrikeKey{Strike: entry.Strike, Type: entry.Type}] = entry
	}
	return chain, nil
}

// Instruments downloads the NFO instrument dump and keeps the index
// option contracts for the given expiry. The dump is a CSV with a header:
// instrument_token, tradingsymbol, name, expiry, strike, instrument_type
// among other columns.
func (c *Client) Instruments(ctx context.Context, expiry time.Time) (models.InstrumentSnapshot, error) {
	var raw []byte
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodGet,
		URL:     c.baseURL + "/instruments/NFO",
		Headers: c.authHeaders(),
	}, &raw)
	if err != nil {
		return models.InstrumentSnapshot{}, fmt.Errorf("kite instruments: %w", err)
	}

	snap, err := parseInstrumentDump(raw, c.indexName, expiry)
	if err != nil {
		return models.InstrumentSnapshot{}, err
	}
	c.logger.Info("instrument universe refreshed",
		applogger.Int("contracts", len(snap.Instruments)),
		applogger.String("expiry", snap.Expiry.Format("2006-01-02")))
	return snap, nil
}

func parseInstrumentDump(raw []byte, indexName string, expiry time.Time) (models.InstrumentSnapshot, error) {
	r := csv.NewReader(strings.NewReader(string(raw)))
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return models.InstrumentSnapshot{}, fmt.Errorf("instrument dump header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.TrimSpace(h)] = i
	}
	maxCol := 0
	for _, need := range []string{"instrument_token", "tradingsymbol", "name", "expiry", "strike", "instrument_type"} {
		i, ok := col[need]
		if !ok {
			return models.InstrumentSnapshot{}, fmt.Errorf("instrument dump missing column %q", need)
		}
		if i > maxCol {
			maxCol = i
		}
	}

	wantDay := expiry.Format("2006-01-02")
	out := models.InstrumentSnapshot{
		Expiry:      expiry,
		Instruments: make(map[uint32]models.Instrument),
		FetchedAt:   time.Now(),
	}

	for {
		rec, err := r.Read()
		if err != nil {
			break
		}
		if len(rec) <= maxCol {
			continue
		}
		if rec[col["name"]] != indexName {
			continue
		}
		typ := models.InstrumentType(rec[col["instrument_type"]])
		if typ != models.Call && typ != models.Put {
			continue
		}
		if rec[col["expiry"]] != wantDay {
			continue
		}
		token, err := strconv.ParseUint(rec[col["instrument_token"]], 10, 32)
		if err != nil {
			continue
		}
		strike, err := strconv.ParseFloat(rec[col["strike"]], 64)
		if err != nil || strike <= 0 {
			continue
		}
		out.Instruments[uint32(token)] = models.Instrument{
			Token:  uint32(token),
			Symbol: rec[col["tradingsymbol"]],
			Strike: strike,
			Type:   typ,
		}
	}
	return out, nil
}

// SortTokens returns the instrument tokens in ascending order, for stable
// subscribe payloads.
func SortTokens(instruments []models.Instrument) []uint32 {
	tokens := make([]uint32, 0, len(instruments))
	for _, ins := range instruments {
		tokens = append(tokens, ins.Token)
	}
	sort.Slice(tokens, func(i, j int) bool { return tokens[i] < tokens[j] })
	return tokens
}
