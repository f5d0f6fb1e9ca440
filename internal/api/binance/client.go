package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpclient "github.com/quantex/marketpulse/internal/platform/http"
	"github.com/quantex/marketpulse/internal/model"
)

// Exchange is the exchange identifier stamped onto normalized records.
const Exchange = "binance"

// Client is the Binance REST API client, used for pulling the most recent
// OHLCV bar per symbol.
type Client struct {
	baseURL    string
	httpClient *httpclient.Client
	logger     zerolog.Logger
}

// ClientOptions holds options for creating a new Binance client.
type ClientOptions struct {
	BaseURL        string
	RequestTimeout time.Duration
	RequestsPerSec int
}

// NewClient creates a new Binance REST client.
func NewClient(options ClientOptions) *Client {
	if options.BaseURL == "" {
		options.BaseURL = "https://api.binance.com"
	}

	return &Client{
		baseURL: options.BaseURL,
		httpClient: httpclient.NewClient(httpclient.ClientOptions{
			Timeout:        options.RequestTimeout,
			RequestsPerSec: options.RequestsPerSec,
		}),
		logger: log.With().Str("component", "binance_client").Logger(),
	}
}

// LatestBar fetches the most recent OHLCV bar for a symbol at the given
// interval.
func (c *Client) LatestBar(ctx context.Context, symbol, interval string) (*model.PricePoint, error) {
	url := fmt.Sprintf(
		"%s/api/v3/klines?symbol=%s&interval=%s&limit=1",
		c.baseURL,
		PairSymbol(symbol),
		interval,
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.DoRequest(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	// Klines come back as rows of mixed-type arrays:
	// [openTime, "open", "high", "low", "close", "volume", closeTime, ...]
	var rows [][]json.RawMessage
	if err := json.Unmarshal(body, &rows); err != nil {
		c.logger.Error().Err(err).Str("response", string(body)).Msg("error parsing klines JSON")
		return nil, fmt.Errorf("parsing klines JSON: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("empty klines response for %s", symbol)
	}

	row := rows[0]
	if len(row) < 6 {
		return nil, fmt.Errorf("malformed kline row for %s", symbol)
	}

	var openTime int64
	if err := json.Unmarshal(row[0], &openTime); err != nil {
		return nil, fmt.Errorf("parsing kline open time: %w", err)
	}

	fields := make([]float64, 5)
	for i := 0; i < 5; i++ {
		var s string
		if err := json.Unmarshal(row[i+1], &s); err != nil {
			return nil, fmt.Errorf("parsing kline field %d: %w", i+1, err)
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("parsing kline field %d: %w", i+1, err)
		}
		fields[i] = v
	}

	point := &model.PricePoint{
		Symbol:    symbol,
		Exchange:  Exchange,
		Timestamp: openTime,
		Open:      fields[0],
		High:      fields[1],
		Low:       fields[2],
		Close:     fields[3],
		Volume:    fields[4],
	}

	c.logger.Debug().Str("symbol", symbol).Float64("close", point.Close).Msg("fetched latest bar")
	return point, nil
}

// PairSymbol converts a normalized symbol ("BTC/USDT") into the exchange
// pair form ("BTCUSDT").
func PairSymbol(symbol string) string {
	return strings.ToUpper(strings.ReplaceAll(symbol, "/", ""))
}
