// Package bybit implements the broker interfaces against the Bybit v5
// REST API.
package bybit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"github.com/rustyeddy/breakout/broker"
	"github.com/rustyeddy/breakout/market"
)

const (
	mainnetURL = "https://api.bybit.com"
	testnetURL = "https://api-testnet.bybit.com"
)

// Options configure a Client. BaseURL overrides the testnet/mainnet switch
// and exists for tests.
type Options struct {
	APIKey         string
	APISecret      string
	Testnet        bool
	BaseURL        string
	Category       string // "linear" for USDT perpetuals
	Timeout        time.Duration
	RequestsPerSec int
	Logger         zerolog.Logger
}

// Client talks to one Bybit account. GETs are rate limited and retried
// with exponential backoff; order POSTs are never retried, a retry could
// double a fill.
type Client struct {
	baseURL    string
	apiKey     string
	apiSecret  string
	category   string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     zerolog.Logger
}

func New(opts Options) *Client {
	if opts.Timeout == 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.RequestsPerSec == 0 {
		opts.RequestsPerSec = 5
	}
	if opts.Category == "" {
		opts.Category = "linear"
	}

	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = mainnetURL
		if opts.Testnet {
			baseURL = testnetURL
		}
	}

	return &Client{
		baseURL:    baseURL,
		apiKey:     opts.APIKey,
		apiSecret:  opts.APISecret,
		category:   opts.Category,
		httpClient: &http.Client{Timeout: opts.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(opts.RequestsPerSec), opts.RequestsPerSec),
		logger:     opts.Logger.With().Str("component", "bybit").Logger(),
	}
}

// envelope is the common Bybit v5 response wrapper.
type envelope struct {
	RetCode int             `json:"retCode"`
	RetMsg  string          `json:"retMsg"`
	Result  json.RawMessage `json:"result"`
}

// GetKlines fetches up to limit candles and returns them ascending by
// start time. Bybit delivers newest first.
func (c *Client) GetKlines(ctx context.Context, symbol string, interval market.Interval, limit int) (market.Series, error) {
	query := url.Values{}
	query.Set("category", c.category)
	query.Set("symbol", symbol)
	query.Set("interval", interval.String())
	query.Set("limit", fmt.Sprintf("%d", limit))

	result, err := c.get(ctx, "/v5/market/kline", query, false)
	if err != nil {
		return nil, &broker.DataError{Err: err}
	}

	var kr struct {
		List [][]string `json:"list"`
	}
	if err := json.Unmarshal(result, &kr); err != nil {
		return nil, &broker.DataError{Err: fmt.Errorf("decode kline result: %w", err)}
	}
	if len(kr.List) == 0 {
		return nil, &broker.DataError{Err: fmt.Errorf("empty kline response for %s", symbol)}
	}

	series := make(market.Series, 0, len(kr.List))
	for _, row := range kr.List {
		candle, err := parseKlineRow(row)
		if err != nil {
			return nil, &broker.DataError{Err: err}
		}
		series = append(series, candle)
	}

	sort.Slice(series, func(i, j int) bool {
		return series[i].Time.Before(series[j].Time)
	})

	if err := series.Validate(); err != nil {
		return nil, &broker.DataError{Err: err}
	}

	c.logger.Debug().Str("symbol", symbol).Int("count", len(series)).Msg("fetched klines")
	return series, nil
}

// parseKlineRow decodes one Bybit kline entry:
// [start, open, high, low, close, volume, turnover], all strings, start in ms.
func parseKlineRow(row []string) (market.Candle, error) {
	if len(row) < 6 {
		return market.Candle{}, fmt.Errorf("kline row has %d fields, want at least 6", len(row))
	}

	var startMs int64
	if _, err := fmt.Sscanf(row[0], "%d", &startMs); err != nil {
		return market.Candle{}, fmt.Errorf("kline start %q: %w", row[0], err)
	}

	fields := make([]decimal.Decimal, 5)
	for i := 0; i < 5; i++ {
		d, err := decimal.NewFromString(row[i+1])
		if err != nil {
			return market.Candle{}, fmt.Errorf("kline field %q: %w", row[i+1], err)
		}
		fields[i] = d
	}

	return market.Candle{
		Time:   time.UnixMilli(startMs).UTC(),
		Open:   fields[0],
		High:   fields[1],
		Low:    fields[2],
		Close:  fields[3],
		Volume: fields[4],
	}, nil
}

// GetEquity returns the unified account's USDT wallet balance. Any failure
// is reported as absence, not as an error: the caller's fallback-equity
// policy decides what happens next.
func (c *Client) GetEquity(ctx context.Context) (decimal.NullDecimal, error) {
	query := url.Values{}
	query.Set("accountType", "UNIFIED")

	result, err := c.get(ctx, "/v5/account/wallet-balance", query, true)
	if err != nil {
		c.logger.Warn().Err(err).Msg("wallet balance query failed")
		return decimal.NullDecimal{}, nil
	}

	var wr struct {
		List []struct {
			Coin []struct {
				Coin          string `json:"coin"`
				WalletBalance string `json:"walletBalance"`
			} `json:"coin"`
		} `json:"list"`
	}
	if err := json.Unmarshal(result, &wr); err != nil {
		c.logger.Warn().Err(err).Msg("wallet balance decode failed")
		return decimal.NullDecimal{}, nil
	}

	for _, acct := range wr.List {
		for _, coin := range acct.Coin {
			if coin.Coin != "USDT" {
				continue
			}
			bal, err := decimal.NewFromString(coin.WalletBalance)
			if err != nil {
				c.logger.Warn().Str("balance", coin.WalletBalance).Err(err).Msg("wallet balance unparseable")
				return decimal.NullDecimal{}, nil
			}
			return decimal.NullDecimal{Decimal: bal, Valid: true}, nil
		}
	}

	c.logger.Warn().Msg("no USDT balance in wallet response")
	return decimal.NullDecimal{}, nil
}

// PlaceMarketOrder submits a market order. The raw confirmation body is
// returned for the ledger's audit trail.
func (c *Client) PlaceMarketOrder(ctx context.Context, req broker.OrderRequest) (broker.OrderFill, error) {
	body := map[string]string{
		"category":    c.category,
		"symbol":      req.Symbol,
		"side":        req.Side.OrderSide(),
		"orderType":   "Market",
		"qty":         req.Quantity.String(),
		"timeInForce": "GTC",
	}

	raw, env, err := c.post(ctx, "/v5/order/create", body)
	if err != nil {
		return broker.OrderFill{}, &broker.OrderError{Err: err}
	}

	var or struct {
		OrderID string `json:"orderId"`
	}
	if err := json.Unmarshal(env.Result, &or); err != nil {
		return broker.OrderFill{}, &broker.OrderError{Err: fmt.Errorf("decode order result: %w", err)}
	}

	c.logger.Info().
		Str("order_id", or.OrderID).
		Str("side", req.Side.OrderSide()).
		Str("qty", req.Quantity.String()).
		Msg("order placed")

	return broker.OrderFill{OrderID: or.OrderID, Raw: raw}, nil
}

// SetTradingStop attaches stop-loss and take-profit to the current
// position, triggered on last price.
func (c *Client) SetTradingStop(ctx context.Context, symbol string, stopLoss, takeProfit decimal.Decimal) error {
	body := map[string]any{
		"category":    c.category,
		"symbol":      symbol,
		"stopLoss":    stopLoss.String(),
		"takeProfit":  takeProfit.String(),
		"slTriggerBy": "LastPrice",
		"tpTriggerBy": "LastPrice",
		"positionIdx": 0,
	}

	if _, _, err := c.post(ctx, "/v5/position/trading-stop", body); err != nil {
		return &broker.ProtectionError{Err: err}
	}
	return nil
}

// get performs a rate-limited GET with exponential-backoff retries.
// Venue-level rejections (retCode != 0) and decode failures are permanent.
func (c *Client) get(ctx context.Context, path string, query url.Values, signed bool) (json.RawMessage, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var result json.RawMessage
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet,
			c.baseURL+path+"?"+query.Encode(), nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		if signed {
			c.authorize(req, query.Encode())
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("GET %s: status %d", path, resp.StatusCode)
		}

		var env envelope
		if err := json.Unmarshal(body, &env); err != nil {
			return backoff.Permanent(fmt.Errorf("GET %s: decode: %w", path, err))
		}
		if env.RetCode != 0 {
			return backoff.Permanent(fmt.Errorf("GET %s: retCode %d: %s", path, env.RetCode, env.RetMsg))
		}
		result = env.Result
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 15 * time.Second
	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		return nil, err
	}
	return result, nil
}

// post performs a signed POST without retries and returns both the raw
// response body and the decoded envelope.
func (c *Client) post(ctx context.Context, path string, body any) ([]byte, *envelope, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, nil, err
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req, string(payload))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("POST %s: status %d", path, resp.StatusCode)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, nil, fmt.Errorf("POST %s: decode: %w", path, err)
	}
	if env.RetCode != 0 {
		return nil, nil, fmt.Errorf("POST %s: retCode %d: %s", path, env.RetCode, env.RetMsg)
	}
	return raw, &env, nil
}
