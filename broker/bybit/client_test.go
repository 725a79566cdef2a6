package bybit

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/breakout/broker"
	"github.com/rustyeddy/breakout/market"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return New(Options{
		APIKey:    "key",
		APISecret: "secret",
		BaseURL:   srv.URL,
		Logger:    zerolog.Nop(),
	})
}

func TestGetKlinesAscending(t *testing.T) {
	t.Parallel()

	// Bybit delivers newest first.
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v5/market/kline", r.URL.Path)
		assert.Equal(t, "BTCUSDT", r.URL.Query().Get("symbol"))
		assert.Equal(t, "60", r.URL.Query().Get("interval"))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"retCode": 0,
			"retMsg":  "OK",
			"result": map[string]any{
				"list": [][]string{
					{"7200000", "101", "103", "100", "102", "9"},
					{"3600000", "100", "102", "99", "101", "8"},
					{"0", "99", "101", "98", "100", "7"},
				},
			},
		})
	})

	series, err := c.GetKlines(context.Background(), "BTCUSDT", "60", 200)
	require.NoError(t, err)
	require.Len(t, series, 3)

	assert.True(t, series[0].Time.Before(series[1].Time))
	assert.True(t, series[1].Time.Before(series[2].Time))
	assert.True(t, series[0].Close.Equal(decimal.NewFromInt(100)))
	assert.True(t, series[2].High.Equal(decimal.NewFromInt(103)))
	assert.True(t, series[2].Volume.Equal(decimal.NewFromInt(9)))
}

func TestGetKlinesVenueError(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"retCode": 10001,
			"retMsg":  "params error",
		})
	})

	_, err := c.GetKlines(context.Background(), "BTCUSDT", "60", 200)
	var dataErr *broker.DataError
	require.ErrorAs(t, err, &dataErr)
	assert.Contains(t, err.Error(), "10001")
}

func TestGetKlinesEmptyList(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"retCode": 0,
			"result":  map[string]any{"list": [][]string{}},
		})
	})

	_, err := c.GetKlines(context.Background(), "BTCUSDT", "60", 200)
	var dataErr *broker.DataError
	assert.ErrorAs(t, err, &dataErr)
}

func TestGetEquity(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v5/account/wallet-balance", r.URL.Path)
		assert.NotEmpty(t, r.Header.Get("X-BAPI-SIGN"))
		assert.Equal(t, "key", r.Header.Get("X-BAPI-API-KEY"))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"retCode": 0,
			"result": map[string]any{
				"list": []map[string]any{
					{"coin": []map[string]any{
						{"coin": "BTC", "walletBalance": "0.5"},
						{"coin": "USDT", "walletBalance": "12345.67"},
					}},
				},
			},
		})
	})

	equity, err := c.GetEquity(context.Background())
	require.NoError(t, err)
	require.True(t, equity.Valid)
	assert.True(t, equity.Decimal.Equal(decimal.RequireFromString("12345.67")))
}

func TestGetEquityAbsenceIsNotAnError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "venue rejection",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_ = json.NewEncoder(w).Encode(map[string]any{"retCode": 10002, "retMsg": "auth"})
			},
		},
		{
			name: "no USDT coin",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_ = json.NewEncoder(w).Encode(map[string]any{
					"retCode": 0,
					"result": map[string]any{
						"list": []map[string]any{{"coin": []map[string]any{}}},
					},
				})
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := newTestClient(t, tt.handler)
			equity, err := c.GetEquity(context.Background())
			assert.NoError(t, err)
			assert.False(t, equity.Valid)
		})
	}
}

func TestPlaceMarketOrder(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v5/order/create", r.URL.Path)
		assert.NotEmpty(t, r.Header.Get("X-BAPI-SIGN"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Buy", body["side"])
		assert.Equal(t, "Market", body["orderType"])
		assert.Equal(t, "0.002", body["qty"])

		_ = json.NewEncoder(w).Encode(map[string]any{
			"retCode": 0,
			"result":  map[string]any{"orderId": "ord-42"},
		})
	})

	fill, err := c.PlaceMarketOrder(context.Background(), broker.OrderRequest{
		Symbol:   "BTCUSDT",
		Side:     market.Long,
		Quantity: decimal.NewFromFloat(0.002),
	})
	require.NoError(t, err)
	assert.Equal(t, "ord-42", fill.OrderID)
	assert.Contains(t, string(fill.Raw), "ord-42")
}

func TestPlaceMarketOrderRejected(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"retCode": 110007, "retMsg": "insufficient balance",
		})
	})

	_, err := c.PlaceMarketOrder(context.Background(), broker.OrderRequest{
		Symbol:   "BTCUSDT",
		Side:     market.Short,
		Quantity: decimal.NewFromInt(1),
	})
	var orderErr *broker.OrderError
	require.ErrorAs(t, err, &orderErr)
	assert.Contains(t, err.Error(), "insufficient balance")
}

func TestSetTradingStop(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v5/position/trading-stop", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "29950", body["stopLoss"])
		assert.Equal(t, "30100", body["takeProfit"])

		_ = json.NewEncoder(w).Encode(map[string]any{"retCode": 0, "result": map[string]any{}})
	})

	err := c.SetTradingStop(context.Background(), "BTCUSDT",
		decimal.NewFromInt(29950), decimal.NewFromInt(30100))
	assert.NoError(t, err)
}

func TestSetTradingStopFailure(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"retCode": 10001, "retMsg": "no position"})
	})

	err := c.SetTradingStop(context.Background(), "BTCUSDT",
		decimal.NewFromInt(1), decimal.NewFromInt(2))
	var protErr *broker.ProtectionError
	assert.ErrorAs(t, err, &protErr)
}
