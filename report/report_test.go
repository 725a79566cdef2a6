package report

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/breakout/journal"
	"github.com/rustyeddy/breakout/market"
)

func TestRender(t *testing.T) {
	t.Parallel()

	recs := []journal.TradeRecord{
		{
			ID:         "01TRADE",
			OpenedAt:   time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
			Symbol:     "BTCUSDT",
			Side:       market.Long,
			Entry:      decimal.NewFromInt(30000),
			Quantity:   decimal.NewFromFloat(0.002),
			StopLoss:   decimal.NewFromInt(29950),
			TakeProfit: decimal.NewFromInt(30100),
			Fee:        decimal.NewFromFloat(0.033),
			Status:     journal.StatusOpen,
		},
		{
			ID:        "02TRADE",
			Symbol:    "BTCUSDT",
			Side:      market.Short,
			Entry:     decimal.NewFromInt(31000),
			ExitPrice: decimal.NullDecimal{Decimal: decimal.NewFromInt(30500), Valid: true},
			PnL:       decimal.NullDecimal{Decimal: decimal.NewFromInt(50), Valid: true},
			Status:    journal.StatusClosed,
		},
	}

	path := filepath.Join(t.TempDir(), "report.html")
	require.NoError(t, Render(recs, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	out := string(data)
	assert.Contains(t, out, "01TRADE")
	assert.Contains(t, out, "BTCUSDT")
	assert.Contains(t, out, "Trades: <b>2</b>")
	assert.Contains(t, out, "Open: <b>1</b>")
	assert.Contains(t, out, "Realized PnL: <b>50</b>")

	// No stray temp file left behind.
	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestRenderEmptyLedger(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "report.html")
	require.NoError(t, Render(nil, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Trades: <b>0</b>")
}
