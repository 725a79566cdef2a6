package journal

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/breakout/market"
)

func newTestJournal(t *testing.T) (*SQLite, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "trades.db")
	j, err := NewSQLite(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })

	return j, path
}

func sampleRecord() TradeRecord {
	return TradeRecord{
		OpenedAt:   time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Symbol:     "BTCUSDT",
		Side:       market.Long,
		Entry:      decimal.NewFromInt(30000),
		Quantity:   decimal.NewFromFloat(0.002),
		StopLoss:   decimal.NewFromInt(29950),
		TakeProfit: decimal.NewFromInt(30100),
		Fee:        decimal.NewFromFloat(0.033),
		Metadata:   []byte(`{"orderId":"abc-123"}`),
	}
}

func TestCreateThenListAll(t *testing.T) {
	t.Parallel()

	j, _ := newTestJournal(t)
	ctx := context.Background()

	tradeID, err := j.Create(ctx, sampleRecord())
	require.NoError(t, err)
	assert.NotEmpty(t, tradeID)

	recs, err := j.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 1)

	got := recs[0]
	assert.Equal(t, tradeID, got.ID)
	assert.Equal(t, StatusOpen, got.Status)
	assert.Equal(t, "BTCUSDT", got.Symbol)
	assert.Equal(t, market.Long, got.Side)
	assert.True(t, got.Entry.Equal(decimal.NewFromInt(30000)))
	assert.True(t, got.Quantity.Equal(decimal.NewFromFloat(0.002)))
	assert.False(t, got.ExitPrice.Valid)
	assert.False(t, got.PnL.Valid)
	assert.JSONEq(t, `{"orderId":"abc-123"}`, string(got.Metadata))
}

func TestCloseTrade(t *testing.T) {
	t.Parallel()

	j, _ := newTestJournal(t)
	ctx := context.Background()

	tradeID, err := j.Create(ctx, sampleRecord())
	require.NoError(t, err)

	err = j.CloseTrade(ctx, tradeID, decimal.NewFromInt(31000), decimal.NewFromInt(50))
	require.NoError(t, err)

	recs, err := j.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 1)

	got := recs[0]
	assert.Equal(t, StatusClosed, got.Status)
	require.True(t, got.ExitPrice.Valid)
	assert.True(t, got.ExitPrice.Decimal.Equal(decimal.NewFromInt(31000)))
	require.True(t, got.PnL.Valid)
	assert.True(t, got.PnL.Decimal.Equal(decimal.NewFromInt(50)))
}

func TestCloseTradeTwiceIsRejected(t *testing.T) {
	t.Parallel()

	j, _ := newTestJournal(t)
	ctx := context.Background()

	tradeID, err := j.Create(ctx, sampleRecord())
	require.NoError(t, err)
	require.NoError(t, j.CloseTrade(ctx, tradeID, decimal.NewFromInt(31000), decimal.NewFromInt(50)))

	err = j.CloseTrade(ctx, tradeID, decimal.NewFromInt(99999), decimal.NewFromInt(-1))
	assert.ErrorIs(t, err, ErrTerminal)

	// The record is unchanged by the rejected second close.
	got, err := j.Get(ctx, tradeID)
	require.NoError(t, err)
	assert.True(t, got.ExitPrice.Decimal.Equal(decimal.NewFromInt(31000)))
	assert.True(t, got.PnL.Decimal.Equal(decimal.NewFromInt(50)))
}

func TestCancel(t *testing.T) {
	t.Parallel()

	j, _ := newTestJournal(t)
	ctx := context.Background()

	tradeID, err := j.Create(ctx, sampleRecord())
	require.NoError(t, err)
	require.NoError(t, j.Cancel(ctx, tradeID))

	got, err := j.Get(ctx, tradeID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, got.Status)

	// Cancelled is terminal: no further transitions.
	assert.ErrorIs(t, j.Cancel(ctx, tradeID), ErrTerminal)
	assert.ErrorIs(t, j.CloseTrade(ctx, tradeID, decimal.NewFromInt(1), decimal.NewFromInt(1)), ErrTerminal)
}

func TestTransitionUnknownTrade(t *testing.T) {
	t.Parallel()

	j, _ := newTestJournal(t)
	ctx := context.Background()

	err := j.CloseTrade(ctx, "no-such-id", decimal.NewFromInt(1), decimal.NewFromInt(1))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrTerminal)
}

func TestListAllOrderedByCreation(t *testing.T) {
	t.Parallel()

	j, _ := newTestJournal(t)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 5; i++ {
		tradeID, err := j.Create(ctx, sampleRecord())
		require.NoError(t, err)
		ids = append(ids, tradeID)
	}

	recs, err := j.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 5)
	for i, rec := range recs {
		assert.Equal(t, ids[i], rec.ID)
	}
}

func TestRecordsSurviveReopen(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "trades.db")

	j, err := NewSQLite(path)
	require.NoError(t, err)
	tradeID, err := j.Create(context.Background(), sampleRecord())
	require.NoError(t, err)
	require.NoError(t, j.Close())

	j2, err := NewSQLite(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = j2.Close() })

	recs, err := j2.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, tradeID, recs[0].ID)
}

func TestExportCSV(t *testing.T) {
	t.Parallel()

	j, _ := newTestJournal(t)
	ctx := context.Background()

	tradeID, err := j.Create(ctx, sampleRecord())
	require.NoError(t, err)
	require.NoError(t, j.CloseTrade(ctx, tradeID, decimal.NewFromInt(31000), decimal.NewFromInt(50)))

	recs, err := j.ListAll(ctx)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, ExportCSV(&buf, recs))

	out := buf.String()
	assert.Contains(t, out, tradeID)
	assert.Contains(t, out, "BTCUSDT")
	assert.Contains(t, out, "closed")
	assert.Contains(t, out, "31000")
}
