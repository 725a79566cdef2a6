// Package broker defines the exchange-facing interfaces the trading core
// consumes. Implementations live in subpackages; the core never talks to a
// venue directly.
package broker

import (
	"context"
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/breakout/market"
)

// MarketData supplies ascending candle history for one symbol.
type MarketData interface {
	GetKlines(ctx context.Context, symbol string, interval market.Interval, limit int) (market.Series, error)
}

// AccountSource reports account equity. An invalid NullDecimal with a nil
// error means the venue could not say; callers apply their fallback
// policy.
type AccountSource interface {
	GetEquity(ctx context.Context) (decimal.NullDecimal, error)
}

// OrderPlacer submits market orders and attaches protective levels.
//
// SetTradingStop is a separate venue call made after the fill; if it fails
// the position exists without protection, which callers report but do not
// correct.
type OrderPlacer interface {
	PlaceMarketOrder(ctx context.Context, req OrderRequest) (OrderFill, error)
	SetTradingStop(ctx context.Context, symbol string, stopLoss, takeProfit decimal.Decimal) error
}

type OrderRequest struct {
	Symbol   string
	Side     market.Side
	Quantity decimal.Decimal
}

// OrderFill carries the venue confirmation. Raw is the confirmation
// payload verbatim, stored in the ledger for audit and never parsed again.
type OrderFill struct {
	OrderID string
	Raw     json.RawMessage
}
