// Package journal is the durable trade ledger: one record per submitted
// order, forming the audit trail of the bot.
package journal

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/breakout/market"
)

// Status is the lifecycle state of a trade record. Open records may close
// or cancel; closed and cancelled records are immutable.
type Status string

const (
	StatusOpen      Status = "open"
	StatusClosed    Status = "closed"
	StatusCancelled Status = "cancelled"
)

// ErrTerminal is returned when a transition targets a record that is
// already closed or cancelled.
var ErrTerminal = errors.New("trade record is terminal")

// TradeRecord is one row of the audit trail.
//
// Metadata holds the venue's order confirmation verbatim; it is stored for
// audit and never parsed again.
type TradeRecord struct {
	ID         string
	OpenedAt   time.Time
	Symbol     string
	Side       market.Side
	Entry      decimal.Decimal
	Quantity   decimal.Decimal
	StopLoss   decimal.Decimal
	TakeProfit decimal.Decimal
	ExitPrice  decimal.NullDecimal
	PnL        decimal.NullDecimal
	Fee        decimal.Decimal
	Status     Status
	Metadata   json.RawMessage
}

// Journal is the durable ledger contract. Create must not return success
// until the record is on disk.
type Journal interface {
	// Create assigns the record's ID, persists it with status open and
	// returns the ID.
	Create(ctx context.Context, rec TradeRecord) (string, error)

	// CloseTrade transitions an open record to closed and sets its exit
	// price and realized PnL. Returns ErrTerminal (wrapped) if the record
	// is already closed or cancelled.
	CloseTrade(ctx context.Context, id string, exitPrice, pnl decimal.Decimal) error

	// Cancel transitions an open record to cancelled. Returns ErrTerminal
	// (wrapped) if the record is already terminal.
	Cancel(ctx context.Context, id string) error

	// ListAll returns every committed record, ascending by creation time.
	ListAll(ctx context.Context) ([]TradeRecord, error)

	Close() error
}
