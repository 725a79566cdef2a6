package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/rustyeddy/breakout/market"
	"github.com/rustyeddy/breakout/pkg/id"
)

// SQLite is the durable Journal implementation. Record IDs are ULIDs, so
// primary-key order matches creation order.
type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open journal db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create journal schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (j *SQLite) Create(ctx context.Context, rec TradeRecord) (string, error) {
	rec.ID = id.New()
	if rec.OpenedAt.IsZero() {
		rec.OpenedAt = time.Now().UTC()
	}
	meta := rec.Metadata
	if len(meta) == 0 {
		meta = []byte("{}")
	}

	_, err := j.db.ExecContext(ctx, `
		INSERT INTO trades
		(id, opened_at, symbol, side, entry, qty, stop_loss, take_profit, fee, status, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.OpenedAt, rec.Symbol, string(rec.Side),
		rec.Entry.String(), rec.Quantity.String(),
		rec.StopLoss.String(), rec.TakeProfit.String(),
		rec.Fee.String(), string(StatusOpen), string(meta),
	)
	if err != nil {
		return "", fmt.Errorf("insert trade: %w", err)
	}
	return rec.ID, nil
}

func (j *SQLite) CloseTrade(ctx context.Context, tradeID string, exitPrice, pnl decimal.Decimal) error {
	res, err := j.db.ExecContext(ctx, `
		UPDATE trades SET exit_price = ?, pnl = ?, status = ?
		WHERE id = ? AND status = ?`,
		exitPrice.String(), pnl.String(), string(StatusClosed),
		tradeID, string(StatusOpen),
	)
	if err != nil {
		return fmt.Errorf("close trade %s: %w", tradeID, err)
	}
	return j.checkTransition(ctx, tradeID, res)
}

func (j *SQLite) Cancel(ctx context.Context, tradeID string) error {
	res, err := j.db.ExecContext(ctx, `
		UPDATE trades SET status = ?
		WHERE id = ? AND status = ?`,
		string(StatusCancelled), tradeID, string(StatusOpen),
	)
	if err != nil {
		return fmt.Errorf("cancel trade %s: %w", tradeID, err)
	}
	return j.checkTransition(ctx, tradeID, res)
}

// checkTransition distinguishes "no such trade" from "already terminal"
// after an update that matched zero rows.
func (j *SQLite) checkTransition(ctx context.Context, tradeID string, res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	var status string
	err = j.db.QueryRowContext(ctx,
		`SELECT status FROM trades WHERE id = ?`, tradeID).Scan(&status)
	if err == sql.ErrNoRows {
		return fmt.Errorf("trade %q not found", tradeID)
	}
	if err != nil {
		return err
	}
	return fmt.Errorf("trade %q already %s: %w", tradeID, status, ErrTerminal)
}

func (j *SQLite) ListAll(ctx context.Context) ([]TradeRecord, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT id, opened_at, symbol, side, entry, qty, stop_loss, take_profit,
		       exit_price, pnl, fee, status, metadata
		FROM trades
		ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TradeRecord
	for rows.Next() {
		rec, err := scanTrade(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns a single record by ID.
func (j *SQLite) Get(ctx context.Context, tradeID string) (TradeRecord, error) {
	row := j.db.QueryRowContext(ctx, `
		SELECT id, opened_at, symbol, side, entry, qty, stop_loss, take_profit,
		       exit_price, pnl, fee, status, metadata
		FROM trades
		WHERE id = ?`, tradeID)

	rec, err := scanTrade(row)
	if err == sql.ErrNoRows {
		return TradeRecord{}, fmt.Errorf("trade %q not found", tradeID)
	}
	if err != nil {
		return TradeRecord{}, err
	}
	return rec, nil
}

func (j *SQLite) Close() error {
	return j.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrade(row rowScanner) (TradeRecord, error) {
	var (
		rec                                 TradeRecord
		side, entry, qty, stop, target, fee string
		exit, pnl                           sql.NullString
		status, meta                        string
	)

	err := row.Scan(&rec.ID, &rec.OpenedAt, &rec.Symbol, &side,
		&entry, &qty, &stop, &target, &exit, &pnl, &fee, &status, &meta)
	if err != nil {
		return TradeRecord{}, err
	}

	rec.Side = market.Side(side)
	rec.Status = Status(status)
	rec.Metadata = []byte(meta)

	if rec.Entry, err = decimal.NewFromString(entry); err != nil {
		return TradeRecord{}, fmt.Errorf("trade %s entry: %w", rec.ID, err)
	}
	if rec.Quantity, err = decimal.NewFromString(qty); err != nil {
		return TradeRecord{}, fmt.Errorf("trade %s qty: %w", rec.ID, err)
	}
	if rec.StopLoss, err = decimal.NewFromString(stop); err != nil {
		return TradeRecord{}, fmt.Errorf("trade %s stop_loss: %w", rec.ID, err)
	}
	if rec.TakeProfit, err = decimal.NewFromString(target); err != nil {
		return TradeRecord{}, fmt.Errorf("trade %s take_profit: %w", rec.ID, err)
	}
	if rec.Fee, err = decimal.NewFromString(fee); err != nil {
		return TradeRecord{}, fmt.Errorf("trade %s fee: %w", rec.ID, err)
	}
	if rec.ExitPrice, err = parseNullDecimal(exit); err != nil {
		return TradeRecord{}, fmt.Errorf("trade %s exit_price: %w", rec.ID, err)
	}
	if rec.PnL, err = parseNullDecimal(pnl); err != nil {
		return TradeRecord{}, fmt.Errorf("trade %s pnl: %w", rec.ID, err)
	}
	return rec, nil
}

func parseNullDecimal(ns sql.NullString) (decimal.NullDecimal, error) {
	if !ns.Valid {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(ns.String)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}, nil
}
